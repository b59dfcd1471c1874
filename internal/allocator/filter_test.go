package allocator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/VipuDevAI/parikshan-ops-api/internal/models"
)

func basicCandidate(id string) Candidate {
	return Candidate{
		TeacherID:       id,
		Role:            models.RoleTeacher,
		WingID:          "wing-1",
		SubjectsTaught:  map[string]bool{"math": true},
		PrimarySubjects: map[string]bool{"math": true},
		SectionsTaught:  map[string]bool{},
	}
}

func basicVacancy() Vacancy {
	return Vacancy{
		Date:              testDate(),
		PeriodIndex:       3,
		SectionID:         "sec-1",
		WingID:            "wing-1",
		Room:              "R101",
		OriginalTeacherID: "t-absent",
		SubjectID:         "math",
		LeaveRequestID:    "leave-1",
	}
}

func TestEligibleExcludesOriginalTeacher(t *testing.T) {
	snap := NewSnapshot(map[string]TeacherState{}, nil)
	self := basicCandidate("t-absent")
	other := basicCandidate("t-2")

	out := Eligible(basicVacancy(), testConstraints(), []Candidate{self, other}, snap)

	assert.Len(t, out, 1)
	assert.Equal(t, "t-2", out[0].TeacherID)
}

func TestEligibleExcludesBusyTeacher(t *testing.T) {
	snap := NewSnapshot(map[string]TeacherState{
		"t-busy": {Regular: []Commitment{{Period: 3, SectionID: "sec-9", Room: "R900"}}},
		"t-free": {Regular: []Commitment{{Period: 4, SectionID: "sec-9", Room: "R900"}}},
	}, nil)

	out := Eligible(basicVacancy(), testConstraints(), []Candidate{basicCandidate("t-busy"), basicCandidate("t-free")}, snap)

	assert.Len(t, out, 1)
	assert.Equal(t, "t-free", out[0].TeacherID)
}

func TestEligibleRoleExclusions(t *testing.T) {
	cs := testConstraints()
	cs.ExcludePrincipal = true
	cs.ExcludeVicePrincipal = false

	principal := basicCandidate("t-principal")
	principal.Role = models.RolePrincipal
	vice := basicCandidate("t-vice")
	vice.Role = models.RoleVicePrincipal

	snap := NewSnapshot(map[string]TeacherState{}, nil)
	out := Eligible(basicVacancy(), cs, []Candidate{principal, vice}, snap)

	assert.Len(t, out, 1)
	assert.Equal(t, "t-vice", out[0].TeacherID)
}

func TestEligibleCrossWing(t *testing.T) {
	snap := NewSnapshot(map[string]TeacherState{}, nil)

	restricted := basicCandidate("t-restricted")
	restricted.WingID = "wing-2"
	roaming := basicCandidate("t-roaming")
	roaming.WingID = "wing-2"
	roaming.CrossWingAllowed = true

	out := Eligible(basicVacancy(), testConstraints(), []Candidate{restricted, roaming}, snap)
	assert.Len(t, out, 1)
	assert.Equal(t, "t-roaming", out[0].TeacherID)

	// A priority override on the vacancy's wing relaxes the restriction.
	v := basicVacancy()
	v.WingPriorityOverride = true
	out = Eligible(v, testConstraints(), []Candidate{restricted, roaming}, snap)
	assert.Len(t, out, 2)
}

func TestEligibleLoadCaps(t *testing.T) {
	cs := testConstraints()
	cs.MaxPeriodsForEligibility = 3

	snap := NewSnapshot(map[string]TeacherState{
		"t-loaded": {Regular: []Commitment{
			{Period: 1, SectionID: "a"},
			{Period: 2, SectionID: "b"},
			{Period: 5, SectionID: "c"},
		}},
		"t-light": {Regular: []Commitment{{Period: 1, SectionID: "a"}}},
	}, nil)

	out := Eligible(basicVacancy(), cs, []Candidate{basicCandidate("t-loaded"), basicCandidate("t-light")}, snap)
	assert.Len(t, out, 1)
	assert.Equal(t, "t-light", out[0].TeacherID)
}

func TestEligibleWeeklyCap(t *testing.T) {
	cs := testConstraints()
	cs.MaxPeriodsPerTeacherPerWeek = 20

	snap := NewSnapshot(map[string]TeacherState{
		"t-1": {RegularPeriodsWeek: 20},
		"t-2": {RegularPeriodsWeek: 19},
	}, nil)

	out := Eligible(basicVacancy(), cs, []Candidate{basicCandidate("t-1"), basicCandidate("t-2")}, snap)
	assert.Len(t, out, 1)
	assert.Equal(t, "t-2", out[0].TeacherID)
}

func TestEligibleAvoidBackToBack(t *testing.T) {
	cs := testConstraints()
	cs.AvoidBackToBack = true

	snap := NewSnapshot(map[string]TeacherState{
		"t-adjacent": {Substitutions: []Commitment{{Period: 2, SectionID: "sec-9"}}},
		"t-distant":  {Substitutions: []Commitment{{Period: 6, SectionID: "sec-9"}}},
	}, nil)

	out := Eligible(basicVacancy(), cs, []Candidate{basicCandidate("t-adjacent"), basicCandidate("t-distant")}, snap)
	assert.Len(t, out, 1)
	assert.Equal(t, "t-distant", out[0].TeacherID)
}

func TestEligibleMaxConsecutiveRun(t *testing.T) {
	cs := testConstraints()
	cs.MaxConsecutiveSubstitutions = 2

	// Substitutions at periods 1 and 2; taking period 3 would make a run of 3.
	snap := NewSnapshot(map[string]TeacherState{
		"t-run": {Substitutions: []Commitment{
			{Period: 1, SectionID: "a"},
			{Period: 2, SectionID: "b"},
		}},
	}, nil)

	out := Eligible(basicVacancy(), cs, []Candidate{basicCandidate("t-run")}, snap)
	assert.Empty(t, out)
}

func TestEligibleRoomOnlyCommitment(t *testing.T) {
	snap := NewSnapshot(map[string]TeacherState{
		"t-duty": {Regular: []Commitment{{Period: 3, Room: "LAB-2"}}},
	}, nil)

	// Room-level duties only block when room conflicts are enforced.
	out := Eligible(basicVacancy(), testConstraints(), []Candidate{basicCandidate("t-duty")}, snap)
	assert.Len(t, out, 1)

	cs := testConstraints()
	cs.EnforceRoomConflicts = true
	out = Eligible(basicVacancy(), cs, []Candidate{basicCandidate("t-duty")}, snap)
	assert.Empty(t, out)
}

func TestEligibleDeduplicatesAndSorts(t *testing.T) {
	snap := NewSnapshot(map[string]TeacherState{}, nil)
	out := Eligible(basicVacancy(), testConstraints(), []Candidate{
		basicCandidate("t-2"), basicCandidate("t-1"), basicCandidate("t-2"),
	}, snap)

	assert.Len(t, out, 2)
	assert.Equal(t, "t-1", out[0].TeacherID)
	assert.Equal(t, "t-2", out[1].TeacherID)
}

func TestIsExcludedFromSubstitution(t *testing.T) {
	cs := models.ConstraintSet{ExcludePrincipal: true}
	assert.True(t, IsExcludedFromSubstitution(models.RolePrincipal, cs))
	assert.False(t, IsExcludedFromSubstitution(models.RoleVicePrincipal, cs))
	assert.False(t, IsExcludedFromSubstitution(models.RoleTeacher, cs))
	assert.False(t, IsExcludedFromSubstitution(models.RoleHeadOfWing, cs))
}
