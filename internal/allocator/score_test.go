package allocator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/VipuDevAI/parikshan-ops-api/internal/models"
)

func testConstraints() models.ConstraintSet {
	return models.ConstraintSet{
		MaxPeriodsPerTeacherPerDay:  6,
		MaxPeriodsPerTeacherPerWeek: 30,
		MaxConsecutiveSubstitutions: 3,
		MaxPeriodsForEligibility:    5,
	}
}

func testWeights() models.ScoringWeights {
	return models.ScoringWeights{
		Version:                 1,
		Base:                    100,
		SubjectMatch:            30,
		ClassFamiliarity:        20,
		PeriodGapPenaltyPerGap:  -15,
		SubstitutionLoadPenalty: -10,
		OverloadPenalty:         -50,
	}
}

func testDate() time.Time {
	return time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
}

func TestScoreSubjectMatchAndFamiliarity(t *testing.T) {
	snap := NewSnapshot(map[string]TeacherState{
		"t-x": {},
		"t-y": {
			Substitutions: []Commitment{{Period: 3, SectionID: "sec-9"}},
		},
	}, nil)

	vacancy := Vacancy{
		Date:        testDate(),
		PeriodIndex: 5,
		SectionID:   "sec-1",
		SubjectID:   "math",
	}

	x := Candidate{
		TeacherID:       "t-x",
		PrimarySubjects: map[string]bool{"math": true},
		SectionsTaught:  map[string]bool{"sec-1": true},
	}
	y := Candidate{
		TeacherID:       "t-y",
		PrimarySubjects: map[string]bool{},
		SectionsTaught:  map[string]bool{},
	}

	assert.Equal(t, 150, Score(x, vacancy, testWeights(), testConstraints(), snap))
	// base 100, gap of 2 periods (-30), one existing substitution (-10)
	assert.Equal(t, 60, Score(y, vacancy, testWeights(), testConstraints(), snap))
}

func TestScoreOverloadPenalty(t *testing.T) {
	snap := NewSnapshot(map[string]TeacherState{
		"t-1": {Regular: []Commitment{
			{Period: 1, SectionID: "a"},
			{Period: 2, SectionID: "b"},
			{Period: 3, SectionID: "c"},
			{Period: 4, SectionID: "d"},
			{Period: 6, SectionID: "e"},
		}},
	}, nil)

	vacancy := Vacancy{PeriodIndex: 5, SectionID: "sec-1", SubjectID: "math"}
	c := Candidate{TeacherID: "t-1"}

	// 5 periods today >= maxPerDay-1 triggers the overload term.
	assert.Equal(t, 50, Score(c, vacancy, testWeights(), testConstraints(), snap))
}

func TestScoreFirstAssignmentHasNoGapPenalty(t *testing.T) {
	snap := NewSnapshot(map[string]TeacherState{"t-1": {}}, nil)
	c := Candidate{TeacherID: "t-1"}
	vacancy := Vacancy{PeriodIndex: 7, SectionID: "sec-1"}

	assert.Equal(t, 100, Score(c, vacancy, testWeights(), testConstraints(), snap))
}

func TestBetterTieBreaks(t *testing.T) {
	a := scored{Candidate: Candidate{TeacherID: "t-b"}, Score: 90, SubsToday: 0}
	b := scored{Candidate: Candidate{TeacherID: "t-a"}, Score: 90, SubsToday: 1}
	assert.True(t, better(a, b), "fewer substitutions today wins the tie")

	c := scored{Candidate: Candidate{TeacherID: "t-a"}, Score: 90, SubsToday: 0}
	assert.True(t, better(c, a), "lower teacher id breaks the remaining tie")

	d := scored{Candidate: Candidate{TeacherID: "t-z"}, Score: 91, SubsToday: 5}
	assert.True(t, better(d, c), "score dominates both tie-break keys")
}
