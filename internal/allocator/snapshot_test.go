package allocator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSnapshotSeedsCounters(t *testing.T) {
	snap := NewSnapshot(map[string]TeacherState{
		"t-1": {
			Regular:            []Commitment{{Period: 1, SectionID: "a"}, {Period: 2, SectionID: "b"}},
			RegularPeriodsWeek: 12,
			Substitutions:      []Commitment{{Period: 4, SectionID: "c"}},
			WeekSubstitutions:  2,
		},
	}, nil)

	assert.Equal(t, 3, snap.PeriodsToday("t-1"))
	assert.Equal(t, 15, snap.PeriodsWeek("t-1"))
	assert.Equal(t, 1, snap.SubstitutionsToday("t-1"))
	assert.Equal(t, 4, snap.LastSubstitutionPeriod("t-1"))
	assert.True(t, snap.Busy("t-1", 2, false))
	assert.False(t, snap.Busy("t-1", 3, false))
}

func TestSnapshotCommitUpdatesState(t *testing.T) {
	snap := NewSnapshot(map[string]TeacherState{"t-1": {}}, nil)

	a := Assignment{
		Vacancy:             Vacancy{PeriodIndex: 5, SectionID: "sec-1", Room: "R101"},
		SubstituteTeacherID: "t-1",
		Score:               120,
	}
	snap.Commit(a)

	owner, ok := snap.AssignedTo(5, "sec-1")
	assert.True(t, ok)
	assert.Equal(t, "t-1", owner)
	assert.True(t, snap.Busy("t-1", 5, false))
	assert.Equal(t, 1, snap.SubstitutionsToday("t-1"))
	assert.Equal(t, 5, snap.LastSubstitutionPeriod("t-1"))
	assert.Equal(t, 1, snap.PeriodsToday("t-1"))
	assert.Equal(t, 1, snap.PeriodsWeek("t-1"))
}

func TestSnapshotConsecutiveRun(t *testing.T) {
	snap := NewSnapshot(map[string]TeacherState{
		"t-1": {Substitutions: []Commitment{
			{Period: 2, SectionID: "a"},
			{Period: 3, SectionID: "b"},
			{Period: 5, SectionID: "c"},
		}},
	}, nil)

	// Taking period 4 bridges both runs: 2,3,[4],5.
	assert.Equal(t, 4, snap.ConsecutiveRunWith("t-1", 4))
	assert.Equal(t, 3, snap.ConsecutiveRunWith("t-1", 1))
	assert.Equal(t, 2, snap.ConsecutiveRunWith("t-1", 6))
	assert.Equal(t, 1, snap.ConsecutiveRunWith("t-unknown", 4))
}

func TestSnapshotCommitForUnknownTeacher(t *testing.T) {
	snap := NewSnapshot(map[string]TeacherState{}, nil)
	snap.Commit(Assignment{
		Vacancy:             Vacancy{PeriodIndex: 1, SectionID: "sec-1"},
		SubstituteTeacherID: "t-new",
	})
	assert.Equal(t, 1, snap.SubstitutionsToday("t-new"))
}
