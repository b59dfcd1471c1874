// Package allocator implements the substitute-teacher assignment engine:
// eligibility filtering, candidate scoring and deterministic batch
// allocation over an in-run ledger snapshot. The package is pure (no I/O,
// no clocks, no globals), so runs are reproducible and testable as data.
package allocator

import (
	"time"

	"github.com/VipuDevAI/parikshan-ops-api/internal/models"
)

// Vacancy is a (date, period, section) slot left uncovered by an approved
// leave. Derived on demand from the timetable and the leave request, never
// persisted standalone.
type Vacancy struct {
	Date              time.Time
	PeriodIndex       int
	SectionID         string
	WingID            string
	Room              string
	OriginalTeacherID string
	SubjectID         string
	LeaveRequestID    string

	// WingPriorityOverride relaxes cross-wing eligibility for this vacancy's
	// wing (see filter rule on cross-wing candidates).
	WingPriorityOverride bool
}

// Candidate carries the structural facts about a teacher that do not change
// during a run. Load counters live in the Snapshot, which the allocator
// updates as it commits.
type Candidate struct {
	TeacherID        string
	Role             models.TeacherRole
	WingID           string
	CrossWingAllowed bool
	SubjectsTaught   map[string]bool
	PrimarySubjects  map[string]bool
	SectionsTaught   map[string]bool
}

// Assignment is a committed allocation decision. Score and WeightsVersion are
// copies of the inputs used, so the decision stays auditable after the
// tenant's configuration changes.
type Assignment struct {
	Vacancy
	SubstituteTeacherID string
	Score               int
	WeightsVersion      int
}

// UnfilledReason explains why a vacancy stayed open. An unfilled vacancy is a
// valid terminal outcome, not a fault.
type UnfilledReason string

const (
	ReasonNoEligibleCandidate UnfilledReason = "NO_ELIGIBLE_CANDIDATE"
	ReasonCommitConflict      UnfilledReason = "COMMIT_CONFLICT"
)

// Unfilled pairs a vacancy with the reason it could not be assigned.
type Unfilled struct {
	Vacancy
	Reason UnfilledReason
}

// Result is the outcome of one allocation run.
type Result struct {
	Committed []Assignment
	Unfilled  []Unfilled
	// Skipped lists vacancies that already had a ledger assignment, so a
	// re-run over a committed batch produces zero new writes.
	Skipped []Vacancy
}

// Input bundles everything one allocation run reads.
type Input struct {
	Vacancies   []Vacancy
	Candidates  []Candidate
	Constraints models.ConstraintSet
	Weights     models.ScoringWeights
	Snapshot    *Snapshot
}
