package models

import "time"

// ConstraintSet holds a school's hard scheduling constraints. Read-only input
// to the eligibility filter and allocator; fetched fresh per run, never a
// process-wide singleton.
type ConstraintSet struct {
	MaxPeriodsPerTeacherPerDay  int  `db:"max_periods_per_day" json:"max_periods_per_day"`
	MaxPeriodsPerTeacherPerWeek int  `db:"max_periods_per_week" json:"max_periods_per_week"`
	MaxConsecutiveSubstitutions int  `db:"max_consecutive_substitutions" json:"max_consecutive_substitutions"`
	MaxPeriodsForEligibility    int  `db:"max_periods_for_eligibility" json:"max_periods_for_eligibility"`
	AvoidBackToBack             bool `db:"avoid_back_to_back" json:"avoid_back_to_back"`
	ExcludeVicePrincipal        bool `db:"exclude_vice_principal" json:"exclude_vice_principal"`
	ExcludePrincipal            bool `db:"exclude_principal" json:"exclude_principal"`
	EnforceRoomConflicts        bool `db:"enforce_room_conflicts" json:"enforce_room_conflicts"`
}

// ScoringWeights are the tunable terms of the candidate scoring formula.
// Penalty weights are configured as non-positive integers; the formula only
// sums configured values and never assumes their sign.
type ScoringWeights struct {
	Version                  int `db:"weights_version" json:"version"`
	Base                     int `db:"weight_base" json:"base"`
	SubjectMatch             int `db:"weight_subject_match" json:"subject_match"`
	ClassFamiliarity         int `db:"weight_class_familiarity" json:"class_familiarity"`
	PeriodGapPenaltyPerGap   int `db:"weight_period_gap_penalty" json:"period_gap_penalty_per_gap"`
	SubstitutionLoadPenalty  int `db:"weight_substitution_load_penalty" json:"substitution_load_penalty_per_existing"`
	OverloadPenalty          int `db:"weight_overload_penalty" json:"overload_penalty"`
}

// SchoolConfig bundles a tenant's constraint set and scoring weights.
type SchoolConfig struct {
	SchoolID    string         `json:"school_id"`
	Constraints ConstraintSet  `json:"constraints"`
	Weights     ScoringWeights `json:"weights"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// Validate reports whether the configuration is usable by an allocation run.
// A failing config aborts the whole run before any commit.
func (c *SchoolConfig) Validate() error {
	if c == nil {
		return errMissingConfig
	}
	cs := c.Constraints
	if cs.MaxPeriodsPerTeacherPerDay <= 0 ||
		cs.MaxPeriodsPerTeacherPerWeek <= 0 ||
		cs.MaxPeriodsForEligibility <= 0 {
		return errMalformedConstraints
	}
	if cs.MaxConsecutiveSubstitutions < 0 {
		return errMalformedConstraints
	}
	if c.Weights.Version <= 0 {
		return errMalformedWeights
	}
	return nil
}

type configError string

func (e configError) Error() string { return string(e) }

const (
	errMissingConfig        = configError("school configuration missing")
	errMalformedConstraints = configError("constraint set malformed: load caps must be positive")
	errMalformedWeights     = configError("scoring weights malformed: version must be positive")
)
