package models

import "time"

// Substitution is one committed row of the assignment ledger: a substitute
// covering a (date, period, section) slot left vacant by an approved leave.
//
// Rows are append-only. Score and WeightsVersion are copies taken at commit
// time so later configuration changes never rewrite history. The only mutable
// field is IsNotified.
type Substitution struct {
	ID                  string    `db:"id" json:"id"`
	SchoolID            string    `db:"school_id" json:"school_id"`
	Date                time.Time `db:"date" json:"date"`
	PeriodIndex         int       `db:"period_index" json:"period_index"`
	SectionID           string    `db:"section_id" json:"section_id"`
	OriginalTeacherID   string    `db:"original_teacher_id" json:"original_teacher_id"`
	SubstituteTeacherID string    `db:"substitute_teacher_id" json:"substitute_teacher_id"`
	SubjectID           string    `db:"subject_id" json:"subject_id"`
	LeaveRequestID      string    `db:"leave_request_id" json:"leave_request_id"`
	Score               int       `db:"score" json:"score"`
	WeightsVersion      int       `db:"weights_version" json:"weights_version"`
	IsNotified          bool      `db:"is_notified" json:"is_notified"`
	CreatedAt           time.Time `db:"created_at" json:"created_at"`
}

// UnfilledVacancy records a vacancy the allocator could not legally fill.
// Surfaced to humans; replaced on every re-run for the same leave request.
type UnfilledVacancy struct {
	ID                string    `db:"id" json:"id"`
	SchoolID          string    `db:"school_id" json:"school_id"`
	Date              time.Time `db:"date" json:"date"`
	PeriodIndex       int       `db:"period_index" json:"period_index"`
	SectionID         string    `db:"section_id" json:"section_id"`
	OriginalTeacherID string    `db:"original_teacher_id" json:"original_teacher_id"`
	SubjectID         string    `db:"subject_id" json:"subject_id"`
	LeaveRequestID    string    `db:"leave_request_id" json:"leave_request_id"`
	Reason            string    `db:"reason" json:"reason"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
}
