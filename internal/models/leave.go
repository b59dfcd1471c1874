package models

import "time"

// LeaveStatus enumerates the leave request lifecycle.
//
// The only legal transitions are PENDING -> APPROVED and PENDING -> REJECTED;
// both are terminal. A quota rejection does NOT transition the request; it
// stays PENDING for a human approver.
type LeaveStatus string

const (
	LeavePending  LeaveStatus = "PENDING"
	LeaveApproved LeaveStatus = "APPROVED"
	LeaveRejected LeaveStatus = "REJECTED"
)

// LeaveRequest is a teacher's request to be absent on a date.
type LeaveRequest struct {
	ID          string      `db:"id" json:"id"`
	SchoolID    string      `db:"school_id" json:"school_id"`
	TeacherID   string      `db:"teacher_id" json:"teacher_id"`
	WingID      string      `db:"wing_id" json:"wing_id"`
	Date        time.Time   `db:"date" json:"date"`
	LeaveType   string      `db:"leave_type" json:"leave_type"`
	Reason      *string     `db:"reason" json:"reason,omitempty"`
	Status      LeaveStatus `db:"status" json:"status"`
	SubmittedAt time.Time   `db:"submitted_at" json:"submitted_at"`
	DecidedAt   *time.Time  `db:"decided_at" json:"decided_at,omitempty"`
	DecidedBy   *string     `db:"decided_by" json:"decided_by,omitempty"`
}

// GateReason explains why the capacity gate declined to approve.
type GateReason string

const (
	// GateWingQuotaExceeded: the wing already has max_leave_per_day approved
	// leaves for the date.
	GateWingQuotaExceeded GateReason = "WING_QUOTA_EXCEEDED"
	// GateEarlierRequestPending: remaining capacity is claimed by pending
	// requests submitted earlier; first-come-first-served ordering requires
	// those to be decided first.
	GateEarlierRequestPending GateReason = "EARLIER_REQUEST_PENDING"
)

// GateDecision is the value result of a capacity gate evaluation. A declined
// decision is an expected business outcome, not an error.
type GateDecision struct {
	Approved      bool       `json:"approved"`
	Reason        GateReason `json:"reason,omitempty"`
	ApprovedCount int        `json:"approved_count"`
	Quota         int        `json:"quota"`
}

// LeaveFilter describes query params for listing leave requests.
type LeaveFilter struct {
	SchoolID string
	WingID   string
	Date     *time.Time
	Status   LeaveStatus
}
