package dto

import (
	"github.com/VipuDevAI/parikshan-ops-api/internal/models"
)

// SubmitLeaveRequest defines the payload for submitting a leave request.
// Date uses the YYYY-MM-DD wire format; the service parses it as a UTC day.
type SubmitLeaveRequest struct {
	TeacherID string `json:"teacherId" validate:"required"`
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	LeaveType string `json:"leaveType" validate:"required,oneof=SICK CASUAL EARNED DUTY"`
	Reason    string `json:"reason,omitempty" validate:"max=500"`
}

// LeaveDecisionResult is returned by approve: the gate decision plus, when
// the decision approved the leave and auto allocation ran, the run summary.
type LeaveDecisionResult struct {
	Request    *models.LeaveRequest `json:"request"`
	Gate       models.GateDecision  `json:"gate"`
	Allocation *AllocationSummary   `json:"allocation,omitempty"`
}

// LeaveListQuery captures query params for listing leave requests.
type LeaveListQuery struct {
	WingID string `form:"wingId"`
	Date   string `form:"date" validate:"omitempty,datetime=2006-01-02"`
	Status string `form:"status" validate:"omitempty,oneof=PENDING APPROVED REJECTED"`
}
