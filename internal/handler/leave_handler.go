package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/VipuDevAI/parikshan-ops-api/internal/dto"
	"github.com/VipuDevAI/parikshan-ops-api/internal/models"
	appErrors "github.com/VipuDevAI/parikshan-ops-api/pkg/errors"
	"github.com/VipuDevAI/parikshan-ops-api/pkg/response"
)

type leaveService interface {
	Submit(ctx context.Context, req dto.SubmitLeaveRequest, claims *models.JWTClaims) (*models.LeaveRequest, error)
	Approve(ctx context.Context, id string, claims *models.JWTClaims) (*dto.LeaveDecisionResult, error)
	Reject(ctx context.Context, id string, claims *models.JWTClaims) (*models.LeaveRequest, error)
	List(ctx context.Context, query dto.LeaveListQuery, claims *models.JWTClaims) ([]models.LeaveRequest, error)
}

// LeaveHandler exposes the leave request lifecycle endpoints.
type LeaveHandler struct {
	service leaveService
}

// NewLeaveHandler builds a new handler.
func NewLeaveHandler(service leaveService) *LeaveHandler {
	return &LeaveHandler{service: service}
}

// Submit godoc
// @Summary Submit a leave request
// @Tags Leaves
// @Accept json
// @Produce json
// @Param payload body dto.SubmitLeaveRequest true "Leave payload"
// @Success 201 {object} response.Envelope
// @Router /leaves [post]
func (h *LeaveHandler) Submit(c *gin.Context) {
	claims := claimsFromContext(c)
	var req dto.SubmitLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid leave payload"))
		return
	}
	leave, err := h.service.Submit(c.Request.Context(), req, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, leave)
}

// Approve godoc
// @Summary Approve a leave request through the capacity gate
// @Description A declined gate decision returns 200 with the reason; the request stays PENDING.
// @Tags Leaves
// @Produce json
// @Param id path string true "Leave request ID"
// @Success 200 {object} response.Envelope
// @Router /leaves/{id}/approve [post]
func (h *LeaveHandler) Approve(c *gin.Context) {
	claims := claimsFromContext(c)
	result, err := h.service.Approve(c.Request.Context(), c.Param("id"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Reject godoc
// @Summary Reject a leave request
// @Tags Leaves
// @Produce json
// @Param id path string true "Leave request ID"
// @Success 200 {object} response.Envelope
// @Router /leaves/{id}/reject [post]
func (h *LeaveHandler) Reject(c *gin.Context) {
	claims := claimsFromContext(c)
	leave, err := h.service.Reject(c.Request.Context(), c.Param("id"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, leave, nil)
}

// List godoc
// @Summary List leave requests
// @Tags Leaves
// @Produce json
// @Param wingId query string false "Wing filter"
// @Param date query string false "Date (YYYY-MM-DD)"
// @Param status query string false "Status filter"
// @Success 200 {object} response.Envelope
// @Router /leaves [get]
func (h *LeaveHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	var query dto.LeaveListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid leave query"))
		return
	}
	leaves, err := h.service.List(c.Request.Context(), query, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, leaves, nil)
}
