package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VipuDevAI/parikshan-ops-api/internal/dto"
	"github.com/VipuDevAI/parikshan-ops-api/internal/middleware"
	"github.com/VipuDevAI/parikshan-ops-api/internal/models"
	appErrors "github.com/VipuDevAI/parikshan-ops-api/pkg/errors"
)

type leaveServiceMock struct {
	submitResp  *models.LeaveRequest
	submitErr   error
	approveResp *dto.LeaveDecisionResult
	approveErr  error
	rejectResp  *models.LeaveRequest
	rejectErr   error
	listResp    []models.LeaveRequest
	listErr     error
	lastQuery   dto.LeaveListQuery
	approveID   string
}

func (m *leaveServiceMock) Submit(ctx context.Context, req dto.SubmitLeaveRequest, claims *models.JWTClaims) (*models.LeaveRequest, error) {
	return m.submitResp, m.submitErr
}

func (m *leaveServiceMock) Approve(ctx context.Context, id string, claims *models.JWTClaims) (*dto.LeaveDecisionResult, error) {
	m.approveID = id
	return m.approveResp, m.approveErr
}

func (m *leaveServiceMock) Reject(ctx context.Context, id string, claims *models.JWTClaims) (*models.LeaveRequest, error) {
	return m.rejectResp, m.rejectErr
}

func (m *leaveServiceMock) List(ctx context.Context, query dto.LeaveListQuery, claims *models.JWTClaims) ([]models.LeaveRequest, error) {
	m.lastQuery = query
	return m.listResp, m.listErr
}

func principalContext(t *testing.T, w *httptest.ResponseRecorder, req *http.Request) *gin.Context {
	t.Helper()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "principal-1", SchoolID: "sch-1", Role: models.UserRolePrincipal})
	return c
}

func TestLeaveHandlerSubmit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &leaveServiceMock{submitResp: &models.LeaveRequest{ID: "leave-1", Status: models.LeavePending}}
	handler := NewLeaveHandler(mockSvc)

	payload, _ := json.Marshal(dto.SubmitLeaveRequest{TeacherID: "t-1", Date: "2026-09-01", LeaveType: "SICK"})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/leaves", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	c := principalContext(t, w, req)

	handler.Submit(c)
	require.Equal(t, http.StatusCreated, w.Code)
}

func TestLeaveHandlerSubmitInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewLeaveHandler(&leaveServiceMock{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/leaves", bytes.NewBufferString(`{"teacherId":`))
	req.Header.Set("Content-Type", "application/json")
	c := principalContext(t, w, req)

	handler.Submit(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLeaveHandlerApproveDeclinedGateIsOK(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &leaveServiceMock{approveResp: &dto.LeaveDecisionResult{
		Request: &models.LeaveRequest{ID: "leave-1", Status: models.LeavePending},
		Gate:    models.GateDecision{Approved: false, Reason: models.GateWingQuotaExceeded, ApprovedCount: 2, Quota: 2},
	}}
	handler := NewLeaveHandler(mockSvc)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/leaves/leave-1/approve", nil)
	c := principalContext(t, w, req)
	c.Params = gin.Params{{Key: "id", Value: "leave-1"}}

	handler.Approve(c)
	// Declined is a business outcome, not an HTTP error.
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "leave-1", mockSvc.approveID)
	assert.Contains(t, w.Body.String(), "WING_QUOTA_EXCEEDED")
}

func TestLeaveHandlerApproveNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &leaveServiceMock{approveErr: appErrors.ErrNotFound}
	handler := NewLeaveHandler(mockSvc)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/leaves/missing/approve", nil)
	c := principalContext(t, w, req)
	c.Params = gin.Params{{Key: "id", Value: "missing"}}

	handler.Approve(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestLeaveHandlerListPassesQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &leaveServiceMock{listResp: []models.LeaveRequest{{ID: "leave-1"}}}
	handler := NewLeaveHandler(mockSvc)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/leaves?wingId=w-1&date=2026-09-01&status=PENDING", nil)
	c := principalContext(t, w, req)

	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "w-1", mockSvc.lastQuery.WingID)
	assert.Equal(t, "2026-09-01", mockSvc.lastQuery.Date)
	assert.Equal(t, "PENDING", mockSvc.lastQuery.Status)
}
