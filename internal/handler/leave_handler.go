package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campushq/attendance-api/internal/models"
	"github.com/campushq/attendance-api/internal/service"
	appErrors "github.com/campushq/attendance-api/pkg/errors"
	"github.com/campushq/attendance-api/pkg/response"
)

// LeaveHandler handles leave request endpoints.
type LeaveHandler struct {
	service *service.LeaveService
}

// NewLeaveHandler constructs a leave handler.
func NewLeaveHandler(svc *service.LeaveService) *LeaveHandler {
	return &LeaveHandler{service: svc}
}

// Submit godoc
// @Summary Submit a leave request
// @Tags Leave
// @Accept json
// @Produce json
// @Param payload body service.SubmitLeaveRequest true "Leave payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /leave-requests [post]
func (h *LeaveHandler) Submit(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.SubmitLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid leave payload"))
		return
	}
	request, err := h.service.Submit(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, request)
}

// Mine godoc
// @Summary Own leave request history
// @Tags Leave
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /leave-requests/me [get]
func (h *LeaveHandler) Mine(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	requests, err := h.service.ListMine(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, requests, nil)
}

// Pending godoc
// @Summary Pending leave requests for review
// @Description Scoped to the reviewer's department when they have one
// @Tags Leave
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /leave-requests/pending [get]
func (h *LeaveHandler) Pending(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	requests, err := h.service.ListPending(c.Request.Context(), claims.DepartmentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, requests, nil)
}

// Approve godoc
// @Summary Approve a pending leave request
// @Tags Leave
// @Accept json
// @Produce json
// @Param id path int true "Leave request ID"
// @Param payload body service.ReviewLeaveRequest false "Optional comments"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /leave-requests/{id}/approve [post]
func (h *LeaveHandler) Approve(c *gin.Context) {
	h.review(c, models.LeaveApproved)
}

// Reject godoc
// @Summary Reject a pending leave request
// @Description Comments are mandatory on rejection
// @Tags Leave
// @Accept json
// @Produce json
// @Param id path int true "Leave request ID"
// @Param payload body service.ReviewLeaveRequest true "Comments"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /leave-requests/{id}/reject [post]
func (h *LeaveHandler) Reject(c *gin.Context) {
	h.review(c, models.LeaveRejected)
}

// Cancel godoc
// @Summary Cancel an own pending leave request
// @Tags Leave
// @Produce json
// @Param id path int true "Leave request ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /leave-requests/{id}/cancel [post]
func (h *LeaveHandler) Cancel(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	id, err := idParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	request, err := h.service.Cancel(c.Request.Context(), claims.UserID, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request, nil)
}

func (h *LeaveHandler) review(c *gin.Context, to models.LeaveStatus) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	id, err := idParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	// The body is optional on approval, so an empty body is tolerated.
	var req service.ReviewLeaveRequest
	if c.Request.Body != nil && c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid review payload"))
			return
		}
	}

	var request *models.LeaveRequestDetail
	switch to {
	case models.LeaveApproved:
		request, err = h.service.Approve(c.Request.Context(), claims, id, req)
	case models.LeaveRejected:
		request, err = h.service.Reject(c.Request.Context(), claims, id, req)
	default:
		err = appErrors.ErrInternal
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request, nil)
}
