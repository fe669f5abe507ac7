package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campushq/attendance-api/internal/service"
	appErrors "github.com/campushq/attendance-api/pkg/errors"
	"github.com/campushq/attendance-api/pkg/response"
)

// MajorHandler handles major configuration endpoints.
type MajorHandler struct {
	service *service.MajorService
}

// NewMajorHandler constructs a major handler.
func NewMajorHandler(svc *service.MajorService) *MajorHandler {
	return &MajorHandler{service: svc}
}

// List godoc
// @Summary List majors with their department
// @Tags Majors
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /majors [get]
func (h *MajorHandler) List(c *gin.Context) {
	majors, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, majors, nil)
}

// Get godoc
// @Summary Get major by id
// @Tags Majors
// @Produce json
// @Param id path int true "Major ID"
// @Success 200 {object} response.Envelope
// @Router /majors/{id} [get]
func (h *MajorHandler) Get(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	major, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, major, nil)
}

// Create godoc
// @Summary Create major
// @Tags Majors
// @Accept json
// @Produce json
// @Param payload body service.MajorRequest true "Major payload"
// @Success 201 {object} response.Envelope
// @Router /majors [post]
func (h *MajorHandler) Create(c *gin.Context) {
	var req service.MajorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid major payload"))
		return
	}
	major, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, major)
}

// Update godoc
// @Summary Update major
// @Tags Majors
// @Accept json
// @Produce json
// @Param id path int true "Major ID"
// @Param payload body service.MajorRequest true "Major payload"
// @Success 200 {object} response.Envelope
// @Router /majors/{id} [put]
func (h *MajorHandler) Update(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.MajorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid major payload"))
		return
	}
	major, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, major, nil)
}

// Delete godoc
// @Summary Delete major
// @Description Fails with 412 while the major still has classes
// @Tags Majors
// @Produce json
// @Param id path int true "Major ID"
// @Success 204 "No Content"
// @Failure 412 {object} response.Envelope
// @Router /majors/{id} [delete]
func (h *MajorHandler) Delete(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
