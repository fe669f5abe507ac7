package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campushq/attendance-api/internal/models"
	appErrors "github.com/campushq/attendance-api/pkg/errors"
	"github.com/campushq/attendance-api/pkg/response"
)

type dashboardService interface {
	For(ctx context.Context, claims *models.JWTClaims) (*models.DashboardPayload, bool, error)
}

// DashboardHandler serves the role-specific dashboard composition.
type DashboardHandler struct {
	service dashboardService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service dashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Get godoc
// @Summary Role-specific dashboard
// @Description The payload variant follows the caller's role
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /dashboard [get]
func (h *DashboardHandler) Get(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	payload, cached, err := h.service.For(c.Request.Context(), claims)
	if err != nil {
		response.Error(c, err)
		return
	}

	meta := map[string]interface{}{"cache": cached}
	response.JSON(c, http.StatusOK, payload, nil, meta)
}
