package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campushq/attendance-api/internal/rbac"
	appErrors "github.com/campushq/attendance-api/pkg/errors"
	"github.com/campushq/attendance-api/pkg/response"
)

// NavigationPayload is the client router bootstrap: the destinations the
// caller may open plus which dashboard composition to render first.
type NavigationPayload struct {
	Destinations     []rbac.NavItem        `json:"destinations"`
	DashboardVariant rbac.DashboardVariant `json:"dashboard_variant"`
}

// NavigationHandler serves the role-filtered navigation matrix.
type NavigationHandler struct{}

// NewNavigationHandler constructs a navigation handler.
func NewNavigationHandler() *NavigationHandler {
	return &NavigationHandler{}
}

// Get godoc
// @Summary Navigation destinations for the caller
// @Description Ordered destination list filtered by role, with the dashboard variant
// @Tags Navigation
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /navigation [get]
func (h *NavigationHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	payload := NavigationPayload{
		Destinations:     rbac.DestinationsFor(claims.Role),
		DashboardVariant: rbac.DashboardVariantFor(claims.Role),
	}
	response.JSON(c, http.StatusOK, payload, nil)
}
