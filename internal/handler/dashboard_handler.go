package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/campusgrid/lms-dashboard-api/internal/dto"
	"github.com/campusgrid/lms-dashboard-api/internal/middleware"
	appErrors "github.com/campusgrid/lms-dashboard-api/pkg/errors"
	"github.com/campusgrid/lms-dashboard-api/pkg/response"
)

type dashboardLoader interface {
	Load(ctx context.Context, userID, username string) (*dto.DashboardSnapshot, bool, bool, error)
}

// DashboardHandler exposes the landing bundle.
type DashboardHandler struct {
	dashboard dashboardLoader
}

// NewDashboardHandler constructs DashboardHandler.
func NewDashboardHandler(dashboard dashboardLoader) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// Get godoc
// @Summary Role-gated dashboard bundle
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /dashboard [get]
func (h *DashboardHandler) Get(c *gin.Context) {
	claims := middleware.CurrentUser(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	snapshot, fromCache, refresh, err := h.dashboard.Load(c.Request.Context(), claims.UserID, claims.Username)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Snapshot(c, snapshot, fromCache, refresh)
}
