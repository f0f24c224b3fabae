package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/campusgrid/lms-dashboard-api/internal/dto"
	"github.com/campusgrid/lms-dashboard-api/internal/middleware"
	appErrors "github.com/campusgrid/lms-dashboard-api/pkg/errors"
	"github.com/campusgrid/lms-dashboard-api/pkg/response"
)

type activityLoader interface {
	Load(ctx context.Context, userID string) (*dto.ActivitiesSnapshot, bool, bool, error)
}

// ActivityHandler exposes the cross-course activity feed.
type ActivityHandler struct {
	activities activityLoader
}

// NewActivityHandler constructs ActivityHandler.
func NewActivityHandler(activities activityLoader) *ActivityHandler {
	return &ActivityHandler{activities: activities}
}

// List godoc
// @Summary Activities across all enrolled courses
// @Tags Activities
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /activities [get]
func (h *ActivityHandler) List(c *gin.Context) {
	claims := middleware.CurrentUser(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	snapshot, fromCache, refresh, err := h.activities.Load(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Snapshot(c, snapshot, fromCache, refresh)
}
