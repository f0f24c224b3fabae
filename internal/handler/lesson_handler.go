package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/campusgrid/lms-dashboard-api/internal/dto"
	"github.com/campusgrid/lms-dashboard-api/internal/middleware"
	appErrors "github.com/campusgrid/lms-dashboard-api/pkg/errors"
	"github.com/campusgrid/lms-dashboard-api/pkg/response"
)

type lessonLoader interface {
	Load(ctx context.Context, userID, courseID string) (*dto.LessonsSnapshot, bool, bool, error)
	LoadActivities(ctx context.Context, userID, courseID, lessonID string) (*dto.ActivitiesSnapshot, bool, bool, error)
}

// LessonHandler exposes lesson endpoints.
type LessonHandler struct {
	lessons lessonLoader
}

// NewLessonHandler constructs LessonHandler.
func NewLessonHandler(lessons lessonLoader) *LessonHandler {
	return &LessonHandler{lessons: lessons}
}

// List godoc
// @Summary Lessons of a course
// @Tags Lessons
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{id}/lessons [get]
func (h *LessonHandler) List(c *gin.Context) {
	claims := middleware.CurrentUser(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	snapshot, fromCache, refresh, err := h.lessons.Load(c.Request.Context(), claims.UserID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Snapshot(c, snapshot, fromCache, refresh)
}

// Activities godoc
// @Summary Activities of one lesson
// @Tags Lessons
// @Produce json
// @Security BearerAuth
// @Param id path string true "Lesson ID"
// @Param courseId query string true "Course ID the lesson belongs to"
// @Success 200 {object} response.Envelope
// @Router /lessons/{id}/activities [get]
func (h *LessonHandler) Activities(c *gin.Context) {
	claims := middleware.CurrentUser(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	courseID := c.Query("courseId")
	if courseID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "courseId query parameter is required"))
		return
	}
	snapshot, fromCache, refresh, err := h.lessons.LoadActivities(c.Request.Context(), claims.UserID, courseID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Snapshot(c, snapshot, fromCache, refresh)
}
