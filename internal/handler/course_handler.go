package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusgrid/lms-dashboard-api/internal/dto"
	"github.com/campusgrid/lms-dashboard-api/internal/middleware"
	"github.com/campusgrid/lms-dashboard-api/internal/service"
	appErrors "github.com/campusgrid/lms-dashboard-api/pkg/errors"
	"github.com/campusgrid/lms-dashboard-api/pkg/response"
)

type courseLoader interface {
	Load(ctx context.Context, userID string) (*dto.CoursesSnapshot, bool, bool, error)
	LoadDetail(ctx context.Context, userID, courseID string) (*dto.CourseDetailSnapshot, bool, bool, error)
}

type progressExporter interface {
	CourseProgress(ctx context.Context, courseID, format string) (*service.Report, error)
}

// CourseHandler exposes course endpoints.
type CourseHandler struct {
	courses courseLoader
	exports progressExporter
}

// NewCourseHandler constructs CourseHandler.
func NewCourseHandler(courses courseLoader, exports progressExporter) *CourseHandler {
	return &CourseHandler{courses: courses, exports: exports}
}

// List godoc
// @Summary Enrolled courses for the current user
// @Tags Courses
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /courses [get]
func (h *CourseHandler) List(c *gin.Context) {
	claims := middleware.CurrentUser(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	snapshot, fromCache, refresh, err := h.courses.Load(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Snapshot(c, snapshot, fromCache, refresh)
}

// Get godoc
// @Summary Course detail with lessons, grades and completion
// @Tags Courses
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{id} [get]
func (h *CourseHandler) Get(c *gin.Context) {
	claims := middleware.CurrentUser(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	snapshot, fromCache, refresh, err := h.courses.LoadDetail(c.Request.Context(), claims.UserID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Snapshot(c, snapshot, fromCache, refresh)
}

// ExportProgress godoc
// @Summary Download the per-student progress report for a course
// @Tags Courses
// @Produce text/csv
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} binary
// @Router /courses/{id}/progress/export [get]
func (h *CourseHandler) ExportProgress(c *gin.Context) {
	report, err := h.exports.CourseProgress(c.Request.Context(), c.Param("id"), c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+report.Filename)
	c.Data(http.StatusOK, report.ContentType, report.Body)
}
