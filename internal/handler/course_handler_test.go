package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/campusgrid/lms-dashboard-api/internal/dto"
	"github.com/campusgrid/lms-dashboard-api/internal/models"
	"github.com/campusgrid/lms-dashboard-api/internal/service"
	appErrors "github.com/campusgrid/lms-dashboard-api/pkg/errors"
)

type fakeCourseLoader struct {
	list     *dto.CoursesSnapshot
	detail   *dto.CourseDetailSnapshot
	hit      bool
	refresh  bool
	err      error
	lastID   string
	lastUser string
}

func (f *fakeCourseLoader) Load(_ context.Context, userID string) (*dto.CoursesSnapshot, bool, bool, error) {
	f.lastUser = userID
	return f.list, f.hit, f.refresh, f.err
}

func (f *fakeCourseLoader) LoadDetail(_ context.Context, userID, courseID string) (*dto.CourseDetailSnapshot, bool, bool, error) {
	f.lastUser = userID
	f.lastID = courseID
	return f.detail, f.hit, f.refresh, f.err
}

type fakeExporter struct {
	report *service.Report
	err    error
	format string
}

func (f *fakeExporter) CourseProgress(_ context.Context, courseID, format string) (*service.Report, error) {
	f.format = format
	return f.report, f.err
}

func TestCourseHandlerList(t *testing.T) {
	loader := &fakeCourseLoader{
		list: &dto.CoursesSnapshot{UserID: "42", Courses: []models.Course{{ID: "7"}}},
		hit:  true, refresh: true,
	}
	handler := NewCourseHandler(loader, &fakeExporter{})

	rec := httptest.NewRecorder()
	c := authedContext(t, rec, "/courses", &models.JWTClaims{UserID: "42"})

	handler.List(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "42", loader.lastUser)
	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, "hit", envelope.Meta["cache"])
}

func TestCourseHandlerDetailPassesParam(t *testing.T) {
	loader := &fakeCourseLoader{detail: &dto.CourseDetailSnapshot{Course: models.Course{ID: "7"}}}
	handler := NewCourseHandler(loader, &fakeExporter{})

	rec := httptest.NewRecorder()
	c := authedContext(t, rec, "/courses/7", &models.JWTClaims{UserID: "42"})
	c.Params = gin.Params{{Key: "id", Value: "7"}}

	handler.Get(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "7", loader.lastID)
}

func TestCourseHandlerDetailNotFound(t *testing.T) {
	loader := &fakeCourseLoader{err: appErrors.ErrNotFound}
	handler := NewCourseHandler(loader, &fakeExporter{})

	rec := httptest.NewRecorder()
	c := authedContext(t, rec, "/courses/999", &models.JWTClaims{UserID: "42"})
	c.Params = gin.Params{{Key: "id", Value: "999"}}

	handler.Get(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCourseHandlerExportServesAttachment(t *testing.T) {
	exporter := &fakeExporter{report: &service.Report{
		Body:        []byte("Username\n"),
		ContentType: "text/csv",
		Filename:    "course-7-progress.csv",
	}}
	handler := NewCourseHandler(&fakeCourseLoader{}, exporter)

	rec := httptest.NewRecorder()
	c := authedContext(t, rec, "/courses/7/progress/export?format=csv", &models.JWTClaims{UserID: "1", Role: models.RoleTeacher})
	c.Params = gin.Params{{Key: "id", Value: "7"}}

	handler.ExportProgress(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "csv", exporter.format)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "course-7-progress.csv")
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
}

func TestCourseHandlerExportBadFormat(t *testing.T) {
	exporter := &fakeExporter{err: appErrors.Clone(appErrors.ErrValidation, "unsupported export format")}
	handler := NewCourseHandler(&fakeCourseLoader{}, exporter)

	rec := httptest.NewRecorder()
	c := authedContext(t, rec, "/courses/7/progress/export?format=xlsx", &models.JWTClaims{UserID: "1", Role: models.RoleAdmin})
	c.Params = gin.Params{{Key: "id", Value: "7"}}

	handler.ExportProgress(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
