package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campusgrid/lms-dashboard-api/internal/lms"
	"github.com/campusgrid/lms-dashboard-api/internal/models"
	"github.com/campusgrid/lms-dashboard-api/pkg/batch"
	"github.com/campusgrid/lms-dashboard-api/pkg/config"
	appErrors "github.com/campusgrid/lms-dashboard-api/pkg/errors"
)

type fakeExportSource struct {
	course    []models.Course
	groups    []models.Group
	members   map[string][]string
	records   map[string]*models.UserRecord
	completed map[string]bool
}

func (f *fakeExportSource) CoursesByField(ctx context.Context, field, value string) ([]models.Course, error) {
	return f.course, nil
}

func (f *fakeExportSource) CourseGroups(ctx context.Context, courseID string) ([]models.Group, error) {
	return f.groups, nil
}

func (f *fakeExportSource) GroupMembers(ctx context.Context, groupID string) ([]string, error) {
	return f.members[groupID], nil
}

func (f *fakeExportSource) UserByID(ctx context.Context, id string) (*models.UserRecord, error) {
	record, ok := f.records[id]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
	}
	return record, nil
}

func (f *fakeExportSource) CompletionStatus(ctx context.Context, courseID, userID string) (bool, error) {
	return f.completed[userID], nil
}

func exportFixture() *fakeExportSource {
	return &fakeExportSource{
		course: []models.Course{{ID: "7", FullName: "Algebra"}},
		groups: []models.Group{
			{ID: "g1", Name: "Group A"},
			{ID: "g2", Name: "Group B"},
		},
		members: map[string][]string{
			"g1": {"42", "43"},
			"g2": {"42"},
		},
		records: map[string]*models.UserRecord{
			"42": {ID: "42", Username: "jdoe", FullName: "Jane Doe", Email: "jdoe@example.edu",
				LastAccess: time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)},
			"43": {ID: "43", Username: "bsmith", FullName: "Bob Smith", Email: "bsmith@example.edu"},
		},
		completed: map[string]bool{"42": true},
	}
}

func TestExportServiceCSVReport(t *testing.T) {
	svc := NewExportService(ExportServiceParams{Source: exportFixture(), Logger: zap.NewNop()})

	report, err := svc.CourseProgress(context.Background(), "7", "csv")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", report.ContentType)
	assert.Equal(t, "course-7-progress.csv", report.Filename)

	body := string(report.Body)
	lines := strings.Split(strings.TrimSpace(body), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "Username")
	assert.Contains(t, body, "jdoe,Jane Doe,jdoe@example.edu,Group A,yes,2026-08-30")
	assert.Contains(t, body, "bsmith,Bob Smith,bsmith@example.edu,Group A,no,never")
	// Duplicate membership does not duplicate the row.
	assert.Equal(t, 1, strings.Count(body, "jdoe,"))
}

func TestExportServicePDFReport(t *testing.T) {
	svc := NewExportService(ExportServiceParams{Source: exportFixture(), Logger: zap.NewNop()})

	report, err := svc.CourseProgress(context.Background(), "7", "pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", report.ContentType)
	assert.True(t, strings.HasPrefix(string(report.Body), "%PDF"))
}

func TestExportServiceUnknownFormat(t *testing.T) {
	svc := NewExportService(ExportServiceParams{Source: exportFixture(), Logger: zap.NewNop()})

	_, err := svc.CourseProgress(context.Background(), "7", "xlsx")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestExportServiceSkipsUnresolvableMembers(t *testing.T) {
	source := exportFixture()
	delete(source.records, "43")
	svc := NewExportService(ExportServiceParams{Source: source, Logger: zap.NewNop()})

	report, err := svc.CourseProgress(context.Background(), "7", "csv")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(report.Body)), "\n")
	require.Len(t, lines, 2)
}

func TestExportServiceUnknownCourse(t *testing.T) {
	svc := NewExportService(ExportServiceParams{Source: &fakeExportSource{}, Logger: zap.NewNop()})

	_, err := svc.CourseProgress(context.Background(), "999", "csv")
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", appErrors.FromError(err).Code)
}

// Drives the full outbound path (real client, queue, gateway) so the report
// is built from the membership procedure rather than the group listing,
// which never carries members.
func TestExportServiceResolvesMembersThroughGateway(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		w.Header().Set("Content-Type", "application/json")
		switch r.FormValue("wsfunction") {
		case "core_course_get_courses_by_field":
			w.Write([]byte(`{"courses":[{"id":7,"shortname":"alg","fullname":"Algebra"}]}`))
		case "core_group_get_course_groups":
			w.Write([]byte(`[{"id":1,"courseid":7,"name":"Group A"}]`))
		case "core_group_get_group_members":
			assert.Equal(t, "1", r.FormValue("groupids[0]"))
			w.Write([]byte(`[{"groupid":1,"userids":[42]}]`))
		case "core_user_get_users_by_field":
			assert.Equal(t, "42", r.FormValue("values[0]"))
			w.Write([]byte(`[{"id":42,"username":"jdoe","email":"jdoe@example.edu","fullname":"Jane Doe","lastaccess":0}]`))
		case "core_completion_get_course_completion_status":
			w.Write([]byte(`{"completionstatus":{"completed":true}}`))
		default:
			t.Errorf("unexpected wsfunction %q", r.FormValue("wsfunction"))
			w.Write([]byte(`{}`))
		}
	}))
	defer server.Close()

	client := lms.NewClient(config.LMSConfig{BaseURL: server.URL, Token: "token", Timeout: time.Second}, zap.NewNop())
	gateway := NewGateway(client, batch.NewQueue(batch.QueueConfig{}))
	svc := NewExportService(ExportServiceParams{
		Source: CourseSources{Primary: gateway, Fanout: gateway},
		Logger: zap.NewNop(),
	})

	report, err := svc.CourseProgress(context.Background(), "7", "csv")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(report.Body)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "jdoe,Jane Doe,jdoe@example.edu,Group A,yes,never")
}
