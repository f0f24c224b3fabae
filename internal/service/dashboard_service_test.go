package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campusgrid/lms-dashboard-api/internal/cache"
	"github.com/campusgrid/lms-dashboard-api/internal/models"
	appErrors "github.com/campusgrid/lms-dashboard-api/pkg/errors"
)

type fakeDashboardSource struct {
	mu sync.Mutex

	record      *models.UserRecord
	recordErr   error
	courses     []models.Course
	coursesErr  error
	activities  []models.Activity
	companies   []models.Company
	companyErr  error
	totalCalls  int
	courseCalls int
}

func (f *fakeDashboardSource) UserByID(ctx context.Context, id string) (*models.UserRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.totalCalls++
	return f.record, f.recordErr
}

func (f *fakeDashboardSource) GetEnrolledCourses(ctx context.Context, userID string) ([]models.Course, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.totalCalls++
	f.courseCalls++
	return f.courses, f.coursesErr
}

func (f *fakeDashboardSource) Assignments(ctx context.Context, courseIDs []string) ([]models.Activity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.totalCalls++
	return f.activities, nil
}

func (f *fakeDashboardSource) Companies(ctx context.Context) ([]models.Company, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.totalCalls++
	return f.companies, f.companyErr
}

func (f *fakeDashboardSource) calls() (total, courses int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.totalCalls, f.courseCalls
}

type staticResolver struct {
	role models.Role
}

func (r staticResolver) Resolve(ctx context.Context, username string, record *models.UserRecord, assignments []models.RoleAssignment) models.Role {
	return r.role
}

func newDashboardService(source *fakeDashboardSource, role models.Role) *DashboardService {
	return NewDashboardService(DashboardServiceParams{
		Source:   source,
		Resolver: staticResolver{role: role},
		Cache:    cache.NewManager(cache.ManagerParams{Logger: zap.NewNop()}),
		Logger:   zap.NewNop(),
	})
}

func TestDashboardServiceStudentBundle(t *testing.T) {
	due := time.Now().Add(48 * time.Hour)
	past := time.Now().Add(-48 * time.Hour)
	source := &fakeDashboardSource{
		record:  &models.UserRecord{ID: "42", Username: "jdoe"},
		courses: []models.Course{{ID: "7", Completed: true}, {ID: "8"}},
		activities: []models.Activity{
			{ID: "a1", DueDate: &due},
			{ID: "a2", DueDate: &past},
			{ID: "a3", Done: true, DueDate: &due},
			{ID: "a4"},
		},
	}
	svc := newDashboardService(source, models.RoleStudent)

	snapshot, fromCache, _, err := svc.Load(context.Background(), "42", "jdoe")
	require.NoError(t, err)
	assert.False(t, fromCache)
	assert.Equal(t, models.RoleStudent, snapshot.Role)
	assert.Equal(t, 2, snapshot.Stats.CourseCount)
	assert.Equal(t, 1, snapshot.Stats.CompletedCount)
	assert.Equal(t, 4, snapshot.Stats.ActivityCount)
	assert.Equal(t, 1, snapshot.Stats.DueSoonCount)
}

func TestDashboardServiceAdminBundle(t *testing.T) {
	source := &fakeDashboardSource{
		record:    &models.UserRecord{ID: "1", Username: "admin"},
		companies: []models.Company{{ID: "c1"}, {ID: "c2"}},
	}
	svc := newDashboardService(source, models.RoleAdmin)

	snapshot, _, _, err := svc.Load(context.Background(), "1", "admin")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, snapshot.Role)
	assert.Equal(t, 2, snapshot.Stats.CompanyCount)
	assert.Empty(t, snapshot.Courses)

	_, courseCalls := source.calls()
	assert.Zero(t, courseCalls)
}

func TestDashboardServiceWarmHitAvoidsSynchronousUpstream(t *testing.T) {
	source := &fakeDashboardSource{
		record:  &models.UserRecord{ID: "42", Username: "jdoe"},
		courses: []models.Course{{ID: "7"}},
	}
	svc := newDashboardService(source, models.RoleStudent)

	_, _, _, err := svc.Load(context.Background(), "42", "jdoe")
	require.NoError(t, err)
	coldTotal, _ := source.calls()

	snapshot, fromCache, refresh, err := svc.Load(context.Background(), "42", "jdoe")
	require.NoError(t, err)
	assert.True(t, fromCache)
	assert.True(t, refresh)
	require.NotNil(t, snapshot)

	// A single background refresh lands after the warm hit. It re-fetches
	// the course list and assignments once each; the cached role spares the
	// user lookup, so exactly two calls are added to the cold total.
	require.Eventually(t, func() bool {
		total, _ := source.calls()
		return total == coldTotal+2
	}, 2*time.Second, 10*time.Millisecond)
	_, courses := source.calls()
	assert.Equal(t, 2, courses)
}

func TestDashboardServiceRoleCached(t *testing.T) {
	source := &fakeDashboardSource{record: &models.UserRecord{ID: "42", Username: "jdoe"}}
	svc := newDashboardService(source, models.RoleTeacher)

	role := svc.Role(context.Background(), "42", "jdoe")
	assert.Equal(t, models.RoleTeacher, role)
	firstTotal, _ := source.calls()

	role = svc.Role(context.Background(), "42", "jdoe")
	assert.Equal(t, models.RoleTeacher, role)
	total, _ := source.calls()
	assert.Equal(t, firstTotal, total)
}

func TestDashboardServiceRoleSurvivesLookupFailure(t *testing.T) {
	source := &fakeDashboardSource{recordErr: appErrors.ErrUpstream}
	svc := newDashboardService(source, models.RoleStudent)

	role := svc.Role(context.Background(), "42", "jdoe")
	assert.Equal(t, models.RoleStudent, role)
}

func TestDashboardServicePlaceholderStats(t *testing.T) {
	source := &fakeDashboardSource{record: &models.UserRecord{ID: "42", Username: "new"}}
	svc := newDashboardService(source, models.RoleStudent)

	snapshot, _, _, err := svc.Load(context.Background(), "42", "new")
	require.NoError(t, err)
	assert.True(t, snapshot.Stats.PlaceholderData)
	assert.NotEmpty(t, snapshot.Courses)
}
