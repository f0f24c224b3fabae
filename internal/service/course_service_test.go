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
	"github.com/campusgrid/lms-dashboard-api/internal/dto"
	"github.com/campusgrid/lms-dashboard-api/internal/models"
	appErrors "github.com/campusgrid/lms-dashboard-api/pkg/errors"
)

type fakeCourseSource struct {
	mu sync.Mutex

	enrolled    []models.Course
	enrolledErr error
	byField     []models.Course
	byFieldErr  error
	contents    []models.Lesson
	contentsErr error
	grades      []models.Grade
	gradesErr   error
	completed   bool
	completeErr error

	enrolledCalls int
	byFieldCalls  int
	contentsCalls int
}

func (f *fakeCourseSource) GetEnrolledCourses(ctx context.Context, userID string) ([]models.Course, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.enrolledCalls++
	return f.enrolled, f.enrolledErr
}

func (f *fakeCourseSource) CoursesByField(ctx context.Context, field, value string) ([]models.Course, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byFieldCalls++
	return f.byField, f.byFieldErr
}

func (f *fakeCourseSource) CourseContents(ctx context.Context, courseID string) ([]models.Lesson, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.contentsCalls++
	return f.contents, f.contentsErr
}

func (f *fakeCourseSource) CourseGrades(ctx context.Context, courseID, userID string) ([]models.Grade, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.grades, f.gradesErr
}

func (f *fakeCourseSource) CompletionStatus(ctx context.Context, courseID, userID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.completed, f.completeErr
}

func (f *fakeCourseSource) calls() (enrolled, byField, contents int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.enrolledCalls, f.byFieldCalls, f.contentsCalls
}

func newCourseService(source *fakeCourseSource) (*CourseService, *cache.Manager) {
	manager := cache.NewManager(cache.ManagerParams{Logger: zap.NewNop()})
	svc := NewCourseService(CourseServiceParams{
		Source: source,
		Cache:  manager,
		Logger: zap.NewNop(),
	})
	return svc, manager
}

func TestCourseServiceColdLoadFetchesAndCaches(t *testing.T) {
	source := &fakeCourseSource{enrolled: []models.Course{{ID: "7", FullName: "Algebra"}}}
	svc, manager := newCourseService(source)

	snapshot, fromCache, refresh, err := svc.Load(context.Background(), "42")
	require.NoError(t, err)
	assert.False(t, fromCache)
	assert.False(t, refresh)
	require.Len(t, snapshot.Courses, 1)
	assert.Equal(t, "Algebra", snapshot.Courses[0].FullName)
	assert.False(t, snapshot.Placeholder)

	var cached dto.CoursesSnapshot
	assert.True(t, manager.Get(context.Background(), cache.Key("courses", "42"), time.Minute, &cached))
	assert.Equal(t, "42", cached.UserID)
}

func TestCourseServiceWarmLoadServesCacheAndRefreshesOnce(t *testing.T) {
	source := &fakeCourseSource{enrolled: []models.Course{{ID: "7", FullName: "Algebra"}}}
	svc, _ := newCourseService(source)

	_, _, _, err := svc.Load(context.Background(), "42")
	require.NoError(t, err)

	snapshot, fromCache, refresh, err := svc.Load(context.Background(), "42")
	require.NoError(t, err)
	assert.True(t, fromCache)
	assert.True(t, refresh)
	require.Len(t, snapshot.Courses, 1)

	// One cold fetch plus exactly one background refresh.
	require.Eventually(t, func() bool {
		enrolled, _, _ := source.calls()
		return enrolled == 2
	}, 2*time.Second, 10*time.Millisecond)
}

func TestCourseServiceEmptyEnrollmentsGetPlaceholder(t *testing.T) {
	source := &fakeCourseSource{enrolled: nil}
	svc, _ := newCourseService(source)

	snapshot, _, _, err := svc.Load(context.Background(), "42")
	require.NoError(t, err)
	assert.True(t, snapshot.Placeholder)
	require.NotEmpty(t, snapshot.Courses)
	assert.Equal(t, "Onboarding", snapshot.Courses[0].Category)
}

func TestCourseServiceLoadPropagatesUpstreamError(t *testing.T) {
	source := &fakeCourseSource{enrolledErr: appErrors.ErrUpstream}
	svc, _ := newCourseService(source)

	_, _, _, err := svc.Load(context.Background(), "42")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, "UPSTREAM_ERROR", appErr.Code)
}

func TestCourseServiceDetailFanOut(t *testing.T) {
	source := &fakeCourseSource{
		byField:   []models.Course{{ID: "7", FullName: "Algebra"}},
		contents:  []models.Lesson{{ID: "s1", Name: "Week 1"}},
		grades:    []models.Grade{{CourseID: "7", ItemName: "Quiz", Value: 8, Max: 10}},
		completed: true,
	}
	svc, manager := newCourseService(source)

	detail, fromCache, _, err := svc.LoadDetail(context.Background(), "42", "7")
	require.NoError(t, err)
	assert.False(t, fromCache)
	assert.Equal(t, "Algebra", detail.Course.FullName)
	require.Len(t, detail.Lessons, 1)
	require.Len(t, detail.Grades, 1)
	assert.True(t, detail.Completed)

	// Lessons land under their own key so the lesson view can hit cache.
	var lessons dto.LessonsSnapshot
	assert.True(t, manager.Get(context.Background(), cache.Key("lessons", "42")+":7", time.Minute, &lessons))
	require.Len(t, lessons.Lessons, 1)
}

func TestCourseServiceDetailServedFromSessionPin(t *testing.T) {
	source := &fakeCourseSource{
		byField:  []models.Course{{ID: "7", FullName: "Algebra"}},
		contents: []models.Lesson{{ID: "s1", Name: "Week 1"}},
	}
	svc, _ := newCourseService(source)

	_, _, _, err := svc.LoadDetail(context.Background(), "42", "7")
	require.NoError(t, err)

	detail, fromCache, refresh, err := svc.LoadDetail(context.Background(), "42", "7")
	require.NoError(t, err)
	assert.True(t, fromCache)
	assert.False(t, refresh)
	assert.Equal(t, "Algebra", detail.Course.FullName)

	_, byField, _ := source.calls()
	assert.Equal(t, 1, byField)
}

func TestCourseServiceDetailToleratesGradeFailure(t *testing.T) {
	source := &fakeCourseSource{
		byField:   []models.Course{{ID: "7"}},
		contents:  []models.Lesson{{ID: "s1"}},
		gradesErr: appErrors.ErrUpstream,
	}
	svc, _ := newCourseService(source)

	detail, _, _, err := svc.LoadDetail(context.Background(), "42", "7")
	require.NoError(t, err)
	assert.Nil(t, detail.Grades)
	require.Len(t, detail.Lessons, 1)
}

func TestCourseServiceDetailFailsOnContentsError(t *testing.T) {
	source := &fakeCourseSource{
		byField:     []models.Course{{ID: "7"}},
		contentsErr: appErrors.ErrUpstream,
	}
	svc, _ := newCourseService(source)

	_, _, _, err := svc.LoadDetail(context.Background(), "42", "7")
	require.Error(t, err)
}

func TestCourseServiceDetailUnknownCourse(t *testing.T) {
	source := &fakeCourseSource{byField: nil}
	svc, _ := newCourseService(source)

	_, _, _, err := svc.LoadDetail(context.Background(), "42", "999")
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", appErrors.FromError(err).Code)
}
