package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/campusgrid/lms-dashboard-api/internal/cache"
	"github.com/campusgrid/lms-dashboard-api/internal/dto"
	"github.com/campusgrid/lms-dashboard-api/internal/models"
	appErrors "github.com/campusgrid/lms-dashboard-api/pkg/errors"
)

// Cache key prefixes, one per feature so users and features never collide.
const (
	featCourses      = "courses"
	featCourseDetail = "course_detail"
	featLessons      = "lessons"
	featActivities   = "activities"
	featDashboard    = "dashboard"
	featRole         = "role"
)

// refreshTimeout bounds a single background refresh. The transport already
// enforces its own timeout per call; this covers multi-call refreshes.
const refreshTimeout = 30 * time.Second

type courseSource interface {
	GetEnrolledCourses(ctx context.Context, userID string) ([]models.Course, error)
	CoursesByField(ctx context.Context, field, value string) ([]models.Course, error)
	CourseContents(ctx context.Context, courseID string) ([]models.Lesson, error)
	CourseGrades(ctx context.Context, courseID, userID string) ([]models.Grade, error)
	CompletionStatus(ctx context.Context, courseID, userID string) (bool, error)
}

// CourseServiceConfig carries the feature TTLs.
type CourseServiceConfig struct {
	CoursesTTL      time.Duration
	CourseDetailTTL time.Duration
	LessonsTTL      time.Duration
}

// CourseServiceParams groups constructor dependencies.
type CourseServiceParams struct {
	Source courseSource
	Cache  *cache.Manager
	Logger *zap.Logger
	Config CourseServiceConfig
}

// CourseService loads course snapshots cache-first: a warm entry is served
// as-is with a silent refresh scheduled behind it, a cold load goes to the
// LMS through the batching queue.
type CourseService struct {
	source courseSource
	cache  *cache.Manager
	logger *zap.Logger
	now    func() time.Time
	cfg    CourseServiceConfig
}

// NewCourseService constructs a CourseService with sane TTL defaults.
func NewCourseService(params CourseServiceParams) *CourseService {
	cfg := params.Config
	if cfg.CoursesTTL <= 0 {
		cfg.CoursesTTL = 10 * time.Minute
	}
	if cfg.CourseDetailTTL <= 0 {
		cfg.CourseDetailTTL = 10 * time.Minute
	}
	if cfg.LessonsTTL <= 0 {
		cfg.LessonsTTL = 5 * time.Minute
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{
		source: params.Source,
		cache:  params.Cache,
		logger: logger,
		now:    time.Now,
		cfg:    cfg,
	}
}

// Load returns the user's enrolled-courses snapshot. The booleans report
// whether the snapshot came from cache and whether a background refresh
// was scheduled.
func (s *CourseService) Load(ctx context.Context, userID string) (*dto.CoursesSnapshot, bool, bool, error) {
	key := cache.Key(featCourses, userID)

	var cached dto.CoursesSnapshot
	if s.cache.Get(ctx, key, s.cfg.CoursesTTL, &cached) {
		s.scheduleRefresh(key, func(ctx context.Context) (interface{}, error) {
			return s.fetchCourses(ctx, userID)
		})
		return &cached, true, true, nil
	}

	fresh, err := s.fetchCourses(ctx, userID)
	if err != nil {
		return nil, false, false, err
	}
	s.persist(ctx, key, fresh)
	return fresh, false, false, nil
}

// LoadDetail returns one course with lessons, grades and completion. The
// session tier is consulted first: a course the user just navigated to is
// stable for the visit and needs no TTL check.
func (s *CourseService) LoadDetail(ctx context.Context, userID, courseID string) (*dto.CourseDetailSnapshot, bool, bool, error) {
	key := cache.Key(featCourseDetail, userID) + ":" + courseID

	var pinned dto.CourseDetailSnapshot
	if s.cache.Pinned(ctx, key, &pinned) {
		return &pinned, true, false, nil
	}

	var cached dto.CourseDetailSnapshot
	if s.cache.Get(ctx, key, s.cfg.CourseDetailTTL, &cached) {
		s.scheduleRefresh(key, func(ctx context.Context) (interface{}, error) {
			return s.fetchDetail(ctx, userID, courseID)
		})
		return &cached, true, true, nil
	}

	fresh, err := s.fetchDetail(ctx, userID, courseID)
	if err != nil {
		return nil, false, false, err
	}
	s.persist(ctx, key, fresh)
	if err := s.cache.Pin(ctx, key, fresh); err == nil {
		s.logger.Debug("course detail pinned", zap.String("key", key))
	}
	return fresh, false, false, nil
}

func (s *CourseService) fetchCourses(ctx context.Context, userID string) (*dto.CoursesSnapshot, error) {
	courses, err := s.source.GetEnrolledCourses(ctx, userID)
	if err != nil {
		return nil, err
	}

	snapshot := &dto.CoursesSnapshot{
		UserID:      userID,
		Courses:     courses,
		RefreshedAt: s.now().UTC(),
	}
	if len(courses) == 0 {
		snapshot.Courses = placeholderCourses()
		snapshot.Placeholder = true
	}
	return snapshot, nil
}

func (s *CourseService) fetchDetail(ctx context.Context, userID, courseID string) (*dto.CourseDetailSnapshot, error) {
	courses, err := s.source.CoursesByField(ctx, "ids", courseID)
	if err != nil {
		return nil, err
	}
	if len(courses) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found in lms")
	}

	// Dependent sub-resources go out concurrently through the same queue.
	var (
		wg           sync.WaitGroup
		lessons      []models.Lesson
		grades       []models.Grade
		completed    bool
		lessonsErr   error
		gradesErr    error
		completedErr error
	)
	wg.Add(3)
	go func() {
		defer wg.Done()
		lessons, lessonsErr = s.source.CourseContents(ctx, courseID)
	}()
	go func() {
		defer wg.Done()
		grades, gradesErr = s.source.CourseGrades(ctx, courseID, userID)
	}()
	go func() {
		defer wg.Done()
		completed, completedErr = s.source.CompletionStatus(ctx, courseID, userID)
	}()
	wg.Wait()

	if lessonsErr != nil {
		return nil, lessonsErr
	}
	// Grades and completion are enrichments; their failure degrades the
	// snapshot instead of failing the load.
	if gradesErr != nil {
		s.logger.Warn("grade fetch failed", zap.String("course_id", courseID), zap.Error(gradesErr))
		grades = nil
	}
	if completedErr != nil {
		s.logger.Warn("completion fetch failed", zap.String("course_id", courseID), zap.Error(completedErr))
		completed = false
	}

	// Lessons keep their own key and TTL, independent of the detail bundle.
	lessonsSnapshot := &dto.LessonsSnapshot{CourseID: courseID, Lessons: lessons, RefreshedAt: s.now().UTC()}
	s.persist(ctx, cache.Key(featLessons, userID)+":"+courseID, lessonsSnapshot)

	return &dto.CourseDetailSnapshot{
		Course:      courses[0],
		Lessons:     lessons,
		Grades:      grades,
		Completed:   completed,
		RefreshedAt: s.now().UTC(),
	}, nil
}

func (s *CourseService) persist(ctx context.Context, key string, value interface{}) {
	if err := s.cache.Set(ctx, key, value); err != nil {
		s.logger.Warn("course cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// scheduleRefresh kicks off exactly one silent refresh for a warm hit. The
// refresh runs on a detached context: navigating away must not abort a
// refresh that is already paid for.
func (s *CourseService) scheduleRefresh(key string, fetch func(ctx context.Context) (interface{}, error)) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()

		fresh, err := fetch(ctx)
		if err != nil {
			// Stale-but-served data stays visible; the failure is only logged.
			s.logger.Warn("background refresh failed", zap.String("key", key), zap.Error(err))
			return
		}
		s.persist(ctx, key, fresh)
	}()
}
