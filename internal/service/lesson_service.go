package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/campusgrid/lms-dashboard-api/internal/cache"
	"github.com/campusgrid/lms-dashboard-api/internal/dto"
	"github.com/campusgrid/lms-dashboard-api/internal/models"
	appErrors "github.com/campusgrid/lms-dashboard-api/pkg/errors"
)

type lessonSource interface {
	CourseContents(ctx context.Context, courseID string) ([]models.Lesson, error)
}

// LessonServiceParams groups constructor dependencies.
type LessonServiceParams struct {
	Source     lessonSource
	Cache      *cache.Manager
	Logger     *zap.Logger
	LessonsTTL time.Duration
	DetailTTL  time.Duration
}

// LessonService serves the lesson list of a course and the activity list of
// a single lesson, both cut from the same course-contents fetch.
type LessonService struct {
	source     lessonSource
	cache      *cache.Manager
	logger     *zap.Logger
	now        func() time.Time
	lessonsTTL time.Duration
	detailTTL  time.Duration
}

// NewLessonService constructs a LessonService.
func NewLessonService(params LessonServiceParams) *LessonService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	lessonsTTL := params.LessonsTTL
	if lessonsTTL <= 0 {
		lessonsTTL = 5 * time.Minute
	}
	detailTTL := params.DetailTTL
	if detailTTL <= 0 {
		detailTTL = 15 * time.Minute
	}
	return &LessonService{
		source:     params.Source,
		cache:      params.Cache,
		logger:     logger,
		now:        time.Now,
		lessonsTTL: lessonsTTL,
		detailTTL:  detailTTL,
	}
}

// Load returns the lessons of one course.
func (s *LessonService) Load(ctx context.Context, userID, courseID string) (*dto.LessonsSnapshot, bool, bool, error) {
	key := cache.Key(featLessons, userID) + ":" + courseID

	var cached dto.LessonsSnapshot
	if s.cache.Get(ctx, key, s.lessonsTTL, &cached) {
		s.refresh(key, userID, courseID)
		return &cached, true, true, nil
	}

	fresh, err := s.fetch(ctx, courseID)
	if err != nil {
		return nil, false, false, err
	}
	if err := s.cache.Set(ctx, key, fresh); err != nil {
		s.logger.Warn("lesson cache write failed", zap.String("key", key), zap.Error(err))
	}
	return fresh, false, false, nil
}

// LoadActivities returns the activities of one lesson. The lesson detail gets
// the longest TTL of the feature set: lesson structure barely moves within a
// session.
func (s *LessonService) LoadActivities(ctx context.Context, userID, courseID, lessonID string) (*dto.ActivitiesSnapshot, bool, bool, error) {
	key := cache.Key(featLessons, userID) + ":" + courseID + ":" + lessonID

	var cached dto.ActivitiesSnapshot
	if s.cache.Get(ctx, key, s.detailTTL, &cached) {
		return &cached, true, false, nil
	}

	lessons, err := s.source.CourseContents(ctx, courseID)
	if err != nil {
		return nil, false, false, err
	}
	for _, lesson := range lessons {
		if lesson.ID != lessonID {
			continue
		}
		snapshot := &dto.ActivitiesSnapshot{
			UserID:      userID,
			LessonID:    lessonID,
			Activities:  lesson.Modules,
			RefreshedAt: s.now().UTC(),
		}
		if err := s.cache.Set(ctx, key, snapshot); err != nil {
			s.logger.Warn("activity cache write failed", zap.String("key", key), zap.Error(err))
		}
		return snapshot, false, false, nil
	}
	return nil, false, false, appErrors.Clone(appErrors.ErrNotFound, "lesson not found in course")
}

func (s *LessonService) fetch(ctx context.Context, courseID string) (*dto.LessonsSnapshot, error) {
	lessons, err := s.source.CourseContents(ctx, courseID)
	if err != nil {
		return nil, err
	}
	return &dto.LessonsSnapshot{
		CourseID:    courseID,
		Lessons:     lessons,
		RefreshedAt: s.now().UTC(),
	}, nil
}

func (s *LessonService) refresh(key, userID, courseID string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()

		fresh, err := s.fetch(ctx, courseID)
		if err != nil {
			s.logger.Warn("background refresh failed", zap.String("key", key), zap.Error(err))
			return
		}
		if err := s.cache.Set(ctx, key, fresh); err != nil {
			s.logger.Warn("lesson cache write failed", zap.String("key", key), zap.Error(err))
		}
	}()
}
