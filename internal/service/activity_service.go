package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/campusgrid/lms-dashboard-api/internal/cache"
	"github.com/campusgrid/lms-dashboard-api/internal/dto"
	"github.com/campusgrid/lms-dashboard-api/internal/models"
)

type activitySource interface {
	GetEnrolledCourses(ctx context.Context, userID string) ([]models.Course, error)
	Assignments(ctx context.Context, courseIDs []string) ([]models.Activity, error)
	Submissions(ctx context.Context, assignmentIDs []string) ([]models.Submission, error)
}

// ActivityServiceParams groups constructor dependencies.
type ActivityServiceParams struct {
	Source activitySource
	Cache  *cache.Manager
	Logger *zap.Logger
	TTL    time.Duration
}

// ActivityService aggregates assignments across every course a user is
// enrolled in and merges submission state onto them. Activities are the
// fastest-moving feature, so they carry the shortest TTL.
type ActivityService struct {
	source activitySource
	cache  *cache.Manager
	logger *zap.Logger
	now    func() time.Time
	ttl    time.Duration
}

// NewActivityService constructs an ActivityService.
func NewActivityService(params ActivityServiceParams) *ActivityService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	ttl := params.TTL
	if ttl <= 0 {
		ttl = 3 * time.Minute
	}
	return &ActivityService{
		source: params.Source,
		cache:  params.Cache,
		logger: logger,
		now:    time.Now,
		ttl:    ttl,
	}
}

// Load returns the user's cross-course activity feed.
func (s *ActivityService) Load(ctx context.Context, userID string) (*dto.ActivitiesSnapshot, bool, bool, error) {
	key := cache.Key(featActivities, userID)

	var cached dto.ActivitiesSnapshot
	if s.cache.Get(ctx, key, s.ttl, &cached) {
		s.refresh(key, userID)
		return &cached, true, true, nil
	}

	fresh, err := s.fetch(ctx, userID)
	if err != nil {
		return nil, false, false, err
	}
	if err := s.cache.Set(ctx, key, fresh); err != nil {
		s.logger.Warn("activity cache write failed", zap.String("key", key), zap.Error(err))
	}
	return fresh, false, false, nil
}

func (s *ActivityService) fetch(ctx context.Context, userID string) (*dto.ActivitiesSnapshot, error) {
	courses, err := s.source.GetEnrolledCourses(ctx, userID)
	if err != nil {
		return nil, err
	}

	snapshot := &dto.ActivitiesSnapshot{UserID: userID, RefreshedAt: s.now().UTC()}
	if len(courses) == 0 {
		snapshot.Activities = []models.Activity{}
		return snapshot, nil
	}

	courseIDs := make([]string, 0, len(courses))
	for _, course := range courses {
		courseIDs = append(courseIDs, course.ID)
	}
	activities, err := s.source.Assignments(ctx, courseIDs)
	if err != nil {
		return nil, err
	}

	// Submission state is an overlay; losing it leaves every activity open
	// rather than failing the feed.
	if len(activities) > 0 {
		ids := make([]string, 0, len(activities))
		for _, activity := range activities {
			ids = append(ids, activity.ID)
		}
		submissions, err := s.source.Submissions(ctx, ids)
		if err != nil {
			s.logger.Warn("submission fetch failed", zap.String("user_id", userID), zap.Error(err))
		} else {
			markDone(activities, submissions, userID)
		}
	}

	snapshot.Activities = activities
	return snapshot, nil
}

// markDone flips activities the user has already submitted to.
func markDone(activities []models.Activity, submissions []models.Submission, userID string) {
	submitted := make(map[string]bool, len(submissions))
	for _, sub := range submissions {
		if sub.UserID == userID && sub.Status == "submitted" {
			submitted[sub.AssignmentID] = true
		}
	}
	for i := range activities {
		if submitted[activities[i].ID] {
			activities[i].Done = true
		}
	}
}

func (s *ActivityService) refresh(key, userID string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()

		fresh, err := s.fetch(ctx, userID)
		if err != nil {
			s.logger.Warn("background refresh failed", zap.String("key", key), zap.Error(err))
			return
		}
		if err := s.cache.Set(ctx, key, fresh); err != nil {
			s.logger.Warn("activity cache write failed", zap.String("key", key), zap.Error(err))
		}
	}()
}
