package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/campusgrid/lms-dashboard-api/internal/cache"
	"github.com/campusgrid/lms-dashboard-api/internal/dto"
	"github.com/campusgrid/lms-dashboard-api/internal/models"
)

// dueSoonWindow is how far ahead an activity deadline counts as "due soon"
// on the stat cards.
const dueSoonWindow = 7 * 24 * time.Hour

type dashboardSource interface {
	UserByID(ctx context.Context, id string) (*models.UserRecord, error)
	GetEnrolledCourses(ctx context.Context, userID string) ([]models.Course, error)
	Assignments(ctx context.Context, courseIDs []string) ([]models.Activity, error)
	Companies(ctx context.Context) ([]models.Company, error)
}

type roleResolver interface {
	Resolve(ctx context.Context, username string, record *models.UserRecord, assignments []models.RoleAssignment) models.Role
}

// DashboardServiceParams groups constructor dependencies.
type DashboardServiceParams struct {
	Source   dashboardSource
	Resolver roleResolver
	Cache    *cache.Manager
	Logger   *zap.Logger

	// DashboardTTL bounds both the landing bundle and the cached role.
	DashboardTTL time.Duration
}

// DashboardService assembles the role-gated landing bundle. The resolved
// role is cached alongside the bundle so repeat visits skip the cascade's
// remote lookups entirely.
type DashboardService struct {
	source   dashboardSource
	resolver roleResolver
	cache    *cache.Manager
	logger   *zap.Logger
	now      func() time.Time
	ttl      time.Duration
}

// NewDashboardService constructs a DashboardService.
func NewDashboardService(params DashboardServiceParams) *DashboardService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	ttl := params.DashboardTTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &DashboardService{
		source:   params.Source,
		resolver: params.Resolver,
		cache:    cacheOrDefault(params.Cache),
		logger:   logger,
		now:      time.Now,
		ttl:      ttl,
	}
}

func cacheOrDefault(m *cache.Manager) *cache.Manager {
	if m != nil {
		return m
	}
	return cache.NewManager(cache.ManagerParams{})
}

// Load returns the landing bundle for one user.
func (s *DashboardService) Load(ctx context.Context, userID, username string) (*dto.DashboardSnapshot, bool, bool, error) {
	key := cache.Key(featDashboard, userID)

	var cached dto.DashboardSnapshot
	if s.cache.Get(ctx, key, s.ttl, &cached) {
		s.refresh(key, userID, username)
		return &cached, true, true, nil
	}

	fresh, err := s.fetch(ctx, userID, username)
	if err != nil {
		return nil, false, false, err
	}
	if err := s.cache.Set(ctx, key, fresh); err != nil {
		s.logger.Warn("dashboard cache write failed", zap.String("key", key), zap.Error(err))
	}
	return fresh, false, false, nil
}

// Role returns the user's resolved role, from cache when warm.
func (s *DashboardService) Role(ctx context.Context, userID, username string) models.Role {
	key := cache.Key(featRole, userID)

	var cached models.Role
	if s.cache.Get(ctx, key, s.ttl, &cached) && cached.Valid() {
		return cached
	}

	record, err := s.source.UserByID(ctx, userID)
	if err != nil {
		// The cascade is total; with no record it still lands on a role.
		s.logger.Warn("user lookup failed, resolving role from username alone",
			zap.String("user_id", userID), zap.Error(err))
		record = nil
	}
	role := s.resolver.Resolve(ctx, username, record, nil)
	if err := s.cache.Set(ctx, key, role); err != nil {
		s.logger.Warn("role cache write failed", zap.String("key", key), zap.Error(err))
	}
	return role
}

func (s *DashboardService) fetch(ctx context.Context, userID, username string) (*dto.DashboardSnapshot, error) {
	role := s.Role(ctx, userID, username)

	snapshot := &dto.DashboardSnapshot{
		UserID:      userID,
		Role:        role,
		RefreshedAt: s.now().UTC(),
	}

	switch role {
	case models.RoleAdmin, models.RoleSchoolAdmin:
		companies, err := s.source.Companies(ctx)
		if err != nil {
			return nil, err
		}
		snapshot.Stats.CompanyCount = len(companies)
		snapshot.Courses = []models.Course{}
	default:
		if err := s.fillLearnerBundle(ctx, userID, snapshot); err != nil {
			return nil, err
		}
	}
	return snapshot, nil
}

// fillLearnerBundle loads the student/teacher view: enrolled courses plus
// activity counts.
func (s *DashboardService) fillLearnerBundle(ctx context.Context, userID string, snapshot *dto.DashboardSnapshot) error {
	courses, err := s.source.GetEnrolledCourses(ctx, userID)
	if err != nil {
		return err
	}
	if len(courses) == 0 {
		snapshot.Courses = placeholderCourses()
		snapshot.Stats.PlaceholderData = true
		snapshot.Stats.CourseCount = len(snapshot.Courses)
		return nil
	}
	snapshot.Courses = courses
	snapshot.Stats.CourseCount = len(courses)

	courseIDs := make([]string, 0, len(courses))
	for _, course := range courses {
		if course.Completed {
			snapshot.Stats.CompletedCount++
		}
		courseIDs = append(courseIDs, course.ID)
	}

	activities, err := s.source.Assignments(ctx, courseIDs)
	if err != nil {
		// Stat cards degrade to course numbers only.
		s.logger.Warn("assignment fetch failed, stats degraded",
			zap.String("user_id", userID), zap.Error(err))
		return nil
	}
	snapshot.Stats.ActivityCount = len(activities)
	horizon := s.now().Add(dueSoonWindow)
	for _, activity := range activities {
		if activity.Done || activity.DueDate == nil {
			continue
		}
		if activity.DueDate.After(s.now()) && activity.DueDate.Before(horizon) {
			snapshot.Stats.DueSoonCount++
		}
	}
	return nil
}

func (s *DashboardService) refresh(key, userID, username string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()

		fresh, err := s.fetch(ctx, userID, username)
		if err != nil {
			s.logger.Warn("background refresh failed", zap.String("key", key), zap.Error(err))
			return
		}
		if err := s.cache.Set(ctx, key, fresh); err != nil {
			s.logger.Warn("dashboard cache write failed", zap.String("key", key), zap.Error(err))
		}
	}()
}
