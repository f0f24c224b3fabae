package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campusgrid/lms-dashboard-api/internal/cache"
	"github.com/campusgrid/lms-dashboard-api/internal/dto"
	"github.com/campusgrid/lms-dashboard-api/internal/lms"
	"github.com/campusgrid/lms-dashboard-api/internal/models"
	appErrors "github.com/campusgrid/lms-dashboard-api/pkg/errors"
)

type adminSource interface {
	CreateUser(ctx context.Context, user lms.NewUser) (*models.UserRecord, error)
	UpdateUser(ctx context.Context, userID string, update lms.UserUpdate) error
	SuspendUser(ctx context.Context, userID string, suspended bool) error
	DeleteUser(ctx context.Context, userID string) error
	EnrolUser(ctx context.Context, userID, courseID, roleID string) error
	AssignRole(ctx context.Context, userID, roleID string) error
	UnassignRole(ctx context.Context, userID, roleID string) error
}

// AdminServiceParams groups constructor dependencies.
type AdminServiceParams struct {
	Source adminSource
	Cache  *cache.Manager
	Logger *zap.Logger
}

// AdminService executes write operations against the LMS. Every mutation
// invalidates the affected user's cached snapshots so the next read shows
// the change.
type AdminService struct {
	source   adminSource
	cache    *cache.Manager
	logger   *zap.Logger
	validate *validator.Validate
}

// NewAdminService constructs an AdminService.
func NewAdminService(params AdminServiceParams) *AdminService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminService{
		source:   params.Source,
		cache:    params.Cache,
		logger:   logger,
		validate: validator.New(),
	}
}

// CreateUser creates a remote user.
func (s *AdminService) CreateUser(ctx context.Context, req dto.CreateUserRequest) (*models.UserRecord, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	record, err := s.source.CreateUser(ctx, lms.NewUser{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("user created",
		zap.String("user_id", record.ID), zap.String("username", record.Username))
	return record, nil
}

// UpdateUser patches a remote user and drops their cached views.
func (s *AdminService) UpdateUser(ctx context.Context, userID string, req dto.UpdateUserRequest) error {
	if err := s.validate.Struct(req); err != nil {
		return appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	if err := s.source.UpdateUser(ctx, userID, lms.UserUpdate{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}); err != nil {
		return err
	}
	s.invalidateUser(ctx, userID)
	s.logger.Info("user updated", zap.String("user_id", userID))
	return nil
}

// SuspendUser flips the remote suspended flag and drops the user's cache.
func (s *AdminService) SuspendUser(ctx context.Context, userID string, suspended bool) error {
	if err := s.source.SuspendUser(ctx, userID, suspended); err != nil {
		return err
	}
	s.invalidateUser(ctx, userID)
	s.logger.Info("user suspension changed",
		zap.String("user_id", userID), zap.Bool("suspended", suspended))
	return nil
}

// DeleteUser removes a remote user and drops their cache.
func (s *AdminService) DeleteUser(ctx context.Context, userID string) error {
	if err := s.source.DeleteUser(ctx, userID); err != nil {
		return err
	}
	s.invalidateUser(ctx, userID)
	s.logger.Info("user deleted", zap.String("user_id", userID))
	return nil
}

// Enrol enrols a user into a course, then drops the user's course views so
// the enrollment shows up on their next load.
func (s *AdminService) Enrol(ctx context.Context, req dto.EnrolmentRequest) error {
	if err := s.validate.Struct(req); err != nil {
		return appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	if err := s.source.EnrolUser(ctx, req.UserID, req.CourseID, req.RoleID); err != nil {
		return err
	}
	s.invalidateUser(ctx, req.UserID)
	s.logger.Info("user enrolled",
		zap.String("user_id", req.UserID), zap.String("course_id", req.CourseID))
	return nil
}

// AssignRole grants a remote role. The cached resolved role is dropped so
// the cascade re-runs against the new assignment set.
func (s *AdminService) AssignRole(ctx context.Context, req dto.RoleChangeRequest) error {
	if err := s.validate.Struct(req); err != nil {
		return appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	if err := s.source.AssignRole(ctx, req.UserID, req.RoleID); err != nil {
		return err
	}
	s.invalidateUser(ctx, req.UserID)
	s.logger.Info("role assigned",
		zap.String("user_id", req.UserID), zap.String("role_id", req.RoleID))
	return nil
}

// UnassignRole revokes a remote role and drops the cached resolution.
func (s *AdminService) UnassignRole(ctx context.Context, req dto.RoleChangeRequest) error {
	if err := s.validate.Struct(req); err != nil {
		return appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	if err := s.source.UnassignRole(ctx, req.UserID, req.RoleID); err != nil {
		return err
	}
	s.invalidateUser(ctx, req.UserID)
	s.logger.Info("role unassigned",
		zap.String("user_id", req.UserID), zap.String("role_id", req.RoleID))
	return nil
}

// invalidateUser drops every per-user feature entry. Course-scoped sub-keys
// expire on their own TTLs.
func (s *AdminService) invalidateUser(ctx context.Context, userID string) {
	for _, feature := range []string{featRole, featDashboard, featCourses, featActivities} {
		s.cache.Invalidate(ctx, cache.Key(feature, userID))
	}
}
