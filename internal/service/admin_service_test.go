package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campusgrid/lms-dashboard-api/internal/cache"
	"github.com/campusgrid/lms-dashboard-api/internal/dto"
	"github.com/campusgrid/lms-dashboard-api/internal/lms"
	"github.com/campusgrid/lms-dashboard-api/internal/models"
	appErrors "github.com/campusgrid/lms-dashboard-api/pkg/errors"
)

type fakeAdminSource struct {
	created   []lms.NewUser
	updated   map[string]lms.UserUpdate
	suspended map[string]bool
	deleted   []string
	enrolled  []dto.EnrolmentRequest
	err       error
}

func newFakeAdminSource() *fakeAdminSource {
	return &fakeAdminSource{
		updated:   map[string]lms.UserUpdate{},
		suspended: map[string]bool{},
	}
}

func (f *fakeAdminSource) CreateUser(ctx context.Context, user lms.NewUser) (*models.UserRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = append(f.created, user)
	return &models.UserRecord{ID: "100", Username: user.Username, Email: user.Email}, nil
}

func (f *fakeAdminSource) UpdateUser(ctx context.Context, userID string, update lms.UserUpdate) error {
	if f.err != nil {
		return f.err
	}
	f.updated[userID] = update
	return nil
}

func (f *fakeAdminSource) SuspendUser(ctx context.Context, userID string, suspended bool) error {
	if f.err != nil {
		return f.err
	}
	f.suspended[userID] = suspended
	return nil
}

func (f *fakeAdminSource) DeleteUser(ctx context.Context, userID string) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, userID)
	return nil
}

func (f *fakeAdminSource) EnrolUser(ctx context.Context, userID, courseID, roleID string) error {
	if f.err != nil {
		return f.err
	}
	f.enrolled = append(f.enrolled, dto.EnrolmentRequest{UserID: userID, CourseID: courseID, RoleID: roleID})
	return nil
}

func (f *fakeAdminSource) AssignRole(ctx context.Context, userID, roleID string) error {
	return f.err
}

func (f *fakeAdminSource) UnassignRole(ctx context.Context, userID, roleID string) error {
	return f.err
}

func newAdminService(source *fakeAdminSource) (*AdminService, *cache.Manager) {
	manager := cache.NewManager(cache.ManagerParams{Logger: zap.NewNop()})
	svc := NewAdminService(AdminServiceParams{
		Source: source,
		Cache:  manager,
		Logger: zap.NewNop(),
	})
	return svc, manager
}

func TestAdminServiceCreateUser(t *testing.T) {
	source := newFakeAdminSource()
	svc, _ := newAdminService(source)

	record, err := svc.CreateUser(context.Background(), dto.CreateUserRequest{
		Username:  "jdoe",
		Email:     "jdoe@example.edu",
		FirstName: "Jane",
		LastName:  "Doe",
		Password:  "long-enough-secret",
	})
	require.NoError(t, err)
	assert.Equal(t, "jdoe", record.Username)
	require.Len(t, source.created, 1)
}

func TestAdminServiceCreateUserValidation(t *testing.T) {
	source := newFakeAdminSource()
	svc, _ := newAdminService(source)

	_, err := svc.CreateUser(context.Background(), dto.CreateUserRequest{
		Username: "jdoe",
		Email:    "not-an-email",
		Password: "short",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Empty(t, source.created)
}

func TestAdminServiceUpdateInvalidatesCache(t *testing.T) {
	source := newFakeAdminSource()
	svc, manager := newAdminService(source)

	key := cache.Key("dashboard", "42")
	require.NoError(t, manager.Set(context.Background(), key, map[string]string{"stale": "yes"}))

	err := svc.UpdateUser(context.Background(), "42", dto.UpdateUserRequest{Email: "new@example.edu"})
	require.NoError(t, err)
	assert.Equal(t, "new@example.edu", source.updated["42"].Email)

	var out map[string]string
	assert.False(t, manager.Get(context.Background(), key, time.Hour, &out))
}

func TestAdminServiceEnrolInvalidatesCourses(t *testing.T) {
	source := newFakeAdminSource()
	svc, manager := newAdminService(source)

	key := cache.Key("courses", "42")
	require.NoError(t, manager.Set(context.Background(), key, map[string]string{"stale": "yes"}))

	err := svc.Enrol(context.Background(), dto.EnrolmentRequest{UserID: "42", CourseID: "7", RoleID: "5"})
	require.NoError(t, err)
	require.Len(t, source.enrolled, 1)

	var out map[string]string
	assert.False(t, manager.Get(context.Background(), key, time.Hour, &out))
}

func TestAdminServiceRoleChangeDropsCachedRole(t *testing.T) {
	source := newFakeAdminSource()
	svc, manager := newAdminService(source)

	key := cache.Key("role", "42")
	require.NoError(t, manager.Set(context.Background(), key, models.RoleStudent))

	err := svc.AssignRole(context.Background(), dto.RoleChangeRequest{UserID: "42", RoleID: "1"})
	require.NoError(t, err)

	var role models.Role
	assert.False(t, manager.Get(context.Background(), key, time.Hour, &role))
}

func TestAdminServiceUpstreamFailureKeepsCache(t *testing.T) {
	source := newFakeAdminSource()
	source.err = appErrors.ErrUpstream
	svc, manager := newAdminService(source)

	key := cache.Key("dashboard", "42")
	require.NoError(t, manager.Set(context.Background(), key, map[string]string{"fresh": "yes"}))

	err := svc.DeleteUser(context.Background(), "42")
	require.Error(t, err)

	var out map[string]string
	assert.True(t, manager.Get(context.Background(), key, time.Hour, &out))
}
