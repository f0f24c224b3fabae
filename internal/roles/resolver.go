// Package roles classifies opaque remote user records into application
// roles. Remote role metadata is sparse and inconsistent in practice, so
// the resolver treats it as the strongest of several signals rather than
// ground truth: an ordered cascade of rules runs cheapest-and-most-precise
// first, and the first conclusive rule wins.
package roles

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/campusgrid/lms-dashboard-api/internal/models"
)

// RoleDirectory fetches the remote role-assignment set for a user.
type RoleDirectory interface {
	GetUserRoles(ctx context.Context, userID string) ([]models.RoleAssignment, error)
}

// EnrollmentSource fetches the courses a user is enrolled in.
type EnrollmentSource interface {
	GetEnrolledCourses(ctx context.Context, userID string) ([]models.Course, error)
}

// ResolverParams groups resolver dependencies and table overrides.
type ResolverParams struct {
	Directory   RoleDirectory
	Enrollments EnrollmentSource
	Logger      *zap.Logger
	Now         func() time.Time

	// SystemAccounts / AdminAccounts override the built-in tables when
	// non-empty.
	SystemAccounts []string
	AdminAccounts  map[string]models.Role
}

// Resolver holds the rule cascade. It owns no mutable state: resolution is
// a pure function of its inputs plus the remote signals it may fetch.
type Resolver struct {
	directory   RoleDirectory
	enrollments EnrollmentSource
	logger      *zap.Logger
	now         func() time.Time
	rules       []rule
}

// NewResolver builds a resolver with the documented cascade order.
func NewResolver(params ResolverParams) *Resolver {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	systemAccounts := params.SystemAccounts
	if len(systemAccounts) == 0 {
		systemAccounts = defaultSystemAccounts
	}
	adminAccounts := params.AdminAccounts
	if len(adminAccounts) == 0 {
		adminAccounts = defaultAdminAccounts
	}

	return &Resolver{
		directory:   params.Directory,
		enrollments: params.Enrollments,
		logger:      logger,
		now:         now,
		rules: []rule{
			systemAccountRule(systemAccounts),
			adminAccountRule(adminAccounts),
			assignmentRule(),
			usernameHeuristicRule(),
			enrollmentRule(),
			emailHeuristicRule(),
			inactivityRule(),
			defaultRule(),
		},
	}
}

// Resolve maps a remote user to exactly one application role. It is total:
// whatever the inputs, and whatever remote calls fail along the way, it
// returns a role, with student as the terminal default. Deterministic given
// identical inputs and remote answers.
func (r *Resolver) Resolve(ctx context.Context, username string, record *models.UserRecord, assignments []models.RoleAssignment) models.Role {
	if username == "" && record != nil {
		username = record.Username
	}

	sig := &signals{
		username:    username,
		record:      record,
		assignments: assignments,
		now:         r.now(),
	}
	if sig.assignments == nil && record != nil {
		sig.assignments = record.Assignments
	}
	if sig.assignments == nil {
		sig.assignments = r.fetchAssignments(ctx, record)
	}
	sig.enrollmentCount = r.enrollmentCounter(record)

	for _, rule := range r.rules {
		if role, ok := rule.apply(ctx, sig); ok {
			r.logger.Debug("role resolved",
				zap.String("username", username),
				zap.String("rule", rule.name),
				zap.String("role", string(role)))
			return role
		}
	}
	// Unreachable: the default rule is always conclusive.
	return models.RoleStudent
}

// fetchAssignments loads the role-assignment set when the caller did not
// supply one. Failure is swallowed: the cascade continues on weaker signals.
func (r *Resolver) fetchAssignments(ctx context.Context, record *models.UserRecord) []models.RoleAssignment {
	if r.directory == nil || record == nil || record.ID == "" {
		return nil
	}
	assignments, err := r.directory.GetUserRoles(ctx, record.ID)
	if err != nil {
		r.logger.Warn("role-assignment fetch failed, continuing cascade",
			zap.String("user_id", record.ID), zap.Error(err))
		return nil
	}
	return assignments
}

// enrollmentCounter returns a lazy, memoized count of the user's course
// enrollments. The remote call happens at most once, and only if the
// cascade actually reaches the enrollment tier.
func (r *Resolver) enrollmentCounter(record *models.UserRecord) func(ctx context.Context) (int, bool) {
	if r.enrollments == nil || record == nil || record.ID == "" {
		return nil
	}
	var (
		loaded bool
		count  int
		ok     bool
	)
	return func(ctx context.Context) (int, bool) {
		if loaded {
			return count, ok
		}
		loaded = true
		courses, err := r.enrollments.GetEnrolledCourses(ctx, record.ID)
		if err != nil {
			r.logger.Warn("enrollment fetch failed, continuing cascade",
				zap.String("user_id", record.ID), zap.Error(err))
			ok = false
			return 0, false
		}
		count, ok = len(courses), true
		return count, ok
	}
}
