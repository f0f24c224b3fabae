package service

import (
	"context"

	"github.com/campusgrid/lms-dashboard-api/internal/lms"
	"github.com/campusgrid/lms-dashboard-api/internal/models"
	"github.com/campusgrid/lms-dashboard-api/pkg/batch"
)

// lmsAPI is the slice of the LMS client this layer consumes.
type lmsAPI interface {
	GetUserByID(ctx context.Context, id string) (*models.UserRecord, error)
	GetUserByUsername(ctx context.Context, username string) (*models.UserRecord, error)
	GetUserRoles(ctx context.Context, userID string) ([]models.RoleAssignment, error)
	GetUserCompany(ctx context.Context, userID string) (*models.Company, error)
	ListCompanies(ctx context.Context) ([]models.Company, error)
	GetEnrolledCourses(ctx context.Context, userID string) ([]models.Course, error)
	GetCoursesByField(ctx context.Context, field, value string) ([]models.Course, error)
	GetCourseContents(ctx context.Context, courseID string) ([]models.Lesson, error)
	GetCompletionStatus(ctx context.Context, courseID, userID string) (bool, error)
	GetCourseGrades(ctx context.Context, courseID, userID string) ([]models.Grade, error)
	GetCourseGroups(ctx context.Context, courseID string) ([]models.Group, error)
	GetGroupMembers(ctx context.Context, groupID string) ([]string, error)
	GetAssignments(ctx context.Context, courseIDs []string) ([]models.Activity, error)
	GetSubmissions(ctx context.Context, assignmentIDs []string) ([]models.Submission, error)
	EnrolUser(ctx context.Context, userID, courseID, roleID string) error
	AssignRole(ctx context.Context, userID, roleID string) error
	UnassignRole(ctx context.Context, userID, roleID string) error
	CreateUser(ctx context.Context, user lms.NewUser) (*models.UserRecord, error)
	UpdateUser(ctx context.Context, userID string, update lms.UserUpdate) error
	SuspendUser(ctx context.Context, userID string, suspended bool) error
	DeleteUser(ctx context.Context, userID string) error
}

// Gateway routes every outbound LMS call through a batching queue so that
// page loads fanning out into many fetches never stampede the backend.
// It implements roles.RoleDirectory and roles.EnrollmentSource.
type Gateway struct {
	api   lmsAPI
	queue *batch.Queue
}

// NewGateway wraps the LMS client with the given queue.
func NewGateway(api lmsAPI, queue *batch.Queue) *Gateway {
	return &Gateway{api: api, queue: queue}
}

func (g *Gateway) run(ctx context.Context, op batch.Operation) (interface{}, error) {
	return g.queue.Enqueue(ctx, op).Wait(ctx)
}

func (g *Gateway) UserByID(ctx context.Context, id string) (*models.UserRecord, error) {
	value, err := g.run(ctx, func(ctx context.Context) (interface{}, error) {
		return g.api.GetUserByID(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return value.(*models.UserRecord), nil
}

func (g *Gateway) UserByUsername(ctx context.Context, username string) (*models.UserRecord, error) {
	value, err := g.run(ctx, func(ctx context.Context) (interface{}, error) {
		return g.api.GetUserByUsername(ctx, username)
	})
	if err != nil {
		return nil, err
	}
	return value.(*models.UserRecord), nil
}

// GetUserRoles satisfies roles.RoleDirectory.
func (g *Gateway) GetUserRoles(ctx context.Context, userID string) ([]models.RoleAssignment, error) {
	value, err := g.run(ctx, func(ctx context.Context) (interface{}, error) {
		return g.api.GetUserRoles(ctx, userID)
	})
	if err != nil {
		return nil, err
	}
	return value.([]models.RoleAssignment), nil
}

// GetEnrolledCourses satisfies roles.EnrollmentSource.
func (g *Gateway) GetEnrolledCourses(ctx context.Context, userID string) ([]models.Course, error) {
	value, err := g.run(ctx, func(ctx context.Context) (interface{}, error) {
		return g.api.GetEnrolledCourses(ctx, userID)
	})
	if err != nil {
		return nil, err
	}
	return value.([]models.Course), nil
}

func (g *Gateway) UserCompany(ctx context.Context, userID string) (*models.Company, error) {
	value, err := g.run(ctx, func(ctx context.Context) (interface{}, error) {
		return g.api.GetUserCompany(ctx, userID)
	})
	if err != nil {
		return nil, err
	}
	return value.(*models.Company), nil
}

func (g *Gateway) Companies(ctx context.Context) ([]models.Company, error) {
	value, err := g.run(ctx, func(ctx context.Context) (interface{}, error) {
		return g.api.ListCompanies(ctx)
	})
	if err != nil {
		return nil, err
	}
	return value.([]models.Company), nil
}

func (g *Gateway) CoursesByField(ctx context.Context, field, value string) ([]models.Course, error) {
	result, err := g.run(ctx, func(ctx context.Context) (interface{}, error) {
		return g.api.GetCoursesByField(ctx, field, value)
	})
	if err != nil {
		return nil, err
	}
	return result.([]models.Course), nil
}

func (g *Gateway) CourseContents(ctx context.Context, courseID string) ([]models.Lesson, error) {
	value, err := g.run(ctx, func(ctx context.Context) (interface{}, error) {
		return g.api.GetCourseContents(ctx, courseID)
	})
	if err != nil {
		return nil, err
	}
	return value.([]models.Lesson), nil
}

func (g *Gateway) CompletionStatus(ctx context.Context, courseID, userID string) (bool, error) {
	value, err := g.run(ctx, func(ctx context.Context) (interface{}, error) {
		return g.api.GetCompletionStatus(ctx, courseID, userID)
	})
	if err != nil {
		return false, err
	}
	return value.(bool), nil
}

func (g *Gateway) CourseGrades(ctx context.Context, courseID, userID string) ([]models.Grade, error) {
	value, err := g.run(ctx, func(ctx context.Context) (interface{}, error) {
		return g.api.GetCourseGrades(ctx, courseID, userID)
	})
	if err != nil {
		return nil, err
	}
	return value.([]models.Grade), nil
}

func (g *Gateway) CourseGroups(ctx context.Context, courseID string) ([]models.Group, error) {
	value, err := g.run(ctx, func(ctx context.Context) (interface{}, error) {
		return g.api.GetCourseGroups(ctx, courseID)
	})
	if err != nil {
		return nil, err
	}
	return value.([]models.Group), nil
}

func (g *Gateway) GroupMembers(ctx context.Context, groupID string) ([]string, error) {
	value, err := g.run(ctx, func(ctx context.Context) (interface{}, error) {
		return g.api.GetGroupMembers(ctx, groupID)
	})
	if err != nil {
		return nil, err
	}
	return value.([]string), nil
}

func (g *Gateway) Assignments(ctx context.Context, courseIDs []string) ([]models.Activity, error) {
	value, err := g.run(ctx, func(ctx context.Context) (interface{}, error) {
		return g.api.GetAssignments(ctx, courseIDs)
	})
	if err != nil {
		return nil, err
	}
	return value.([]models.Activity), nil
}

func (g *Gateway) Submissions(ctx context.Context, assignmentIDs []string) ([]models.Submission, error) {
	value, err := g.run(ctx, func(ctx context.Context) (interface{}, error) {
		return g.api.GetSubmissions(ctx, assignmentIDs)
	})
	if err != nil {
		return nil, err
	}
	return value.([]models.Submission), nil
}

func (g *Gateway) EnrolUser(ctx context.Context, userID, courseID, roleID string) error {
	_, err := g.run(ctx, func(ctx context.Context) (interface{}, error) {
		return nil, g.api.EnrolUser(ctx, userID, courseID, roleID)
	})
	return err
}

func (g *Gateway) AssignRole(ctx context.Context, userID, roleID string) error {
	_, err := g.run(ctx, func(ctx context.Context) (interface{}, error) {
		return nil, g.api.AssignRole(ctx, userID, roleID)
	})
	return err
}

func (g *Gateway) UnassignRole(ctx context.Context, userID, roleID string) error {
	_, err := g.run(ctx, func(ctx context.Context) (interface{}, error) {
		return nil, g.api.UnassignRole(ctx, userID, roleID)
	})
	return err
}

func (g *Gateway) CreateUser(ctx context.Context, user lms.NewUser) (*models.UserRecord, error) {
	value, err := g.run(ctx, func(ctx context.Context) (interface{}, error) {
		return g.api.CreateUser(ctx, user)
	})
	if err != nil {
		return nil, err
	}
	return value.(*models.UserRecord), nil
}

func (g *Gateway) UpdateUser(ctx context.Context, userID string, update lms.UserUpdate) error {
	_, err := g.run(ctx, func(ctx context.Context) (interface{}, error) {
		return nil, g.api.UpdateUser(ctx, userID, update)
	})
	return err
}

func (g *Gateway) SuspendUser(ctx context.Context, userID string, suspended bool) error {
	_, err := g.run(ctx, func(ctx context.Context) (interface{}, error) {
		return nil, g.api.SuspendUser(ctx, userID, suspended)
	})
	return err
}

func (g *Gateway) DeleteUser(ctx context.Context, userID string) error {
	_, err := g.run(ctx, func(ctx context.Context) (interface{}, error) {
		return nil, g.api.DeleteUser(ctx, userID)
	})
	return err
}
