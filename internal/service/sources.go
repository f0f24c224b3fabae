package service

import (
	"context"

	"github.com/campusgrid/lms-dashboard-api/internal/models"
)

// CourseSources splits course reads across the two outbound queues: the
// top-level list and lookup calls ride the primary queue, the per-course
// sub-fetches ride the smaller fan-out queue so a detail page cannot
// monopolise a batch.
type CourseSources struct {
	Primary *Gateway
	Fanout  *Gateway
}

func (s CourseSources) GetEnrolledCourses(ctx context.Context, userID string) ([]models.Course, error) {
	return s.Primary.GetEnrolledCourses(ctx, userID)
}

func (s CourseSources) CoursesByField(ctx context.Context, field, value string) ([]models.Course, error) {
	return s.Primary.CoursesByField(ctx, field, value)
}

func (s CourseSources) CourseContents(ctx context.Context, courseID string) ([]models.Lesson, error) {
	return s.Fanout.CourseContents(ctx, courseID)
}

func (s CourseSources) CourseGrades(ctx context.Context, courseID, userID string) ([]models.Grade, error) {
	return s.Fanout.CourseGrades(ctx, courseID, userID)
}

func (s CourseSources) CompletionStatus(ctx context.Context, courseID, userID string) (bool, error) {
	return s.Fanout.CompletionStatus(ctx, courseID, userID)
}

func (s CourseSources) CourseGroups(ctx context.Context, courseID string) ([]models.Group, error) {
	return s.Fanout.CourseGroups(ctx, courseID)
}

func (s CourseSources) GroupMembers(ctx context.Context, groupID string) ([]string, error) {
	return s.Fanout.GroupMembers(ctx, groupID)
}

func (s CourseSources) UserByID(ctx context.Context, id string) (*models.UserRecord, error) {
	return s.Fanout.UserByID(ctx, id)
}
