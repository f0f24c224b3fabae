package dto

import (
	"time"

	"github.com/campusgrid/lms-dashboard-api/internal/models"
)

// CoursesSnapshot is the enrolled-courses view for one user.
type CoursesSnapshot struct {
	UserID      string          `json:"user_id"`
	Courses     []models.Course `json:"courses"`
	Placeholder bool            `json:"placeholder,omitempty"`
	RefreshedAt time.Time       `json:"refreshed_at"`
}

// CourseDetailSnapshot bundles one course with its lessons and grades.
type CourseDetailSnapshot struct {
	Course      models.Course   `json:"course"`
	Lessons     []models.Lesson `json:"lessons"`
	Grades      []models.Grade  `json:"grades,omitempty"`
	Completed   bool            `json:"completed"`
	RefreshedAt time.Time       `json:"refreshed_at"`
}

// LessonsSnapshot lists the lessons of one course.
type LessonsSnapshot struct {
	CourseID    string          `json:"course_id"`
	Lessons     []models.Lesson `json:"lessons"`
	RefreshedAt time.Time       `json:"refreshed_at"`
}

// ActivitiesSnapshot lists activities, either for one lesson or across all
// of a user's courses.
type ActivitiesSnapshot struct {
	UserID      string            `json:"user_id,omitempty"`
	LessonID    string            `json:"lesson_id,omitempty"`
	Activities  []models.Activity `json:"activities"`
	RefreshedAt time.Time         `json:"refreshed_at"`
}

// DashboardStats are the stat-card numbers on the landing view.
type DashboardStats struct {
	CourseCount     int  `json:"course_count"`
	CompletedCount  int  `json:"completed_count"`
	ActivityCount   int  `json:"activity_count"`
	DueSoonCount    int  `json:"due_soon_count"`
	CompanyCount    int  `json:"company_count,omitempty"`
	GroupCount      int  `json:"group_count,omitempty"`
	PlaceholderData bool `json:"placeholder_data,omitempty"`
}

// DashboardSnapshot is the role-gated landing bundle.
type DashboardSnapshot struct {
	UserID      string          `json:"user_id"`
	Role        models.Role     `json:"role"`
	Courses     []models.Course `json:"courses"`
	Stats       DashboardStats  `json:"stats"`
	RefreshedAt time.Time       `json:"refreshed_at"`
}
