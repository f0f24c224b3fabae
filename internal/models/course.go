package models

import "time"

// Course is a read-only projection of a remote course. Identity is the
// remote numeric id carried as a string; entities are re-fetched, never
// mutated locally.
type Course struct {
	ID        string  `json:"id"`
	Shortname string  `json:"shortname"`
	FullName  string  `json:"full_name"`
	Summary   string  `json:"summary,omitempty"`
	Category  string  `json:"category,omitempty"`
	Progress  float64 `json:"progress"`
	Completed bool    `json:"completed"`
}

// Lesson is a section of a course as reported by the course-contents query.
type Lesson struct {
	ID       string     `json:"id"`
	CourseID string     `json:"course_id"`
	Name     string     `json:"name"`
	Summary  string     `json:"summary,omitempty"`
	Visible  bool       `json:"visible"`
	Modules  []Activity `json:"modules,omitempty"`
}

// Activity is a module inside a lesson (assignment, quiz, resource, ...).
type Activity struct {
	ID       string     `json:"id"`
	LessonID string     `json:"lesson_id,omitempty"`
	CourseID string     `json:"course_id,omitempty"`
	Name     string     `json:"name"`
	Type     string     `json:"type"`
	DueDate  *time.Time `json:"due_date,omitempty"`
	Done     bool       `json:"done"`
}

// Enrollment ties a user to a course.
type Enrollment struct {
	UserID   string    `json:"user_id"`
	CourseID string    `json:"course_id"`
	Enrolled time.Time `json:"enrolled"`
}

// Grade is a per-course grade line from the remote gradebook.
type Grade struct {
	CourseID string  `json:"course_id"`
	ItemName string  `json:"item_name"`
	Value    float64 `json:"value"`
	Max      float64 `json:"max"`
}

// Group is a course-level group with its member user ids.
type Group struct {
	ID       string `json:"id"`
	CourseID string `json:"course_id"`
	Name     string `json:"name"`
}

// Submission is a student's submission against an assignment activity.
type Submission struct {
	ID           string    `json:"id"`
	AssignmentID string    `json:"assignment_id"`
	UserID       string    `json:"user_id"`
	Status       string    `json:"status"`
	SubmittedAt  time.Time `json:"submitted_at"`
}
