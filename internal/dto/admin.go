package dto

// CreateUserRequest creates a remote LMS user.
type CreateUserRequest struct {
	Username  string `json:"username" binding:"required" validate:"required,min=2"`
	Email     string `json:"email" binding:"required,email" validate:"required,email"`
	FirstName string `json:"first_name" binding:"required" validate:"required"`
	LastName  string `json:"last_name" binding:"required" validate:"required"`
	Password  string `json:"password" binding:"required,min=8" validate:"required,min=8"`
}

// UpdateUserRequest patches a remote LMS user.
type UpdateUserRequest struct {
	Email     string `json:"email,omitempty" validate:"omitempty,email"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// EnrolmentRequest manually enrols a user into a course.
type EnrolmentRequest struct {
	UserID   string `json:"user_id" binding:"required" validate:"required"`
	CourseID string `json:"course_id" binding:"required" validate:"required"`
	RoleID   string `json:"role_id" binding:"required" validate:"required"`
}

// RoleChangeRequest assigns or unassigns a remote role.
type RoleChangeRequest struct {
	UserID string `json:"user_id" binding:"required" validate:"required"`
	RoleID string `json:"role_id" binding:"required" validate:"required"`
}
