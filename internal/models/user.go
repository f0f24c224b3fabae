package models

import "time"

// Role is the application role a remote user resolves to.
type Role string

const (
	RoleAdmin       Role = "ADMIN"
	RoleSchoolAdmin Role = "SCHOOL_ADMIN"
	RoleTeacher     Role = "TEACHER"
	RoleStudent     Role = "STUDENT"
)

// Valid reports whether the role is one of the closed set.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleSchoolAdmin, RoleTeacher, RoleStudent:
		return true
	}
	return false
}

// UserRecord is the remote LMS identity. Fetched, never mutated locally.
type UserRecord struct {
	ID          string           `json:"id"`
	Username    string           `json:"username"`
	Email       string           `json:"email"`
	FullName    string           `json:"full_name"`
	LastAccess  time.Time        `json:"last_access"`
	CompanyID   string           `json:"company_id,omitempty"`
	Assignments []RoleAssignment `json:"assignments,omitempty"`
}

// RoleAssignment is a (shortname, name) pair from the remote role query.
type RoleAssignment struct {
	Shortname string `json:"shortname"`
	Name      string `json:"name"`
}

// Company is a school/organisation the LMS groups users under.
type Company struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Shortname string `json:"shortname"`
}

// JWTClaims is the authenticated dashboard client identity.
type JWTClaims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
