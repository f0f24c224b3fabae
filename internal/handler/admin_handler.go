package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/campusgrid/lms-dashboard-api/internal/dto"
	"github.com/campusgrid/lms-dashboard-api/internal/models"
	appErrors "github.com/campusgrid/lms-dashboard-api/pkg/errors"
	"github.com/campusgrid/lms-dashboard-api/pkg/response"
)

type adminOps interface {
	CreateUser(ctx context.Context, req dto.CreateUserRequest) (*models.UserRecord, error)
	UpdateUser(ctx context.Context, userID string, req dto.UpdateUserRequest) error
	SuspendUser(ctx context.Context, userID string, suspended bool) error
	DeleteUser(ctx context.Context, userID string) error
	Enrol(ctx context.Context, req dto.EnrolmentRequest) error
	AssignRole(ctx context.Context, req dto.RoleChangeRequest) error
	UnassignRole(ctx context.Context, req dto.RoleChangeRequest) error
}

// AdminHandler exposes LMS write operations to admin roles.
type AdminHandler struct {
	admin adminOps
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(admin adminOps) *AdminHandler {
	return &AdminHandler{admin: admin}
}

// CreateUser godoc
// @Summary Create an LMS user
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateUserRequest true "User payload"
// @Success 201 {object} response.Envelope
// @Router /admin/users [post]
func (h *AdminHandler) CreateUser(c *gin.Context) {
	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, err.Error()))
		return
	}
	record, err := h.admin.CreateUser(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, record)
}

// UpdateUser godoc
// @Summary Update an LMS user
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param payload body dto.UpdateUserRequest true "Field overrides"
// @Success 200 {object} response.Envelope
// @Router /admin/users/{id} [put]
func (h *AdminHandler) UpdateUser(c *gin.Context) {
	var req dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, err.Error()))
		return
	}
	if err := h.admin.UpdateUser(c.Request.Context(), c.Param("id"), req); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"updated": true}, nil)
}

// SuspendUser godoc
// @Summary Suspend or reactivate an LMS user
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param suspended query bool true "Target suspended state"
// @Success 200 {object} response.Envelope
// @Router /admin/users/{id}/suspend [put]
func (h *AdminHandler) SuspendUser(c *gin.Context) {
	suspended, err := strconv.ParseBool(c.DefaultQuery("suspended", "true"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "suspended must be a boolean"))
		return
	}
	if err := h.admin.SuspendUser(c.Request.Context(), c.Param("id"), suspended); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"suspended": suspended}, nil)
}

// DeleteUser godoc
// @Summary Delete an LMS user
// @Tags Admin
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 204
// @Router /admin/users/{id} [delete]
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	if err := h.admin.DeleteUser(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Enrol godoc
// @Summary Enrol a user into a course
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.EnrolmentRequest true "Enrolment"
// @Success 201 {object} response.Envelope
// @Router /admin/enrolments [post]
func (h *AdminHandler) Enrol(c *gin.Context) {
	var req dto.EnrolmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, err.Error()))
		return
	}
	if err := h.admin.Enrol(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{"enrolled": true})
}

// AssignRole godoc
// @Summary Assign a system role to a user
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.RoleChangeRequest true "Role change"
// @Success 200 {object} response.Envelope
// @Router /admin/roles/assign [post]
func (h *AdminHandler) AssignRole(c *gin.Context) {
	var req dto.RoleChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, err.Error()))
		return
	}
	if err := h.admin.AssignRole(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"assigned": true}, nil)
}

// UnassignRole godoc
// @Summary Revoke a system role from a user
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.RoleChangeRequest true "Role change"
// @Success 200 {object} response.Envelope
// @Router /admin/roles/unassign [post]
func (h *AdminHandler) UnassignRole(c *gin.Context) {
	var req dto.RoleChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, err.Error()))
		return
	}
	if err := h.admin.UnassignRole(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"unassigned": true}, nil)
}
