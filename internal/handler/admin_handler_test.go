package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/campusgrid/lms-dashboard-api/internal/dto"
	"github.com/campusgrid/lms-dashboard-api/internal/models"
	appErrors "github.com/campusgrid/lms-dashboard-api/pkg/errors"
)

type fakeAdminOps struct {
	created   *dto.CreateUserRequest
	updated   *dto.UpdateUserRequest
	suspended *bool
	deleted   string
	enrolled  *dto.EnrolmentRequest
	assigned  *dto.RoleChangeRequest
	err       error
}

func (f *fakeAdminOps) CreateUser(_ context.Context, req dto.CreateUserRequest) (*models.UserRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = &req
	return &models.UserRecord{ID: "100", Username: req.Username}, nil
}

func (f *fakeAdminOps) UpdateUser(_ context.Context, userID string, req dto.UpdateUserRequest) error {
	f.updated = &req
	return f.err
}

func (f *fakeAdminOps) SuspendUser(_ context.Context, userID string, suspended bool) error {
	f.suspended = &suspended
	return f.err
}

func (f *fakeAdminOps) DeleteUser(_ context.Context, userID string) error {
	f.deleted = userID
	return f.err
}

func (f *fakeAdminOps) Enrol(_ context.Context, req dto.EnrolmentRequest) error {
	f.enrolled = &req
	return f.err
}

func (f *fakeAdminOps) AssignRole(_ context.Context, req dto.RoleChangeRequest) error {
	f.assigned = &req
	return f.err
}

func (f *fakeAdminOps) UnassignRole(_ context.Context, req dto.RoleChangeRequest) error {
	f.assigned = &req
	return f.err
}

func jsonContext(t *testing.T, rec *httptest.ResponseRecorder, method, target, body string) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(method, target, bytes.NewBufferString(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c
}

func TestAdminHandlerCreateUser(t *testing.T) {
	ops := &fakeAdminOps{}
	handler := NewAdminHandler(ops)

	rec := httptest.NewRecorder()
	c := jsonContext(t, rec, http.MethodPost, "/admin/users",
		`{"username":"jdoe","email":"jdoe@example.edu","first_name":"Jane","last_name":"Doe","password":"long-enough-secret"}`)

	handler.CreateUser(c)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "jdoe", ops.created.Username)
}

func TestAdminHandlerCreateUserRejectsBadBody(t *testing.T) {
	handler := NewAdminHandler(&fakeAdminOps{})

	rec := httptest.NewRecorder()
	c := jsonContext(t, rec, http.MethodPost, "/admin/users", `{"username":"jdoe"}`)

	handler.CreateUser(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminHandlerSuspendParsesQuery(t *testing.T) {
	ops := &fakeAdminOps{}
	handler := NewAdminHandler(ops)

	rec := httptest.NewRecorder()
	c := jsonContext(t, rec, http.MethodPut, "/admin/users/42/suspend?suspended=false", "")
	c.Params = gin.Params{{Key: "id", Value: "42"}}

	handler.SuspendUser(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotNil(t, ops.suspended)
	assert.False(t, *ops.suspended)
}

func TestAdminHandlerDeleteUser(t *testing.T) {
	ops := &fakeAdminOps{}
	handler := NewAdminHandler(ops)

	rec := httptest.NewRecorder()
	c := jsonContext(t, rec, http.MethodDelete, "/admin/users/42", "")
	c.Params = gin.Params{{Key: "id", Value: "42"}}

	handler.DeleteUser(c)
	c.Writer.WriteHeaderNow()

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "42", ops.deleted)
}

func TestAdminHandlerEnrol(t *testing.T) {
	ops := &fakeAdminOps{}
	handler := NewAdminHandler(ops)

	rec := httptest.NewRecorder()
	c := jsonContext(t, rec, http.MethodPost, "/admin/enrolments",
		`{"user_id":"42","course_id":"7","role_id":"5"}`)

	handler.Enrol(c)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "7", ops.enrolled.CourseID)
}

func TestAdminHandlerUpstreamErrorPassthrough(t *testing.T) {
	ops := &fakeAdminOps{err: appErrors.ErrUpstream}
	handler := NewAdminHandler(ops)

	rec := httptest.NewRecorder()
	c := jsonContext(t, rec, http.MethodPost, "/admin/roles/assign",
		`{"user_id":"42","role_id":"1"}`)

	handler.AssignRole(c)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, "UPSTREAM_ERROR", envelope.Error.Code)
}
