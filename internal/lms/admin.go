package lms

import (
	"context"
	"fmt"
	"net/url"

	"github.com/campusgrid/lms-dashboard-api/internal/models"
	appErrors "github.com/campusgrid/lms-dashboard-api/pkg/errors"
)

func indexedKey(name string, i int) string {
	return fmt.Sprintf("%s[%d]", name, i)
}

// EnrolUser manually enrols a user into a course with the given role id.
func (c *Client) EnrolUser(ctx context.Context, userID, courseID, roleID string) error {
	params := url.Values{}
	params.Set("enrolments[0][userid]", userID)
	params.Set("enrolments[0][courseid]", courseID)
	params.Set("enrolments[0][roleid]", roleID)
	return c.call(ctx, fnEnrolUsers, params, nil)
}

// AssignRole grants a role to a user in the system context.
func (c *Client) AssignRole(ctx context.Context, userID, roleID string) error {
	params := url.Values{}
	params.Set("assignments[0][userid]", userID)
	params.Set("assignments[0][roleid]", roleID)
	params.Set("assignments[0][contextlevel]", "system")
	return c.call(ctx, fnAssignRoles, params, nil)
}

// UnassignRole revokes a role from a user in the system context.
func (c *Client) UnassignRole(ctx context.Context, userID, roleID string) error {
	params := url.Values{}
	params.Set("unassignments[0][userid]", userID)
	params.Set("unassignments[0][roleid]", roleID)
	params.Set("unassignments[0][contextlevel]", "system")
	return c.call(ctx, fnUnassignRoles, params, nil)
}

// NewUser carries the fields accepted when creating a remote user.
type NewUser struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
	Password  string
}

// CreateUser creates a remote user and returns its new record.
func (c *Client) CreateUser(ctx context.Context, user NewUser) (*models.UserRecord, error) {
	params := url.Values{}
	params.Set("users[0][username]", user.Username)
	params.Set("users[0][email]", user.Email)
	params.Set("users[0][firstname]", user.FirstName)
	params.Set("users[0][lastname]", user.LastName)
	params.Set("users[0][password]", user.Password)

	var created []wsUser
	if err := c.call(ctx, fnCreateUsers, params, &created); err != nil {
		return nil, err
	}
	if len(created) == 0 {
		return nil, appErrors.Clone(appErrors.ErrMalformedResponse, "lms returned no created user")
	}
	record := created[0].toModel()
	// The create reply only echoes id and username.
	record.Email = user.Email
	record.FullName = user.FirstName + " " + user.LastName
	return &record, nil
}

// UserUpdate carries optional field overrides for an existing user.
type UserUpdate struct {
	Email     string
	FirstName string
	LastName  string
}

// UpdateUser patches fields on a remote user.
func (c *Client) UpdateUser(ctx context.Context, userID string, update UserUpdate) error {
	params := url.Values{}
	params.Set("users[0][id]", userID)
	if update.Email != "" {
		params.Set("users[0][email]", update.Email)
	}
	if update.FirstName != "" {
		params.Set("users[0][firstname]", update.FirstName)
	}
	if update.LastName != "" {
		params.Set("users[0][lastname]", update.LastName)
	}
	return c.call(ctx, fnUpdateUsers, params, nil)
}

// SuspendUser flips the remote suspended flag.
func (c *Client) SuspendUser(ctx context.Context, userID string, suspended bool) error {
	params := url.Values{}
	params.Set("users[0][id]", userID)
	if suspended {
		params.Set("users[0][suspended]", "1")
	} else {
		params.Set("users[0][suspended]", "0")
	}
	return c.call(ctx, fnUpdateUsers, params, nil)
}

// DeleteUser removes a remote user.
func (c *Client) DeleteUser(ctx context.Context, userID string) error {
	params := url.Values{}
	params.Set("userids[0]", userID)
	return c.call(ctx, fnDeleteUsers, params, nil)
}
