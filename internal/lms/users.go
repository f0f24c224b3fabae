package lms

import (
	"context"
	"net/url"

	"github.com/campusgrid/lms-dashboard-api/internal/models"
	appErrors "github.com/campusgrid/lms-dashboard-api/pkg/errors"
)

// GetUserByUsername looks a user up by username.
func (c *Client) GetUserByUsername(ctx context.Context, username string) (*models.UserRecord, error) {
	return c.getUserByField(ctx, "username", username)
}

// GetUserByID looks a user up by remote id.
func (c *Client) GetUserByID(ctx context.Context, id string) (*models.UserRecord, error) {
	return c.getUserByField(ctx, "id", id)
}

func (c *Client) getUserByField(ctx context.Context, field, value string) (*models.UserRecord, error) {
	params := url.Values{}
	params.Set("field", field)
	params.Set("values[0]", value)

	var users []wsUser
	if err := c.call(ctx, fnGetUsersByField, params, &users); err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found in lms")
	}
	record := users[0].toModel()
	return &record, nil
}

// GetUserRoles returns the raw role-assignment set for a user. The set is
// unordered and may be empty; callers treat it as one signal, not truth.
func (c *Client) GetUserRoles(ctx context.Context, userID string) ([]models.RoleAssignment, error) {
	params := url.Values{}
	params.Set("userid", userID)

	var roles []wsRole
	if err := c.call(ctx, fnGetUserRoles, params, &roles); err != nil {
		return nil, err
	}
	assignments := make([]models.RoleAssignment, 0, len(roles))
	for _, role := range roles {
		assignments = append(assignments, models.RoleAssignment{Shortname: role.Shortname, Name: role.Name})
	}
	return assignments, nil
}

// GetUserCompany returns the first company/school the user belongs to,
// or nil when the user has none.
func (c *Client) GetUserCompany(ctx context.Context, userID string) (*models.Company, error) {
	params := url.Values{}
	params.Set("userid", userID)

	var result wsCompanies
	if err := c.call(ctx, fnGetUserCompanies, params, &result); err != nil {
		return nil, err
	}
	if len(result.Companies) == 0 {
		return nil, nil
	}
	company := result.Companies[0]
	return &models.Company{ID: itoa(company.ID), Name: company.Name, Shortname: company.Shortname}, nil
}

// ListCompanies returns every company/school known to the LMS.
func (c *Client) ListCompanies(ctx context.Context) ([]models.Company, error) {
	var result wsCompanies
	if err := c.call(ctx, fnGetCompanies, url.Values{}, &result); err != nil {
		return nil, err
	}
	companies := make([]models.Company, 0, len(result.Companies))
	for _, company := range result.Companies {
		companies = append(companies, models.Company{
			ID:        itoa(company.ID),
			Name:      company.Name,
			Shortname: company.Shortname,
		})
	}
	return companies, nil
}
