package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"chat-client/internal/models"
)

// AdminReports lists reports for moderation. Requires the admin role; a
// non-admin session gets ErrUnauthorized.
func (c *Client) AdminReports(ctx context.Context) ([]models.Report, error) {
	var reports []models.Report
	if err := c.getJSON(ctx, "admin_reports", "/api/admin/reports", &reports); err != nil {
		return nil, err
	}
	return reports, nil
}

// AdminUsers lists all user accounts for moderation.
func (c *Client) AdminUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := c.getJSON(ctx, "admin_users", "/api/admin/users", &users); err != nil {
		return nil, err
	}
	return users, nil
}

// DecideReport resolves a report. days is only meaningful for temporary
// blocks; callers validate it before getting here.
func (c *Client) DecideReport(ctx context.Context, reportID int, decision string, days int) error {
	form := url.Values{}
	form.Set("decision", decision)
	form.Set("days", strconv.Itoa(days))

	var resp models.StatusResponse
	path := fmt.Sprintf("/api/admin/reports/%d/decide", reportID)
	if err := c.postForm(ctx, "decide_report", path, form, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return &Error{Message: resp.Message}
	}
	return nil
}

// UnblockUser lifts a block immediately.
func (c *Client) UnblockUser(ctx context.Context, userID int) error {
	var resp models.StatusResponse
	path := fmt.Sprintf("/api/admin/users/%d/unblock", userID)
	if err := c.postForm(ctx, "unblock_user", path, url.Values{}, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return &Error{Message: resp.Message}
	}
	return nil
}

// BlockUser blocks an account directly, outside of any report. Permanent
// blocks ignore days; temporary blocks last the given number of days.
func (c *Client) BlockUser(ctx context.Context, userID int, permanent bool, days int) error {
	form := url.Values{}
	form.Set("permanent", strconv.FormatBool(permanent))
	form.Set("days", strconv.Itoa(days))

	var resp models.StatusResponse
	path := fmt.Sprintf("/api/admin/users/%d/block", userID)
	if err := c.postForm(ctx, "block_user", path, form, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return &Error{Message: resp.Message}
	}
	return nil
}
