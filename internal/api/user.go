package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"chat-client/internal/models"
)

// Login submits credentials. A rejected login is not an error: the server
// answers 200 with success=false and a message, which the caller displays.
func (c *Client) Login(ctx context.Context, username, password string) (*models.StatusResponse, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	var resp models.StatusResponse
	if err := c.postForm(ctx, "login", "/api/login", form, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register creates an account. Like Login, a rejection (e.g. username taken)
// comes back as success=false with a server message.
func (c *Client) Register(ctx context.Context, username, password string) (*models.StatusResponse, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	var resp models.StatusResponse
	if err := c.postForm(ctx, "register", "/api/register", form, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Logout ends the session. The server answers with a redirect, so the body
// is not decoded.
func (c *Client) Logout(ctx context.Context) error {
	return c.postForm(ctx, "logout", "/api/logout", url.Values{}, nil)
}

// CurrentUser fetches the session identity. An absent session surfaces as
// ErrUnauthorized.
func (c *Client) CurrentUser(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.getJSON(ctx, "current_user", "/api/user/current", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// SearchUsers looks up users by username fragment. The result may include
// the current user; callers filter that out before display.
func (c *Client) SearchUsers(ctx context.Context, query string) ([]models.User, error) {
	var users []models.User
	path := "/api/users/search?q=" + url.QueryEscape(query)
	if err := c.getJSON(ctx, "search_users", path, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Contacts lists users eligible for group membership.
func (c *Client) Contacts(ctx context.Context) ([]models.User, error) {
	var contacts []models.User
	if err := c.getJSON(ctx, "contacts", "/api/contacts", &contacts); err != nil {
		return nil, err
	}
	return contacts, nil
}

// SendFriendRequest invites a user to the contact list. Duplicate or
// already-contact cases come back as success=false with a message.
func (c *Client) SendFriendRequest(ctx context.Context, toUserID int) (*models.StatusResponse, error) {
	form := url.Values{}
	form.Set("toUserId", strconv.Itoa(toUserID))

	var resp models.StatusResponse
	if err := c.postForm(ctx, "friend_request", "/api/friend-request", form, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// IncomingFriendRequests lists invitations awaiting the current user.
func (c *Client) IncomingFriendRequests(ctx context.Context) ([]models.FriendRequest, error) {
	var reqs []models.FriendRequest
	if err := c.getJSON(ctx, "friend_requests_incoming", "/api/friend-requests/incoming", &reqs); err != nil {
		return nil, err
	}
	return reqs, nil
}

// AcceptFriendRequest accepts an invitation.
func (c *Client) AcceptFriendRequest(ctx context.Context, requestID int) (*models.StatusResponse, error) {
	var resp models.StatusResponse
	path := fmt.Sprintf("/api/friend-requests/%d/accept", requestID)
	if err := c.postForm(ctx, "friend_request_accept", path, url.Values{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RejectFriendRequest declines an invitation.
func (c *Client) RejectFriendRequest(ctx context.Context, requestID int) (*models.StatusResponse, error) {
	var resp models.StatusResponse
	path := fmt.Sprintf("/api/friend-requests/%d/reject", requestID)
	if err := c.postForm(ctx, "friend_request_reject", path, url.Values{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
