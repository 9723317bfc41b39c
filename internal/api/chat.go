package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"chat-client/internal/models"
)

// Chats lists the current user's chats, newest activity first, with last
// message previews.
func (c *Client) Chats(ctx context.Context) ([]models.Chat, error) {
	var chats []models.Chat
	if err := c.getJSON(ctx, "chats", "/api/chats", &chats); err != nil {
		return nil, err
	}
	return chats, nil
}

// Messages fetches the full history of a chat, oldest first. Deleted
// messages are present as tombstones.
func (c *Client) Messages(ctx context.Context, chatID int) ([]models.Message, error) {
	var messages []models.Message
	path := fmt.Sprintf("/api/chat/%d/messages", chatID)
	if err := c.getJSON(ctx, "messages", path, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// CreatePrivateChat returns the 1:1 chat with the given user, creating it if
// needed. The operation is idempotent: an existing pair yields the same id.
func (c *Client) CreatePrivateChat(ctx context.Context, otherUserID int) (int, error) {
	form := url.Values{}
	form.Set("otherUserId", strconv.Itoa(otherUserID))

	var resp models.ChatCreatedResponse
	if err := c.postForm(ctx, "private_chat", "/api/chat/private", form, &resp); err != nil {
		return 0, err
	}
	if resp.ChatID == 0 {
		return 0, &Error{Message: "chat was not created"}
	}
	return resp.ChatID, nil
}

// CreateGroupChat creates a group with the given name and participants.
func (c *Client) CreateGroupChat(ctx context.Context, name string, participantIDs []int) (int, error) {
	body := models.CreateGroupRequest{Name: name, ParticipantIDs: participantIDs}

	var resp models.ChatCreatedResponse
	if err := c.postJSON(ctx, "group_chat", "/api/chat/group", body, &resp); err != nil {
		return 0, err
	}
	if resp.ChatID == 0 {
		return 0, &Error{Message: "group was not created"}
	}
	return resp.ChatID, nil
}

// SendMessage posts content to a chat.
func (c *Client) SendMessage(ctx context.Context, chatID int, content string) error {
	form := url.Values{}
	form.Set("chatId", strconv.Itoa(chatID))
	form.Set("content", content)

	var resp models.StatusResponse
	if err := c.postForm(ctx, "send_message", "/api/message", form, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return &Error{Message: resp.Message}
	}
	return nil
}

// DeleteMessage tombstones a message. The server enforces that only the
// sender may do this.
func (c *Client) DeleteMessage(ctx context.Context, messageID int) error {
	var resp models.StatusResponse
	path := fmt.Sprintf("/api/message/%d", messageID)
	if err := c.delete(ctx, "delete_message", path, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return &Error{Message: resp.Message}
	}
	return nil
}

// ReportMessage flags a message for admin review.
func (c *Client) ReportMessage(ctx context.Context, messageID int, reason string) error {
	form := url.Values{}
	form.Set("messageId", strconv.Itoa(messageID))
	form.Set("reason", reason)

	var resp models.StatusResponse
	if err := c.postForm(ctx, "report", "/api/report", form, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return &Error{Message: resp.Message}
	}
	return nil
}
