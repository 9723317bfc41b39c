package controller

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"chat-client/internal/api"
	"chat-client/internal/logger"
	"chat-client/internal/metrics"
	"chat-client/internal/models"
	"chat-client/internal/poller"
	"chat-client/internal/view"

	"go.uber.org/zap"
)

var (
	// ErrNoChatSelected is returned by message actions without an active chat.
	ErrNoChatSelected = errors.New("no chat selected")

	// ErrNotAllowed is returned when an action is attempted on a message the
	// user does not own (delete) or does own (report).
	ErrNotAllowed = errors.New("action not allowed for this message")
)

// ChatController owns the chat page: the session identity, the chat list,
// the active chat and a per-chat message cache. Every mutation goes to the
// server first and the authoritative list is re-fetched afterwards; the
// cache is never edited locally.
type ChatController struct {
	client   *api.Client
	view     view.Renderer
	interval time.Duration

	mu             sync.Mutex
	currentUser    *models.User
	chats          []models.Chat
	currentChat    *models.Chat
	messagesByChat map[int][]models.Message

	poll *poller.Poller
}

// NewChatController creates the controller; nothing is fetched until Start.
func NewChatController(client *api.Client, v view.Renderer, pollInterval time.Duration) *ChatController {
	return &ChatController{
		client:         client,
		view:           v,
		interval:       pollInterval,
		messagesByChat: make(map[int][]models.Message),
	}
}

// Start verifies the session, loads the initial chat list and begins the
// periodic refresh. ErrUnauthorized means the caller must redirect to login.
func (c *ChatController) Start(ctx context.Context) error {
	if err := c.CheckSession(ctx); err != nil {
		return err
	}
	c.RefreshChats(ctx)

	c.poll = poller.New(c.interval, c.refreshCycle)
	c.poll.Start(ctx)
	return nil
}

// Stop ends the polling loop.
func (c *ChatController) Stop() {
	if c.poll != nil {
		c.poll.Stop()
	}
}

// CheckSession fetches the current user. Any failure, network included, is
// treated as an absent session.
func (c *ChatController) CheckSession(ctx context.Context) error {
	user, err := c.client.CurrentUser(ctx)
	if err != nil {
		if !errors.Is(err, api.ErrUnauthorized) {
			logger.Warn("session check failed", zap.Error(err))
		}
		return api.ErrUnauthorized
	}
	c.mu.Lock()
	c.currentUser = user
	c.mu.Unlock()
	c.view.ShowCurrentUser(user.Username)
	return nil
}

// CurrentUser returns the session identity, nil before CheckSession.
func (c *ChatController) CurrentUser() *models.User {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentUser
}

// CurrentChatID returns the active chat's id, 0 when none is selected.
func (c *ChatController) CurrentChatID() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.currentChat == nil {
		return 0
	}
	return c.currentChat.ID
}

// refreshCycle is the periodic task: the active chat's messages (if any)
// and the chat list, unconditionally. This is the only way other users'
// messages become visible.
func (c *ChatController) refreshCycle(ctx context.Context) {
	if id := c.CurrentChatID(); id != 0 {
		c.loadMessages(ctx, id)
	}
	c.RefreshChats(ctx)
	metrics.PollCyclesTotal.WithLabelValues("chat").Inc()
}

// RefreshChats re-fetches the chat list and re-renders the sidebar. The last
// response wins; there is no merging.
func (c *ChatController) RefreshChats(ctx context.Context) {
	chats, err := c.client.Chats(ctx)
	if err != nil {
		logger.Warn("load chats failed", zap.Error(err))
		return
	}
	c.mu.Lock()
	c.chats = chats
	uid := 0
	if c.currentUser != nil {
		uid = c.currentUser.ID
	}
	active := 0
	if c.currentChat != nil {
		active = c.currentChat.ID
	}
	items := view.BuildChatList(chats, uid, active)
	c.mu.Unlock()

	c.view.RenderChatList(items)
}

// SearchUsers runs a username search. An empty query clears the results
// without a network call; the searcher is excluded from matches.
func (c *ChatController) SearchUsers(ctx context.Context, query string) {
	if strings.TrimSpace(query) == "" {
		c.view.ClearSearchResults()
		return
	}
	users, err := c.client.SearchUsers(ctx, query)
	if err != nil {
		logger.Warn("user search failed", zap.Error(err))
		return
	}
	c.mu.Lock()
	uid := 0
	if c.currentUser != nil {
		uid = c.currentUser.ID
	}
	c.mu.Unlock()
	c.view.RenderSearchResults(view.BuildSearchResults(users, uid))
}

// StartPrivateChat requests the 1:1 chat with the given user (idempotent on
// the server). On success the search UI is cleared and the chat list
// refreshed.
func (c *ChatController) StartPrivateChat(ctx context.Context, otherUserID int) error {
	if _, err := c.client.CreatePrivateChat(ctx, otherUserID); err != nil {
		logger.Warn("start private chat failed", zap.Error(err))
		return err
	}
	c.view.ClearSearchResults()
	c.RefreshChats(ctx)
	return nil
}

// SelectChat makes the chat active, re-renders the sidebar with the new
// active marker and loads the chat's messages. The previous chat's view is
// replaced, never retained.
func (c *ChatController) SelectChat(ctx context.Context, chatID int) error {
	c.mu.Lock()
	var selected *models.Chat
	for i := range c.chats {
		if c.chats[i].ID == chatID {
			selected = &c.chats[i]
			break
		}
	}
	if selected == nil {
		c.mu.Unlock()
		return api.ErrNotFound
	}
	c.currentChat = selected
	uid := 0
	if c.currentUser != nil {
		uid = c.currentUser.ID
	}
	items := view.BuildChatList(c.chats, uid, chatID)
	c.mu.Unlock()

	c.view.RenderChatList(items)
	c.loadMessages(ctx, chatID)
	return nil
}

// loadMessages fetches a chat's history. The request is tagged with the chat
// id it was issued for: if the user has switched chats by the time the
// response arrives, it is discarded instead of overwriting the active view.
func (c *ChatController) loadMessages(ctx context.Context, chatID int) {
	messages, err := c.client.Messages(ctx, chatID)
	if err != nil {
		logger.Warn("load messages failed", zap.Int("chat_id", chatID), zap.Error(err))
		return
	}

	c.mu.Lock()
	if c.currentChat == nil || c.currentChat.ID != chatID {
		c.mu.Unlock()
		metrics.StaleResponsesDiscarded.Inc()
		logger.Debug("discarded stale message response", zap.Int("chat_id", chatID))
		return
	}
	c.messagesByChat[chatID] = messages
	uid := 0
	if c.currentUser != nil {
		uid = c.currentUser.ID
	}
	conv := view.BuildConversation(c.currentChat, messages, uid)
	c.mu.Unlock()

	c.view.RenderConversation(conv)
}

// SendMessage posts the composer content to the active chat. Blank or
// whitespace-only content, or no selected chat, is a no-op with no network
// request. On success the message list and the chat list are both refreshed
// so last-message previews update.
func (c *ChatController) SendMessage(ctx context.Context, content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil
	}
	chatID := c.CurrentChatID()
	if chatID == 0 {
		return ErrNoChatSelected
	}

	if err := c.client.SendMessage(ctx, chatID, content); err != nil {
		logger.Warn("send message failed", zap.Int("chat_id", chatID), zap.Error(err))
		c.view.ShowError("chat", err.Error())
		return err
	}
	c.loadMessages(ctx, chatID)
	c.RefreshChats(ctx)
	return nil
}

// DeleteMessage removes one of the user's own messages. The action requires
// explicit confirmation and is refused locally for messages the user did not
// send; neither case issues a request.
func (c *ChatController) DeleteMessage(ctx context.Context, messageID int, confirmed bool) error {
	if !confirmed {
		return nil
	}
	chatID := c.CurrentChatID()
	if chatID == 0 {
		return ErrNoChatSelected
	}

	c.mu.Lock()
	uid := 0
	if c.currentUser != nil {
		uid = c.currentUser.ID
	}
	var target *models.Message
	for i, m := range c.messagesByChat[chatID] {
		if m.ID == messageID {
			target = &c.messagesByChat[chatID][i]
			break
		}
	}
	c.mu.Unlock()

	if target == nil || !target.CanDelete(uid) {
		return ErrNotAllowed
	}

	if err := c.client.DeleteMessage(ctx, messageID); err != nil {
		logger.Warn("delete message failed", zap.Int("message_id", messageID), zap.Error(err))
		c.view.ShowError("chat", err.Error())
		return err
	}
	c.loadMessages(ctx, chatID)
	return nil
}

// ReportMessage flags a message with a reason. An empty reason never issues
// a request; the report is not retried on failure.
func (c *ChatController) ReportMessage(ctx context.Context, messageID int, reason string) error {
	if strings.TrimSpace(reason) == "" {
		c.view.ShowError("report", "Enter a reason for the report")
		return errors.New("report reason required")
	}

	if err := c.client.ReportMessage(ctx, messageID, reason); err != nil {
		logger.Warn("report failed", zap.Int("message_id", messageID), zap.Error(err))
		c.view.ShowError("report", "Failed to submit report")
		return err
	}
	c.view.ShowInfo("report", "Report sent to the administrator")
	return nil
}

// LoadContacts fetches the users eligible for group membership and renders
// them as selectable options.
func (c *ChatController) LoadContacts(ctx context.Context) error {
	contacts, err := c.client.Contacts(ctx)
	if err != nil {
		logger.Warn("load contacts failed", zap.Error(err))
		return err
	}
	c.view.RenderContacts(view.BuildContacts(contacts))
	return nil
}

// CreateGroup creates a group chat. Name and at least one participant are
// required before any request is made.
func (c *ChatController) CreateGroup(ctx context.Context, name string, participantIDs []int) error {
	if strings.TrimSpace(name) == "" {
		c.view.ShowError("group", "Enter a group name")
		return errors.New("group name required")
	}
	if len(participantIDs) == 0 {
		c.view.ShowError("group", "Select at least one participant")
		return errors.New("group participants required")
	}

	if _, err := c.client.CreateGroupChat(ctx, name, participantIDs); err != nil {
		logger.Warn("create group failed", zap.Error(err))
		c.view.ShowError("group", "Failed to create group")
		return err
	}
	c.RefreshChats(ctx)
	return nil
}

// SendFriendRequest invites a user to the contact list.
func (c *ChatController) SendFriendRequest(ctx context.Context, toUserID int) error {
	resp, err := c.client.SendFriendRequest(ctx, toUserID)
	if err != nil {
		logger.Warn("friend request failed", zap.Int("to_user_id", toUserID), zap.Error(err))
		c.view.ShowError("friends", msgConnectionError)
		return err
	}
	if !resp.Success {
		c.view.ShowError("friends", resp.Message)
		return &api.Error{Message: resp.Message}
	}
	c.view.ShowInfo("friends", resp.Message)
	return nil
}

// LoadFriendRequests fetches and renders incoming invitations.
func (c *ChatController) LoadFriendRequests(ctx context.Context) error {
	reqs, err := c.client.IncomingFriendRequests(ctx)
	if err != nil {
		logger.Warn("load friend requests failed", zap.Error(err))
		return err
	}
	c.view.RenderFriendRequests(view.BuildFriendRequests(reqs))
	return nil
}

// AcceptFriendRequest accepts an invitation and refreshes the pending list.
func (c *ChatController) AcceptFriendRequest(ctx context.Context, requestID int) error {
	resp, err := c.client.AcceptFriendRequest(ctx, requestID)
	if err != nil {
		c.view.ShowError("friends", msgConnectionError)
		return err
	}
	if !resp.Success {
		c.view.ShowError("friends", resp.Message)
		return &api.Error{Message: resp.Message}
	}
	return c.LoadFriendRequests(ctx)
}

// RejectFriendRequest declines an invitation and refreshes the pending list.
func (c *ChatController) RejectFriendRequest(ctx context.Context, requestID int) error {
	resp, err := c.client.RejectFriendRequest(ctx, requestID)
	if err != nil {
		c.view.ShowError("friends", msgConnectionError)
		return err
	}
	if !resp.Success {
		c.view.ShowError("friends", resp.Message)
		return &api.Error{Message: resp.Message}
	}
	return c.LoadFriendRequests(ctx)
}

// Logout stops polling and ends the session. The caller redirects to the
// login page regardless of the outcome.
func (c *ChatController) Logout(ctx context.Context) {
	c.Stop()
	if err := c.client.Logout(ctx); err != nil {
		logger.Warn("logout failed", zap.Error(err))
	}
}
