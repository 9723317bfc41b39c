package view

import (
	"time"

	"chat-client/internal/models"
)

// View models are plain data computed from server state; rendering them is a
// separate concern. Controllers build these and hand them to a Renderer.

// ChatListItem is one row of the chat sidebar.
type ChatListItem struct {
	ID          int
	Title       string
	LastMessage string
	Active      bool
}

// MessageView is one rendered message. Deleted messages carry the
// placeholder content and offer no actions.
type MessageView struct {
	ID        int
	Sender    string
	Time      string
	Content   string
	Own       bool
	Deleted   bool
	CanDelete bool
	CanReport bool
}

// Conversation is the active chat window.
type Conversation struct {
	ChatID       int
	Title        string
	Participants string
	Messages     []MessageView
}

// SearchResult is one row of the user search dropdown.
type SearchResult struct {
	UserID   int
	Username string
}

// ContactOption is one selectable participant in the group creation modal.
type ContactOption struct {
	UserID   int
	Username string
}

// FriendRequestView is one incoming contact invitation.
type FriendRequestView struct {
	ID   int
	From string
}

// ReportView is one report card on the admin page.
type ReportView struct {
	ID            int
	Reporter      string
	Reason        string
	StatusBadge   string
	Pending       bool
	Decision      string
	MessageText   string
	MessageSender string
	HasMessage    bool
}

// UserRow is one row of the admin user list. Blocked is derived at build
// time from the wall clock, so rebuilding the same data later can flip it.
type UserRow struct {
	ID       int
	Username string
	Blocked  bool
}

// Renderer is the output side of a page. The terminal implementation lives
// in this package; tests substitute a recording fake.
type Renderer interface {
	ShowCurrentUser(username string)
	RenderChatList(items []ChatListItem)
	RenderConversation(conv Conversation)
	RenderSearchResults(results []SearchResult)
	ClearSearchResults()
	RenderContacts(contacts []ContactOption)
	RenderFriendRequests(reqs []FriendRequestView)
	RenderReports(reports []ReportView)
	RenderUsers(users []UserRow)
	ShowInfo(scope, text string)
	ShowError(scope, text string)
}

// BuildChatList maps chats to sidebar rows relative to the viewing user.
func BuildChatList(chats []models.Chat, currentUserID, activeChatID int) []ChatListItem {
	items := make([]ChatListItem, 0, len(chats))
	for i := range chats {
		c := &chats[i]
		last := "No messages"
		if c.LastMessage != nil {
			last = c.LastMessage.DisplayContent()
		}
		items = append(items, ChatListItem{
			ID:          c.ID,
			Title:       c.DisplayName(currentUserID),
			LastMessage: last,
			Active:      c.ID == activeChatID,
		})
	}
	return items
}

// BuildConversation maps a chat and its messages to the chat window model.
func BuildConversation(chat *models.Chat, messages []models.Message, currentUserID int) Conversation {
	conv := Conversation{
		ChatID:       chat.ID,
		Title:        chat.DisplayName(currentUserID),
		Participants: chat.ParticipantNames(currentUserID),
		Messages:     make([]MessageView, 0, len(messages)),
	}
	for i := range messages {
		m := &messages[i]
		conv.Messages = append(conv.Messages, MessageView{
			ID:        m.ID,
			Sender:    m.SenderName,
			Time:      m.CreatedAt.Format("15:04:05"),
			Content:   m.DisplayContent(),
			Own:       m.SenderID == currentUserID,
			Deleted:   m.IsDeleted,
			CanDelete: m.CanDelete(currentUserID),
			CanReport: m.CanReport(currentUserID),
		})
	}
	return conv
}

// BuildSearchResults maps a user search response, excluding the searcher.
func BuildSearchResults(users []models.User, currentUserID int) []SearchResult {
	results := make([]SearchResult, 0, len(users))
	for _, u := range users {
		if u.ID == currentUserID {
			continue
		}
		results = append(results, SearchResult{UserID: u.ID, Username: u.Username})
	}
	return results
}

// BuildContacts maps the contact list to group modal options.
func BuildContacts(contacts []models.User) []ContactOption {
	opts := make([]ContactOption, 0, len(contacts))
	for _, c := range contacts {
		opts = append(opts, ContactOption{UserID: c.ID, Username: c.Username})
	}
	return opts
}

// BuildFriendRequests maps incoming invitations.
func BuildFriendRequests(reqs []models.FriendRequest) []FriendRequestView {
	views := make([]FriendRequestView, 0, len(reqs))
	for _, r := range reqs {
		views = append(views, FriendRequestView{ID: r.ID, From: r.FromUsername})
	}
	return views
}

// BuildReportViews maps reports to admin cards. The decision text is only
// shown once resolved.
func BuildReportViews(reports []models.Report) []ReportView {
	views := make([]ReportView, 0, len(reports))
	for i := range reports {
		r := &reports[i]
		v := ReportView{
			ID:          r.ID,
			Reporter:    r.ReporterName,
			Reason:      r.Reason,
			StatusBadge: r.StatusDisplay(),
			Pending:     r.IsPending(),
		}
		if r.IsResolved() {
			v.Decision = r.AdminDecision
		}
		if r.Message != nil {
			v.HasMessage = true
			v.MessageText = r.Message.DisplayContent()
			v.MessageSender = r.Message.SenderName
		}
		views = append(views, v)
	}
	return views
}

// BuildUserRows maps accounts to admin rows, deriving blocked state at the
// given instant.
func BuildUserRows(users []models.User, now time.Time) []UserRow {
	rows := make([]UserRow, 0, len(users))
	for i := range users {
		u := &users[i]
		rows = append(rows, UserRow{
			ID:       u.ID,
			Username: u.Username,
			Blocked:  u.IsCurrentlyBlocked(now),
		})
	}
	return rows
}
