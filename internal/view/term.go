package view

import (
	"fmt"
	"io"
	"sync"
)

// TermRenderer writes page views as plain text. Polling refreshes and user
// actions render from different goroutines, so writes are serialized.
type TermRenderer struct {
	mu sync.Mutex
	w  io.Writer
}

// NewTermRenderer creates a renderer writing to w.
func NewTermRenderer(w io.Writer) *TermRenderer {
	return &TermRenderer{w: w}
}

func (t *TermRenderer) ShowCurrentUser(username string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.w, "Logged in as %s\n", username)
}

func (t *TermRenderer) RenderChatList(items []ChatListItem) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(items) == 0 {
		fmt.Fprintln(t.w, "No chats")
		return
	}
	fmt.Fprintln(t.w, "Chats:")
	for _, it := range items {
		marker := " "
		if it.Active {
			marker = "*"
		}
		fmt.Fprintf(t.w, " %s [%d] %s - %s\n", marker, it.ID, it.Title, it.LastMessage)
	}
}

func (t *TermRenderer) RenderConversation(conv Conversation) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.w, "=== %s (%s) ===\n", conv.Title, conv.Participants)
	for _, m := range conv.Messages {
		fmt.Fprintf(t.w, "[%s] %s: %s", m.Time, m.Sender, m.Content)
		switch {
		case m.CanDelete:
			fmt.Fprintf(t.w, "  (delete %d)", m.ID)
		case m.CanReport:
			fmt.Fprintf(t.w, "  (report %d)", m.ID)
		}
		fmt.Fprintln(t.w)
	}
}

func (t *TermRenderer) RenderSearchResults(results []SearchResult) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, r := range results {
		fmt.Fprintf(t.w, "  %s (start chat: open-with %d)\n", r.Username, r.UserID)
	}
}

func (t *TermRenderer) ClearSearchResults() {
	// Nothing to erase on an append-only terminal.
}

func (t *TermRenderer) RenderContacts(contacts []ContactOption) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.w, "Contacts:")
	for _, c := range contacts {
		fmt.Fprintf(t.w, "  [%d] %s\n", c.UserID, c.Username)
	}
}

func (t *TermRenderer) RenderFriendRequests(reqs []FriendRequestView) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(reqs) == 0 {
		fmt.Fprintln(t.w, "No incoming friend requests")
		return
	}
	fmt.Fprintln(t.w, "Incoming friend requests:")
	for _, r := range reqs {
		fmt.Fprintf(t.w, "  [%d] from %s\n", r.ID, r.From)
	}
}

func (t *TermRenderer) RenderReports(reports []ReportView) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(reports) == 0 {
		fmt.Fprintln(t.w, "No reports to review")
		return
	}
	for _, r := range reports {
		fmt.Fprintf(t.w, "Report %d from %s [%s]\n", r.ID, r.Reporter, r.StatusBadge)
		fmt.Fprintf(t.w, "  Reason: %s\n", r.Reason)
		if r.HasMessage {
			fmt.Fprintf(t.w, "  Message: %q - %s\n", r.MessageText, r.MessageSender)
		}
		if r.Decision != "" {
			fmt.Fprintf(t.w, "  Decision: %s\n", r.Decision)
		}
		if r.Pending {
			fmt.Fprintf(t.w, "  (resolve with: decide %d)\n", r.ID)
		}
	}
}

func (t *TermRenderer) RenderUsers(users []UserRow) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, u := range users {
		status := "active"
		if u.Blocked {
			status = "blocked"
		}
		fmt.Fprintf(t.w, "  [%d] %-20s %s\n", u.ID, u.Username, status)
	}
}

func (t *TermRenderer) ShowInfo(scope, text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.w, "%s: %s\n", scope, text)
}

func (t *TermRenderer) ShowError(scope, text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.w, "%s error: %s\n", scope, text)
}
