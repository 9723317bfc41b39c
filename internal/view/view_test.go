package view

import (
	"testing"
	"time"

	"chat-client/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildChatList(t *testing.T) {
	chats := []models.Chat{
		{
			ID: 1,
			Participants: []models.User{
				{ID: 1, Username: "alice"},
				{ID: 2, Username: "bob"},
			},
			LastMessage: &models.Message{Content: "see you"},
		},
		{ID: 2, Name: "team", IsGroup: true},
	}

	items := BuildChatList(chats, 1, 2)
	require.Len(t, items, 2)

	assert.Equal(t, "bob", items[0].Title)
	assert.Equal(t, "see you", items[0].LastMessage)
	assert.False(t, items[0].Active)

	assert.Equal(t, "team", items[1].Title)
	assert.Equal(t, "No messages", items[1].LastMessage)
	assert.True(t, items[1].Active)
}

func TestBuildChatList_DeletedLastMessageShowsPlaceholder(t *testing.T) {
	chats := []models.Chat{
		{ID: 1, Name: "g", IsGroup: true, LastMessage: &models.Message{Content: "x", IsDeleted: true}},
	}
	items := BuildChatList(chats, 1, 0)
	require.Len(t, items, 1)
	assert.Equal(t, models.DeletedPlaceholder, items[0].LastMessage)
}

func TestBuildConversation(t *testing.T) {
	chat := &models.Chat{
		ID: 5,
		Participants: []models.User{
			{ID: 1, Username: "alice"},
			{ID: 2, Username: "bob"},
		},
	}
	messages := []models.Message{
		{ID: 10, SenderID: 1, SenderName: "alice", Content: "hi"},
		{ID: 11, SenderID: 2, SenderName: "bob", Content: "hello"},
		{ID: 12, SenderID: 2, SenderName: "bob", Content: "oops", IsDeleted: true},
	}

	conv := BuildConversation(chat, messages, 1)
	assert.Equal(t, "bob", conv.Title)
	require.Len(t, conv.Messages, 3)

	own := conv.Messages[0]
	assert.True(t, own.Own)
	assert.True(t, own.CanDelete)
	assert.False(t, own.CanReport)

	other := conv.Messages[1]
	assert.False(t, other.Own)
	assert.False(t, other.CanDelete)
	assert.True(t, other.CanReport)

	deleted := conv.Messages[2]
	assert.True(t, deleted.Deleted)
	assert.Equal(t, models.DeletedPlaceholder, deleted.Content)
	assert.False(t, deleted.CanDelete)
	assert.False(t, deleted.CanReport)
}

func TestBuildSearchResults_ExcludesSelf(t *testing.T) {
	users := []models.User{
		{ID: 1, Username: "anna"},
		{ID: 2, Username: "annette"},
	}

	results := BuildSearchResults(users, 1)
	require.Len(t, results, 1)
	assert.Equal(t, "annette", results[0].Username)
}

func TestBuildReportViews(t *testing.T) {
	reports := []models.Report{
		{
			ID:           1,
			ReporterName: "alice",
			Reason:       "spam",
			Status:       models.ReportPending,
			Message:      &models.Message{Content: "buy now", SenderName: "bob"},
		},
		{
			ID:            2,
			ReporterName:  "carol",
			Reason:        "abuse",
			Status:        models.ReportApproved,
			AdminDecision: "User warned",
		},
	}

	views := BuildReportViews(reports)
	require.Len(t, views, 2)

	pending := views[0]
	assert.True(t, pending.Pending)
	assert.Empty(t, pending.Decision)
	assert.True(t, pending.HasMessage)
	assert.Equal(t, "buy now", pending.MessageText)
	assert.Equal(t, "bob", pending.MessageSender)

	resolved := views[1]
	assert.False(t, resolved.Pending)
	assert.Equal(t, "User warned", resolved.Decision)
	assert.False(t, resolved.HasMessage)
}

func TestBuildUserRows_DerivesBlockedAtBuildTime(t *testing.T) {
	until := time.Now().Add(time.Hour)
	users := []models.User{
		{ID: 1, Username: "alice"},
		{ID: 2, Username: "bob", IsBlocked: true, BlockedUntil: &until},
	}

	rows := BuildUserRows(users, time.Now())
	require.Len(t, rows, 2)
	assert.False(t, rows[0].Blocked)
	assert.True(t, rows[1].Blocked)

	// The same records rebuild as unblocked once the deadline passes.
	rows = BuildUserRows(users, until.Add(time.Minute))
	assert.False(t, rows[1].Blocked)
}
