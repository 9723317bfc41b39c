package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestChatDisplayName_PrivateChatShowsOtherParticipant(t *testing.T) {
	chat := Chat{
		ID:      1,
		IsGroup: false,
		Participants: []User{
			{ID: 1, Username: "alice"},
			{ID: 2, Username: "bob"},
		},
	}

	assert.Equal(t, "bob", chat.DisplayName(1))
	assert.Equal(t, "alice", chat.DisplayName(2))
}

func TestChatDisplayName_GroupUsesName(t *testing.T) {
	chat := Chat{
		ID:      2,
		Name:    "team",
		IsGroup: true,
		Participants: []User{
			{ID: 1, Username: "alice"},
			{ID: 2, Username: "bob"},
			{ID: 3, Username: "carol"},
		},
	}

	assert.Equal(t, "team", chat.DisplayName(1))
}

func TestChatDisplayName_GroupWithoutNameFallsBack(t *testing.T) {
	chat := Chat{IsGroup: true}
	assert.Equal(t, "Group chat", chat.DisplayName(1))
}

func TestChatParticipantNames(t *testing.T) {
	group := Chat{
		IsGroup: true,
		Participants: []User{
			{ID: 1, Username: "alice"},
			{ID: 2, Username: "bob"},
		},
	}
	assert.Equal(t, "alice, bob", group.ParticipantNames(1))

	private := Chat{
		Participants: []User{
			{ID: 1, Username: "alice"},
			{ID: 2, Username: "bob"},
		},
	}
	assert.Equal(t, "bob", private.ParticipantNames(1))
}

func TestMessageDisplayContent_DeletedShowsPlaceholder(t *testing.T) {
	m := Message{Content: "hello", IsDeleted: true}
	assert.Equal(t, DeletedPlaceholder, m.DisplayContent())

	m.IsDeleted = false
	assert.Equal(t, "hello", m.DisplayContent())
}

func TestMessageActions_MutuallyExclusiveByOwnership(t *testing.T) {
	m := Message{ID: 1, SenderID: 7, Content: "hi"}

	assert.True(t, m.CanDelete(7))
	assert.False(t, m.CanReport(7))

	assert.False(t, m.CanDelete(8))
	assert.True(t, m.CanReport(8))
}

func TestMessageActions_NoneWhenDeleted(t *testing.T) {
	m := Message{ID: 1, SenderID: 7, IsDeleted: true}

	assert.False(t, m.CanDelete(7))
	assert.False(t, m.CanReport(8))
}

func TestUserIsCurrentlyBlocked(t *testing.T) {
	now := time.Now()
	future := now.Add(24 * time.Hour)
	past := now.Add(-24 * time.Hour)

	tests := []struct {
		name string
		user User
		want bool
	}{
		{"not blocked", User{}, false},
		{"permanent block", User{IsBlocked: true}, true},
		{"temporary block active", User{IsBlocked: true, BlockedUntil: &future}, true},
		{"temporary block expired", User{IsBlocked: true, BlockedUntil: &past}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.user.IsCurrentlyBlocked(now))
		})
	}
}

func TestUserBlockedStateFlipsWithTime(t *testing.T) {
	until := time.Now().Add(time.Hour)
	u := User{IsBlocked: true, BlockedUntil: &until}

	assert.True(t, u.IsCurrentlyBlocked(until.Add(-time.Minute)))
	assert.False(t, u.IsCurrentlyBlocked(until.Add(time.Minute)))
}

func TestReportStatus(t *testing.T) {
	pending := Report{Status: ReportPending}
	assert.True(t, pending.IsPending())
	assert.False(t, pending.IsResolved())

	approved := Report{Status: ReportApproved}
	assert.False(t, approved.IsPending())
	assert.True(t, approved.IsResolved())
	assert.Equal(t, "Approved", approved.StatusDisplay())

	rejected := Report{Status: ReportRejected}
	assert.True(t, rejected.IsResolved())
	assert.Equal(t, "Rejected", rejected.StatusDisplay())
}
