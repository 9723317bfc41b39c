package models

import (
	"strings"
	"time"
)

// Chat is a conversation container, either a 1:1 private chat or a group.
type Chat struct {
	ID            int       `json:"id"`
	Name          string    `json:"name,omitempty"`
	IsGroup       bool      `json:"isGroup"`
	CreatedBy     int       `json:"createdBy,omitempty"`
	CreatedByName string    `json:"createdByName,omitempty"`
	Participants  []User    `json:"participants"`
	LastMessage   *Message  `json:"lastMessage,omitempty"`
	CreatedAt     time.Time `json:"createdAt,omitempty"`
}

// DisplayName returns the chat label as seen by the given user. A two-party
// private chat is labeled with the other participant's username; groups use
// their own name.
func (c *Chat) DisplayName(currentUserID int) string {
	if !c.IsGroup && len(c.Participants) == 2 {
		for _, p := range c.Participants {
			if p.ID != currentUserID {
				return p.Username
			}
		}
	}
	if c.Name != "" {
		return c.Name
	}
	return "Group chat"
}

// ParticipantNames lists participant usernames for the chat header. Groups
// include everyone; private chats show only the other side.
func (c *Chat) ParticipantNames(currentUserID int) string {
	if c.IsGroup {
		names := make([]string, 0, len(c.Participants))
		for _, p := range c.Participants {
			names = append(names, p.Username)
		}
		if len(names) == 0 {
			return "No participants"
		}
		return strings.Join(names, ", ")
	}
	for _, p := range c.Participants {
		if p.ID != currentUserID {
			return p.Username
		}
	}
	return "Unknown user"
}

// HasParticipant reports whether the user is part of the chat.
func (c *Chat) HasParticipant(userID int) bool {
	for _, p := range c.Participants {
		if p.ID == userID {
			return true
		}
	}
	return false
}
