package models

import "time"

// DeletedPlaceholder replaces the content of tombstoned messages in any view.
const DeletedPlaceholder = "Message deleted"

// Message is a single chat message. Deletion is a soft tombstone: the entry
// stays in the history with IsDeleted set and its content suppressed.
type Message struct {
	ID         int       `json:"id"`
	ChatID     int       `json:"chatId"`
	SenderID   int       `json:"senderId"`
	SenderName string    `json:"senderName"`
	Content    string    `json:"content"`
	IsDeleted  bool      `json:"isDeleted"`
	CreatedAt  time.Time `json:"createdAt"`
}

// DisplayContent returns the content to render, substituting the tombstone
// placeholder for deleted messages.
func (m *Message) DisplayContent() string {
	if m.IsDeleted {
		return DeletedPlaceholder
	}
	return m.Content
}

// CanDelete reports whether the user may remove the message. Only the sender
// sees the delete action, and only while the message is still live.
func (m *Message) CanDelete(userID int) bool {
	return m.SenderID == userID && !m.IsDeleted
}

// CanReport is the ownership complement of CanDelete: everyone except the
// sender may flag a live message. A message never offers both actions.
func (m *Message) CanReport(userID int) bool {
	return m.SenderID != userID && !m.IsDeleted
}
