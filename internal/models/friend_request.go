package models

import "time"

// FriendRequest is a pending contact invitation between two users.
type FriendRequest struct {
	ID           int       `json:"id"`
	FromUserID   int       `json:"fromUserId"`
	FromUsername string    `json:"fromUsername"`
	ToUserID     int       `json:"toUserId"`
	Status       string    `json:"status,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}
