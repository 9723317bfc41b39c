package models

import "time"

// Role values returned by the server.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// User is the server's projection of an account. The same type backs the
// session identity, search results and the admin user list; optional fields
// are simply absent in the smaller projections.
type User struct {
	ID           int        `json:"id"`
	Username     string     `json:"username"`
	Role         string     `json:"role,omitempty"`
	IsBlocked    bool       `json:"isBlocked,omitempty"`
	BlockedUntil *time.Time `json:"blockedUntil,omitempty"`
	CreatedAt    time.Time  `json:"createdAt,omitempty"`
}

// IsAdmin reports whether the account carries the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsCurrentlyBlocked derives the blocked state at the given instant.
// A permanent block has IsBlocked set and no BlockedUntil; a temporary block
// expires by time passing alone, so the answer can change between two calls
// without any server mutation.
func (u *User) IsCurrentlyBlocked(now time.Time) bool {
	if !u.IsBlocked {
		return false
	}
	if u.BlockedUntil == nil {
		return true
	}
	return u.BlockedUntil.After(now)
}
