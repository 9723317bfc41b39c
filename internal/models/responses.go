package models

// StatusResponse is the application-level envelope used by form-style
// endpoints. Success is signaled here, independent of the HTTP status.
type StatusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Role    string `json:"role,omitempty"`
}

// ChatCreatedResponse is returned by the private and group chat endpoints.
// Presence of ChatID signals success; creation is idempotent for private
// chats, so an existing pair returns the original id.
type ChatCreatedResponse struct {
	ChatID int `json:"chatId"`
}

// CreateGroupRequest is the JSON payload for group chat creation.
type CreateGroupRequest struct {
	Name           string `json:"name"`
	ParticipantIDs []int  `json:"participantIds"`
}

// ErrorResponse is the body of non-2xx API replies.
type ErrorResponse struct {
	Error string `json:"error"`
}
