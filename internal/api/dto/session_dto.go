package dto

import "time"

// CreateSessionRequest payload. The role is self-selected and trusted as
// given; there is no credential check.
type CreateSessionRequest struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

// SessionResponse returns the issued token.
type SessionResponse struct {
	Token     string    `json:"token"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}
