package storage

import (
	"context"
	"time"
)

//go:generate moq -out session_mock.go . SessionStorage

// SessionStorage defines interface for storing the browsing session of the client.
// A session keeps the display name (and the last room) until it expires
// or the user leaves.
type SessionStorage interface {
	// SaveSession stores the session record, replacing the previous one
	SaveSession(ctx context.Context, session *Session) error

	// GetSession returns the current session.
	// Returns ErrSessionNotFound if nothing is stored or the record has expired
	GetSession(ctx context.Context) (*Session, error)

	// DeleteSession removes the stored session (leave)
	DeleteSession(ctx context.Context) error
}

// Session represents the client session record
type Session struct {
	Username  string `json:"username"`
	RoomCode  string `json:"room_code,omitempty"`
	CreatedAt int64  `json:"created_at"`
	ExpiresAt int64  `json:"expires_at"`
}

// Expired reports whether the session is no longer valid at now
func (s *Session) Expired(now time.Time) bool {
	return s.ExpiresAt != 0 && now.Unix() >= s.ExpiresAt
}
