package domain

import "time"

// Session represents a persisted login session keyed by a random token.
// Multiple live sessions per user are allowed.
type Session struct {
	ID        string
	UserID    string
	CreatedAt time.Time
	IsAlive   bool
}
