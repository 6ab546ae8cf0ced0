package domain

import "time"

// UserRegisteredEvent represents the payload for demo.user.registered messages.
type UserRegisteredEvent struct {
	EventID            string
	UserID             string
	Email              string
	RegisteredAt       time.Time
	RegistrationMethod string
	Metadata           map[string]any
}

// UserTerminatedEvent represents the payload for demo.user.terminated messages.
type UserTerminatedEvent struct {
	EventID      string
	UserID       string
	TerminatedBy string
	TerminatedAt time.Time
	Metadata     map[string]any
}

// PasswordChangedEvent represents the payload for demo.user.password.changed messages.
type PasswordChangedEvent struct {
	EventID   string
	UserID    string
	ChangedBy string
	ChangedAt time.Time
	Metadata  map[string]any
}

// SessionTerminatedEvent represents the payload for demo.session.terminated messages.
type SessionTerminatedEvent struct {
	EventID      string
	SessionID    string
	UserID       string
	Reason       string
	TerminatedAt time.Time
	Metadata     map[string]any
}

// RoleAssignmentChangedEvent represents the payload for demo.role.assignment.changed messages.
type RoleAssignmentChangedEvent struct {
	EventID   string
	UserID    string
	RoleID    int64
	Assigned  bool
	ChangedBy string
	ChangedAt time.Time
	Metadata  map[string]any
}
