package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Rud356/test-task-auth-demo/internal/core/domain"
	"github.com/Rud356/test-task-auth-demo/internal/core/port"
)

// StubPublisher logs events instead of sending them to Kafka. Useful for development environments.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a development-friendly event publisher.
func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: logger}
}

func (p *StubPublisher) logEvent(eventType, userID string, at time.Time, payload any) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	p.logger.Info("Stub event published",
		zap.String("event_type", eventType),
		zap.String("user_id", userID),
		zap.Time("timestamp", at.UTC()),
		zap.Any("payload", payload),
	)
}

// PublishUserRegistered logs demo.user.registered events.
func (p *StubPublisher) PublishUserRegistered(_ context.Context, event domain.UserRegisteredEvent) error {
	payload := map[string]any{
		"user_id":             event.UserID,
		"email":               event.Email,
		"registered_at":       event.RegisteredAt,
		"registration_method": event.RegistrationMethod,
		"metadata":            event.Metadata,
	}
	p.logEvent("user.registered", event.UserID, event.RegisteredAt, payload)
	return nil
}

// PublishUserTerminated logs demo.user.terminated events.
func (p *StubPublisher) PublishUserTerminated(_ context.Context, event domain.UserTerminatedEvent) error {
	payload := map[string]any{
		"user_id":       event.UserID,
		"terminated_by": event.TerminatedBy,
		"terminated_at": event.TerminatedAt,
		"metadata":      event.Metadata,
	}
	p.logEvent("user.terminated", event.UserID, event.TerminatedAt, payload)
	return nil
}

// PublishPasswordChanged logs demo.user.password.changed events.
func (p *StubPublisher) PublishPasswordChanged(_ context.Context, event domain.PasswordChangedEvent) error {
	payload := map[string]any{
		"user_id":    event.UserID,
		"changed_by": event.ChangedBy,
		"changed_at": event.ChangedAt,
		"metadata":   event.Metadata,
	}
	p.logEvent("user.password.changed", event.UserID, event.ChangedAt, payload)
	return nil
}

// PublishSessionTerminated logs demo.session.terminated events.
func (p *StubPublisher) PublishSessionTerminated(_ context.Context, event domain.SessionTerminatedEvent) error {
	payload := map[string]any{
		"session_id":    event.SessionID,
		"user_id":       event.UserID,
		"reason":        event.Reason,
		"terminated_at": event.TerminatedAt,
		"metadata":      event.Metadata,
	}
	p.logEvent("session.terminated", event.UserID, event.TerminatedAt, payload)
	return nil
}

// PublishRoleAssignmentChanged logs demo.role.assignment.changed events.
func (p *StubPublisher) PublishRoleAssignmentChanged(_ context.Context, event domain.RoleAssignmentChangedEvent) error {
	payload := map[string]any{
		"user_id":    event.UserID,
		"role_id":    event.RoleID,
		"assigned":   event.Assigned,
		"changed_by": event.ChangedBy,
		"changed_at": event.ChangedAt,
		"metadata":   event.Metadata,
	}
	p.logEvent("role.assignment.changed", event.UserID, event.ChangedAt, payload)
	return nil
}

var _ port.EventPublisher = (*StubPublisher)(nil)
