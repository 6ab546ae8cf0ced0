package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Rud356/test-task-auth-demo/internal/core/domain"
	"github.com/Rud356/test-task-auth-demo/internal/core/port"
	"github.com/Rud356/test-task-auth-demo/internal/infra/config"
)

const schemaVersion = "1.0"

// EventPublisher implements port.EventPublisher using Kafka.
type EventPublisher struct {
	producer *Producer
	logger   *zap.Logger
	appCfg   config.AppSettings
}

// NewEventPublisher constructs a Kafka-backed event publisher.
func NewEventPublisher(producer *Producer, appCfg config.AppSettings, logger *zap.Logger) *EventPublisher {
	return &EventPublisher{producer: producer, appCfg: appCfg, logger: logger}
}

type envelopeMetadata map[string]string

type eventEnvelope struct {
	EventID   string           `json:"event_id"`
	EventType string           `json:"event_type"`
	UserID    string           `json:"user_id,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
	Version   string           `json:"version"`
	Payload   any              `json:"payload"`
	Metadata  envelopeMetadata `json:"metadata,omitempty"`
}

func (p *EventPublisher) publish(ctx context.Context, eventID, eventType, userID string, ts time.Time, payload any) error {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	id := eventID
	if id == "" {
		id = uuid.NewString()
	}

	metadata := envelopeMetadata{
		"service":     p.appCfg.Name,
		"environment": p.appCfg.Env,
	}

	envelope := eventEnvelope{
		EventID:   id,
		EventType: eventType,
		UserID:    userID,
		Timestamp: ts.UTC(),
		Version:   schemaVersion,
		Payload:   payload,
		Metadata:  metadata,
	}

	bytes, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.producer.TopicName(eventType),
		Value: sarama.ByteEncoder(bytes),
	}

	select {
	case p.producer.Producer().Input() <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PublishUserRegistered publishes demo.user.registered events.
func (p *EventPublisher) PublishUserRegistered(ctx context.Context, event domain.UserRegisteredEvent) error {
	payload := struct {
		UserID             string         `json:"user_id"`
		Email              string         `json:"email"`
		RegisteredAt       time.Time      `json:"registered_at"`
		RegistrationMethod string         `json:"registration_method"`
		Metadata           map[string]any `json:"metadata,omitempty"`
	}{
		UserID:             event.UserID,
		Email:              event.Email,
		RegisteredAt:       event.RegisteredAt.UTC(),
		RegistrationMethod: event.RegistrationMethod,
		Metadata:           event.Metadata,
	}

	return p.publish(ctx, event.EventID, "user.registered", event.UserID, event.RegisteredAt, payload)
}

// PublishUserTerminated publishes demo.user.terminated events.
func (p *EventPublisher) PublishUserTerminated(ctx context.Context, event domain.UserTerminatedEvent) error {
	payload := struct {
		UserID       string         `json:"user_id"`
		TerminatedBy string         `json:"terminated_by"`
		TerminatedAt time.Time      `json:"terminated_at"`
		Metadata     map[string]any `json:"metadata,omitempty"`
	}{
		UserID:       event.UserID,
		TerminatedBy: event.TerminatedBy,
		TerminatedAt: event.TerminatedAt.UTC(),
		Metadata:     event.Metadata,
	}

	return p.publish(ctx, event.EventID, "user.terminated", event.UserID, event.TerminatedAt, payload)
}

// PublishPasswordChanged publishes demo.user.password.changed events.
func (p *EventPublisher) PublishPasswordChanged(ctx context.Context, event domain.PasswordChangedEvent) error {
	payload := struct {
		UserID    string         `json:"user_id"`
		ChangedBy string         `json:"changed_by"`
		ChangedAt time.Time      `json:"changed_at"`
		Metadata  map[string]any `json:"metadata,omitempty"`
	}{
		UserID:    event.UserID,
		ChangedBy: event.ChangedBy,
		ChangedAt: event.ChangedAt.UTC(),
		Metadata:  event.Metadata,
	}

	return p.publish(ctx, event.EventID, "user.password.changed", event.UserID, event.ChangedAt, payload)
}

// PublishSessionTerminated publishes demo.session.terminated events.
func (p *EventPublisher) PublishSessionTerminated(ctx context.Context, event domain.SessionTerminatedEvent) error {
	payload := struct {
		SessionID    string         `json:"session_id"`
		UserID       string         `json:"user_id"`
		Reason       string         `json:"reason"`
		TerminatedAt time.Time      `json:"terminated_at"`
		Metadata     map[string]any `json:"metadata,omitempty"`
	}{
		SessionID:    event.SessionID,
		UserID:       event.UserID,
		Reason:       event.Reason,
		TerminatedAt: event.TerminatedAt.UTC(),
		Metadata:     event.Metadata,
	}

	return p.publish(ctx, event.EventID, "session.terminated", event.UserID, event.TerminatedAt, payload)
}

// PublishRoleAssignmentChanged publishes demo.role.assignment.changed events.
func (p *EventPublisher) PublishRoleAssignmentChanged(ctx context.Context, event domain.RoleAssignmentChangedEvent) error {
	payload := struct {
		UserID    string         `json:"user_id"`
		RoleID    int64          `json:"role_id"`
		Assigned  bool           `json:"assigned"`
		ChangedBy string         `json:"changed_by"`
		ChangedAt time.Time      `json:"changed_at"`
		Metadata  map[string]any `json:"metadata,omitempty"`
	}{
		UserID:    event.UserID,
		RoleID:    event.RoleID,
		Assigned:  event.Assigned,
		ChangedBy: event.ChangedBy,
		ChangedAt: event.ChangedAt.UTC(),
		Metadata:  event.Metadata,
	}

	return p.publish(ctx, event.EventID, "role.assignment.changed", event.UserID, event.ChangedAt, payload)
}

var _ port.EventPublisher = (*EventPublisher)(nil)
