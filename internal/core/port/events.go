package port

import (
	"context"

	"github.com/Rud356/test-task-auth-demo/internal/core/domain"
)

// EventPublisher publishes domain events to the message bus.
type EventPublisher interface {
	PublishUserRegistered(ctx context.Context, event domain.UserRegisteredEvent) error
	PublishUserTerminated(ctx context.Context, event domain.UserTerminatedEvent) error
	PublishPasswordChanged(ctx context.Context, event domain.PasswordChangedEvent) error
	PublishSessionTerminated(ctx context.Context, event domain.SessionTerminatedEvent) error
	PublishRoleAssignmentChanged(ctx context.Context, event domain.RoleAssignmentChangedEvent) error
}
