package port

import (
	"context"

	"github.com/Rud356/test-task-auth-demo/internal/core/domain"
)

// RoleRepository handles role CRUD and user assignments.
type RoleRepository interface {
	List(ctx context.Context) ([]domain.Role, error)
	Create(ctx context.Context, name string) (domain.Role, error)
	Update(ctx context.Context, role domain.Role) (domain.Role, error)
	// Delete removes the role; assignments and resource grants referencing it
	// are cascaded away by the store.
	Delete(ctx context.Context, roleID int64) (bool, error)
	// AssignToUser links a role to a user. Returns false without error when
	// the assignment already exists or a referenced row is gone.
	AssignToUser(ctx context.Context, userID string, roleID int64) (bool, error)
	RemoveFromUser(ctx context.Context, userID string, roleID int64) (bool, error)
}
