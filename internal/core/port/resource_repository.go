package port

import (
	"context"

	"github.com/Rud356/test-task-auth-demo/internal/core/domain"
)

// ResourceFilter controls pagination for resource listings.
type ResourceFilter struct {
	Limit  int
	Offset int
}

// RoleGrantUpdate carries the desired view/edit flags for a (role, resource) pair.
type RoleGrantUpdate struct {
	RoleID          int64
	CanViewResource bool
	CanEditResource bool
}

// ResourceRepository handles resource persistence and per-role grants.
type ResourceRepository interface {
	Create(ctx context.Context, authorID string, content string) (domain.Resource, error)
	Edit(ctx context.Context, resourceID int64, content string) (domain.Resource, error)
	GetByID(ctx context.Context, resourceID int64) (*domain.ResourceDetails, error)
	List(ctx context.Context, filter ResourceFilter) ([]domain.ResourceDetails, error)
	// ListAvailable returns the union of resources authored by the user and
	// resources any of the user's roles holds a view or edit grant on.
	ListAvailable(ctx context.Context, userID string, filter ResourceFilter) ([]domain.ResourceDetails, error)
	// SetRolePermissions upserts the grant row for (role, resource). Returns
	// false without error only on an unresolvable integrity conflict, such as
	// the role or resource vanishing concurrently.
	SetRolePermissions(ctx context.Context, resourceID int64, grant RoleGrantUpdate) (bool, error)
}
