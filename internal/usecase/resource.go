package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/Rud356/test-task-auth-demo/internal/core/domain"
	"github.com/Rud356/test-task-auth-demo/internal/core/port"
	"github.com/Rud356/test-task-auth-demo/internal/repository"
)

// ErrResourceNotFound is returned when the referenced resource does not exist.
var ErrResourceNotFound = errors.New("resource not found")

// ResourceService manages resources and their per-role access grants.
type ResourceService struct {
	resources port.ResourceRepository
}

// NewResourceService constructs a ResourceService.
func NewResourceService(resources port.ResourceRepository) *ResourceService {
	return &ResourceService{resources: resources}
}

// CreateResource stores a new resource authored by the actor. Any
// authenticated user may create resources.
func (s *ResourceService) CreateResource(ctx context.Context, actor domain.UserDetailed, content string) (domain.Resource, error) {
	if err := validateContent(content); err != nil {
		return domain.Resource{}, err
	}

	resource, err := s.resources.Create(ctx, actor.ID, content)
	if err != nil {
		return domain.Resource{}, fmt.Errorf("create resource: %w", err)
	}

	return resource, nil
}

// GetResource fetches a resource the actor is allowed to view.
func (s *ResourceService) GetResource(ctx context.Context, actor domain.UserDetailed, resourceID int64) (*domain.ResourceDetails, error) {
	resource, err := s.resources.GetByID(ctx, resourceID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrResourceNotFound
		}
		return nil, fmt.Errorf("get resource: %w", err)
	}

	if !actor.CanViewResource(*resource) {
		return nil, ErrPermissionDenied
	}

	return resource, nil
}

// ListAllResources returns every resource regardless of grants. Requires the
// view_all_resources capability.
func (s *ResourceService) ListAllResources(ctx context.Context, actor domain.UserDetailed, filter port.ResourceFilter) ([]domain.ResourceDetails, error) {
	if !actor.CanAdministrateSystem(domain.CapabilityViewAllResources) {
		return nil, ErrPermissionDenied
	}

	normalizeResourceFilter(&filter)

	resources, err := s.resources.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list resources: %w", err)
	}

	return resources, nil
}

// ListAvailableResources returns resources the actor authored plus resources
// any of the actor's roles holds a grant on. No capability required.
func (s *ResourceService) ListAvailableResources(ctx context.Context, actor domain.UserDetailed, filter port.ResourceFilter) ([]domain.ResourceDetails, error) {
	normalizeResourceFilter(&filter)

	resources, err := s.resources.ListAvailable(ctx, actor.ID, filter)
	if err != nil {
		return nil, fmt.Errorf("list available resources: %w", err)
	}

	return resources, nil
}

// EditResource replaces resource content. The actor must hold edit access:
// resource administration, authorship, or a role with the edit flag.
func (s *ResourceService) EditResource(ctx context.Context, actor domain.UserDetailed, resourceID int64, content string) (domain.Resource, error) {
	if err := validateContent(content); err != nil {
		return domain.Resource{}, err
	}

	resource, err := s.resources.GetByID(ctx, resourceID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Resource{}, ErrResourceNotFound
		}
		return domain.Resource{}, fmt.Errorf("get resource: %w", err)
	}

	if !actor.CanEditResource(*resource) {
		return domain.Resource{}, ErrPermissionDenied
	}

	updated, err := s.resources.Edit(ctx, resourceID, content)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Resource{}, ErrResourceNotFound
		}
		return domain.Resource{}, fmt.Errorf("edit resource: %w", err)
	}

	return updated, nil
}

// SetRolePermissions upserts the view/edit grant for a role on a resource.
// Only the author holding the administrate_resources capability may change
// grants; either condition alone is insufficient.
func (s *ResourceService) SetRolePermissions(ctx context.Context, actor domain.UserDetailed, resourceID int64, grant port.RoleGrantUpdate) (bool, error) {
	resource, err := s.resources.GetByID(ctx, resourceID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, ErrResourceNotFound
		}
		return false, fmt.Errorf("get resource: %w", err)
	}

	if !actor.CanAdministrateResourceAccess(*resource) {
		return false, ErrPermissionDenied
	}

	updated, err := s.resources.SetRolePermissions(ctx, resourceID, grant)
	if err != nil {
		return false, fmt.Errorf("set role permissions: %w", err)
	}

	return updated, nil
}

func validateContent(content string) error {
	if len(content) < domain.ContentMinLength || len(content) > domain.ContentMaxLength {
		return fmt.Errorf("%w: content length must be between %d and %d",
			ErrValidation, domain.ContentMinLength, domain.ContentMaxLength)
	}
	return nil
}

func normalizeResourceFilter(filter *port.ResourceFilter) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 100
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
}
