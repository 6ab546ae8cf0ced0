package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	uuid "github.com/google/uuid"

	"github.com/Rud356/test-task-auth-demo/internal/core/domain"
	"github.com/Rud356/test-task-auth-demo/internal/core/port"
	"github.com/Rud356/test-task-auth-demo/internal/repository"
)

var (
	// ErrRoleNotFound is returned when the referenced role does not exist.
	ErrRoleNotFound = errors.New("role not found")
	// ErrRoleExists indicates a role with the provided name already exists.
	ErrRoleExists = errors.New("role already exists")
	// ErrOwnRoleChange indicates the actor attempted to change their own role assignments.
	ErrOwnRoleChange = errors.New("cannot change own role assignments")
)

// RoleService manages roles and their user assignments. Mutations require the
// edit_roles capability; listing is open to any authenticated user.
type RoleService struct {
	roles  port.RoleRepository
	events port.EventPublisher
}

// NewRoleService constructs a RoleService.
func NewRoleService(roles port.RoleRepository, events port.EventPublisher) *RoleService {
	return &RoleService{roles: roles, events: events}
}

// ListRoles returns all roles.
func (s *RoleService) ListRoles(ctx context.Context) ([]domain.Role, error) {
	roles, err := s.roles.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	return roles, nil
}

// CreateRole provisions a new role.
func (s *RoleService) CreateRole(ctx context.Context, actor domain.UserDetailed, name string) (domain.Role, error) {
	if !actor.Permissions.EditRoles {
		return domain.Role{}, ErrPermissionDenied
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Role{}, fmt.Errorf("%w: role name is required", ErrValidation)
	}

	role, err := s.roles.Create(ctx, name)
	if err != nil {
		if errors.Is(err, repository.ErrDataIntegrity) {
			return domain.Role{}, ErrRoleExists
		}
		return domain.Role{}, fmt.Errorf("create role: %w", err)
	}

	return role, nil
}

// UpdateRole renames an existing role.
func (s *RoleService) UpdateRole(ctx context.Context, actor domain.UserDetailed, role domain.Role) (domain.Role, error) {
	if !actor.Permissions.EditRoles {
		return domain.Role{}, ErrPermissionDenied
	}

	role.Name = strings.TrimSpace(role.Name)
	if role.Name == "" {
		return domain.Role{}, fmt.Errorf("%w: role name is required", ErrValidation)
	}

	updated, err := s.roles.Update(ctx, role)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return domain.Role{}, ErrRoleNotFound
		case errors.Is(err, repository.ErrDataIntegrity):
			return domain.Role{}, ErrRoleExists
		}
		return domain.Role{}, fmt.Errorf("update role: %w", err)
	}

	return updated, nil
}

// DeleteRole removes a role along with its assignments and resource grants.
func (s *RoleService) DeleteRole(ctx context.Context, actor domain.UserDetailed, roleID int64) (bool, error) {
	if !actor.Permissions.EditRoles {
		return false, ErrPermissionDenied
	}

	deleted, err := s.roles.Delete(ctx, roleID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, ErrRoleNotFound
		}
		return false, fmt.Errorf("delete role: %w", err)
	}

	return deleted, nil
}

// AssignRole links a role to a user. Actors cannot touch their own
// assignments even with the edit_roles capability.
func (s *RoleService) AssignRole(ctx context.Context, actor domain.UserDetailed, userID string, roleID int64) (bool, error) {
	if !actor.Permissions.EditRoles {
		return false, ErrPermissionDenied
	}
	if actor.ID == userID {
		return false, ErrOwnRoleChange
	}

	assigned, err := s.roles.AssignToUser(ctx, userID, roleID)
	if err != nil {
		return false, fmt.Errorf("assign role: %w", err)
	}

	if assigned {
		s.publishAssignmentChanged(ctx, userID, roleID, true, actor.ID)
	}

	return assigned, nil
}

// RemoveRole unlinks a role from a user under the same guard as AssignRole.
func (s *RoleService) RemoveRole(ctx context.Context, actor domain.UserDetailed, userID string, roleID int64) (bool, error) {
	if !actor.Permissions.EditRoles {
		return false, ErrPermissionDenied
	}
	if actor.ID == userID {
		return false, ErrOwnRoleChange
	}

	removed, err := s.roles.RemoveFromUser(ctx, userID, roleID)
	if err != nil {
		return false, fmt.Errorf("remove role: %w", err)
	}

	if removed {
		s.publishAssignmentChanged(ctx, userID, roleID, false, actor.ID)
	}

	return removed, nil
}

func (s *RoleService) publishAssignmentChanged(ctx context.Context, userID string, roleID int64, assigned bool, changedBy string) {
	if s.events == nil {
		return
	}

	event := domain.RoleAssignmentChangedEvent{
		EventID:   uuid.NewString(),
		UserID:    userID,
		RoleID:    roleID,
		Assigned:  assigned,
		ChangedBy: changedBy,
		ChangedAt: time.Now().UTC(),
	}
	_ = s.events.PublishRoleAssignmentChanged(ctx, event)
}
