package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/Rud356/test-task-auth-demo/internal/core/domain"
)

// ErrorResponse represents a generic error payload with trace ID for debugging.
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// NewErrorResponse creates an error response with trace ID from context
func NewErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	traceID, _ := c.Get("trace_id")
	traceIDStr, _ := traceID.(string)

	return ErrorResponse{
		Error:   errorMsg,
		TraceID: traceIDStr,
	}
}

// MessageResponse represents a simple message payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// LoginRequest defines the payload for the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the issued session token.
type LoginResponse struct {
	Token     string `json:"token"`
	TokenType string `json:"token_type"`
	ExpiresAt string `json:"expires_at"`
}

// RegistrationRequest defines the payload for self-service registration.
type RegistrationRequest struct {
	Email     string  `json:"email" binding:"required"`
	Name      string  `json:"name" binding:"required,max=255"`
	Surname   string  `json:"surname" binding:"required,max=255"`
	ThirdName *string `json:"third_name,omitempty" binding:"omitempty,max=255"`
	Password  string  `json:"password" binding:"required"`
}

// PermissionsPayload mirrors the per-user capability flags.
type PermissionsPayload struct {
	EditRoles             bool `json:"edit_roles"`
	ViewAllResources      bool `json:"view_all_resources"`
	AdministrateUsers     bool `json:"administrate_users"`
	AdministrateResources bool `json:"administrate_resources"`
}

// CreateUserRequest defines the payload for administrative user creation.
type CreateUserRequest struct {
	RegistrationRequest
	Permissions PermissionsPayload `json:"permissions"`
}

// UserResponse describes the minimal user view returned after writes.
type UserResponse struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Surname   string  `json:"surname"`
	ThirdName *string `json:"third_name,omitempty"`
	IsActive  bool    `json:"is_active"`
}

// RoleResponse describes a role view.
type RoleResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// UserDetailedResponse describes a user with roles and permissions resolved.
type UserDetailedResponse struct {
	UserResponse
	Roles       []RoleResponse     `json:"roles"`
	Permissions PermissionsPayload `json:"permissions"`
}

// UpdateUserRequest defines the payload for partial profile updates.
type UpdateUserRequest struct {
	Email     *string `json:"email,omitempty"`
	Name      *string `json:"name,omitempty" binding:"omitempty,max=255"`
	Surname   *string `json:"surname,omitempty" binding:"omitempty,max=255"`
	ThirdName *string `json:"third_name,omitempty" binding:"omitempty,max=255"`
}

// ChangePasswordRequest defines the payload for password replacement.
type ChangePasswordRequest struct {
	NewPassword string `json:"new_password" binding:"required"`
}

// RoleRequest defines the payload for creating or renaming a role.
type RoleRequest struct {
	Name string `json:"name" binding:"required,min=1,max=64"`
}

// ResourceRequest defines the payload for creating or editing a resource.
type ResourceRequest struct {
	Content string `json:"content" binding:"required,min=1,max=2048"`
}

// ResourceResponse describes a resource view.
type ResourceResponse struct {
	ID       int64  `json:"id"`
	AuthorID string `json:"author_id"`
	Content  string `json:"content"`
}

// RoleGrantPayload describes the view/edit flags of one role on a resource.
type RoleGrantPayload struct {
	RoleID          int64  `json:"role_id"`
	RoleName        string `json:"role_name,omitempty"`
	CanViewResource bool   `json:"can_view_resource"`
	CanEditResource bool   `json:"can_edit_resource"`
}

// ResourceDetailsResponse describes a resource with its role grants.
type ResourceDetailsResponse struct {
	ResourceResponse
	Grants []RoleGrantPayload `json:"grants"`
}

// SetResourcePermissionsRequest defines the payload for grant upserts.
type SetResourcePermissionsRequest struct {
	RoleID          int64 `json:"role_id" binding:"required"`
	CanViewResource bool  `json:"can_view_resource"`
	CanEditResource bool  `json:"can_edit_resource"`
}

func newUserResponse(user domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Surname:   user.Surname,
		ThirdName: user.ThirdName,
		IsActive:  user.IsActive,
	}
}

func newUserDetailedResponse(user domain.UserDetailed) UserDetailedResponse {
	roles := make([]RoleResponse, 0, len(user.Roles))
	for _, role := range user.Roles {
		roles = append(roles, RoleResponse{ID: role.ID, Name: role.Name})
	}

	return UserDetailedResponse{
		UserResponse: newUserResponse(user.User),
		Roles:        roles,
		Permissions: PermissionsPayload{
			EditRoles:             user.Permissions.EditRoles,
			ViewAllResources:      user.Permissions.ViewAllResources,
			AdministrateUsers:     user.Permissions.AdministrateUsers,
			AdministrateResources: user.Permissions.AdministrateResources,
		},
	}
}

func newResourceResponse(resource domain.Resource) ResourceResponse {
	return ResourceResponse{
		ID:       resource.ID,
		AuthorID: resource.AuthorID,
		Content:  resource.Content,
	}
}

func newResourceDetailsResponse(details domain.ResourceDetails) ResourceDetailsResponse {
	grants := make([]RoleGrantPayload, 0, len(details.Grants))
	for _, grant := range details.Grants {
		grants = append(grants, RoleGrantPayload{
			RoleID:          grant.RoleID,
			RoleName:        grant.RoleName,
			CanViewResource: grant.CanViewResource,
			CanEditResource: grant.CanEditResource,
		})
	}

	return ResourceDetailsResponse{
		ResourceResponse: newResourceResponse(details.Resource),
		Grants:           grants,
	}
}

func toPermissionBundle(p PermissionsPayload) domain.PermissionBundle {
	return domain.PermissionBundle{
		EditRoles:             p.EditRoles,
		ViewAllResources:      p.ViewAllResources,
		AdministrateUsers:     p.AdministrateUsers,
		AdministrateResources: p.AdministrateResources,
	}
}
