package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Rud356/test-task-auth-demo/internal/core/domain"
	"github.com/Rud356/test-task-auth-demo/internal/transport/http/middleware"
	"github.com/Rud356/test-task-auth-demo/internal/usecase"
)

// RoleHandler exposes role management endpoints.
type RoleHandler struct {
	roles *usecase.RoleService
}

// NewRoleHandler constructs RoleHandler.
func NewRoleHandler(roles *usecase.RoleService) *RoleHandler {
	return &RoleHandler{roles: roles}
}

// RegisterRoutes binds role routes behind authentication.
func (h *RoleHandler) RegisterRoutes(r *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	roles := r.Group("/roles", requireAuth)
	roles.GET("", h.list)
	roles.POST("", h.create)
	roles.PUT("/:id", h.update)
	roles.DELETE("/:id", h.remove)
	roles.POST("/:id/assignments", h.assign)
	roles.DELETE("/:id/assignments", h.unassign)
}

func (h *RoleHandler) list(c *gin.Context) {
	roles, err := h.roles.ListRoles(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to list roles"))
		return
	}

	resp := make([]RoleResponse, 0, len(roles))
	for _, role := range roles {
		resp = append(resp, RoleResponse{ID: role.ID, Name: role.Name})
	}

	c.JSON(http.StatusOK, resp)
}

func (h *RoleHandler) create(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req RoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid role payload"))
		return
	}

	role, err := h.roles.CreateRole(c.Request.Context(), *actor, req.Name)
	if err != nil {
		RespondWithMappedError(c, err, roleErrorCases(), http.StatusInternalServerError, "failed to create role")
		return
	}

	c.JSON(http.StatusCreated, RoleResponse{ID: role.ID, Name: role.Name})
}

func (h *RoleHandler) update(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	roleID, ok := pathInt64(c, "id")
	if !ok {
		return
	}

	var req RoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid role payload"))
		return
	}

	role, err := h.roles.UpdateRole(c.Request.Context(), *actor, domain.Role{ID: roleID, Name: req.Name})
	if err != nil {
		RespondWithMappedError(c, err, roleErrorCases(), http.StatusInternalServerError, "failed to update role")
		return
	}

	c.JSON(http.StatusOK, RoleResponse{ID: role.ID, Name: role.Name})
}

func (h *RoleHandler) remove(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	roleID, ok := pathInt64(c, "id")
	if !ok {
		return
	}

	deleted, err := h.roles.DeleteRole(c.Request.Context(), *actor, roleID)
	if err != nil {
		RespondWithMappedError(c, err, roleErrorCases(), http.StatusInternalServerError, "failed to delete role")
		return
	}

	if !deleted {
		c.JSON(http.StatusNotFound, NewErrorResponse(c, "role not found"))
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Ok"})
}

func (h *RoleHandler) assign(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	roleID, ok := pathInt64(c, "id")
	if !ok {
		return
	}

	userID := c.Query("to_user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "to_user_id query parameter is required"))
		return
	}

	assigned, err := h.roles.AssignRole(c.Request.Context(), *actor, userID, roleID)
	if err != nil {
		RespondWithMappedError(c, err, roleErrorCases(), http.StatusInternalServerError, "failed to assign role")
		return
	}

	if !assigned {
		c.JSON(http.StatusNotFound, NewErrorResponse(c, "role was not assigned: role or user not found"))
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Ok"})
}

func (h *RoleHandler) unassign(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	roleID, ok := pathInt64(c, "id")
	if !ok {
		return
	}

	userID := c.Query("from_user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "from_user_id query parameter is required"))
		return
	}

	removed, err := h.roles.RemoveRole(c.Request.Context(), *actor, userID, roleID)
	if err != nil {
		RespondWithMappedError(c, err, roleErrorCases(), http.StatusInternalServerError, "failed to remove role")
		return
	}

	if !removed {
		c.JSON(http.StatusNotFound, NewErrorResponse(c, "role was not removed: role or user not found"))
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Ok"})
}

func roleErrorCases() []ErrorCase {
	return []ErrorCase{
		{Err: usecase.ErrPermissionDenied, Status: http.StatusForbidden, Message: "cannot edit roles"},
		{Err: usecase.ErrOwnRoleChange, Status: http.StatusForbidden, Message: "cannot change own role assignments"},
		{Err: usecase.ErrRoleNotFound, Status: http.StatusNotFound, Message: "role not found"},
		{Err: usecase.ErrRoleExists, Status: http.StatusConflict, Message: "role already exists"},
		{Err: usecase.ErrValidation, Status: http.StatusBadRequest, Message: "invalid role payload"},
	}
}

func pathInt64(c *gin.Context, name string) (int64, bool) {
	value, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid "+name+" path parameter"))
		return 0, false
	}
	return value, true
}
