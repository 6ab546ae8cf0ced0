package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Rud356/test-task-auth-demo/internal/core/domain"
	"github.com/Rud356/test-task-auth-demo/internal/core/port"
	"github.com/Rud356/test-task-auth-demo/internal/transport/http/middleware"
	"github.com/Rud356/test-task-auth-demo/internal/usecase"
)

// ResourceHandler exposes resource and grant management endpoints.
type ResourceHandler struct {
	resources *usecase.ResourceService
}

// NewResourceHandler constructs ResourceHandler.
func NewResourceHandler(resources *usecase.ResourceService) *ResourceHandler {
	return &ResourceHandler{resources: resources}
}

// RegisterRoutes binds resource routes behind authentication.
func (h *ResourceHandler) RegisterRoutes(r *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	resources := r.Group("/resources", requireAuth)
	resources.GET("", h.list)
	resources.POST("", h.create)
	resources.GET("/:id", h.get)
	resources.PATCH("/:id", h.edit)

	r.PUT("/resource/:id/permissions", requireAuth, h.setPermissions)
}

// list serves both listing modes: list_all=true returns every resource and
// requires the view_all_resources capability, otherwise only resources
// reachable by the actor are returned.
func (h *ResourceHandler) list(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	filter := port.ResourceFilter{
		Limit:  queryInt(c, "limit", 100),
		Offset: queryInt(c, "offset", 0),
	}

	var (
		resources []domain.ResourceDetails
		err       error
	)
	if c.Query("list_all") == "true" {
		resources, err = h.resources.ListAllResources(c.Request.Context(), *actor, filter)
	} else {
		resources, err = h.resources.ListAvailableResources(c.Request.Context(), *actor, filter)
	}
	if err != nil {
		RespondWithMappedError(c, err, resourceErrorCases(), http.StatusInternalServerError, "failed to list resources")
		return
	}

	resp := make([]ResourceDetailsResponse, 0, len(resources))
	for _, resource := range resources {
		resp = append(resp, newResourceDetailsResponse(resource))
	}

	c.JSON(http.StatusOK, resp)
}

func (h *ResourceHandler) create(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req ResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid resource payload"))
		return
	}

	resource, err := h.resources.CreateResource(c.Request.Context(), *actor, req.Content)
	if err != nil {
		RespondWithMappedError(c, err, resourceErrorCases(), http.StatusInternalServerError, "failed to create resource")
		return
	}

	c.JSON(http.StatusCreated, newResourceResponse(resource))
}

func (h *ResourceHandler) get(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	resourceID, ok := pathInt64(c, "id")
	if !ok {
		return
	}

	resource, err := h.resources.GetResource(c.Request.Context(), *actor, resourceID)
	if err != nil {
		RespondWithMappedError(c, err, resourceErrorCases(), http.StatusInternalServerError, "failed to fetch resource")
		return
	}

	c.JSON(http.StatusOK, newResourceDetailsResponse(*resource))
}

func (h *ResourceHandler) edit(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	resourceID, ok := pathInt64(c, "id")
	if !ok {
		return
	}

	var req ResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid resource payload"))
		return
	}

	resource, err := h.resources.EditResource(c.Request.Context(), *actor, resourceID, req.Content)
	if err != nil {
		RespondWithMappedError(c, err, resourceErrorCases(), http.StatusInternalServerError, "failed to edit resource")
		return
	}

	c.JSON(http.StatusOK, newResourceResponse(resource))
}

func (h *ResourceHandler) setPermissions(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	resourceID, ok := pathInt64(c, "id")
	if !ok {
		return
	}

	var req SetResourcePermissionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid permissions payload"))
		return
	}

	updated, err := h.resources.SetRolePermissions(c.Request.Context(), *actor, resourceID, port.RoleGrantUpdate{
		RoleID:          req.RoleID,
		CanViewResource: req.CanViewResource,
		CanEditResource: req.CanEditResource,
	})
	if err != nil {
		RespondWithMappedError(c, err, resourceErrorCases(), http.StatusInternalServerError, "failed to set permissions")
		return
	}

	if !updated {
		c.JSON(http.StatusNotFound, NewErrorResponse(c, "permissions were not set: role or resource not found"))
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Ok"})
}

func resourceErrorCases() []ErrorCase {
	return []ErrorCase{
		{Err: usecase.ErrPermissionDenied, Status: http.StatusForbidden, Message: "no access to this resource"},
		{Err: usecase.ErrResourceNotFound, Status: http.StatusNotFound, Message: "resource not found"},
		{Err: usecase.ErrValidation, Status: http.StatusBadRequest, Message: "invalid resource payload"},
	}
}
