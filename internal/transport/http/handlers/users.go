package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Rud356/test-task-auth-demo/internal/core/port"
	"github.com/Rud356/test-task-auth-demo/internal/transport/http/middleware"
	"github.com/Rud356/test-task-auth-demo/internal/usecase"
)

// UserHandler exposes account lifecycle endpoints.
type UserHandler struct {
	users *usecase.UserService
}

// NewUserHandler constructs UserHandler.
func NewUserHandler(users *usecase.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// RegisterRoutes binds user routes, with registration left unauthenticated.
func (h *UserHandler) RegisterRoutes(r *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	r.POST("/register", h.register)

	users := r.Group("/users", requireAuth)
	users.POST("/create_new", h.createNew)
	users.GET("", h.list)
	users.GET("/me", h.me)
	users.GET("/:id", h.get)
	users.PATCH("/:id", h.update)
	users.DELETE("/:id", h.terminate)
	users.PUT("/:id/password", h.changePassword)
}

func (h *UserHandler) register(c *gin.Context) {
	var req RegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid registration payload"))
		return
	}

	user, err := h.users.Register(c.Request.Context(), port.RegistrationData{
		Email:     req.Email,
		Name:      req.Name,
		Surname:   req.Surname,
		ThirdName: req.ThirdName,
		Password:  req.Password,
	})
	if err != nil {
		RespondWithMappedError(c, err, registrationErrorCases(), http.StatusInternalServerError, "failed to register user")
		return
	}

	c.JSON(http.StatusCreated, newUserResponse(user))
}

func (h *UserHandler) createNew(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid user payload"))
		return
	}

	user, err := h.users.CreateUser(c.Request.Context(), *actor, port.RegistrationData{
		Email:     req.Email,
		Name:      req.Name,
		Surname:   req.Surname,
		ThirdName: req.ThirdName,
		Password:  req.Password,
	}, toPermissionBundle(req.Permissions))
	if err != nil {
		cases := append(registrationErrorCases(), ErrorCase{
			Err: usecase.ErrPermissionDenied, Status: http.StatusForbidden, Message: "cannot create users with these permissions",
		})
		RespondWithMappedError(c, err, cases, http.StatusInternalServerError, "failed to create user")
		return
	}

	c.JSON(http.StatusCreated, newUserResponse(user))
}

func (h *UserHandler) list(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	filter := port.UserFilter{
		Limit:              queryInt(c, "limit", 100),
		Offset:             queryInt(c, "offset", 0),
		IncludeDeactivated: c.Query("include_deactivated") == "true",
	}

	users, err := h.users.ListUsers(c.Request.Context(), *actor, filter)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrPermissionDenied, Status: http.StatusForbidden, Message: "cannot list users"},
		}, http.StatusInternalServerError, "failed to list users")
		return
	}

	resp := make([]UserDetailedResponse, 0, len(users))
	for _, user := range users {
		resp = append(resp, newUserDetailedResponse(user))
	}

	c.JSON(http.StatusOK, resp)
}

func (h *UserHandler) me(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	c.JSON(http.StatusOK, newUserDetailedResponse(*actor))
}

func (h *UserHandler) get(c *gin.Context) {
	user, err := h.users.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrUserNotFound, Status: http.StatusNotFound, Message: "user not found"},
		}, http.StatusInternalServerError, "failed to fetch user")
		return
	}

	c.JSON(http.StatusOK, newUserDetailedResponse(*user))
}

func (h *UserHandler) update(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid update payload"))
		return
	}

	user, err := h.users.UpdateDetails(c.Request.Context(), *actor, port.UserPatch{
		UserID:    c.Param("id"),
		Email:     req.Email,
		Name:      req.Name,
		Surname:   req.Surname,
		ThirdName: req.ThirdName,
	})
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrPermissionDenied, Status: http.StatusForbidden, Message: "cannot update this user"},
			{Err: usecase.ErrUserNotFound, Status: http.StatusNotFound, Message: "user not found"},
			{Err: usecase.ErrDuplicateAccount, Status: http.StatusConflict, Message: "email already registered"},
			{Err: usecase.ErrValidation, Status: http.StatusBadRequest, Message: "invalid update payload"},
		}, http.StatusInternalServerError, "failed to update user")
		return
	}

	c.JSON(http.StatusOK, newUserDetailedResponse(*user))
}

func (h *UserHandler) terminate(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	terminated, err := h.users.Terminate(c.Request.Context(), *actor, c.Param("id"))
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrPermissionDenied, Status: http.StatusForbidden, Message: "cannot terminate this user"},
			{Err: usecase.ErrUserNotFound, Status: http.StatusNotFound, Message: "user not found"},
		}, http.StatusInternalServerError, "failed to terminate user")
		return
	}

	if !terminated {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "user already terminated"))
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Ok"})
}

func (h *UserHandler) changePassword(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid password payload"))
		return
	}

	changed, err := h.users.ChangePassword(c.Request.Context(), *actor, c.Param("id"), req.NewPassword)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrPermissionDenied, Status: http.StatusForbidden, Message: "cannot change password of this user"},
			{Err: usecase.ErrUserNotFound, Status: http.StatusNotFound, Message: "user not found"},
			{Err: usecase.ErrWeakPassword, Status: http.StatusBadRequest, Message: "password does not meet requirements"},
		}, http.StatusInternalServerError, "failed to change password")
		return
	}

	if !changed {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "password has not been changed"))
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Ok"})
}

func registrationErrorCases() []ErrorCase {
	return []ErrorCase{
		{Err: usecase.ErrDuplicateAccount, Status: http.StatusConflict, Message: "email already registered"},
		{Err: usecase.ErrWeakPassword, Status: http.StatusBadRequest, Message: "password does not meet requirements"},
		{Err: usecase.ErrValidation, Status: http.StatusBadRequest, Message: "invalid registration payload"},
	}
}

func queryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
