package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Rud356/test-task-auth-demo/internal/transport/http/middleware"
	"github.com/Rud356/test-task-auth-demo/internal/usecase"
)

// AuthHandler exposes authentication and session lifecycle endpoints.
type AuthHandler struct {
	auth         *usecase.AuthService
	cookieSecure bool
}

// NewAuthHandler constructs AuthHandler.
func NewAuthHandler(auth *usecase.AuthService, cookieSecure bool) *AuthHandler {
	return &AuthHandler{auth: auth, cookieSecure: cookieSecure}
}

// RegisterRoutes binds authentication and session routes.
func (h *AuthHandler) RegisterRoutes(r *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	r.POST("/login", h.login)
	r.POST("/logout", requireAuth, h.logout)

	r.DELETE("/sessions", requireAuth, h.terminateOwnSessions)
	r.DELETE("/sessions/current", requireAuth, h.terminateCurrentSession)
	r.DELETE("/user/:id/sessions", requireAuth, h.terminateUserSessions)
}

func (h *AuthHandler) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid login payload"))
		return
	}

	result, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		// Unknown account and wrong password answer identically.
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrInvalidCredentials, Status: http.StatusBadRequest, Message: "invalid credentials"},
		}, http.StatusInternalServerError, "failed to log in")
		return
	}

	maxAge := int(time.Until(result.ExpiresAt).Seconds())
	c.SetCookie(middleware.SessionCookieName, "Bearer "+result.Token, maxAge, "/", "", h.cookieSecure, true)

	c.JSON(http.StatusOK, LoginResponse{
		Token:     result.Token,
		TokenType: "Bearer",
		ExpiresAt: result.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

func (h *AuthHandler) logout(c *gin.Context) {
	claims, ok := middleware.GetSessionClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	terminated, err := h.auth.Logout(c.Request.Context(), claims)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to log out"))
		return
	}

	c.SetCookie(middleware.SessionCookieName, "", -1, "/", "", h.cookieSecure, true)

	if !terminated {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "session already terminated"))
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Ok"})
}

func (h *AuthHandler) terminateCurrentSession(c *gin.Context) {
	claims, ok := middleware.GetSessionClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	terminated, err := h.auth.Logout(c.Request.Context(), claims)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to terminate session"))
		return
	}

	if !terminated {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "session already terminated"))
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Ok"})
}

func (h *AuthHandler) terminateOwnSessions(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	terminated, err := h.auth.TerminateOwnSessions(c.Request.Context(), *actor)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to terminate sessions"))
		return
	}

	if !terminated {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "no live sessions to terminate"))
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Ok"})
}

func (h *AuthHandler) terminateUserSessions(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	targetID := c.Param("id")

	terminated, err := h.auth.TerminateUserSessions(c.Request.Context(), *actor, targetID)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrPermissionDenied, Status: http.StatusForbidden, Message: "cannot terminate sessions of this user"},
		}, http.StatusInternalServerError, "failed to terminate sessions")
		return
	}

	if !terminated {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "no live sessions to terminate"))
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Ok"})
}
