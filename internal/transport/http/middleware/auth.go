package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Rud356/test-task-auth-demo/internal/core/domain"
	"github.com/Rud356/test-task-auth-demo/internal/infra/security"
	"github.com/Rud356/test-task-auth-demo/internal/usecase"
)

// SessionCookieName is the cookie carrying the signed session token.
const SessionCookieName = "session"

// ErrorResponse matches the handlers.ErrorResponse structure
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// newErrorResponse creates an error response with trace ID
func newErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	return ErrorResponse{
		Error:   errorMsg,
		TraceID: GetTraceID(c),
	}
}

// RequireAuth resolves the session token from the Authorization header or the
// session cookie, loads the acting user, and aborts with 401 when the token
// does not map to a live session of an active account.
func RequireAuth(auth *usecase.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorResponse(c, "missing session token"))
			return
		}

		actor, claims, err := auth.ResolveToken(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, usecase.ErrUnauthenticated) {
				c.AbortWithStatusJSON(http.StatusUnauthorized,
					newErrorResponse(c, "invalid or expired session token"))
			} else {
				c.AbortWithStatusJSON(http.StatusInternalServerError,
					newErrorResponse(c, "authentication failed"))
			}
			return
		}

		c.Set(ActorKey, actor)
		c.Set(SessionClaimsKey, claims)

		if reqCtx := GetRequestContext(c); reqCtx != nil {
			reqCtx.UserID = actor.ID
		}

		c.Next()
	}
}

// GetActor retrieves the authenticated user placed by RequireAuth.
func GetActor(c *gin.Context) (*domain.UserDetailed, bool) {
	val, exists := c.Get(ActorKey)
	if !exists {
		return nil, false
	}
	actor, ok := val.(*domain.UserDetailed)
	return actor, ok
}

// GetSessionClaims retrieves the parsed session claims placed by RequireAuth.
func GetSessionClaims(c *gin.Context) (*security.SessionClaims, bool) {
	val, exists := c.Get(SessionClaimsKey)
	if !exists {
		return nil, false
	}
	claims, ok := val.(*security.SessionClaims)
	return claims, ok
}

// extractToken prefers the Authorization header, falling back to the session
// cookie. Both carry the token in "Bearer <token>" form.
func extractToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		return stripBearer(header)
	}

	if cookie, err := c.Cookie(SessionCookieName); err == nil && cookie != "" {
		return stripBearer(cookie)
	}

	return ""
}

func stripBearer(value string) string {
	parts := strings.SplitN(value, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return strings.TrimSpace(value)
}
