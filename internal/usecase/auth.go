package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Rud356/test-task-auth-demo/internal/core/domain"
	"github.com/Rud356/test-task-auth-demo/internal/core/port"
	"github.com/Rud356/test-task-auth-demo/internal/infra/logger"
	"github.com/Rud356/test-task-auth-demo/internal/infra/security"
	"github.com/Rud356/test-task-auth-demo/internal/repository"
)

var (
	// ErrInvalidCredentials indicates the provided email or password are incorrect.
	// Unknown accounts and wrong passwords are deliberately indistinguishable.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthenticated indicates the session token is missing, malformed,
	// expired, or its session is no longer alive.
	ErrUnauthenticated = errors.New("authentication required")
)

// LoginResult carries the issued session token and its expiry.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
}

// AuthService coordinates login, token resolution, and session termination.
type AuthService struct {
	users  port.UserRepository
	tokens *security.TokenManager
	events port.EventPublisher
	log    *zap.Logger
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(users port.UserRepository, tokens *security.TokenManager, events port.EventPublisher, log *zap.Logger) *AuthService {
	if log == nil {
		log = zap.NewNop()
	}

	return &AuthService{users: users, tokens: tokens, events: events, log: log}
}

// Login verifies credentials, creates a session, and issues a signed token.
func (s *AuthService) Login(ctx context.Context, email, password string) (LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return LoginResult{}, ErrInvalidCredentials
	}

	session, err := s.users.Login(ctx, email, password)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) || errors.Is(err, repository.ErrInvalidCredential) {
			s.log.Warn("login rejected",
				zap.String("email", logger.MaskEmail(email)))
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, fmt.Errorf("login: %w", err)
	}

	token, expiresAt, err := s.tokens.Issue(*session)
	if err != nil {
		return LoginResult{}, fmt.Errorf("issue session token: %w", err)
	}

	s.log.Info("login succeeded",
		zap.String("email", logger.MaskEmail(email)),
		zap.String("session_id", logger.MaskString(session.ID)))

	return LoginResult{Token: token, ExpiresAt: expiresAt}, nil
}

// ResolveToken validates a raw session token and loads the acting user. The
// session row is the source of truth: a token that parses but points at a
// dead session is rejected the same way as a malformed one.
func (s *AuthService) ResolveToken(ctx context.Context, rawToken string) (*domain.UserDetailed, *security.SessionClaims, error) {
	rawToken = strings.TrimSpace(rawToken)
	if rawToken == "" {
		return nil, nil, ErrUnauthenticated
	}

	claims, err := s.tokens.Parse(rawToken)
	if err != nil {
		return nil, nil, ErrUnauthenticated
	}

	user, err := s.users.GetBySession(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrUnauthenticated
		}
		return nil, nil, fmt.Errorf("resolve session: %w", err)
	}

	return user, claims, nil
}

// Logout terminates the session behind the presented token. Already-dead
// sessions report false without error.
func (s *AuthService) Logout(ctx context.Context, claims *security.SessionClaims) (bool, error) {
	if claims == nil {
		return false, ErrUnauthenticated
	}

	terminated, err := s.users.TerminateSession(ctx, claims.SessionID)
	if err != nil {
		return false, fmt.Errorf("terminate session: %w", err)
	}

	if terminated {
		s.publishSessionTerminated(ctx, claims.SessionID, claims.UserID, "logout")
	}

	return terminated, nil
}

// TerminateOwnSessions kills every live session belonging to the actor,
// including the current one.
func (s *AuthService) TerminateOwnSessions(ctx context.Context, actor domain.UserDetailed) (bool, error) {
	terminated, err := s.users.TerminateAllSessions(ctx, actor.ID)
	if err != nil {
		return false, fmt.Errorf("terminate own sessions: %w", err)
	}

	if terminated {
		s.publishSessionTerminated(ctx, "", actor.ID, "all_sessions")
	}

	return terminated, nil
}

// TerminateUserSessions kills every live session of the target user. Allowed
// for the user themselves or a user administrator.
func (s *AuthService) TerminateUserSessions(ctx context.Context, actor domain.UserDetailed, targetUserID string) (bool, error) {
	if !actor.CanActOnUser(targetUserID) {
		return false, ErrPermissionDenied
	}

	terminated, err := s.users.TerminateAllSessions(ctx, targetUserID)
	if err != nil {
		return false, fmt.Errorf("terminate user sessions: %w", err)
	}

	if terminated {
		s.publishSessionTerminated(ctx, "", targetUserID, "terminated_by_"+actor.ID)
	}

	return terminated, nil
}

func (s *AuthService) publishSessionTerminated(ctx context.Context, sessionID, userID, reason string) {
	if s.events == nil {
		return
	}

	event := domain.SessionTerminatedEvent{
		EventID:      uuid.NewString(),
		SessionID:    sessionID,
		UserID:       userID,
		Reason:       reason,
		TerminatedAt: time.Now().UTC(),
	}

	// Event delivery is best effort; session state already committed.
	_ = s.events.PublishSessionTerminated(ctx, event)
}
