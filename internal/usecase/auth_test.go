package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Rud356/test-task-auth-demo/internal/core/domain"
	"github.com/Rud356/test-task-auth-demo/internal/infra/security"
	"github.com/Rud356/test-task-auth-demo/internal/repository"
)

func newAuthService(t *testing.T, users *userRepoStub, events *eventRecorderStub) *AuthService {
	t.Helper()
	tokens, err := security.NewTokenManager("unit-test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenManager: %v", err)
	}
	return NewAuthService(users, tokens, events, nil)
}

func TestAuthService_Login_Success(t *testing.T) {
	users := &userRepoStub{
		loginSession: &domain.Session{
			ID:        "0123456789abcdef0123456789abcdef",
			UserID:    "user-1",
			CreatedAt: time.Now().UTC(),
			IsAlive:   true,
		},
	}
	service := newAuthService(t, users, &eventRecorderStub{})

	result, err := service.Login(context.Background(), "user@example.com", "correct password")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if result.Token == "" {
		t.Fatal("expected a signed token")
	}
	if !result.ExpiresAt.After(time.Now()) {
		t.Fatalf("expected future expiry, got %v", result.ExpiresAt)
	}
}

func TestAuthService_Login_UnknownAccountAndWrongPasswordIndistinguishable(t *testing.T) {
	unknownAccount := &userRepoStub{loginErr: repository.ErrNotFound}
	wrongPassword := &userRepoStub{loginErr: repository.ErrInvalidCredential}

	for name, users := range map[string]*userRepoStub{
		"unknown account": unknownAccount,
		"wrong password":  wrongPassword,
	} {
		service := newAuthService(t, users, &eventRecorderStub{})

		_, err := service.Login(context.Background(), "user@example.com", "whatever")
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("%s: expected ErrInvalidCredentials, got %v", name, err)
		}
	}
}

func TestAuthService_Login_EmptyInputRejectedWithoutRepoCall(t *testing.T) {
	users := &userRepoStub{loginErr: errRepoFailure}
	service := newAuthService(t, users, &eventRecorderStub{})

	if _, err := service.Login(context.Background(), "", "password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for empty email, got %v", err)
	}
	if _, err := service.Login(context.Background(), "user@example.com", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for empty password, got %v", err)
	}
}

func TestAuthService_Login_BackendErrorNotMasked(t *testing.T) {
	users := &userRepoStub{loginErr: errRepoFailure}
	service := newAuthService(t, users, &eventRecorderStub{})

	_, err := service.Login(context.Background(), "user@example.com", "password")
	if errors.Is(err, ErrInvalidCredentials) {
		t.Fatal("backend failures must not be reported as invalid credentials")
	}
	if !errors.Is(err, errRepoFailure) {
		t.Fatalf("expected wrapped backend error, got %v", err)
	}
}

func TestAuthService_ResolveToken_Success(t *testing.T) {
	session := domain.Session{
		ID:        "0123456789abcdef0123456789abcdef",
		UserID:    "user-1",
		CreatedAt: time.Now().UTC(),
		IsAlive:   true,
	}
	users := &userRepoStub{
		users: map[string]domain.UserDetailed{
			"user-1": {User: domain.User{ID: "user-1", Name: "Test", IsActive: true}},
		},
		sessions: map[string]string{session.ID: "user-1"},
	}
	service := newAuthService(t, users, &eventRecorderStub{})

	tokens, err := security.NewTokenManager("unit-test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenManager: %v", err)
	}
	token, _, err := tokens.Issue(session)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	user, claims, err := service.ResolveToken(context.Background(), token)
	if err != nil {
		t.Fatalf("ResolveToken failed: %v", err)
	}
	if user.ID != "user-1" {
		t.Errorf("expected user-1, got %s", user.ID)
	}
	if claims.SessionID != session.ID {
		t.Errorf("expected session id %s, got %s", session.ID, claims.SessionID)
	}
}

func TestAuthService_ResolveToken_RejectsGarbage(t *testing.T) {
	service := newAuthService(t, &userRepoStub{}, &eventRecorderStub{})

	for _, token := range []string{"", "   ", "not-a-token"} {
		if _, _, err := service.ResolveToken(context.Background(), token); !errors.Is(err, ErrUnauthenticated) {
			t.Errorf("token %q: expected ErrUnauthenticated, got %v", token, err)
		}
	}
}

func TestAuthService_ResolveToken_DeadSessionRejected(t *testing.T) {
	session := domain.Session{
		ID:        "0123456789abcdef0123456789abcdef",
		UserID:    "user-1",
		CreatedAt: time.Now().UTC(),
		IsAlive:   true,
	}
	// Repository has no record of the session: terminated sessions resolve the
	// same way as unknown ones.
	users := &userRepoStub{}
	service := newAuthService(t, users, &eventRecorderStub{})

	tokens, err := security.NewTokenManager("unit-test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenManager: %v", err)
	}
	token, _, err := tokens.Issue(session)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, _, err := service.ResolveToken(context.Background(), token); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestAuthService_Logout(t *testing.T) {
	users := &userRepoStub{sessionKillResult: true}
	events := &eventRecorderStub{}
	service := newAuthService(t, users, events)

	claims := &security.SessionClaims{UserID: "user-1", SessionID: "session-1"}

	terminated, err := service.Logout(context.Background(), claims)
	if err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if !terminated {
		t.Fatal("expected session to be terminated")
	}
	if len(users.killedSessions) != 1 || users.killedSessions[0] != "session-1" {
		t.Fatalf("expected session-1 to be terminated, got %v", users.killedSessions)
	}
	if events.sessions != 1 {
		t.Fatalf("expected one session.terminated event, got %d", events.sessions)
	}
}

func TestAuthService_Logout_AlreadyDeadSession(t *testing.T) {
	users := &userRepoStub{sessionKillResult: false}
	events := &eventRecorderStub{}
	service := newAuthService(t, users, events)

	terminated, err := service.Logout(context.Background(), &security.SessionClaims{UserID: "u", SessionID: "s"})
	if err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if terminated {
		t.Fatal("expected false for already-dead session")
	}
	if events.sessions != 0 {
		t.Fatalf("expected no event for no-op logout, got %d", events.sessions)
	}
}

func TestAuthService_Logout_RequiresClaims(t *testing.T) {
	service := newAuthService(t, &userRepoStub{}, &eventRecorderStub{})

	if _, err := service.Logout(context.Background(), nil); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestAuthService_TerminateUserSessions_PermissionGuard(t *testing.T) {
	users := &userRepoStub{sessionsKillResult: true}
	service := newAuthService(t, users, &eventRecorderStub{})

	plain := domain.UserDetailed{User: domain.User{ID: "actor-1"}}

	if _, err := service.TerminateUserSessions(context.Background(), plain, "other-user"); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}

	// Self-service is always allowed.
	if _, err := service.TerminateUserSessions(context.Background(), plain, "actor-1"); err != nil {
		t.Fatalf("self termination failed: %v", err)
	}

	admin := domain.UserDetailed{
		User:        domain.User{ID: "admin-1"},
		Permissions: domain.PermissionBundle{AdministrateUsers: true},
	}
	if _, err := service.TerminateUserSessions(context.Background(), admin, "other-user"); err != nil {
		t.Fatalf("administrative termination failed: %v", err)
	}
}

func TestAuthService_Login_LogsMaskedCredentials(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	users := &userRepoStub{
		loginSession: &domain.Session{
			ID:        "0123456789abcdef0123456789abcdef",
			UserID:    "user-1",
			CreatedAt: time.Now().UTC(),
			IsAlive:   true,
		},
	}
	tokens, err := security.NewTokenManager("unit-test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenManager: %v", err)
	}
	service := NewAuthService(users, tokens, &eventRecorderStub{}, zap.New(core))

	if _, err := service.Login(context.Background(), "john.doe@example.com", "correct password"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	entries := logs.FilterMessage("login succeeded").All()
	if len(entries) != 1 {
		t.Fatalf("expected one login log entry, got %d", len(entries))
	}

	fields := entries[0].ContextMap()
	if got := fields["email"]; got != "joh***@example.com" {
		t.Fatalf("expected masked email in log, got %v", got)
	}
	if got := fields["session_id"]; got != "01***ef" {
		t.Fatalf("expected masked session id in log, got %v", got)
	}
}

func TestAuthService_Login_RejectionLogsMaskedEmail(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	users := &userRepoStub{loginErr: repository.ErrInvalidCredential}
	tokens, err := security.NewTokenManager("unit-test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenManager: %v", err)
	}
	service := NewAuthService(users, tokens, &eventRecorderStub{}, zap.New(core))

	if _, err := service.Login(context.Background(), "john.doe@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	entries := logs.FilterMessage("login rejected").All()
	if len(entries) != 1 {
		t.Fatalf("expected one rejection log entry, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["email"]; got != "joh***@example.com" {
		t.Fatalf("expected masked email in log, got %v", got)
	}
}
