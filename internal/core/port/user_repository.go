package port

import (
	"context"

	"github.com/Rud356/test-task-auth-demo/internal/core/domain"
)

// RegistrationData captures the payload for creating a user with credentials.
type RegistrationData struct {
	Email     string
	Name      string
	Surname   string
	ThirdName *string
	Password  string
}

// UserPatch describes a partial update of user detail fields. Nil fields are
// left untouched.
type UserPatch struct {
	UserID    string
	Email     *string
	Name      *string
	Surname   *string
	ThirdName *string
}

// UserFilter controls pagination and deactivated-account visibility for listings.
type UserFilter struct {
	Limit              int
	Offset             int
	IncludeDeactivated bool
}

// UserRepository exposes persistence behavior for users, credentials, and
// sessions. Every method is transactional: effects either commit atomically
// or leave no trace.
type UserRepository interface {
	// Register creates a user with credentials and the supplied permission
	// bundle. Returns repository.ErrDataIntegrity on an email collision.
	Register(ctx context.Context, data RegistrationData, permissions domain.PermissionBundle) (domain.User, error)
	GetByID(ctx context.Context, userID string) (*domain.UserDetailed, error)
	// GetBySession resolves a live session token to its user. Dead or unknown
	// sessions yield repository.ErrNotFound.
	GetBySession(ctx context.Context, sessionID string) (*domain.UserDetailed, error)
	List(ctx context.Context, filter UserFilter) ([]domain.UserDetailed, error)
	UpdateDetails(ctx context.Context, patch UserPatch) (*domain.UserDetailed, error)
	// Terminate deactivates the user and kills every live session. Returns
	// false without error when the account was already terminated.
	Terminate(ctx context.Context, userID string) (bool, error)
	// ChangePassword stores a fresh salt and hash, terminating all of the
	// user's live sessions in the same transaction.
	ChangePassword(ctx context.Context, userID string, newPassword string) (bool, error)
	// Login verifies the credential and creates a session row. Unknown or
	// inactive accounts yield repository.ErrNotFound; a failed verification or
	// a deactivated (nil hash) credential yields repository.ErrInvalidCredential.
	Login(ctx context.Context, email string, password string) (*domain.Session, error)
	// TerminateSession idempotently flips session liveness; false when the
	// session was already dead or never existed.
	TerminateSession(ctx context.Context, sessionID string) (bool, error)
	TerminateAllSessions(ctx context.Context, userID string) (bool, error)
}
