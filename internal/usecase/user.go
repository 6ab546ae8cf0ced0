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
	// ErrPermissionDenied indicates the actor lacks required permissions.
	ErrPermissionDenied = errors.New("insufficient permissions")
	// ErrUserNotFound is returned when the referenced user does not exist or is deactivated.
	ErrUserNotFound = errors.New("user not found")
	// ErrDuplicateAccount indicates an account with the provided email already exists.
	ErrDuplicateAccount = errors.New("account already exists")
	// ErrWeakPassword indicates the password failed policy validation.
	ErrWeakPassword = errors.New("password does not meet policy")
	// ErrValidation indicates malformed input fields.
	ErrValidation = errors.New("invalid input")
)

// UserService manages account lifecycle: registration, lookup, updates,
// termination, and password changes.
type UserService struct {
	users     port.UserRepository
	passwords *security.PasswordValidator
	events    port.EventPublisher
	log       *zap.Logger
}

// NewUserService constructs a UserService.
func NewUserService(users port.UserRepository, passwords *security.PasswordValidator, events port.EventPublisher, log *zap.Logger) *UserService {
	if log == nil {
		log = zap.NewNop()
	}

	return &UserService{users: users, passwords: passwords, events: events, log: log}
}

// Register creates a self-service account with no permission flags set.
func (s *UserService) Register(ctx context.Context, data port.RegistrationData) (domain.User, error) {
	if err := s.validateRegistration(&data); err != nil {
		return domain.User{}, err
	}

	user, err := s.users.Register(ctx, data, domain.PermissionBundle{})
	if err != nil {
		if errors.Is(err, repository.ErrDataIntegrity) {
			s.log.Warn("registration rejected, account exists",
				zap.String("email", logger.MaskEmail(data.Email)))
			return domain.User{}, ErrDuplicateAccount
		}
		return domain.User{}, fmt.Errorf("register user: %w", err)
	}

	s.log.Info("account registered",
		zap.String("user_id", user.ID),
		zap.String("email", logger.MaskEmail(data.Email)))

	s.publishRegistered(ctx, user.ID, data.Email, "self_service")

	return user, nil
}

// CreateUser provisions an account with explicit permission flags. Requires
// user administration, and the actor may only hand out flags it holds itself.
func (s *UserService) CreateUser(
	ctx context.Context,
	actor domain.UserDetailed,
	data port.RegistrationData,
	permissions domain.PermissionBundle,
) (domain.User, error) {
	if !actor.Permissions.AdministrateUsers {
		return domain.User{}, ErrPermissionDenied
	}
	if !actor.CanGrantPermissions(permissions) {
		return domain.User{}, ErrPermissionDenied
	}

	if err := s.validateRegistration(&data); err != nil {
		return domain.User{}, err
	}

	user, err := s.users.Register(ctx, data, permissions)
	if err != nil {
		if errors.Is(err, repository.ErrDataIntegrity) {
			return domain.User{}, ErrDuplicateAccount
		}
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}

	s.log.Info("account provisioned",
		zap.String("user_id", user.ID),
		zap.String("email", logger.MaskEmail(data.Email)),
		zap.String("created_by", actor.ID))

	s.publishRegistered(ctx, user.ID, data.Email, "administrative")

	return user, nil
}

// GetUser fetches a user profile. Any authenticated actor may look up a user.
func (s *UserService) GetUser(ctx context.Context, userID string) (*domain.UserDetailed, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	return user, nil
}

// ListUsers returns registered accounts. Requires user administration.
func (s *UserService) ListUsers(ctx context.Context, actor domain.UserDetailed, filter port.UserFilter) ([]domain.UserDetailed, error) {
	if !actor.Permissions.AdministrateUsers {
		return nil, ErrPermissionDenied
	}

	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 100
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	users, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	return users, nil
}

// UpdateDetails patches user detail fields. Allowed for the user themselves
// or a user administrator.
func (s *UserService) UpdateDetails(ctx context.Context, actor domain.UserDetailed, patch port.UserPatch) (*domain.UserDetailed, error) {
	if !actor.CanActOnUser(patch.UserID) {
		return nil, ErrPermissionDenied
	}

	if err := validatePatch(patch); err != nil {
		return nil, err
	}

	user, err := s.users.UpdateDetails(ctx, patch)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrUserNotFound
		case errors.Is(err, repository.ErrDataIntegrity):
			return nil, ErrDuplicateAccount
		}
		return nil, fmt.Errorf("update user details: %w", err)
	}

	return user, nil
}

// Terminate deactivates the account and kills all of its sessions. Allowed
// for the user themselves or a user administrator. Idempotent: an already
// terminated account reports false.
func (s *UserService) Terminate(ctx context.Context, actor domain.UserDetailed, userID string) (bool, error) {
	if !actor.CanActOnUser(userID) {
		return false, ErrPermissionDenied
	}

	terminated, err := s.users.Terminate(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, ErrUserNotFound
		}
		return false, fmt.Errorf("terminate user: %w", err)
	}

	if terminated && s.events != nil {
		event := domain.UserTerminatedEvent{
			EventID:      uuid.NewString(),
			UserID:       userID,
			TerminatedBy: actor.ID,
			TerminatedAt: time.Now().UTC(),
		}
		_ = s.events.PublishUserTerminated(ctx, event)
	}

	return terminated, nil
}

// ChangePassword replaces the credential hash with a fresh salt and
// terminates every live session of the user. Allowed for the user themselves
// or a user administrator.
func (s *UserService) ChangePassword(ctx context.Context, actor domain.UserDetailed, userID, newPassword string) (bool, error) {
	if !actor.CanActOnUser(userID) {
		return false, ErrPermissionDenied
	}

	if err := s.passwords.Validate(newPassword); err != nil {
		return false, fmt.Errorf("%w: %v", ErrWeakPassword, err)
	}

	changed, err := s.users.ChangePassword(ctx, userID, newPassword)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, ErrUserNotFound
		}
		return false, fmt.Errorf("change password: %w", err)
	}

	if changed && s.events != nil {
		event := domain.PasswordChangedEvent{
			EventID:   uuid.NewString(),
			UserID:    userID,
			ChangedBy: actor.ID,
			ChangedAt: time.Now().UTC(),
		}
		_ = s.events.PublishPasswordChanged(ctx, event)
	}

	return changed, nil
}

func (s *UserService) validateRegistration(data *port.RegistrationData) error {
	data.Email = strings.TrimSpace(data.Email)
	data.Name = strings.TrimSpace(data.Name)
	data.Surname = strings.TrimSpace(data.Surname)

	if data.Email == "" || !strings.Contains(data.Email, "@") {
		return fmt.Errorf("%w: email is malformed", ErrValidation)
	}
	if data.Name == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if data.Surname == "" {
		return fmt.Errorf("%w: surname is required", ErrValidation)
	}

	if err := s.passwords.Validate(data.Password); err != nil {
		return fmt.Errorf("%w: %v", ErrWeakPassword, err)
	}

	return nil
}

func validatePatch(patch port.UserPatch) error {
	if patch.Email != nil {
		email := strings.TrimSpace(*patch.Email)
		if email == "" || !strings.Contains(email, "@") {
			return fmt.Errorf("%w: email is malformed", ErrValidation)
		}
	}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrValidation)
	}
	if patch.Surname != nil && strings.TrimSpace(*patch.Surname) == "" {
		return fmt.Errorf("%w: surname cannot be empty", ErrValidation)
	}
	return nil
}

func (s *UserService) publishRegistered(ctx context.Context, userID, email, method string) {
	if s.events == nil {
		return
	}

	event := domain.UserRegisteredEvent{
		EventID:            uuid.NewString(),
		UserID:             userID,
		Email:              email,
		RegisteredAt:       time.Now().UTC(),
		RegistrationMethod: method,
	}
	_ = s.events.PublishUserRegistered(ctx, event)
}
