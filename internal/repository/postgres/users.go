package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	uuid "github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Rud356/test-task-auth-demo/internal/core/domain"
	"github.com/Rud356/test-task-auth-demo/internal/core/port"
	"github.com/Rud356/test-task-auth-demo/internal/repository"
)

// UserRepository implements port.UserRepository using PostgreSQL. Credential
// hashing happens here so that the hash, salt, and session rows always change
// inside the same transaction as the user row.
type UserRepository struct {
	pool    pgPool
	builder squirrel.StatementBuilderType
	hasher  port.PasswordHasher
	tokens  port.SessionTokenSource
}

// NewUserRepository wires a PostgreSQL-backed user repository.
func NewUserRepository(pool pgPool, hasher port.PasswordHasher, tokens port.SessionTokenSource) *UserRepository {
	return &UserRepository{
		pool:    pool,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		hasher:  hasher,
		tokens:  tokens,
	}
}

// Register creates the user, credential, and permission rows atomically.
func (r *UserRepository) Register(ctx context.Context, data port.RegistrationData, permissions domain.PermissionBundle) (domain.User, error) {
	salt, err := r.hasher.NewSalt()
	if err != nil {
		return domain.User{}, fmt.Errorf("generate salt: %w", err)
	}

	passwordHash, err := r.hasher.Hash(data.Password, salt)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	user := domain.User{
		ID:        uuid.NewString(),
		Name:      data.Name,
		Surname:   data.Surname,
		ThirdName: data.ThirdName,
		IsActive:  true,
	}

	err = inTx(ctx, r.pool, func(tx pgx.Tx) error {
		stmt, args, err := r.builder.Insert("users").
			Columns("id", "name", "surname", "third_name", "is_active").
			Values(user.ID, user.Name, user.Surname, user.ThirdName, user.IsActive).
			ToSql()
		if err != nil {
			return fmt.Errorf("build insert user sql: %w", err)
		}
		if _, err := tx.Exec(ctx, stmt, args...); err != nil {
			return fmt.Errorf("insert user: %w", translateError(err))
		}

		stmt, args, err = r.builder.Insert("credentials").
			Columns("user_id", "email", "password_hash", "salt").
			Values(user.ID, data.Email, passwordHash, salt).
			ToSql()
		if err != nil {
			return fmt.Errorf("build insert credential sql: %w", err)
		}
		if _, err := tx.Exec(ctx, stmt, args...); err != nil {
			return fmt.Errorf("insert credential: %w", translateError(err))
		}

		stmt, args, err = r.builder.Insert("user_permissions").
			Columns("user_id", "edit_roles", "view_all_resources", "administrate_users", "administrate_resources").
			Values(user.ID, permissions.EditRoles, permissions.ViewAllResources, permissions.AdministrateUsers, permissions.AdministrateResources).
			ToSql()
		if err != nil {
			return fmt.Errorf("build insert permissions sql: %w", err)
		}
		if _, err := tx.Exec(ctx, stmt, args...); err != nil {
			return fmt.Errorf("insert permissions: %w", translateError(err))
		}

		return nil
	})
	if err != nil {
		return domain.User{}, err
	}

	return user, nil
}

// GetByID retrieves a user with resolved roles and permission flags.
func (r *UserRepository) GetByID(ctx context.Context, userID string) (*domain.UserDetailed, error) {
	return r.fetchDetailed(ctx, r.pool, userID)
}

// GetBySession resolves a live session token to its user. Dead sessions and
// deactivated accounts both come back as repository.ErrNotFound.
func (r *UserRepository) GetBySession(ctx context.Context, sessionID string) (*domain.UserDetailed, error) {
	stmt, args, err := r.builder.Select("user_id").
		From("sessions").
		Where(squirrel.Eq{"id": sessionID, "is_alive": true}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select session sql: %w", err)
	}

	var userID string
	if err := r.pool.QueryRow(ctx, stmt, args...).Scan(&userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("select session: %w", err)
	}

	user, err := r.fetchDetailed(ctx, r.pool, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, repository.ErrNotFound
	}

	return user, nil
}

// List returns users with resolved roles and permissions, paginated.
func (r *UserRepository) List(ctx context.Context, filter port.UserFilter) ([]domain.UserDetailed, error) {
	query := r.builder.Select(
		"u.id", "u.name", "u.surname", "u.third_name", "u.is_active",
		"p.edit_roles", "p.view_all_resources", "p.administrate_users", "p.administrate_resources",
	).
		From("users u").
		Join("user_permissions p ON p.user_id = u.id").
		OrderBy("u.id").
		Limit(uint64(filter.Limit)).
		Offset(uint64(filter.Offset))

	if !filter.IncludeDeactivated {
		query = query.Where(squirrel.Eq{"u.is_active": true})
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select users sql: %w", err)
	}

	rows, err := r.pool.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("select users: %w", err)
	}
	defer rows.Close()

	var users []domain.UserDetailed
	for rows.Next() {
		var user domain.UserDetailed
		if err := rows.Scan(
			&user.ID, &user.Name, &user.Surname, &user.ThirdName, &user.IsActive,
			&user.Permissions.EditRoles, &user.Permissions.ViewAllResources,
			&user.Permissions.AdministrateUsers, &user.Permissions.AdministrateResources,
		); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}

	if err := r.attachRoles(ctx, users); err != nil {
		return nil, err
	}

	return users, nil
}

// UpdateDetails applies a partial update across the user and credential rows.
func (r *UserRepository) UpdateDetails(ctx context.Context, patch port.UserPatch) (*domain.UserDetailed, error) {
	err := inTx(ctx, r.pool, func(tx pgx.Tx) error {
		userUpdate := r.builder.Update("users").Where(squirrel.Eq{"id": patch.UserID})
		userDirty := false
		if patch.Name != nil {
			userUpdate = userUpdate.Set("name", *patch.Name)
			userDirty = true
		}
		if patch.Surname != nil {
			userUpdate = userUpdate.Set("surname", *patch.Surname)
			userDirty = true
		}
		if patch.ThirdName != nil {
			userUpdate = userUpdate.Set("third_name", *patch.ThirdName)
			userDirty = true
		}

		if userDirty {
			stmt, args, err := userUpdate.ToSql()
			if err != nil {
				return fmt.Errorf("build update user sql: %w", err)
			}
			tag, err := tx.Exec(ctx, stmt, args...)
			if err != nil {
				return fmt.Errorf("update user: %w", translateError(err))
			}
			if tag.RowsAffected() == 0 {
				return repository.ErrNotFound
			}
		}

		if patch.Email != nil {
			stmt, args, err := r.builder.Update("credentials").
				Set("email", *patch.Email).
				Where(squirrel.Eq{"user_id": patch.UserID}).
				ToSql()
			if err != nil {
				return fmt.Errorf("build update credential sql: %w", err)
			}
			tag, err := tx.Exec(ctx, stmt, args...)
			if err != nil {
				return fmt.Errorf("update credential: %w", translateError(err))
			}
			if tag.RowsAffected() == 0 {
				return repository.ErrNotFound
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return r.fetchDetailed(ctx, r.pool, patch.UserID)
}

// Terminate deactivates the account and kills all of its live sessions.
func (r *UserRepository) Terminate(ctx context.Context, userID string) (bool, error) {
	var terminated bool

	err := inTx(ctx, r.pool, func(tx pgx.Tx) error {
		stmt, args, err := r.builder.Update("users").
			Set("is_active", false).
			Where(squirrel.Eq{"id": userID, "is_active": true}).
			ToSql()
		if err != nil {
			return fmt.Errorf("build terminate user sql: %w", err)
		}

		tag, err := tx.Exec(ctx, stmt, args...)
		if err != nil {
			return fmt.Errorf("terminate user: %w", err)
		}

		if tag.RowsAffected() == 0 {
			exists, err := r.userExists(ctx, tx, userID)
			if err != nil {
				return err
			}
			if !exists {
				return repository.ErrNotFound
			}
			// Already terminated.
			return nil
		}

		if err := killSessions(ctx, tx, r.builder, userID); err != nil {
			return err
		}

		terminated = true
		return nil
	})
	if err != nil {
		return false, err
	}

	return terminated, nil
}

// ChangePassword stores a fresh salt and hash and kills every live session of
// the user in the same transaction.
func (r *UserRepository) ChangePassword(ctx context.Context, userID string, newPassword string) (bool, error) {
	salt, err := r.hasher.NewSalt()
	if err != nil {
		return false, fmt.Errorf("generate salt: %w", err)
	}

	passwordHash, err := r.hasher.Hash(newPassword, salt)
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}

	err = inTx(ctx, r.pool, func(tx pgx.Tx) error {
		stmt, args, err := r.builder.Update("credentials").
			Set("password_hash", passwordHash).
			Set("salt", salt).
			Where(squirrel.Eq{"user_id": userID}).
			ToSql()
		if err != nil {
			return fmt.Errorf("build update credential sql: %w", err)
		}

		tag, err := tx.Exec(ctx, stmt, args...)
		if err != nil {
			return fmt.Errorf("update credential: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return repository.ErrNotFound
		}

		return killSessions(ctx, tx, r.builder, userID)
	})
	if err != nil {
		return false, err
	}

	return true, nil
}

// Login verifies the credential and creates a session row atomically.
func (r *UserRepository) Login(ctx context.Context, email string, password string) (*domain.Session, error) {
	var session *domain.Session

	err := inTx(ctx, r.pool, func(tx pgx.Tx) error {
		stmt, args, err := r.builder.Select("c.user_id", "c.password_hash", "c.salt", "u.is_active").
			From("credentials c").
			Join("users u ON u.id = c.user_id").
			Where(squirrel.Eq{"c.email": email}).
			ToSql()
		if err != nil {
			return fmt.Errorf("build select credential sql: %w", err)
		}

		var (
			userID       string
			passwordHash *string
			salt         string
			isActive     bool
		)
		if err := tx.QueryRow(ctx, stmt, args...).Scan(&userID, &passwordHash, &salt, &isActive); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return repository.ErrNotFound
			}
			return fmt.Errorf("select credential: %w", err)
		}

		if !isActive {
			return repository.ErrNotFound
		}
		if passwordHash == nil {
			return repository.ErrInvalidCredential
		}
		if !r.hasher.Verify(password, salt, *passwordHash) {
			return repository.ErrInvalidCredential
		}

		token, err := r.tokens.NewSessionToken()
		if err != nil {
			return fmt.Errorf("generate session token: %w", err)
		}

		created := domain.Session{
			ID:        token,
			UserID:    userID,
			CreatedAt: time.Now().UTC(),
			IsAlive:   true,
		}

		stmt, args, err = r.builder.Insert("sessions").
			Columns("id", "user_id", "created_at", "is_alive").
			Values(created.ID, created.UserID, created.CreatedAt, created.IsAlive).
			ToSql()
		if err != nil {
			return fmt.Errorf("build insert session sql: %w", err)
		}
		if _, err := tx.Exec(ctx, stmt, args...); err != nil {
			return fmt.Errorf("insert session: %w", translateError(err))
		}

		session = &created
		return nil
	})
	if err != nil {
		return nil, err
	}

	return session, nil
}

// TerminateSession idempotently flips session liveness.
func (r *UserRepository) TerminateSession(ctx context.Context, sessionID string) (bool, error) {
	stmt, args, err := r.builder.Update("sessions").
		Set("is_alive", false).
		Where(squirrel.Eq{"id": sessionID, "is_alive": true}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build terminate session sql: %w", err)
	}

	tag, err := r.pool.Exec(ctx, stmt, args...)
	if err != nil {
		return false, fmt.Errorf("terminate session: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// TerminateAllSessions kills every live session of the user.
func (r *UserRepository) TerminateAllSessions(ctx context.Context, userID string) (bool, error) {
	stmt, args, err := r.builder.Update("sessions").
		Set("is_alive", false).
		Where(squirrel.Eq{"user_id": userID, "is_alive": true}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build terminate sessions sql: %w", err)
	}

	tag, err := r.pool.Exec(ctx, stmt, args...)
	if err != nil {
		return false, fmt.Errorf("terminate sessions: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

func (r *UserRepository) fetchDetailed(ctx context.Context, exec pgExecutor, userID string) (*domain.UserDetailed, error) {
	stmt, args, err := r.builder.Select(
		"u.id", "u.name", "u.surname", "u.third_name", "u.is_active",
		"p.edit_roles", "p.view_all_resources", "p.administrate_users", "p.administrate_resources",
	).
		From("users u").
		Join("user_permissions p ON p.user_id = u.id").
		Where(squirrel.Eq{"u.id": userID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select user sql: %w", err)
	}

	var user domain.UserDetailed
	if err := exec.QueryRow(ctx, stmt, args...).Scan(
		&user.ID, &user.Name, &user.Surname, &user.ThirdName, &user.IsActive,
		&user.Permissions.EditRoles, &user.Permissions.ViewAllResources,
		&user.Permissions.AdministrateUsers, &user.Permissions.AdministrateResources,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("select user: %w", err)
	}

	stmt, args, err = r.builder.Select("r.id", "r.name").
		From("roles r").
		Join("assigned_roles ar ON ar.role_id = r.id").
		Where(squirrel.Eq{"ar.user_id": userID}).
		OrderBy("r.id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select user roles sql: %w", err)
	}

	rows, err := exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("select user roles: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var role domain.Role
		if err := rows.Scan(&role.ID, &role.Name); err != nil {
			return nil, fmt.Errorf("scan user role: %w", err)
		}
		user.Roles = append(user.Roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user roles: %w", err)
	}

	return &user, nil
}

// attachRoles resolves role assignments for a page of users in one query.
func (r *UserRepository) attachRoles(ctx context.Context, users []domain.UserDetailed) error {
	if len(users) == 0 {
		return nil
	}

	ids := make([]string, 0, len(users))
	index := make(map[string]int, len(users))
	for i, user := range users {
		ids = append(ids, user.ID)
		index[user.ID] = i
	}

	stmt, args, err := r.builder.Select("ar.user_id", "r.id", "r.name").
		From("roles r").
		Join("assigned_roles ar ON ar.role_id = r.id").
		Where(squirrel.Eq{"ar.user_id": ids}).
		OrderBy("r.id").
		ToSql()
	if err != nil {
		return fmt.Errorf("build select assigned roles sql: %w", err)
	}

	rows, err := r.pool.Query(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("select assigned roles: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			userID string
			role   domain.Role
		)
		if err := rows.Scan(&userID, &role.ID, &role.Name); err != nil {
			return fmt.Errorf("scan assigned role: %w", err)
		}
		if i, ok := index[userID]; ok {
			users[i].Roles = append(users[i].Roles, role)
		}
	}

	return rows.Err()
}

func (r *UserRepository) userExists(ctx context.Context, exec pgExecutor, userID string) (bool, error) {
	stmt, args, err := r.builder.Select("1").
		From("users").
		Where(squirrel.Eq{"id": userID}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build select user exists sql: %w", err)
	}

	var one int
	if err := exec.QueryRow(ctx, stmt, args...).Scan(&one); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("select user exists: %w", err)
	}

	return true, nil
}

func killSessions(ctx context.Context, exec pgExecutor, builder squirrel.StatementBuilderType, userID string) error {
	stmt, args, err := builder.Update("sessions").
		Set("is_alive", false).
		Where(squirrel.Eq{"user_id": userID, "is_alive": true}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build kill sessions sql: %w", err)
	}

	if _, err := exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("kill sessions: %w", err)
	}

	return nil
}

var _ port.UserRepository = (*UserRepository)(nil)
