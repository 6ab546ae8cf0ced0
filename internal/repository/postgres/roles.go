package postgres

import (
	"context"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"

	"github.com/Rud356/test-task-auth-demo/internal/core/domain"
	"github.com/Rud356/test-task-auth-demo/internal/core/port"
	"github.com/Rud356/test-task-auth-demo/internal/repository"
)

// RoleRepository implements port.RoleRepository using PostgreSQL.
type RoleRepository struct {
	pool    pgPool
	builder squirrel.StatementBuilderType
}

// NewRoleRepository wires a PostgreSQL-backed role repository.
func NewRoleRepository(pool pgPool) *RoleRepository {
	return &RoleRepository{
		pool:    pool,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// List returns all roles ordered by identifier.
func (r *RoleRepository) List(ctx context.Context) ([]domain.Role, error) {
	stmt, args, err := r.builder.Select("id", "name").
		From("roles").
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select roles sql: %w", err)
	}

	rows, err := r.pool.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("select roles: %w", err)
	}
	defer rows.Close()

	var roles []domain.Role
	for rows.Next() {
		var role domain.Role
		if err := rows.Scan(&role.ID, &role.Name); err != nil {
			return nil, fmt.Errorf("scan role: %w", err)
		}
		roles = append(roles, role)
	}

	return roles, rows.Err()
}

// Create inserts a new role and returns it with the generated identifier.
func (r *RoleRepository) Create(ctx context.Context, name string) (domain.Role, error) {
	stmt, args, err := r.builder.Insert("roles").
		Columns("name").
		Values(name).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return domain.Role{}, fmt.Errorf("build insert role sql: %w", err)
	}

	role := domain.Role{Name: name}
	if err := r.pool.QueryRow(ctx, stmt, args...).Scan(&role.ID); err != nil {
		return domain.Role{}, fmt.Errorf("insert role: %w", translateError(err))
	}

	return role, nil
}

// Update renames an existing role.
func (r *RoleRepository) Update(ctx context.Context, role domain.Role) (domain.Role, error) {
	stmt, args, err := r.builder.Update("roles").
		Set("name", role.Name).
		Where(squirrel.Eq{"id": role.ID}).
		ToSql()
	if err != nil {
		return domain.Role{}, fmt.Errorf("build update role sql: %w", err)
	}

	tag, err := r.pool.Exec(ctx, stmt, args...)
	if err != nil {
		return domain.Role{}, fmt.Errorf("update role: %w", translateError(err))
	}
	if tag.RowsAffected() == 0 {
		return domain.Role{}, repository.ErrNotFound
	}

	return role, nil
}

// Delete removes the role. Assignments and resource grants cascade away at
// the schema level.
func (r *RoleRepository) Delete(ctx context.Context, roleID int64) (bool, error) {
	stmt, args, err := r.builder.Delete("roles").
		Where(squirrel.Eq{"id": roleID}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build delete role sql: %w", err)
	}

	tag, err := r.pool.Exec(ctx, stmt, args...)
	if err != nil {
		return false, fmt.Errorf("delete role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return false, repository.ErrNotFound
	}

	return true, nil
}

// AssignToUser links a role to a user. Duplicate assignments and vanished
// references report false without an error.
func (r *RoleRepository) AssignToUser(ctx context.Context, userID string, roleID int64) (bool, error) {
	stmt, args, err := r.builder.Insert("assigned_roles").
		Columns("user_id", "role_id").
		Values(userID, roleID).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build assign role sql: %w", err)
	}

	if _, err := r.pool.Exec(ctx, stmt, args...); err != nil {
		if isIntegrityViolation(err) {
			return false, nil
		}
		return false, fmt.Errorf("assign role: %w", err)
	}

	return true, nil
}

// RemoveFromUser unlinks a role from a user.
func (r *RoleRepository) RemoveFromUser(ctx context.Context, userID string, roleID int64) (bool, error) {
	stmt, args, err := r.builder.Delete("assigned_roles").
		Where(squirrel.Eq{"user_id": userID, "role_id": roleID}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build remove role sql: %w", err)
	}

	tag, err := r.pool.Exec(ctx, stmt, args...)
	if err != nil {
		return false, fmt.Errorf("remove role: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

var _ port.RoleRepository = (*RoleRepository)(nil)
