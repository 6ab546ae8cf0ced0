package postgres

import (
	"context"
	"errors"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/Rud356/test-task-auth-demo/internal/core/domain"
	"github.com/Rud356/test-task-auth-demo/internal/core/port"
	"github.com/Rud356/test-task-auth-demo/internal/repository"
)

// listAvailableSQL unions resources the user authored with resources any of
// the user's roles holds a view or edit grant on. Kept as raw SQL since
// squirrel has no UNION support.
const listAvailableSQL = `
SELECT id, author_id, content FROM resources WHERE author_id = $1
UNION
SELECT res.id, res.author_id, res.content
FROM resources res
JOIN roles_permissions rp ON rp.resource_id = res.id
JOIN assigned_roles ar ON ar.role_id = rp.role_id
WHERE ar.user_id = $1 AND (rp.can_view_resource OR rp.can_edit_resource)
ORDER BY id
LIMIT $2 OFFSET $3`

// ResourceRepository implements port.ResourceRepository using PostgreSQL.
type ResourceRepository struct {
	pool    pgPool
	builder squirrel.StatementBuilderType
}

// NewResourceRepository wires a PostgreSQL-backed resource repository.
func NewResourceRepository(pool pgPool) *ResourceRepository {
	return &ResourceRepository{
		pool:    pool,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a resource row authored by the given user.
func (r *ResourceRepository) Create(ctx context.Context, authorID string, content string) (domain.Resource, error) {
	stmt, args, err := r.builder.Insert("resources").
		Columns("author_id", "content").
		Values(authorID, content).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return domain.Resource{}, fmt.Errorf("build insert resource sql: %w", err)
	}

	resource := domain.Resource{AuthorID: authorID, Content: content}
	if err := r.pool.QueryRow(ctx, stmt, args...).Scan(&resource.ID); err != nil {
		return domain.Resource{}, fmt.Errorf("insert resource: %w", translateError(err))
	}

	return resource, nil
}

// Edit replaces the resource content.
func (r *ResourceRepository) Edit(ctx context.Context, resourceID int64, content string) (domain.Resource, error) {
	stmt, args, err := r.builder.Update("resources").
		Set("content", content).
		Where(squirrel.Eq{"id": resourceID}).
		Suffix("RETURNING author_id").
		ToSql()
	if err != nil {
		return domain.Resource{}, fmt.Errorf("build update resource sql: %w", err)
	}

	resource := domain.Resource{ID: resourceID, Content: content}
	if err := r.pool.QueryRow(ctx, stmt, args...).Scan(&resource.AuthorID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Resource{}, repository.ErrNotFound
		}
		return domain.Resource{}, fmt.Errorf("update resource: %w", err)
	}

	return resource, nil
}

// GetByID retrieves a resource with its role grants resolved.
func (r *ResourceRepository) GetByID(ctx context.Context, resourceID int64) (*domain.ResourceDetails, error) {
	stmt, args, err := r.builder.Select("id", "author_id", "content").
		From("resources").
		Where(squirrel.Eq{"id": resourceID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select resource sql: %w", err)
	}

	var details domain.ResourceDetails
	if err := r.pool.QueryRow(ctx, stmt, args...).Scan(&details.ID, &details.AuthorID, &details.Content); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("select resource: %w", err)
	}

	grants, err := r.loadGrants(ctx, []int64{resourceID})
	if err != nil {
		return nil, err
	}
	details.Grants = grants[resourceID]

	return &details, nil
}

// List returns all resources with their grants, paginated.
func (r *ResourceRepository) List(ctx context.Context, filter port.ResourceFilter) ([]domain.ResourceDetails, error) {
	stmt, args, err := r.builder.Select("id", "author_id", "content").
		From("resources").
		OrderBy("id").
		Limit(uint64(filter.Limit)).
		Offset(uint64(filter.Offset)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select resources sql: %w", err)
	}

	rows, err := r.pool.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("select resources: %w", err)
	}

	return r.collectWithGrants(ctx, rows)
}

// ListAvailable returns resources the user authored plus resources reachable
// through role grants.
func (r *ResourceRepository) ListAvailable(ctx context.Context, userID string, filter port.ResourceFilter) ([]domain.ResourceDetails, error) {
	rows, err := r.pool.Query(ctx, listAvailableSQL, userID, filter.Limit, filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("select available resources: %w", err)
	}

	return r.collectWithGrants(ctx, rows)
}

// SetRolePermissions upserts the grant row for a (role, resource) pair.
// Vanished roles or resources report false without an error.
func (r *ResourceRepository) SetRolePermissions(ctx context.Context, resourceID int64, grant port.RoleGrantUpdate) (bool, error) {
	stmt, args, err := r.builder.Insert("roles_permissions").
		Columns("role_id", "resource_id", "can_view_resource", "can_edit_resource").
		Values(grant.RoleID, resourceID, grant.CanViewResource, grant.CanEditResource).
		Suffix("ON CONFLICT (role_id, resource_id) DO UPDATE SET can_view_resource = EXCLUDED.can_view_resource, can_edit_resource = EXCLUDED.can_edit_resource").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build upsert grant sql: %w", err)
	}

	if _, err := r.pool.Exec(ctx, stmt, args...); err != nil {
		if isIntegrityViolation(err) {
			return false, nil
		}
		return false, fmt.Errorf("upsert grant: %w", err)
	}

	return true, nil
}

func (r *ResourceRepository) collectWithGrants(ctx context.Context, rows pgx.Rows) ([]domain.ResourceDetails, error) {
	defer rows.Close()

	var resources []domain.ResourceDetails
	for rows.Next() {
		var details domain.ResourceDetails
		if err := rows.Scan(&details.ID, &details.AuthorID, &details.Content); err != nil {
			return nil, fmt.Errorf("scan resource: %w", err)
		}
		resources = append(resources, details)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate resources: %w", err)
	}

	if len(resources) == 0 {
		return resources, nil
	}

	ids := make([]int64, 0, len(resources))
	for _, resource := range resources {
		ids = append(ids, resource.ID)
	}

	grants, err := r.loadGrants(ctx, ids)
	if err != nil {
		return nil, err
	}

	for i := range resources {
		resources[i].Grants = grants[resources[i].ID]
	}

	return resources, nil
}

func (r *ResourceRepository) loadGrants(ctx context.Context, resourceIDs []int64) (map[int64][]domain.RoleGrant, error) {
	stmt, args, err := r.builder.Select("rp.resource_id", "rp.role_id", "ro.name", "rp.can_view_resource", "rp.can_edit_resource").
		From("roles_permissions rp").
		Join("roles ro ON ro.id = rp.role_id").
		Where(squirrel.Eq{"rp.resource_id": resourceIDs}).
		OrderBy("rp.role_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select grants sql: %w", err)
	}

	rows, err := r.pool.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("select grants: %w", err)
	}
	defer rows.Close()

	grants := make(map[int64][]domain.RoleGrant)
	for rows.Next() {
		var (
			resourceID int64
			grant      domain.RoleGrant
		)
		if err := rows.Scan(&resourceID, &grant.RoleID, &grant.RoleName, &grant.CanViewResource, &grant.CanEditResource); err != nil {
			return nil, fmt.Errorf("scan grant: %w", err)
		}
		grants[resourceID] = append(grants[resourceID], grant)
	}

	return grants, rows.Err()
}

var _ port.ResourceRepository = (*ResourceRepository)(nil)
