package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/Rud356/test-task-auth-demo/internal/core/port"
	"github.com/Rud356/test-task-auth-demo/internal/repository"
)

func newResourceRepo(t *testing.T) (*ResourceRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	t.Cleanup(mock.Close)
	return NewResourceRepository(mock), mock
}

func TestResourceRepository_Create(t *testing.T) {
	repo, mock := newResourceRepo(t)

	mock.ExpectQuery(`INSERT INTO resources \(author_id,content\) VALUES \(\$1,\$2\) RETURNING id`).
		WithArgs("author-1", "hello world").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(3)))

	resource, err := repo.Create(context.Background(), "author-1", "hello world")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if resource.ID != 3 || resource.AuthorID != "author-1" {
		t.Fatalf("unexpected resource: %+v", resource)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestResourceRepository_Edit_NotFound(t *testing.T) {
	repo, mock := newResourceRepo(t)

	mock.ExpectQuery(`UPDATE resources SET content`).
		WithArgs("replacement", int64(42)).
		WillReturnRows(pgxmock.NewRows([]string{"author_id"}))

	_, err := repo.Edit(context.Background(), 42, "replacement")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestResourceRepository_GetByID(t *testing.T) {
	repo, mock := newResourceRepo(t)

	mock.ExpectQuery(`SELECT id, author_id, content FROM resources`).
		WithArgs(int64(1)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "author_id", "content"}).
			AddRow(int64(1), "author-1", "hello world"))
	mock.ExpectQuery(`SELECT rp\.resource_id, rp\.role_id, ro\.name`).
		WithArgs(int64(1)).
		WillReturnRows(pgxmock.NewRows([]string{"resource_id", "role_id", "name", "can_view_resource", "can_edit_resource"}).
			AddRow(int64(1), int64(7), "readers", true, false))

	details, err := repo.GetByID(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	if details.Content != "hello world" {
		t.Fatalf("unexpected content %q", details.Content)
	}
	if len(details.Grants) != 1 || details.Grants[0].RoleID != 7 || !details.Grants[0].CanViewResource {
		t.Fatalf("unexpected grants: %+v", details.Grants)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestResourceRepository_ListAvailable(t *testing.T) {
	repo, mock := newResourceRepo(t)

	mock.ExpectQuery(`SELECT id, author_id, content FROM resources WHERE author_id = \$1\s+UNION`).
		WithArgs("user-1", 50, 0).
		WillReturnRows(pgxmock.NewRows([]string{"id", "author_id", "content"}).
			AddRow(int64(1), "user-1", "mine").
			AddRow(int64(2), "other-user", "granted"))
	mock.ExpectQuery(`SELECT rp\.resource_id, rp\.role_id, ro\.name`).
		WithArgs(int64(1), int64(2)).
		WillReturnRows(pgxmock.NewRows([]string{"resource_id", "role_id", "name", "can_view_resource", "can_edit_resource"}).
			AddRow(int64(2), int64(7), "readers", true, true))

	resources, err := repo.ListAvailable(context.Background(), "user-1", port.ResourceFilter{Limit: 50})
	if err != nil {
		t.Fatalf("ListAvailable returned error: %v", err)
	}
	if len(resources) != 2 {
		t.Fatalf("expected 2 resources, got %d", len(resources))
	}
	if len(resources[1].Grants) != 1 || !resources[1].Grants[0].CanEditResource {
		t.Fatalf("unexpected grants: %+v", resources[1].Grants)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestResourceRepository_SetRolePermissions_Upsert(t *testing.T) {
	repo, mock := newResourceRepo(t)

	mock.ExpectExec(`INSERT INTO roles_permissions .*ON CONFLICT \(role_id, resource_id\) DO UPDATE`).
		WithArgs(int64(7), int64(1), true, false).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	updated, err := repo.SetRolePermissions(context.Background(), 1, port.RoleGrantUpdate{
		RoleID:          7,
		CanViewResource: true,
	})
	if err != nil {
		t.Fatalf("SetRolePermissions returned error: %v", err)
	}
	if !updated {
		t.Fatal("expected grant to be stored")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestResourceRepository_SetRolePermissions_VanishedRoleReportsFalse(t *testing.T) {
	repo, mock := newResourceRepo(t)

	mock.ExpectExec(`INSERT INTO roles_permissions`).
		WithArgs(int64(99), int64(1), true, false).
		WillReturnError(&pgconn.PgError{Code: pgForeignKeyViolation, ConstraintName: "roles_permissions_role_id_fkey"})

	updated, err := repo.SetRolePermissions(context.Background(), 1, port.RoleGrantUpdate{
		RoleID:          99,
		CanViewResource: true,
	})
	if err != nil {
		t.Fatalf("vanished role must not error: %v", err)
	}
	if updated {
		t.Fatal("expected false for vanished role")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
