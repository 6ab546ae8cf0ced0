package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/Rud356/test-task-auth-demo/internal/core/domain"
	"github.com/Rud356/test-task-auth-demo/internal/core/port"
	"github.com/Rud356/test-task-auth-demo/internal/repository"
)

// hasherStub avoids PBKDF2 work in repository tests.
type hasherStub struct{}

func (hasherStub) Hash(password string, salt string) (string, error) {
	return "digest:" + password + ":" + salt, nil
}

func (hasherStub) Verify(password string, salt string, expected string) bool {
	return expected == "digest:"+password+":"+salt
}

func (hasherStub) NewSalt() (string, error) {
	return "0123456789abcdef0123456789abcdef", nil
}

type tokenSourceStub struct{}

func (tokenSourceStub) NewSessionToken() (string, error) {
	return "feedfacefeedfacefeedfacefeedface", nil
}

func newUserRepo(t *testing.T) (*UserRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	t.Cleanup(mock.Close)
	return NewUserRepository(mock, hasherStub{}, tokenSourceStub{}), mock
}

func TestUserRepository_Register(t *testing.T) {
	repo, mock := newUserRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO users`).
		WithArgs(pgxmock.AnyArg(), "Test", "User", (*string)(nil), true).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO credentials`).
		WithArgs(pgxmock.AnyArg(), "new@example.com", pgxmock.AnyArg(), "0123456789abcdef0123456789abcdef").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO user_permissions`).
		WithArgs(pgxmock.AnyArg(), true, false, false, false).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	user, err := repo.Register(context.Background(), port.RegistrationData{
		Email:    "new@example.com",
		Name:     "Test",
		Surname:  "User",
		Password: "swordfish",
	}, domain.PermissionBundle{EditRoles: true})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user.ID == "" {
		t.Fatal("expected a generated user id")
	}
	if !user.IsActive {
		t.Fatal("expected new account to be active")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_Register_DuplicateEmail(t *testing.T) {
	repo, mock := newUserRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO users`).
		WithArgs(pgxmock.AnyArg(), "Test", "User", (*string)(nil), true).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO credentials`).
		WithArgs(pgxmock.AnyArg(), "taken@example.com", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: pgUniqueViolation, ConstraintName: "credentials_email_key"})
	mock.ExpectRollback()

	_, err := repo.Register(context.Background(), port.RegistrationData{
		Email:    "taken@example.com",
		Name:     "Test",
		Surname:  "User",
		Password: "swordfish",
	}, domain.PermissionBundle{})
	if !errors.Is(err, repository.ErrDataIntegrity) {
		t.Fatalf("expected ErrDataIntegrity, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_Login_Success(t *testing.T) {
	repo, mock := newUserRepo(t)

	salt := "0123456789abcdef0123456789abcdef"
	digest := "digest:swordfish:" + salt

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT c\.user_id, c\.password_hash, c\.salt, u\.is_active FROM credentials c`).
		WithArgs("user@example.com").
		WillReturnRows(pgxmock.NewRows([]string{"user_id", "password_hash", "salt", "is_active"}).
			AddRow("user-1", &digest, salt, true))
	mock.ExpectExec(`INSERT INTO sessions`).
		WithArgs("feedfacefeedfacefeedfacefeedface", "user-1", pgxmock.AnyArg(), true).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	session, err := repo.Login(context.Background(), "user@example.com", "swordfish")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if session.ID != "feedfacefeedfacefeedfacefeedface" {
		t.Fatalf("unexpected session id %s", session.ID)
	}
	if session.UserID != "user-1" || !session.IsAlive {
		t.Fatalf("unexpected session %+v", session)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_Login_WrongPassword(t *testing.T) {
	repo, mock := newUserRepo(t)

	salt := "0123456789abcdef0123456789abcdef"
	digest := "digest:other-password:" + salt

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT c\.user_id, c\.password_hash, c\.salt, u\.is_active FROM credentials c`).
		WithArgs("user@example.com").
		WillReturnRows(pgxmock.NewRows([]string{"user_id", "password_hash", "salt", "is_active"}).
			AddRow("user-1", &digest, salt, true))
	mock.ExpectRollback()

	_, err := repo.Login(context.Background(), "user@example.com", "swordfish")
	if !errors.Is(err, repository.ErrInvalidCredential) {
		t.Fatalf("expected ErrInvalidCredential, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_Login_UnknownEmail(t *testing.T) {
	repo, mock := newUserRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT c\.user_id, c\.password_hash, c\.salt, u\.is_active FROM credentials c`).
		WithArgs("ghost@example.com").
		WillReturnRows(pgxmock.NewRows([]string{"user_id", "password_hash", "salt", "is_active"}))
	mock.ExpectRollback()

	_, err := repo.Login(context.Background(), "ghost@example.com", "swordfish")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_Login_DeactivatedCredential(t *testing.T) {
	repo, mock := newUserRepo(t)

	salt := "0123456789abcdef0123456789abcdef"

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT c\.user_id, c\.password_hash, c\.salt, u\.is_active FROM credentials c`).
		WithArgs("user@example.com").
		WillReturnRows(pgxmock.NewRows([]string{"user_id", "password_hash", "salt", "is_active"}).
			AddRow("user-1", nil, salt, true))
	mock.ExpectRollback()

	_, err := repo.Login(context.Background(), "user@example.com", "swordfish")
	if !errors.Is(err, repository.ErrInvalidCredential) {
		t.Fatalf("expected ErrInvalidCredential for nil hash, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_TerminateSession(t *testing.T) {
	repo, mock := newUserRepo(t)

	mock.ExpectExec(`UPDATE sessions SET is_alive`).
		WithArgs(false, "session-1", true).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	terminated, err := repo.TerminateSession(context.Background(), "session-1")
	if err != nil {
		t.Fatalf("TerminateSession returned error: %v", err)
	}
	if !terminated {
		t.Fatal("expected session to be terminated")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_TerminateSession_AlreadyDead(t *testing.T) {
	repo, mock := newUserRepo(t)

	mock.ExpectExec(`UPDATE sessions SET is_alive`).
		WithArgs(false, "session-1", true).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	terminated, err := repo.TerminateSession(context.Background(), "session-1")
	if err != nil {
		t.Fatalf("TerminateSession returned error: %v", err)
	}
	if terminated {
		t.Fatal("expected false for already-dead session")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_Terminate_AlreadyTerminated(t *testing.T) {
	repo, mock := newUserRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE users SET is_active`).
		WithArgs(false, "user-1", true).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectQuery(`SELECT 1 FROM users`).
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows([]string{"?column?"}).AddRow(1))
	mock.ExpectCommit()

	terminated, err := repo.Terminate(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Terminate returned error: %v", err)
	}
	if terminated {
		t.Fatal("expected false for already-terminated account")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_Terminate_UnknownUser(t *testing.T) {
	repo, mock := newUserRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE users SET is_active`).
		WithArgs(false, "ghost", true).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectQuery(`SELECT 1 FROM users`).
		WithArgs("ghost").
		WillReturnRows(pgxmock.NewRows([]string{"?column?"}))
	mock.ExpectRollback()

	_, err := repo.Terminate(context.Background(), "ghost")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_Terminate_KillsSessions(t *testing.T) {
	repo, mock := newUserRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE users SET is_active`).
		WithArgs(false, "user-1", true).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`UPDATE sessions SET is_alive`).
		WithArgs(false, true, "user-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 3))
	mock.ExpectCommit()

	terminated, err := repo.Terminate(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Terminate returned error: %v", err)
	}
	if !terminated {
		t.Fatal("expected true for an active account")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_ChangePassword_KillsSessions(t *testing.T) {
	repo, mock := newUserRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE credentials SET password_hash`).
		WithArgs("digest:brand-new-pass:0123456789abcdef0123456789abcdef",
			"0123456789abcdef0123456789abcdef", "user-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`UPDATE sessions SET is_alive`).
		WithArgs(false, true, "user-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 2))
	mock.ExpectCommit()

	changed, err := repo.ChangePassword(context.Background(), "user-1", "brand-new-pass")
	if err != nil {
		t.Fatalf("ChangePassword returned error: %v", err)
	}
	if !changed {
		t.Fatal("expected true after credential update")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_ChangePassword_UnknownUser(t *testing.T) {
	repo, mock := newUserRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE credentials SET password_hash`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), "ghost").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectRollback()

	_, err := repo.ChangePassword(context.Background(), "ghost", "brand-new-pass")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
