// Command seed populates the database with demo accounts, roles, and
// resources for manual testing.
package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"github.com/Rud356/test-task-auth-demo/internal/core/domain"
	"github.com/Rud356/test-task-auth-demo/internal/core/port"
	"github.com/Rud356/test-task-auth-demo/internal/infra/config"
	"github.com/Rud356/test-task-auth-demo/internal/infra/database"
	"github.com/Rud356/test-task-auth-demo/internal/infra/logger"
	"github.com/Rud356/test-task-auth-demo/internal/infra/security"
	postgresrepo "github.com/Rud356/test-task-auth-demo/internal/repository/postgres"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx := context.Background()

	zapLog, err := logger.New(cfg.App.Env)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, zapLog)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	hasher, err := security.NewPasswordHasher(security.HashingSettings{
		Algorithm:  cfg.Security.HashAlgorithm,
		Iterations: cfg.Security.HashIterations,
	})
	if err != nil {
		log.Fatalf("failed to init password hasher: %v", err)
	}

	repos := postgresrepo.NewRepositories(pool, hasher, security.SessionTokenGenerator{})

	if err := seed(ctx, repos); err != nil {
		log.Fatalf("failed to seed demo data: %v", err)
	}

	log.Println("demo data seeded")
}

func seed(ctx context.Context, repos *postgresrepo.Repositories) error {
	allPermissions := domain.PermissionBundle{
		EditRoles:             true,
		ViewAllResources:      true,
		AdministrateUsers:     true,
		AdministrateResources: true,
	}

	superuser, err := repos.Users.Register(ctx, port.RegistrationData{
		Email:    "demo_superuser@example.com",
		Name:     "Test",
		Surname:  "Superuser",
		Password: "demoPASS1234",
	}, allPermissions)
	if err != nil {
		return err
	}

	roleOne, err := repos.Roles.Create(ctx, "Demo role 1")
	if err != nil {
		return err
	}
	roleTwo, err := repos.Roles.Create(ctx, "Demo role 2")
	if err != nil {
		return err
	}

	if _, err := repos.Roles.AssignToUser(ctx, superuser.ID, roleOne.ID); err != nil {
		return err
	}

	rolesUser, err := repos.Users.Register(ctx, port.RegistrationData{
		Email:    "demo_roles_1@example.com",
		Name:     "Test",
		Surname:  "Role 1 user",
		Password: "demoPASS1234",
	}, allPermissions)
	if err != nil {
		return err
	}
	if _, err := repos.Roles.AssignToUser(ctx, rolesUser.ID, roleOne.ID); err != nil {
		return err
	}

	roleTwoUser, err := repos.Users.Register(ctx, port.RegistrationData{
		Email:    "demo_role2@example.com",
		Name:     "Test",
		Surname:  "Role 2 user",
		Password: "demoPASS1234",
	}, domain.PermissionBundle{})
	if err != nil {
		return err
	}
	if _, err := repos.Roles.AssignToUser(ctx, roleTwoUser.ID, roleTwo.ID); err != nil {
		return err
	}

	if _, err := repos.Users.Register(ctx, port.RegistrationData{
		Email:    "demo_empty@example.com",
		Name:     "Test",
		Surname:  "Demo without permissions",
		Password: "demoPASS1234123",
	}, domain.PermissionBundle{}); err != nil {
		return err
	}

	resourceOne, err := repos.Resources.Create(ctx, rolesUser.ID, "Hello world from user!")
	if err != nil {
		return err
	}
	resourceTwo, err := repos.Resources.Create(ctx, rolesUser.ID, "Hello to users with role 2!")
	if err != nil {
		return err
	}

	if _, err := repos.Resources.SetRolePermissions(ctx, resourceOne.ID, port.RoleGrantUpdate{
		RoleID:          roleOne.ID,
		CanViewResource: true,
	}); err != nil {
		return err
	}
	if _, err := repos.Resources.SetRolePermissions(ctx, resourceTwo.ID, port.RoleGrantUpdate{
		RoleID:          roleTwo.ID,
		CanViewResource: true,
		CanEditResource: true,
	}); err != nil {
		return err
	}

	return nil
}
