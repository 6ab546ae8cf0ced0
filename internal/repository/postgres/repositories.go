package postgres

import (
	"github.com/Rud356/test-task-auth-demo/internal/core/port"
)

// Repositories groups concrete PostgreSQL repository implementations.
type Repositories struct {
	Users     *UserRepository
	Roles     *RoleRepository
	Resources *ResourceRepository
}

// NewRepositories wires all repositories backed by the provided pool.
func NewRepositories(pool pgPool, hasher port.PasswordHasher, tokens port.SessionTokenSource) *Repositories {
	return &Repositories{
		Users:     NewUserRepository(pool, hasher, tokens),
		Roles:     NewRoleRepository(pool),
		Resources: NewResourceRepository(pool),
	}
}
