package domain

// Role defines a named grouping users can be assigned to. Roles carry
// resource-level grants only, never system-wide capabilities.
type Role struct {
	ID   int64
	Name string
}

// RoleGrant links a role to a resource with independent view/edit flags.
type RoleGrant struct {
	RoleID          int64
	RoleName        string
	CanViewResource bool
	CanEditResource bool
}
