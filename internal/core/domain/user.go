package domain

// PermissionBundle holds the system-wide capabilities attached directly to a
// user record. Flags are independent booleans; roles never grant them.
type PermissionBundle struct {
	EditRoles             bool
	ViewAllResources      bool
	AdministrateUsers     bool
	AdministrateResources bool
}

// Any reports whether at least one capability flag is set.
func (p PermissionBundle) Any() bool {
	return p.EditRoles || p.ViewAllResources || p.AdministrateUsers || p.AdministrateResources
}

// User mirrors the persisted representation in the users table.
type User struct {
	ID        string
	Name      string
	Surname   string
	ThirdName *string
	IsActive  bool
}

// UserDetailed is a user with resolved role assignments and permission flags.
// It is the actor shape every guarded operation receives.
type UserDetailed struct {
	User
	Roles       []Role
	Permissions PermissionBundle
}

// Credential mirrors the credentials table row paired one-to-one with a user.
// A nil PasswordHash marks an unrecoverable, deactivated credential regardless
// of the user's own active flag.
type Credential struct {
	UserID       string
	Email        string
	PasswordHash *string
	Salt         string
}
