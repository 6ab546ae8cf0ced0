package domain

// Capability names one of the system-wide permission flags.
type Capability string

const (
	CapabilityEditRoles             Capability = "edit_roles"
	CapabilityViewAllResources      Capability = "view_all_resources"
	CapabilityAdministrateUsers     Capability = "administrate_users"
	CapabilityAdministrateResources Capability = "administrate_resources"
)

// Has reports whether the named capability flag is set on the bundle.
func (p PermissionBundle) Has(capability Capability) bool {
	switch capability {
	case CapabilityEditRoles:
		return p.EditRoles
	case CapabilityViewAllResources:
		return p.ViewAllResources
	case CapabilityAdministrateUsers:
		return p.AdministrateUsers
	case CapabilityAdministrateResources:
		return p.AdministrateResources
	default:
		return false
	}
}

// CanAdministrateSystem reports whether the actor holds the named system-wide
// capability. Permission checks fail closed: unknown capabilities are denied.
func (u UserDetailed) CanAdministrateSystem(capability Capability) bool {
	return u.Permissions.Has(capability)
}

// CanViewResource reports whether the actor may read the resource: resource
// administrators, the author, or any assigned role holding a view grant.
func (u UserDetailed) CanViewResource(resource ResourceDetails) bool {
	if u.Permissions.AdministrateResources {
		return true
	}
	if u.ID == resource.AuthorID {
		return true
	}
	return u.hasRoleGrant(resource, func(grant RoleGrant) bool {
		return grant.CanViewResource
	})
}

// CanEditResource reports whether the actor may modify the resource content.
// Role-based access requires the edit flag specifically; a view-only grant
// never implies edit.
func (u UserDetailed) CanEditResource(resource ResourceDetails) bool {
	if u.Permissions.AdministrateResources {
		return true
	}
	if u.ID == resource.AuthorID {
		return true
	}
	return u.hasRoleGrant(resource, func(grant RoleGrant) bool {
		return grant.CanEditResource
	})
}

// CanAdministrateResourceAccess reports whether the actor may change role
// grants on the resource. Both conditions are required: being the author is
// not enough without the administrate_resources capability, and vice versa.
func (u UserDetailed) CanAdministrateResourceAccess(resource ResourceDetails) bool {
	return u.ID == resource.AuthorID && u.Permissions.AdministrateResources
}

// CanActOnUser reports whether the actor may operate on the target account:
// self-service or user administration.
func (u UserDetailed) CanActOnUser(targetUserID string) bool {
	return u.ID == targetUserID || u.Permissions.AdministrateUsers
}

// CanGrantPermissions reports whether the actor may hand out the requested
// permission bundle to another user. The check is per flag: the actor must
// already hold every flag it tries to grant.
func (u UserDetailed) CanGrantPermissions(requested PermissionBundle) bool {
	if requested.EditRoles && !u.Permissions.EditRoles {
		return false
	}
	if requested.ViewAllResources && !u.Permissions.ViewAllResources {
		return false
	}
	if requested.AdministrateUsers && !u.Permissions.AdministrateUsers {
		return false
	}
	if requested.AdministrateResources && !u.Permissions.AdministrateResources {
		return false
	}
	return true
}

// hasRoleGrant reports whether any of the actor's roles has a grant on the
// resource satisfying the predicate. Grants are a union across roles: one
// matching role suffices.
func (u UserDetailed) hasRoleGrant(resource ResourceDetails, match func(RoleGrant) bool) bool {
	if len(u.Roles) == 0 || len(resource.Grants) == 0 {
		return false
	}

	grants := make(map[int64]RoleGrant, len(resource.Grants))
	for _, grant := range resource.Grants {
		grants[grant.RoleID] = grant
	}

	for _, role := range u.Roles {
		if grant, ok := grants[role.ID]; ok && match(grant) {
			return true
		}
	}

	return false
}
