package domain

const (
	// ContentMinLength is the minimum accepted resource content length.
	ContentMinLength = 1
	// ContentMaxLength is the maximum accepted resource content length.
	ContentMaxLength = 2048
)

// Resource mirrors the persisted representation in the resources table.
type Resource struct {
	ID       int64
	AuthorID string
	Content  string
}

// ResourceDetails is a resource with its per-role permission grants resolved.
type ResourceDetails struct {
	Resource
	Grants []RoleGrant
}
