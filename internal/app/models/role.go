package models

// SuperAdminSlug is the protected role slug. The role carrying it cannot be
// deleted, renamed, or have its permissions changed unless the acting user
// itself holds it.
const SuperAdminSlug = "super-admin"

// Role groups permissions for assignment to users.
type Role struct {
	ID   int64  `json:"id" db:"id" example:"1"`
	Name string `json:"name" db:"name" example:"Registrar"`
	Slug string `json:"slug" db:"slug" example:"registrar"`

	// Relations (populated when needed)
	Permissions []Permission `json:"permissions,omitempty"`
}

// IsSuperAdmin reports whether this is the protected super-admin role.
func (r *Role) IsSuperAdmin() bool {
	return r.Slug == SuperAdminSlug
}

// Permission is one grantable capability identified by a machine-readable slug.
type Permission struct {
	ID   int64  `json:"id" db:"id" example:"1"`
	Name string `json:"name" db:"name" example:"View Users"`
	Slug string `json:"slug" db:"slug" example:"view-users"`
}

// Permission slugs used by the route gates.
const (
	PermViewApplications   = "view-applications"
	PermManageApplications = "manage-applications"
	PermViewStudents       = "view-students"
	PermManageStudents     = "manage-students"
	PermViewUsers          = "view-users"
	PermManageUsers        = "manage-users"
	PermViewRoles          = "view-roles"
	PermManageRoles        = "manage-roles"
)

// AllPermissionSlugs lists every permission seeded at startup.
var AllPermissionSlugs = []string{
	PermViewApplications,
	PermManageApplications,
	PermViewStudents,
	PermManageStudents,
	PermViewUsers,
	PermManageUsers,
	PermViewRoles,
	PermManageRoles,
}
