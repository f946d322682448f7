package domain

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
	RoleViewer Role = "viewer"
)

// User is a dashboard account. The core only reads it: ownership, team
// membership for classification, and role for permission checks.
type User struct {
	ID   string
	Name string
	Team string
	Role Role
}

// CanEdit reports whether the role may mutate initiatives.
func (r Role) CanEdit() bool {
	return r == RoleAdmin || r == RoleEditor
}

// CanDelete reports whether the role may soft-delete initiatives.
func (r Role) CanDelete() bool {
	return r == RoleAdmin
}
