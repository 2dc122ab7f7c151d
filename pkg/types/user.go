package types

import "time"

// User roles. Workspace members use the same role names.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
	RoleViewer = "viewer"
)

var validRoles = map[string]bool{
	RoleAdmin:  true,
	RoleMember: true,
	RoleViewer: true,
}

// ValidRole reports whether r is a recognized role.
func ValidRole(r string) bool { return validRoles[r] }

// User is an account that can own workspaces, join teams and be assigned tasks.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Avatar    string    `json:"avatar,omitempty"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (u User) EntityID() string { return u.ID }

func (u User) WithEntityID(id string) User {
	u.ID = id
	return u
}

// FullName joins first and last name.
func (u User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
