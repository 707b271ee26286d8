package models

// Role represents the roles known to the workflow permission table.
type Role string

const (
	RoleAdmin       Role = "admin"
	RoleInstructor  Role = "instructor"
	RoleStudent     Role = "student"
	RoleStakeholder Role = "stakeholder"
)

// TemplateDesignerMinAccessLevel is the access level an admin needs to design templates.
const TemplateDesignerMinAccessLevel = 3

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleInstructor, RoleStudent, RoleStakeholder:
		return true
	default:
		return false
	}
}

// User is a member of the user directory that can act as the session user.
// AccessLevel grows with privilege and has no upper bound.
type User struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Role        Role   `json:"role"`
	Department  string `json:"department"`
	AccessLevel int    `json:"accessLevel"`
}

// CanDesignTemplates reports whether the user may use the template designer.
func (u *User) CanDesignTemplates() bool {
	return u != nil && u.Role == RoleAdmin && u.AccessLevel >= TemplateDesignerMinAccessLevel
}
