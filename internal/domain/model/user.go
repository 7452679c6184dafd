// Package model contains domain models passed between layers.
package model

// Role is the dashboard role a user signs in with.
type Role string

// Known roles.
const (
	RoleSalesperson Role = "salesperson"
	RoleManager     Role = "manager"
	RoleAdmin       Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSalesperson, RoleManager, RoleAdmin:
		return true
	}
	return false
}

// User is a member of the field force as seen by the directory.
type User struct {
	ID        string `json:"id" koanf:"id"`
	Name      string `json:"name" koanf:"name"`
	Role      Role   `json:"role" koanf:"role"`
	ManagerID string `json:"manager_id,omitempty" koanf:"manager_id"`
	Territory string `json:"territory,omitempty" koanf:"territory"`
	Status    string `json:"status,omitempty" koanf:"status"` // active, inactive
}
