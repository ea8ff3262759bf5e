package users

import "time"

// Role is the access level assigned to a user.
type Role string

const (
	RoleAdmin       Role = "Admin"
	RoleManager     Role = "Manager"
	RoleBDExecutive Role = "BD Executive"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleBDExecutive:
		return true
	}
	return false
}

// Status marks whether a user may sign in and act.
type Status string

const (
	StatusActive   Status = "Active"
	StatusInactive Status = "Inactive"
)

// User represents a CRM operator account.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Role  Role   `json:"role"`
	// AppPassword is an optional per-user mail credential kept for the
	// email-sending integration; never returned in list responses.
	AppPassword string    `json:"-"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Active reports whether the user may perform any operation.
func (u *User) Active() bool {
	return u != nil && u.Status == StatusActive
}
