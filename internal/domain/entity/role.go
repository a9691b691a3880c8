// Package entity contains the core business objects of the project.
package entity

// Role represents the marketplace side a user trades on.
type Role string

const (
	// RoleBuyer indicates a user that places orders.
	RoleBuyer Role = "BUYER"
	// RoleSeller indicates a user that lists goods and fulfils orders.
	RoleSeller Role = "SELLER"
)

// String returns the string representation of the Role.
func (r Role) String() string {
	return string(r)
}

// IsValid checks if the Role is a valid value.
func (r Role) IsValid() bool {
	switch r {
	case RoleBuyer, RoleSeller:
		return true
	default:
		return false
	}
}
