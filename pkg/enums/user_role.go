package enums

import "fmt"

// UserRole is the closed set of account roles.
type UserRole string

const (
	UserRoleUser          UserRole = "user"
	UserRoleManager       UserRole = "manager"
	UserRoleAdministrator UserRole = "administrator"
)

var validUserRoles = []UserRole{
	UserRoleUser,
	UserRoleManager,
	UserRoleAdministrator,
}

// String implements fmt.Stringer.
func (u UserRole) String() string {
	return string(u)
}

// IsValid reports whether the value is a known UserRole.
func (u UserRole) IsValid() bool {
	for _, candidate := range validUserRoles {
		if candidate == u {
			return true
		}
	}
	return false
}

// IsPrivileged reports whether the role may act on any order regardless of ownership.
func (u UserRole) IsPrivileged() bool {
	return u == UserRoleManager || u == UserRoleAdministrator
}

// ParseUserRole converts raw input into a UserRole.
func ParseUserRole(value string) (UserRole, error) {
	for _, candidate := range validUserRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid user role %q", value)
}
