package models

// RoleType defines the role carried by an identity and its tokens
type RoleType string

const (
	RoleAdmin   RoleType = "ADMIN"
	RoleStudent RoleType = "STUDENT"
)

// Valid reports whether r is one of the known roles
func (r RoleType) Valid() bool {
	return r == RoleAdmin || r == RoleStudent
}

// ParseRole converts a raw role string, returning false for unknown roles
func ParseRole(s string) (RoleType, bool) {
	r := RoleType(s)
	return r, r.Valid()
}
