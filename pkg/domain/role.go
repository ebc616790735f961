package domain

import "strings"

// Role is the closed set of principals the client distinguishes.
type Role int

const (
	RoleAnonymous Role = iota
	RoleReader
	RoleAdmin
)

// Roles lists every role, anonymous included.
var Roles = []Role{RoleAnonymous, RoleReader, RoleAdmin}

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "ADMIN"
	case RoleReader:
		return "READER"
	default:
		return "ANONYMOUS"
	}
}

// ParseRole maps a role claim from the backend to a Role.
// The backend spells the reader role "LECTOR"; "READER" is accepted too.
// Anonymous is never a valid claim.
func ParseRole(claim string) (Role, bool) {
	switch strings.ToUpper(strings.TrimSpace(claim)) {
	case "ADMIN":
		return RoleAdmin, true
	case "LECTOR", "READER":
		return RoleReader, true
	default:
		return RoleAnonymous, false
	}
}

// Principal is the identity derived from a valid credential.
type Principal struct {
	Email string
	Role  Role
}
