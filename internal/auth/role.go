package auth

import "fmt"

// Role discriminates the two actor types the platform knows about. On the
// wire it is a free-form claim string; everything past the token boundary
// works with this closed type, and any other value is rejected as invalid.
type Role string

const (
	// RoleCandidate is the claim carried by candidate tokens. The wire value
	// stays "user" for compatibility with existing clients.
	RoleCandidate Role = "user"

	// RoleOrganization is the claim carried by organization tokens.
	RoleOrganization Role = "organization"
)

// ParseRole maps a wire claim string onto the closed role set.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleCandidate:
		return RoleCandidate, nil
	case RoleOrganization:
		return RoleOrganization, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

func (r Role) String() string { return string(r) }
