package domain

import "strings"

type Role string

const (
	// RoleUser places orders for itself.
	RoleUser Role = "user"
	// RoleManager handles fulfilment (pay/deliver) for every order.
	RoleManager Role = "manager"
	// RoleAdmin has every privilege of the store back office.
	RoleAdmin Role = "admin"
)

// DefaultRole is the least-privileged tier assigned at signup.
const DefaultRole = RoleUser

func (r Role) String() string { return string(r) }

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleManager, RoleAdmin:
		return true
	default:
		return false
	}
}

// ParseRole accepts the persisted/wire form of a role.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", ErrInvalidRole(s)
	}
	return r, nil
}

// RoleSet is a finite set of roles permitted on a route.
type RoleSet map[Role]struct{}

// NewRoleSet builds a set; unknown roles are dropped so a typo can never widen access.
func NewRoleSet(roles ...Role) RoleSet {
	s := make(RoleSet, len(roles))
	for _, r := range roles {
		if r.Valid() {
			s[r] = struct{}{}
		}
	}
	return s
}

func (s RoleSet) Contains(r Role) bool {
	_, ok := s[r]
	return ok
}

func (s RoleSet) Strings() []string {
	out := make([]string, 0, len(s))
	for _, r := range []Role{RoleUser, RoleManager, RoleAdmin} {
		if s.Contains(r) {
			out = append(out, string(r))
		}
	}
	return out
}
