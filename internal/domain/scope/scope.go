// Package scope decides which members a caller's queries cover.
//
// Visibility is passed explicitly into every query so the policy can be read
// and tested on its own: admins see everyone, managers see their reports,
// salespeople see themselves.
package scope

import (
	"errors"
	"fmt"
	"strings"

	"github.com/okian/fieldforce/internal/domain/model"
)

// Sentinel kinds for scope errors.
var (
	ErrUnknownScope      = errors.New("unknown scope")
	ErrUnknownRole       = errors.New("unknown role")
	ErrScopeNotPermitted = errors.New("scope not permitted for role")
)

// Scope is the breadth of a query.
type Scope string

// Scopes, narrowest first.
const (
	Own  Scope = "own"
	Team Scope = "team"
	All  Scope = "all"
)

func (s Scope) rank() int {
	switch s {
	case Own:
		return 0
	case Team:
		return 1
	case All:
		return 2
	}
	return -1
}

// Parse maps a query value to a Scope. Empty returns "" so Resolve can pick
// the role default.
func Parse(s string) (Scope, error) {
	switch sc := Scope(strings.ToLower(strings.TrimSpace(s))); sc {
	case "":
		return "", nil
	case Own, Team, All:
		return sc, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownScope, s)
}

// Caller is the declared identity of whoever issues a query.
type Caller struct {
	ID   string
	Role model.Role
}

// ForRole returns the widest scope a role may request.
func ForRole(r model.Role) (Scope, error) {
	switch r {
	case model.RoleAdmin:
		return All, nil
	case model.RoleManager:
		return Team, nil
	case model.RoleSalesperson:
		return Own, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRole, r)
}

// Resolve returns the effective scope for a request. An empty request gets
// the role's widest scope; wider-than-allowed requests fail.
func Resolve(c Caller, requested Scope) (Scope, error) {
	widest, err := ForRole(c.Role)
	if err != nil {
		return "", err
	}
	if requested == "" {
		return widest, nil
	}
	if requested.rank() < 0 {
		return "", fmt.Errorf("%w: %q", ErrUnknownScope, requested)
	}
	if requested.rank() > widest.rank() {
		return "", fmt.Errorf("%w: %s may not request %s", ErrScopeNotPermitted, c.Role, requested)
	}
	return requested, nil
}

// Visible selects the users a resolved scope covers, preserving input order.
// All covers field staff (salespeople and managers); admins are not tracked.
func Visible(c Caller, s Scope, users []model.User) []model.User {
	out := make([]model.User, 0, len(users))
	for _, u := range users {
		if Covers(c, s, u) {
			out = append(out, u)
		}
	}
	return out
}

// Covers reports whether u is within scope s for c.
func Covers(c Caller, s Scope, u model.User) bool {
	switch s {
	case All:
		return u.Role == model.RoleSalesperson || u.Role == model.RoleManager
	case Team:
		return c.ID != "" && u.ManagerID == c.ID
	case Own:
		return u.ID == c.ID
	}
	return false
}

// IDs returns the ids of users.
func IDs(users []model.User) []string {
	out := make([]string, len(users))
	for i, u := range users {
		out[i] = u.ID
	}
	return out
}
