// Package access implements the per-request access gate: route classification,
// authentication, profile completeness and role authorization. Everything here is a
// pure function of the path, the decoded token and a static RouteTable.
package access

import (
	"errors"
	"fmt"
	"path"
	"slices"
	"strings"

	domainauth "github.com/campushub/eventhub/internal/domain/auth"
)

// Redirect targets used by the gate.
const (
	SignupPath    = "/signup"
	CompletePath  = "/signup/complete"
	ForbiddenPath = "/403"
)

// RoleRule maps a path prefix to the roles allowed beneath it.
type RoleRule struct {
	Prefix string
	Roles  []domainauth.Role
}

// RouteTable is the static classification consulted by Decide.
type RouteTable struct {
	// Public paths matched exactly.
	PublicExact []string
	// Public path prefixes matched on segment boundaries.
	PublicPrefixes []string
	// Prefixes reachable by authenticated users whose profile is still incomplete.
	CompletionExempt []string
	// Role requirements; the longest matching prefix wins.
	RoleRules []RoleRule
	// Prefixes skipped entirely (static assets).
	SkipPrefixes []string
	// File extensions skipped entirely.
	SkipExtensions []string
}

// DefaultRouteTable returns the route table the application ships with.
func DefaultRouteTable() RouteTable {
	return RouteTable{
		PublicExact: []string{"/", ForbiddenPath, "/healthz", "/readyz"},
		PublicPrefixes: []string{
			"/events",
			"/clubs",
			"/gallery",
			"/about",
			"/contact",
			SignupPath,
			"/api/auth",
		},
		CompletionExempt: []string{CompletePath, "/api/profile/complete"},
		RoleRules: []RoleRule{
			{Prefix: "/student", Roles: []domainauth.Role{domainauth.RoleStudent}},
			{Prefix: "/club-lead", Roles: []domainauth.Role{domainauth.RoleCoordinator}},
			{Prefix: "/admin", Roles: []domainauth.Role{domainauth.RoleAdmin}},
		},
		SkipPrefixes:   []string{"/_next/", "/static/", "/favicon"},
		SkipExtensions: []string{".svg", ".png", ".jpg", ".jpeg", ".gif", ".webp", ".ico"},
	}
}

// Validate checks the table for conflicts and guarantees that every redirect
// target is reachable without another redirect.
func (rt RouteTable) Validate() error {
	var errs []error

	seen := make(map[string][]domainauth.Role, len(rt.RoleRules))
	for _, r := range rt.RoleRules {
		p := normalizePath(r.Prefix)
		if p == "/" {
			errs = append(errs, errors.New("role rule prefix must not be the root path"))
		}
		if len(r.Roles) == 0 {
			errs = append(errs, fmt.Errorf("role rule %q has no roles", r.Prefix))
		}
		for _, role := range r.Roles {
			if !role.Valid() {
				errs = append(errs, fmt.Errorf("role rule %q: invalid role %q", r.Prefix, role))
			}
		}
		if prev, ok := seen[p]; ok && !sameRoles(prev, r.Roles) {
			errs = append(errs, fmt.Errorf("conflicting role rules for prefix %q", p))
		}
		seen[p] = r.Roles
		if rt.isPublic(p) {
			errs = append(errs, fmt.Errorf("role rule %q overlaps a public path", p))
		}
	}

	for _, target := range []string{SignupPath, ForbiddenPath} {
		if !rt.isPublic(target) {
			errs = append(errs, fmt.Errorf("redirect target %q must be public", target))
		}
	}
	if !rt.isPublic(CompletePath) && !rt.isCompletionExempt(CompletePath) {
		errs = append(errs, fmt.Errorf("redirect target %q must be public or completion-exempt", CompletePath))
	}

	return errors.Join(errs...)
}

// IsStatic reports whether the path is a static asset the gate skips entirely.
func (rt RouteTable) IsStatic(p string) bool {
	for _, pre := range rt.SkipPrefixes {
		if strings.HasPrefix(p, pre) {
			return true
		}
	}
	ext := strings.ToLower(path.Ext(p))
	return ext != "" && slices.Contains(rt.SkipExtensions, ext)
}

// RequiredRoles returns the roles required for p, or nil when any authenticated,
// complete user may proceed.
func (rt RouteTable) RequiredRoles(p string) []domainauth.Role {
	p = normalizePath(p)
	best := -1
	var roles []domainauth.Role
	for _, r := range rt.RoleRules {
		pre := normalizePath(r.Prefix)
		if matchPrefix(p, pre) && len(pre) > best {
			best = len(pre)
			roles = r.Roles
		}
	}
	return roles
}

func (rt RouteTable) isPublic(p string) bool {
	if slices.Contains(rt.PublicExact, p) {
		return true
	}
	for _, pre := range rt.PublicPrefixes {
		if matchPrefix(p, normalizePath(pre)) {
			return true
		}
	}
	return false
}

func (rt RouteTable) isCompletionExempt(p string) bool {
	for _, pre := range rt.CompletionExempt {
		if matchPrefix(p, normalizePath(pre)) {
			return true
		}
	}
	return false
}

// matchPrefix matches on path segment boundaries: "/events" matches "/events"
// and "/events/1" but not "/eventsx".
func matchPrefix(p, prefix string) bool {
	if prefix == "/" {
		return true
	}
	return p == prefix || strings.HasPrefix(p, prefix+"/")
}

func normalizePath(p string) string {
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}

func sameRoles(a, b []domainauth.Role) bool {
	x := slices.Clone(a)
	y := slices.Clone(b)
	slices.Sort(x)
	slices.Sort(y)
	return slices.Equal(x, y)
}
