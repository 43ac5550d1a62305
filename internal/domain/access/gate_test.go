package access

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/campushub/eventhub/internal/domain/auth"
)

func newTestGate(t *testing.T) *Gate {
	t.Helper()
	g, err := NewGate(DefaultRouteTable())
	require.NoError(t, err)
	return g
}

func tokenFor(role domainauth.Role, complete bool) *domainauth.Token {
	return &domainauth.Token{
		UserID:            "u1",
		Email:             "a@students.college.edu",
		Role:              role,
		IsProfileComplete: complete,
	}
}

func TestGate_PublicPathsAlwaysAllowed(t *testing.T) {
	t.Parallel()
	g := newTestGate(t)

	paths := []string{
		"/", "/events", "/events/42", "/clubs", "/clubs/robotics",
		"/gallery", "/about", "/contact", "/signup", "/signup/complete",
		"/api/auth/callback", "/api/auth/session", "/403", "/healthz",
	}
	tokens := map[string]*domainauth.Token{
		"none":       nil,
		"incomplete": tokenFor(domainauth.RoleStudent, false),
		"student":    tokenFor(domainauth.RoleStudent, true),
		"admin":      tokenFor(domainauth.RoleAdmin, true),
	}
	for _, p := range paths {
		for name, tok := range tokens {
			t.Run(fmt.Sprintf("%s/%s", p, name), func(t *testing.T) {
				d := g.Decide(p, tok)
				assert.True(t, d.Allowed())
				assert.Equal(t, StatePublic, d.State)
			})
		}
	}
}

func TestGate_StaticAssetsSkipped(t *testing.T) {
	t.Parallel()
	g := newTestGate(t)

	for _, p := range []string{"/_next/static/chunk.js", "/favicon.ico", "/student/avatar.png", "/admin/logo.SVG", "/static/app.css"} {
		d := g.Decide(p, nil)
		assert.Equal(t, StateStatic, d.State, p)
		assert.True(t, d.Allowed(), p)
	}
}

func TestGate_Unauthenticated(t *testing.T) {
	t.Parallel()
	g := newTestGate(t)

	tests := []struct {
		path   string
		target string
	}{
		{"/student/dashboard", "/signup?callbackUrl=%2Fstudent%2Fdashboard"},
		{"/admin", "/signup?callbackUrl=%2Fadmin"},
		{"/club-lead/events", "/signup?callbackUrl=%2Fclub-lead%2Fevents"},
		{"/profile", "/signup?callbackUrl=%2Fprofile"},
		{"/api/notifications", "/signup?callbackUrl=%2Fapi%2Fnotifications"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			d := g.Decide(tt.path, nil)
			assert.Equal(t, StateUnauthenticated, d.State)
			assert.Equal(t, Redirect, d.Outcome)
			assert.Equal(t, tt.target, d.Target)
			assert.ErrorIs(t, d.Cause(), domainauth.ErrUnauthenticated)
		})
	}
}

func TestGate_SignupNeverRedirectsToItself(t *testing.T) {
	t.Parallel()
	g := newTestGate(t)

	// Strip the public entry to exercise the loop guard directly.
	rt := g.Routes()
	rt.PublicPrefixes = nil
	rt.PublicExact = nil
	loose := &Gate{routes: rt}

	d := loose.Decide("/signup", nil)
	assert.True(t, d.Allowed())
	d = loose.Decide("/signup/complete", nil)
	assert.True(t, d.Allowed())
}

func TestGate_IncompleteProfileFunnel(t *testing.T) {
	t.Parallel()
	g := newTestGate(t)

	for _, role := range domainauth.Roles() {
		tok := tokenFor(role, false)
		for _, p := range []string{"/student", "/club-lead/events", "/admin/users", "/profile", "/api/notifications"} {
			d := g.Decide(p, tok)
			assert.Equal(t, StateIncomplete, d.State, "%s %s", role, p)
			assert.Equal(t, CompletePath, d.Target)
			assert.ErrorIs(t, d.Cause(), domainauth.ErrIncompleteProfile)
		}
		assert.True(t, g.Decide("/api/profile/complete", tok).Allowed())
		assert.True(t, g.Decide(CompletePath, tok).Allowed())
	}
}

func TestGate_RoleAuthorizationIsExhaustive(t *testing.T) {
	t.Parallel()
	g := newTestGate(t)

	required := map[string]domainauth.Role{
		"/student/registrations": domainauth.RoleStudent,
		"/club-lead/events":      domainauth.RoleCoordinator,
		"/admin/anything":        domainauth.RoleAdmin,
	}
	for p, need := range required {
		for _, role := range domainauth.Roles() {
			t.Run(fmt.Sprintf("%s/%s", p, role), func(t *testing.T) {
				d := g.Decide(p, tokenFor(role, true))
				if role == need {
					assert.Equal(t, StateAuthorized, d.State)
					assert.True(t, d.Allowed())
					assert.NoError(t, d.Cause())
					return
				}
				assert.Equal(t, StateCompleteUnauthorized, d.State)
				assert.Equal(t, ForbiddenPath, d.Target)
				assert.ErrorIs(t, d.Cause(), domainauth.ErrUnauthorized)
			})
		}
	}
}

func TestGate_UnmappedPathsNeedOnlyCompleteProfile(t *testing.T) {
	t.Parallel()
	g := newTestGate(t)

	for _, role := range domainauth.Roles() {
		d := g.Decide("/profile", tokenFor(role, true))
		assert.Equal(t, StateAuthorized, d.State)
	}
}

func TestGate_PrefixBoundaries(t *testing.T) {
	t.Parallel()
	g := newTestGate(t)

	// "/administrator" is not under "/admin"; "/eventsx" is not public.
	assert.Equal(t, StateAuthorized, g.Decide("/administrator", tokenFor(domainauth.RoleStudent, true)).State)
	assert.Equal(t, StateUnauthenticated, g.Decide("/eventsx", nil).State)
	assert.Equal(t, StateCompleteUnauthorized, g.Decide("/admin/../admin/users", tokenFor(domainauth.RoleStudent, true)).State)
}

func TestGate_CoordinatorScenario(t *testing.T) {
	t.Parallel()
	g := newTestGate(t)
	tok := tokenFor(domainauth.RoleCoordinator, true)

	assert.Equal(t, Decision{State: StateCompleteUnauthorized, Outcome: Redirect, Target: ForbiddenPath}, g.Decide("/admin/anything", tok))
	assert.Equal(t, Decision{State: StateAuthorized, Outcome: Allow}, g.Decide("/club-lead/events", tok))
}

func TestGate_NewUserScenario(t *testing.T) {
	t.Parallel()
	g := newTestGate(t)

	tok := tokenFor(domainauth.RoleStudent, false)
	for _, p := range []string{"/student", "/profile", "/student/registrations"} {
		assert.Equal(t, CompletePath, g.Decide(p, tok).Target)
	}

	rec := &domainauth.DirectoryRecord{UserID: tok.UserID, Email: tok.Email, IsProfileComplete: true, Role: domainauth.RoleStudent}
	refreshed := domainauth.Refresh(*tok, rec, domainauth.TriggerNone)
	assert.True(t, g.Decide("/student/registrations", &refreshed).Allowed())
}

func TestRouteTable_LongestPrefixWins(t *testing.T) {
	t.Parallel()
	rt := DefaultRouteTable()
	rt.RoleRules = append(rt.RoleRules, RoleRule{
		Prefix: "/admin/clubs",
		Roles:  []domainauth.Role{domainauth.RoleAdmin, domainauth.RoleCoordinator},
	})
	g, err := NewGate(rt)
	require.NoError(t, err)

	coord := tokenFor(domainauth.RoleCoordinator, true)
	assert.True(t, g.Decide("/admin/clubs/1", coord).Allowed())
	assert.False(t, g.Decide("/admin/users", coord).Allowed())
}

func TestRouteTable_Validate(t *testing.T) {
	t.Parallel()

	require.NoError(t, DefaultRouteTable().Validate())

	t.Run("conflicting rules", func(t *testing.T) {
		rt := DefaultRouteTable()
		rt.RoleRules = append(rt.RoleRules, RoleRule{Prefix: "/admin/", Roles: []domainauth.Role{domainauth.RoleStudent}})
		assert.Error(t, rt.Validate())
	})

	t.Run("redirect target not public", func(t *testing.T) {
		rt := DefaultRouteTable()
		rt.PublicExact = []string{"/"}
		assert.ErrorContains(t, rt.Validate(), ForbiddenPath)
	})

	t.Run("role rule shadowed by public path", func(t *testing.T) {
		rt := DefaultRouteTable()
		rt.RoleRules = append(rt.RoleRules, RoleRule{Prefix: "/events/manage", Roles: []domainauth.Role{domainauth.RoleCoordinator}})
		assert.ErrorContains(t, rt.Validate(), "overlaps a public path")
	})

	t.Run("invalid role", func(t *testing.T) {
		rt := DefaultRouteTable()
		rt.RoleRules = []RoleRule{{Prefix: "/x", Roles: []domainauth.Role{"ROOT"}}}
		assert.Error(t, rt.Validate())
	})
}

func TestSignupRedirect(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "/signup", SignupRedirect(""))
	assert.Equal(t, "/signup", SignupRedirect("/"))
	assert.Equal(t, "/signup?callbackUrl=%2Fstudent%3Ftab%3D1", SignupRedirect("/student?tab=1"))
}
