package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naveenspark/biblio/internal/session"
	"github.com/naveenspark/biblio/pkg/domain"
)

var (
	loading   = session.Session{Loading: true}
	anonymous = session.Session{}
	reader    = session.Session{Authenticated: true, Principal: &domain.Principal{Email: "ada@uni.edu", Role: domain.RoleReader}}
	admin     = session.Session{Authenticated: true, Principal: &domain.Principal{Email: "root@uni.edu", Role: domain.RoleAdmin}}
)

func TestDecide(t *testing.T) {
	tests := []struct {
		name    string
		session session.Session
		path    string
		want    Decision
	}{
		{"pending while loading", loading, PathNewBook, Decision{Outcome: Pending}},
		{"pending even for public path", loading, PathHome, Decision{Outcome: Pending}},

		{"anonymous on public home", anonymous, PathHome, Decision{Allow, PathHome}},
		{"anonymous on about", anonymous, PathAbout, Decision{Allow, PathAbout}},
		{"anonymous on login", anonymous, PathLogin, Decision{Allow, PathLogin}},
		{"anonymous on admin route", anonymous, PathNewBook, Decision{DenyUnauthenticated, PathLogin}},
		{"anonymous on reader route", anonymous, PathMyLoans, Decision{DenyUnauthenticated, PathLogin}},

		{"reader on admin route", reader, PathNewBook, Decision{DenyForbidden, PathHome}},
		{"reader on returns", reader, PathReturns, Decision{DenyForbidden, PathHome}},
		{"reader on own loans", reader, PathMyLoans, Decision{Allow, PathMyLoans}},
		{"reader on fines", reader, PathMyFines, Decision{Allow, PathMyFines}},

		{"admin on reader route", admin, PathMyFines, Decision{DenyForbidden, PathHome}},
		{"admin on admin route", admin, PathReader, Decision{Allow, PathReader}},
		{"admin on home", admin, PathHome, Decision{Allow, PathHome}},

		{"unknown path goes home", admin, "/nope", Decision{Allow, PathHome}},
		{"trailing slash", admin, PathNewLoan + "/", Decision{Allow, PathNewLoan}},
		{"missing leading slash", reader, "my-multas", Decision{Allow, PathMyFines}},
		{"empty path", anonymous, "", Decision{Allow, PathHome}},
	}

	g := Default()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, g.Decide(tt.session, tt.path))
		})
	}
}

func TestForbiddenNeverSendsToLogin(t *testing.T) {
	g := Default()
	for _, r := range Routes {
		d := g.Decide(reader, r.Path)
		if d.Outcome == DenyForbidden {
			assert.Equal(t, PathHome, d.Path, "route %s", r.Path)
		}
		assert.NotEqual(t, DenyUnauthenticated, d.Outcome, "authenticated reader denied as unauthenticated on %s", r.Path)
	}
}

func TestResolve(t *testing.T) {
	g := Default()
	for _, r := range Routes {
		assert.Equal(t, r.Path, g.Resolve(r.Path).Path)
	}
	assert.Equal(t, PathHome, g.Resolve("/does/not/exist").Path)
}

func TestNavRoutesIsTotal(t *testing.T) {
	g := Default()
	for _, role := range domain.Roles {
		entries := g.NavRoutes(role)
		require.NotEmpty(t, entries, "role %s has no navigation", role)
		for _, r := range entries {
			assert.True(t, r.Permits(role), "%s listed for %s but not permitted", r.Path, role)
		}
	}
}

func TestNavRoutesByRole(t *testing.T) {
	g := Default()
	paths := func(role domain.Role) []string {
		var out []string
		for _, r := range g.NavRoutes(role) {
			out = append(out, r.Path)
		}
		return out
	}

	assert.Contains(t, paths(domain.RoleAdmin), PathReturns)
	assert.NotContains(t, paths(domain.RoleAdmin), PathMyLoans)
	assert.Contains(t, paths(domain.RoleReader), PathMyLoans)
	assert.NotContains(t, paths(domain.RoleReader), PathNewBook)
	assert.Contains(t, paths(domain.RoleAnonymous), PathLogin)
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "deny-forbidden", DenyForbidden.String())
	assert.Equal(t, "pending", Pending.String())
}
