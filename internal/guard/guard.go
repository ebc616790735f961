// Package guard decides, per navigation, whether a view may be shown.
package guard

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/naveenspark/biblio/internal/nav"
	"github.com/naveenspark/biblio/internal/session"
	"github.com/naveenspark/biblio/pkg/domain"
)

// Navigable paths.
const (
	PathLogin    = nav.Login
	PathHome     = nav.Home
	PathRegister = "/registro"
	PathAbout    = "/about"
	PathMyLoans  = "/my-prestamos"
	PathMyFines  = "/my-multas"
	PathNewBook  = "/new-libro"
	PathNewLoan  = "/new-prestamo"
	PathReader   = "/lector"
	PathReturns  = "/devoluciones"
)

// Outcome is the result of a navigation attempt.
type Outcome int

const (
	Pending Outcome = iota
	Allow
	DenyUnauthenticated
	DenyForbidden
)

func (o Outcome) String() string {
	switch o {
	case Allow:
		return "allow"
	case DenyUnauthenticated:
		return "deny-unauthenticated"
	case DenyForbidden:
		return "deny-forbidden"
	default:
		return "pending"
	}
}

// Decision is what to render. Path is the route to show on Allow and the
// redirect target on a denial; it is empty while Pending.
type Decision struct {
	Outcome Outcome
	Path    string
}

// Route is a navigable path and the roles it admits. An empty Roles set
// admits everyone, logged in or not.
type Route struct {
	Path  string
	Title string
	Roles []domain.Role
}

// Permits reports whether role may enter r.
func (r Route) Permits(role domain.Role) bool {
	if len(r.Roles) == 0 {
		return true
	}
	for _, allowed := range r.Roles {
		if allowed == role {
			return true
		}
	}
	return false
}

// Routes is the navigable route table.
var Routes = []Route{
	{Path: PathLogin, Title: "Login"},
	{Path: PathRegister, Title: "Register"},
	{Path: PathAbout, Title: "About"},
	{Path: PathHome, Title: "Catalog"},
	{Path: PathMyLoans, Title: "My loans", Roles: []domain.Role{domain.RoleReader}},
	{Path: PathMyFines, Title: "My fines", Roles: []domain.Role{domain.RoleReader}},
	{Path: PathNewBook, Title: "New book", Roles: []domain.Role{domain.RoleAdmin}},
	{Path: PathNewLoan, Title: "New loan", Roles: []domain.Role{domain.RoleAdmin}},
	{Path: PathReader, Title: "Readers", Roles: []domain.Role{domain.RoleAdmin}},
	{Path: PathReturns, Title: "Returns", Roles: []domain.Role{domain.RoleAdmin}},
}

// Guard resolves paths against the route table and applies the session.
type Guard struct {
	mux    *chi.Mux
	routes map[string]Route
}

// New builds a Guard over routes.
func New(routes []Route) *Guard {
	g := &Guard{mux: chi.NewRouter(), routes: make(map[string]Route, len(routes))}
	noop := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})
	for _, r := range routes {
		g.mux.Get(r.Path, noop)
		g.routes[r.Path] = r
	}
	return g
}

// Default returns a Guard over Routes.
func Default() *Guard {
	return New(Routes)
}

// Resolve maps path to its route. Unknown paths resolve to the home route,
// mirroring a catch-all redirect.
func (g *Guard) Resolve(path string) Route {
	if path == "" {
		path = PathHome
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	rctx := chi.NewRouteContext()
	if g.mux.Match(rctx, http.MethodGet, path) {
		if r, ok := g.routes[rctx.RoutePattern()]; ok {
			return r
		}
	}
	return g.routes[PathHome]
}

// Decide evaluates a navigation to path against s.
func (g *Guard) Decide(s session.Session, path string) Decision {
	if s.Loading {
		return Decision{Outcome: Pending}
	}
	r := g.Resolve(path)
	if len(r.Roles) == 0 {
		return Decision{Outcome: Allow, Path: r.Path}
	}
	if !s.Authenticated {
		return Decision{Outcome: DenyUnauthenticated, Path: PathLogin}
	}
	if !r.Permits(s.Role()) {
		return Decision{Outcome: DenyForbidden, Path: PathHome}
	}
	return Decision{Outcome: Allow, Path: r.Path}
}

// navByRole is the navigation bar each role sees. Every role has an entry.
var navByRole = map[domain.Role][]string{
	domain.RoleAnonymous: {PathHome, PathLogin, PathRegister, PathAbout},
	domain.RoleReader:    {PathHome, PathMyLoans, PathMyFines, PathAbout},
	domain.RoleAdmin:     {PathHome, PathNewBook, PathNewLoan, PathReader, PathReturns, PathAbout},
}

// NavRoutes returns the navigation entries for role. Every entry is a route
// that role is permitted to enter.
func (g *Guard) NavRoutes(role domain.Role) []Route {
	paths, ok := navByRole[role]
	if !ok {
		paths = navByRole[domain.RoleAnonymous]
	}
	out := make([]Route, 0, len(paths))
	for _, p := range paths {
		if r, ok := g.routes[p]; ok && r.Permits(role) {
			out = append(out, r)
		}
	}
	return out
}
