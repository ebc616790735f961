package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/naveenspark/biblio/internal/guard"
	"github.com/naveenspark/biblio/internal/nav"
	"github.com/naveenspark/biblio/internal/session"
	"github.com/naveenspark/biblio/pkg/client"
)

// Deps are the collaborators the App is built from.
type Deps struct {
	Client *client.Client
	// NewSession returns a fresh, not yet bootstrapped session. It is called
	// once at start and again on every hard redirect.
	NewSession func() *session.Store
	Guard      *guard.Guard
	// Nav receives hard redirects (logout, rejected credential) and is told
	// which route is on screen.
	Nav     *nav.Channel
	Version string
	// Start is the first route requested. Defaults to the catalog.
	Start string
}

// screen is the model behind one route. A screen is created on every
// navigation and dropped when the route changes.
type screen interface {
	Init() tea.Cmd
	Update(tea.Msg) (screen, tea.Cmd)
	View() string
	// editing reports whether keystrokes belong to the screen.
	editing() bool
	helpKeys() string
}

// env is what screens see of the App.
type env struct {
	client  *client.Client
	session *session.Store
	version string
}

// sessionReadyMsg reports that bootstrap of generation gen finished.
type sessionReadyMsg struct{ gen int }

// redirectMsg is a hard redirect received from the navigator.
type redirectMsg struct{ path string }

// navigateMsg asks for an in-app navigation to path.
type navigateMsg struct{ path string }

// logoutMsg carries the result of a logout.
type logoutMsg struct{ err error }

func navigateTo(path string) tea.Cmd {
	return func() tea.Msg { return navigateMsg{path: path} }
}

// App is the root Bubbletea model.
type App struct {
	deps    Deps
	session *session.Store
	gen     int
	target  string
	route   guard.Route
	screen  screen
	status  string
	// allowed counts routes actually rendered; tests use it to tell a
	// silent guard redirect from a render.
	allowed  int
	helpOpen bool
	width    int
	height   int
	frame    int // logo shimmer animation frame
}

// NewApp creates a new TUI application. Nothing is rendered until the
// session has been bootstrapped.
func NewApp(d Deps) App {
	if d.Guard == nil {
		d.Guard = guard.Default()
	}
	if d.Start == "" {
		d.Start = guard.PathHome
	}
	a := App{deps: d, target: d.Start}
	if d.NewSession != nil {
		a.session = d.NewSession()
	}
	return a
}

func (a App) Init() tea.Cmd {
	return tea.Batch(shimmerTickCmd(), bootstrapCmd(a.session, a.gen), a.waitRedirect())
}

func bootstrapCmd(s *session.Store, gen int) tea.Cmd {
	return func() tea.Msg {
		if s != nil {
			s.Bootstrap()
		}
		return sessionReadyMsg{gen: gen}
	}
}

func (a App) waitRedirect() tea.Cmd {
	if a.deps.Nav == nil {
		return nil
	}
	ch := a.deps.Nav.C()
	return func() tea.Msg {
		p, ok := <-ch
		if !ok {
			return nil
		}
		return redirectMsg{path: p}
	}
}

func (a App) current() session.Session {
	if a.session == nil {
		return session.Session{}
	}
	return a.session.Current()
}

// navigate runs path through the guard. Denials redirect silently to the
// guard's target; a pending session parks the request until bootstrap ends.
func (a App) navigate(path string) (App, tea.Cmd) {
	d := a.deps.Guard.Decide(a.current(), path)
	switch d.Outcome {
	case guard.Pending:
		a.target = path
		return a, nil
	case guard.DenyUnauthenticated, guard.DenyForbidden:
		d = a.deps.Guard.Decide(a.current(), d.Path)
		if d.Outcome != guard.Allow {
			return a, nil
		}
	}

	a.route = a.deps.Guard.Resolve(d.Path)
	a.screen = a.newScreen(a.route.Path)
	a.allowed++
	if a.deps.Nav != nil {
		a.deps.Nav.SetLocation(a.route.Path)
	}
	if a.width > 0 {
		a.screen, _ = a.screen.Update(a.bodySize())
	}
	return a, a.screen.Init()
}

func (a App) newScreen(path string) screen {
	e := env{client: a.deps.Client, session: a.session, version: a.deps.Version}
	switch path {
	case guard.PathLogin:
		return newLoginScreen(e)
	case guard.PathRegister:
		return newRegisterScreen(e)
	case guard.PathAbout:
		return newAboutScreen(e)
	case guard.PathMyLoans:
		return newMyLoansScreen(e)
	case guard.PathMyFines:
		return newMyFinesScreen(e)
	case guard.PathNewBook:
		return newNewBookScreen(e)
	case guard.PathNewLoan:
		return newNewLoanScreen(e)
	case guard.PathReader:
		return newReaderScreen(e)
	case guard.PathReturns:
		return newReturnsScreen(e)
	default:
		return newCatalogScreen(e)
	}
}

// Chrome: header(2) + nav(1) + status(1) + help(1) = 5 lines
const chromeLines = 5

func (a App) bodySize() tea.WindowSizeMsg {
	return tea.WindowSizeMsg{Width: a.width, Height: a.height - chromeLines}
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.screen != nil {
			a.screen, _ = a.screen.Update(a.bodySize())
		}
		return a, nil

	case shimmerTickMsg:
		a.frame++
		return a, shimmerTickCmd()

	case sessionReadyMsg:
		if msg.gen != a.gen {
			return a, nil
		}
		return a.navigate(a.target)

	case redirectMsg:
		// A hard redirect reloads: all screen and session state is dropped
		// and the new session bootstraps from the credential slot.
		a.gen++
		a.screen = nil
		a.route = guard.Route{}
		a.status = ""
		a.target = msg.path
		if a.deps.NewSession != nil {
			a.session = a.deps.NewSession()
		}
		return a, tea.Batch(bootstrapCmd(a.session, a.gen), a.waitRedirect())

	case navigateMsg:
		a.status = ""
		return a.navigate(msg.path)

	case logoutMsg:
		if msg.err != nil {
			a.status = errStyle.Render("logout: " + msg.err.Error())
		}
		return a, nil

	case tea.KeyMsg:
		if a.helpOpen {
			switch msg.String() {
			case "h", "esc":
				a.helpOpen = false
			case "q", "ctrl+c":
				return a, tea.Quit
			}
			return a, nil
		}
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.screen == nil {
			if msg.String() == "q" {
				return a, tea.Quit
			}
			return a, nil
		}
		if !a.screen.editing() {
			if cmd, ok := a.globalKey(msg.String()); ok {
				return a, cmd
			}
			if mdl, cmd, ok := a.navKey(msg.String()); ok {
				return mdl, cmd
			}
		}
	}

	if a.screen == nil {
		return a, nil
	}
	var cmd tea.Cmd
	a.screen, cmd = a.screen.Update(msg)
	return a, cmd
}

func (a *App) globalKey(key string) (tea.Cmd, bool) {
	switch key {
	case "q":
		return tea.Quit, true
	case "h":
		a.helpOpen = true
		return nil, true
	case "L":
		s := a.session
		if s == nil || !a.current().Authenticated {
			return nil, true
		}
		return func() tea.Msg { return logoutMsg{err: s.Logout()} }, true
	}
	return nil, false
}

func (a App) navKey(key string) (App, tea.Cmd, bool) {
	if len(key) != 1 || key[0] < '1' || key[0] > '9' {
		return a, nil, false
	}
	routes := a.deps.Guard.NavRoutes(a.current().Role())
	i := int(key[0] - '1')
	if i >= len(routes) {
		return a, nil, true
	}
	if routes[i].Path == a.route.Path {
		return a, nil, true
	}
	a.status = ""
	mdl, cmd := a.navigate(routes[i].Path)
	return mdl, cmd, true
}

func (a App) View() string {
	logo := renderShimmerLogo(a.frame)
	header := center(logo, a.width) + "\n" + center(a.identityLine(), a.width)

	if a.screen == nil {
		return header + "\n\n" + dimStyle.Render("  loading...") + "\n"
	}

	var tabs strings.Builder
	for i, r := range a.deps.Guard.NavRoutes(a.current().Role()) {
		key := fmt.Sprintf("%d", i+1)
		if r.Path == a.route.Path {
			tabs.WriteString(" " + accentStyle.Render(key) + " " + selectedStyle.Underline(true).Render(r.Title) + " ")
		} else {
			tabs.WriteString(" " + metaStyle.Render(key) + " " + dimStyle.Render(r.Title) + " ")
		}
	}

	body := a.screen.View()
	help := " " + a.screen.helpKeys()
	if !a.screen.editing() {
		help += "  " + helpEntry("1-9", "go")
		if a.current().Authenticated {
			help += "  " + helpEntry("L", "logout")
		}
		help += "  " + helpEntry("h", "help") + "  " + helpEntry("q", "quit")
	}
	if a.helpOpen {
		body = helpView()
		help = " " + helpEntry("esc", "close")
	}

	if a.height > 0 {
		body = truncateToHeight(body, a.height-chromeLines)
	}
	body = strings.TrimRight(body, "\n")

	return fmt.Sprintf("%s\n%s\n%s\n%s\n%s", header, center(tabs.String(), a.width), body, a.status, help)
}

func (a App) identityLine() string {
	s := a.current()
	if s.Loading {
		return metaStyle.Render("...")
	}
	if !s.Authenticated {
		return metaStyle.Render("not logged in")
	}
	return RoleBadge(s.Role()) + " " + dimStyle.Render(s.Principal.Email)
}

func center(s string, width int) string {
	pad := (width - lipgloss.Width(s)) / 2
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat(" ", pad) + s
}
