package tui

import (
	"context"
	"errors"
	"net/http"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/biblio/internal/guard"
	"github.com/naveenspark/biblio/internal/session"
	"github.com/naveenspark/biblio/pkg/client"
	"github.com/naveenspark/biblio/pkg/domain"
)

// --- Login ---

const (
	loginEmail = iota
	loginPassword
)

type loginScreen struct {
	env       env
	form      form
	submitted bool
	statusMsg string
}

type loginResultMsg struct {
	principal domain.Principal
	err       error
}

func newLoginScreen(e env) *loginScreen {
	return &loginScreen{
		env: e,
		form: newForm(
			formField{label: "email", placeholder: "you@university.edu"},
			formField{label: "password", secret: true},
		),
	}
}

func (m *loginScreen) Init() tea.Cmd { return nil }

func (m *loginScreen) Update(msg tea.Msg) (screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loginResultMsg:
		m.submitted = false
		if msg.err != nil {
			m.statusMsg = loginErrText(msg.err)
			m.form.fields[loginPassword].value = ""
			m.form.focus = loginPassword
			m.form.focused = true
			return m, nil
		}
		m.statusMsg = ""
		return m, navigateTo(guard.PathHome)

	case tea.KeyMsg:
		if m.submitted {
			return m, nil
		}
		if m.form.update(msg.String()) == formSubmit {
			return m.submit()
		}
	}
	return m, nil
}

func (m *loginScreen) submit() (screen, tea.Cmd) {
	if f := m.form.missing(); f != "" {
		m.statusMsg = f + " is required"
		return m, nil
	}
	if err := domain.ValidateEmail(m.form.value(loginEmail)); err != nil {
		m.statusMsg = "email " + err.Error()
		return m, nil
	}
	m.submitted = true
	m.statusMsg = "logging in..."
	c, s := m.env.client, m.env.session
	creds := client.Credentials{Email: m.form.value(loginEmail), Password: m.form.fields[loginPassword].value}
	return m, func() tea.Msg {
		raw, err := c.Login(context.Background(), creds)
		if err != nil {
			return loginResultMsg{err: err}
		}
		p, err := s.Login(raw)
		return loginResultMsg{principal: p, err: err}
	}
}

func loginErrText(err error) string {
	switch {
	case errors.Is(err, client.ErrInactiveUser):
		return client.InactiveUserMessage
	case errors.Is(err, session.ErrInvalidCredential), errors.Is(err, client.ErrEmptyToken):
		return "the server returned an unusable token"
	case client.IsStatus(err, http.StatusUnauthorized), client.IsStatus(err, http.StatusForbidden):
		return "invalid email or password"
	}
	return "login failed: " + errText(err)
}

func (m *loginScreen) View() string {
	var b strings.Builder
	b.WriteString("\n " + sectionHeaderStyle.Render("LOG IN") + "\n\n")
	b.WriteString(m.form.View())
	if m.statusMsg != "" {
		b.WriteString("\n  " + accentStyle.Render(m.statusMsg) + "\n")
	}
	return b.String()
}

func (m *loginScreen) editing() bool    { return m.form.focused }
func (m *loginScreen) helpKeys() string { return m.form.helpKeys() }

// --- Register ---

const (
	regFirstName = iota
	regLastName
	regEmail
	regPassword
	regConfirm
	regRole
)

type registerScreen struct {
	env       env
	form      form
	admin     bool
	submitted bool
	statusMsg string
	err       error
}

type registeredMsg struct {
	user *domain.User
	err  error
}

// newRegisterScreen builds the sign-up form. Staff logged in as admin get
// an extra field to create admin accounts.
func newRegisterScreen(e env) *registerScreen {
	fields := []formField{
		{label: "first name"},
		{label: "last name", optional: true},
		{label: "email", placeholder: "you@university.edu"},
		{label: "password", secret: true},
		{label: "confirm", secret: true},
	}
	admin := e.session != nil && e.session.Current().Role() == domain.RoleAdmin
	if admin {
		fields = append(fields, formField{label: "account", choices: []string{"reader", "admin"}})
	}
	return &registerScreen{env: e, form: newForm(fields...), admin: admin}
}

func (m *registerScreen) Init() tea.Cmd { return nil }

func (m *registerScreen) Update(msg tea.Msg) (screen, tea.Cmd) {
	switch msg := msg.(type) {
	case registeredMsg:
		m.submitted = false
		if msg.err != nil {
			m.err = msg.err
			m.statusMsg = "registration failed: " + errText(msg.err)
			return m, nil
		}
		m.err = nil
		if m.admin {
			m.statusMsg = "account created for " + msg.user.Email
			m.form.reset()
			return m, nil
		}
		return m, navigateTo(guard.PathLogin)

	case tea.KeyMsg:
		if m.submitted {
			return m, nil
		}
		m.statusMsg = ""
		if m.form.update(msg.String()) == formSubmit {
			return m.submit()
		}
	}
	return m, nil
}

func (m *registerScreen) submit() (screen, tea.Cmd) {
	if f := m.form.missing(); f != "" {
		m.statusMsg = f + " is required"
		return m, nil
	}
	if m.form.fields[regPassword].value != m.form.fields[regConfirm].value {
		m.statusMsg = "passwords do not match"
		m.form.fields[regConfirm].value = ""
		return m, nil
	}
	reg := domain.Registration{
		FirstName: m.form.value(regFirstName),
		LastName:  m.form.value(regLastName),
		Email:     m.form.value(regEmail),
		Password:  m.form.fields[regPassword].value,
	}
	if err := reg.Validate(); err != nil {
		m.statusMsg = err.Error()
		return m, nil
	}
	asAdmin := m.admin && m.form.value(regRole) == "admin"
	m.submitted = true
	c := m.env.client
	return m, func() tea.Msg {
		var u *domain.User
		var err error
		if asAdmin {
			u, err = c.RegisterAdmin(context.Background(), reg)
		} else {
			u, err = c.Register(context.Background(), reg)
		}
		return registeredMsg{user: u, err: err}
	}
}

func (m *registerScreen) View() string {
	var b strings.Builder
	b.WriteString("\n " + sectionHeaderStyle.Render("REGISTER") + "\n\n")
	b.WriteString(m.form.View())
	if m.statusMsg != "" {
		style := accentStyle
		if m.err != nil {
			style = errStyle
		}
		b.WriteString("\n  " + style.Render(m.statusMsg) + "\n")
	}
	return b.String()
}

func (m *registerScreen) editing() bool    { return m.form.focused }
func (m *registerScreen) helpKeys() string { return m.form.helpKeys() }

// --- About ---

type aboutScreen struct {
	env env
}

func newAboutScreen(e env) *aboutScreen { return &aboutScreen{env: e} }

func (m *aboutScreen) Init() tea.Cmd                    { return nil }
func (m *aboutScreen) Update(tea.Msg) (screen, tea.Cmd) { return m, nil }
func (m *aboutScreen) editing() bool                    { return false }
func (m *aboutScreen) helpKeys() string                 { return "" }

func (m *aboutScreen) View() string {
	var b strings.Builder
	b.WriteString("\n " + sectionHeaderStyle.Render("ABOUT") + "\n\n")
	b.WriteString("  " + normalStyle.Render("biblio is the terminal desk of the university library.") + "\n")
	b.WriteString("  " + dimStyle.Render("Browse the catalog, follow your loans and fines, or run the") + "\n")
	b.WriteString("  " + dimStyle.Render("circulation desk if you are staff.") + "\n\n")
	if m.env.version != "" {
		b.WriteString("  " + metaStyle.Render("version  ") + dimStyle.Render(m.env.version) + "\n")
	}
	if m.env.client != nil {
		b.WriteString("  " + metaStyle.Render("server   ") + dimStyle.Render(m.env.client.BaseURL()) + "\n")
	}
	return b.String()
}
