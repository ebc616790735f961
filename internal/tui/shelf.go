package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/biblio/pkg/domain"
)

func principalEmail(e env) string {
	if e.session == nil {
		return ""
	}
	if p := e.session.Current().Principal; p != nil {
		return p.Email
	}
	return ""
}

// --- My loans ---

type loansLoadedMsg struct {
	loans []domain.Loan
	err   error
}

type myLoansScreen struct {
	env     env
	email   string
	loans   []domain.Loan
	cursor  int
	loading bool
	err     error
	height  int
}

func newMyLoansScreen(e env) *myLoansScreen {
	return &myLoansScreen{env: e, email: principalEmail(e), loading: true}
}

func (m *myLoansScreen) Init() tea.Cmd {
	return loadLoans(m.env, m.email)
}

func loadLoans(e env, email string) tea.Cmd {
	c := e.client
	return func() tea.Msg {
		loans, err := c.FindLoansByEmail(context.Background(), email)
		return loansLoadedMsg{loans: loans, err: err}
	}
}

func (m *myLoansScreen) Update(msg tea.Msg) (screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height
	case loansLoadedMsg:
		m.loading = false
		m.loans = msg.loans
		m.err = msg.err
		if m.cursor >= len(m.loans) {
			m.cursor = 0
		}
	case tea.KeyMsg:
		if msg.String() == "r" {
			m.loading = true
			return m, loadLoans(m.env, m.email)
		}
		m.cursor = moveCursor(m.cursor, len(m.loans), msg.String())
	}
	return m, nil
}

func (m *myLoansScreen) View() string {
	var b strings.Builder
	b.WriteString("\n " + sectionHeaderStyle.Render("MY LOANS") + "  " + metaStyle.Render(m.email) + "\n\n")
	switch {
	case m.loading:
		b.WriteString("  " + dimStyle.Render("loading...") + "\n")
	case m.err != nil:
		b.WriteString("  " + errStyle.Render("could not load loans: "+errText(m.err)) + "\n")
	case len(m.loans) == 0:
		b.WriteString("  " + dimStyle.Render("you have no loans") + "\n")
	default:
		start, end := listWindow(m.cursor, len(m.loans), m.height-4)
		for i := start; i < end; i++ {
			b.WriteString(loanRow(m.loans[i], i == m.cursor) + "\n")
		}
	}
	return b.String()
}

// loanRow renders one loan line.
func loanRow(l domain.Loan, selected bool) string {
	prefix := "  "
	title := normalStyle.Render(fmt.Sprintf("%-36s", truncate(l.Copy.Book.Title, 36)))
	if selected {
		prefix = accentStyle.Render("› ")
		title = selectedStyle.Render(fmt.Sprintf("%-36s", truncate(l.Copy.Book.Title, 36)))
	}
	return prefix + metaStyle.Render(fmt.Sprintf("#%-5d", l.ID)) + " " + title + " " +
		dimStyle.Render(l.LoanedOn+" → "+l.DueOn) + "  " + stateBadge(l.Active, "active", "returned")
}

func (m *myLoansScreen) editing() bool { return false }
func (m *myLoansScreen) helpKeys() string {
	return helpEntry("j/k", "nav") + "  " + helpEntry("r", "refresh")
}

// --- My fines ---

type finesLoadedMsg struct {
	fines []domain.Fine
	err   error
}

type myFinesScreen struct {
	env     env
	email   string
	fines   []domain.Fine
	loading bool
	err     error
}

func newMyFinesScreen(e env) *myFinesScreen {
	return &myFinesScreen{env: e, email: principalEmail(e), loading: true}
}

func (m *myFinesScreen) Init() tea.Cmd {
	c, email := m.env.client, m.email
	return func() tea.Msg {
		fines, err := c.FindFinesByEmail(context.Background(), email)
		return finesLoadedMsg{fines: fines, err: err}
	}
}

func (m *myFinesScreen) Update(msg tea.Msg) (screen, tea.Cmd) {
	switch msg := msg.(type) {
	case finesLoadedMsg:
		m.loading = false
		m.fines = msg.fines
		m.err = msg.err
	case tea.KeyMsg:
		if msg.String() == "r" {
			m.loading = true
			return m, m.Init()
		}
	}
	return m, nil
}

// pendingTotal sums the unpaid fines.
func pendingTotal(fines []domain.Fine) float64 {
	var total float64
	for _, f := range fines {
		if f.Pending {
			total += f.Amount
		}
	}
	return total
}

func (m *myFinesScreen) View() string {
	var b strings.Builder
	b.WriteString("\n " + sectionHeaderStyle.Render("MY FINES") + "  " + metaStyle.Render(m.email) + "\n\n")
	switch {
	case m.loading:
		b.WriteString("  " + dimStyle.Render("loading...") + "\n")
	case m.err != nil:
		b.WriteString("  " + errStyle.Render("could not load fines: "+errText(m.err)) + "\n")
	case len(m.fines) == 0:
		b.WriteString("  " + okStyle.Render("no fines, well done") + "\n")
	default:
		for _, f := range m.fines {
			b.WriteString("  " + metaStyle.Render(fmt.Sprintf("#%-5d", f.ID)) + " " +
				normalStyle.Render(fmt.Sprintf("%8.2f", f.Amount)) + "  " +
				dimStyle.Render(fmt.Sprintf("%-36s", truncate(f.Description, 36))) + " " +
				stateBadge(!f.Pending, "paid", "pending") + "\n")
		}
		b.WriteString("\n  " + dimStyle.Render("pending total ") + accentStyle.Render(fmt.Sprintf("%.2f", pendingTotal(m.fines))) + "\n")
	}
	return b.String()
}

func (m *myFinesScreen) editing() bool    { return false }
func (m *myFinesScreen) helpKeys() string { return helpEntry("r", "refresh") }
