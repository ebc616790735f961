package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/biblio/internal/browser"
	"github.com/naveenspark/biblio/pkg/domain"
)

// maxCoverBytes bounds the cover image read from disk.
const maxCoverBytes = 2 << 20

var errSuspended = errors.New("reader is suspended")

// --- New book ---

const (
	bookTitle = iota
	bookAuthor
	bookType
	bookCover
	bookCopies
)

type bookCreatedMsg struct {
	book   *domain.Book
	copies int
	err    error
}

type copyCreatedMsg struct {
	bookID int64
	err    error
}

type newBookScreen struct {
	env       env
	form      form
	copyForm  form
	copyMode  bool // editing copyForm instead of form
	submitted bool
	statusMsg string
	err       error
}

func newNewBookScreen(e env) *newBookScreen {
	return &newBookScreen{
		env: e,
		form: newForm(
			formField{label: "title"},
			formField{label: "author"},
			formField{label: "type", choices: domain.BookTypes},
			formField{label: "cover file", placeholder: "path to an image (optional)", optional: true},
			formField{label: "copies", value: "1"},
		),
		copyForm: newForm(
			formField{label: "book id", placeholder: "#"},
			formField{label: "state", choices: []string{"available", "on loan"}},
		),
	}
}

func (m *newBookScreen) active() *form {
	if m.copyMode {
		return &m.copyForm
	}
	return &m.form
}

func (m *newBookScreen) Init() tea.Cmd { return nil }

func (m *newBookScreen) Update(msg tea.Msg) (screen, tea.Cmd) {
	switch msg := msg.(type) {
	case bookCreatedMsg:
		m.submitted = false
		m.err = msg.err
		if msg.err != nil {
			if msg.book != nil {
				m.statusMsg = fmt.Sprintf("book #%d created, but adding copies failed after %d: %s", msg.book.ID, msg.copies, errText(msg.err))
			} else {
				m.statusMsg = "could not create book: " + errText(msg.err)
			}
			return m, nil
		}
		m.statusMsg = fmt.Sprintf("created #%d %q with %d copies", msg.book.ID, msg.book.Title, msg.copies)
		m.form.reset()
		m.form.fields[bookCopies].value = "1"
		return m, nil

	case copyCreatedMsg:
		m.submitted = false
		m.err = msg.err
		if msg.err != nil {
			m.statusMsg = "could not add copy: " + errText(msg.err)
			return m, nil
		}
		m.statusMsg = fmt.Sprintf("copy added to book #%d", msg.bookID)
		m.copyForm.reset()
		return m, nil

	case tea.KeyMsg:
		if m.submitted {
			return m, nil
		}
		m.statusMsg = ""
		m.err = nil
		if msg.String() == "ctrl+t" {
			m.copyMode = !m.copyMode
			m.active().focused = true
			return m, nil
		}
		if m.active().update(msg.String()) == formSubmit {
			if m.copyMode {
				return m.submitCopy()
			}
			return m.submit()
		}
	}
	return m, nil
}

func (m *newBookScreen) submitCopy() (screen, tea.Cmd) {
	id, err := strconv.ParseInt(strings.TrimPrefix(m.copyForm.value(0), "#"), 10, 64)
	if err != nil {
		m.statusMsg = "book id must be a number"
		return m, nil
	}
	req := domain.NewCopyRequest{Available: m.copyForm.value(1) == "available", Book: domain.IDRef{ID: id}}
	if err := req.Validate(); err != nil {
		m.statusMsg = err.Error()
		return m, nil
	}
	m.submitted = true
	c := m.env.client
	return m, func() tea.Msg {
		return copyCreatedMsg{bookID: id, err: c.CreateCopy(context.Background(), req)}
	}
}

func (m *newBookScreen) submit() (screen, tea.Cmd) {
	if f := m.form.missing(); f != "" {
		m.statusMsg = f + " is required"
		return m, nil
	}
	n, err := strconv.Atoi(m.form.value(bookCopies))
	if err != nil || n < 0 {
		m.statusMsg = "copies must be a whole number"
		return m, nil
	}
	req := domain.NewBookRequest{
		Title:  m.form.value(bookTitle),
		Author: m.form.value(bookAuthor),
		Type:   m.form.value(bookType),
	}
	if err := req.Validate(); err != nil {
		m.statusMsg = err.Error()
		return m, nil
	}
	cover := m.form.value(bookCover)
	m.submitted = true
	m.statusMsg = "saving..."
	c := m.env.client
	return m, func() tea.Msg {
		if cover != "" {
			img, err := readCover(cover)
			if err != nil {
				return bookCreatedMsg{err: err}
			}
			req.Image64 = img
		}
		book, err := c.CreateBook(context.Background(), req)
		if err != nil {
			return bookCreatedMsg{err: err}
		}
		for i := 0; i < n; i++ {
			cp := domain.NewCopyRequest{Available: true, Book: domain.IDRef{ID: book.ID}}
			if err := c.CreateCopy(context.Background(), cp); err != nil {
				return bookCreatedMsg{book: book, copies: i, err: err}
			}
		}
		return bookCreatedMsg{book: book, copies: n}
	}
}

// readCover loads a JPEG or PNG file and returns it as a data URL.
func readCover(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("cover: %w", err)
	}
	if info.Size() > maxCoverBytes {
		return "", fmt.Errorf("cover: %s is larger than %d bytes", path, maxCoverBytes)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("cover: %w", err)
	}
	img, err := browser.EncodeCover(data)
	if err != nil {
		return "", fmt.Errorf("cover: %s: %w", path, err)
	}
	return img, nil
}

func (m *newBookScreen) View() string {
	var b strings.Builder
	if m.copyMode {
		b.WriteString("\n " + dimStyle.Render("NEW BOOK") + "  " + sectionHeaderStyle.Render("NEW COPY") + "\n\n")
		b.WriteString(m.copyForm.View())
	} else {
		b.WriteString("\n " + sectionHeaderStyle.Render("NEW BOOK") + "  " + dimStyle.Render("NEW COPY") + "\n\n")
		b.WriteString(m.form.View())
	}
	b.WriteString(statusLine(m.statusMsg, m.err))
	return b.String()
}

func (m *newBookScreen) editing() bool { return m.active().focused }

func (m *newBookScreen) helpKeys() string {
	f := m.active()
	keys := f.helpKeys()
	if f.focused && len(f.fields[f.focus].choices) > 0 {
		keys = helpEntry("←/→", "choose") + "  " + keys
	}
	return keys + "  " + helpEntry("ctrl+t", "book/copy")
}

func statusLine(text string, err error) string {
	if text == "" {
		return ""
	}
	if err != nil {
		return "\n  " + errStyle.Render(text) + "\n"
	}
	return "\n  " + accentStyle.Render(text) + "\n"
}

// --- New loan ---

const (
	loanEmail = iota
	loanTitle
)

// loanLookupMsg carries the reader and the copies of the searched title.
type loanLookupMsg struct {
	reader *domain.Reader
	copies []domain.BookCopy
	err    error
}

type loanCreatedMsg struct {
	reader *domain.Reader
	copyID int64
	err    error
}

// newLoanScreen looks up a reader and a title, then lends one of the
// title's available copies.
type newLoanScreen struct {
	env       env
	form      form
	reader    *domain.Reader
	copies    []domain.BookCopy
	cursor    int
	submitted bool
	statusMsg string
	err       error
}

func newNewLoanScreen(e env) *newLoanScreen {
	return &newLoanScreen{
		env: e,
		form: newForm(
			formField{label: "reader email", placeholder: "reader@university.edu"},
			formField{label: "book title", placeholder: "exact title"},
		),
	}
}

func (m *newLoanScreen) Init() tea.Cmd { return nil }

func (m *newLoanScreen) Update(msg tea.Msg) (screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loanLookupMsg:
		m.submitted = false
		m.reader = msg.reader
		m.copies = msg.copies
		m.err = msg.err
		if msg.err != nil {
			m.statusMsg = "lookup failed: " + errText(msg.err)
			return m, nil
		}
		m.form.focused = false
		m.cursor = 0
		for i, cp := range m.copies {
			if cp.Available {
				m.cursor = i
				break
			}
		}
		if len(m.copies) == 0 {
			m.statusMsg = "no copies of that title"
		}
		return m, nil

	case loanCreatedMsg:
		m.submitted = false
		m.err = msg.err
		if msg.err != nil {
			m.statusMsg = "could not register loan: " + errText(msg.err)
			return m, nil
		}
		m.statusMsg = fmt.Sprintf("copy #%d lent to %s", msg.copyID, msg.reader.FullName())
		m.reader = nil
		m.copies = nil
		m.form.reset()
		return m, nil

	case tea.KeyMsg:
		if m.submitted {
			return m, nil
		}
		m.statusMsg = ""
		m.err = nil
		if !m.form.focused && m.reader != nil {
			switch key := msg.String(); key {
			case "enter":
				return m.lend()
			case "i":
				m.form.focused = true
			default:
				m.cursor = moveCursor(m.cursor, len(m.copies), key)
			}
			return m, nil
		}
		if m.form.update(msg.String()) == formSubmit {
			return m.lookup()
		}
	}
	return m, nil
}

func (m *newLoanScreen) lookup() (screen, tea.Cmd) {
	if f := m.form.missing(); f != "" {
		m.statusMsg = f + " is required"
		return m, nil
	}
	email := m.form.value(loanEmail)
	if err := domain.ValidateEmail(email); err != nil {
		m.statusMsg = "reader email " + err.Error()
		return m, nil
	}
	title := m.form.value(loanTitle)
	m.submitted = true
	c := m.env.client
	return m, func() tea.Msg {
		r, err := c.FindReader(context.Background(), email)
		if err != nil {
			return loanLookupMsg{err: err}
		}
		copies, err := c.ListCopiesByTitle(context.Background(), title)
		return loanLookupMsg{reader: r, copies: copies, err: err}
	}
}

// lend registers the loan of the selected copy. Suspended readers and
// copies already on loan are refused.
func (m *newLoanScreen) lend() (screen, tea.Cmd) {
	r := m.reader
	if !r.Active {
		m.err = errSuspended
		m.statusMsg = "could not register loan: " + errSuspended.Error()
		return m, nil
	}
	if m.cursor < 0 || m.cursor >= len(m.copies) {
		return m, nil
	}
	cp := m.copies[m.cursor]
	if !cp.Available {
		m.statusMsg = fmt.Sprintf("copy #%d is on loan, pick an available one", cp.ID)
		return m, nil
	}
	req := domain.NewLoanRequest{User: domain.IDRef{ID: r.ID}, Copy: domain.IDRef{ID: cp.ID}}
	if err := req.Validate(); err != nil {
		m.statusMsg = err.Error()
		return m, nil
	}
	m.submitted = true
	c := m.env.client
	return m, func() tea.Msg {
		if err := c.CreateLoan(context.Background(), req); err != nil {
			return loanCreatedMsg{reader: r, err: err}
		}
		return loanCreatedMsg{reader: r, copyID: cp.ID}
	}
}

func (m *newLoanScreen) View() string {
	var b strings.Builder
	b.WriteString("\n " + sectionHeaderStyle.Render("NEW LOAN") + "\n\n")
	b.WriteString(m.form.View())
	if r := m.reader; r != nil {
		b.WriteString("\n  " + selectedStyle.Render(r.FullName()) + "  " + stateBadge(r.Active, "active", "suspended") + "\n")
	}
	for i, cp := range m.copies {
		cursor := "  "
		if i == m.cursor && !m.form.focused {
			cursor = accentStyle.Render("› ")
		}
		b.WriteString(fmt.Sprintf("  %s%s  %s  %s\n", cursor,
			metaStyle.Render(fmt.Sprintf("#%-5d", cp.ID)),
			normalStyle.Render(truncate(cp.Book.Title, 30)),
			stateBadge(cp.Available, "available", "on loan")))
	}
	b.WriteString(statusLine(m.statusMsg, m.err))
	return b.String()
}

func (m *newLoanScreen) editing() bool { return m.form.focused }

func (m *newLoanScreen) helpKeys() string {
	if !m.form.focused && m.reader != nil {
		return helpEntry("j/k", "copy") + "  " + helpEntry("enter", "lend") + "  " + helpEntry("i", "edit")
	}
	return m.form.helpKeys()
}

// --- Readers ---

type readerFoundMsg struct {
	reader *domain.Reader
	err    error
}

type readerUpdatedMsg struct {
	reader *domain.Reader
	err    error
}

type readerScreen struct {
	env       env
	form      form
	reader    *domain.Reader
	busy      bool
	statusMsg string
	err       error
}

func newReaderScreen(e env) *readerScreen {
	return &readerScreen{
		env:  e,
		form: newForm(formField{label: "email", placeholder: "reader@university.edu"}),
	}
}

func (m *readerScreen) Init() tea.Cmd { return nil }

func (m *readerScreen) Update(msg tea.Msg) (screen, tea.Cmd) {
	switch msg := msg.(type) {
	case readerFoundMsg:
		m.busy = false
		m.err = msg.err
		m.reader = msg.reader
		if msg.err != nil {
			m.statusMsg = "lookup failed: " + errText(msg.err)
			return m, nil
		}
		m.statusMsg = ""
		m.form.focused = false
		return m, nil

	case readerUpdatedMsg:
		m.busy = false
		m.err = msg.err
		if msg.err != nil {
			m.statusMsg = "update failed: " + errText(msg.err)
			return m, nil
		}
		m.reader = msg.reader
		if msg.reader.Active {
			m.statusMsg = "reader activated"
		} else {
			m.statusMsg = "reader suspended"
		}
		return m, nil

	case copyResultMsg:
		if msg.err != nil {
			m.statusMsg = "copy failed: " + msg.err.Error()
		} else {
			m.statusMsg = "copied to clipboard"
		}
		return m, nil

	case tea.KeyMsg:
		if m.busy {
			return m, nil
		}
		m.statusMsg = ""
		m.err = nil
		if !m.form.focused && m.reader != nil {
			switch msg.String() {
			case "s":
				return m, m.toggleState()
			case "c":
				email := m.reader.Email
				return m, func() tea.Msg { return copyResultMsg{err: copyToClipboard(email)} }
			}
		}
		if m.form.update(msg.String()) == formSubmit {
			return m.lookup()
		}
	}
	return m, nil
}

func (m *readerScreen) lookup() (screen, tea.Cmd) {
	email := m.form.value(0)
	if email == "" {
		m.statusMsg = "email is required"
		return m, nil
	}
	m.busy = true
	c := m.env.client
	return m, func() tea.Msg {
		r, err := c.FindReader(context.Background(), email)
		return readerFoundMsg{reader: r, err: err}
	}
}

func (m *readerScreen) toggleState() tea.Cmd {
	m.busy = true
	c, email, next := m.env.client, m.reader.Email, !m.reader.Active
	return func() tea.Msg {
		r, err := c.UpdateReaderState(context.Background(), email, next)
		return readerUpdatedMsg{reader: r, err: err}
	}
}

func (m *readerScreen) View() string {
	var b strings.Builder
	b.WriteString("\n " + sectionHeaderStyle.Render("READERS") + "\n\n")
	b.WriteString(m.form.View())
	if r := m.reader; r != nil {
		b.WriteString("\n  " + selectedStyle.Render(r.FullName()) + "  " + stateBadge(r.Active, "active", "suspended") + "\n")
		b.WriteString("  " + metaStyle.Render(fmt.Sprintf("#%d", r.ID)) + "  " + dimStyle.Render(r.Email))
		if r.Role.Name != "" {
			b.WriteString("  " + metaStyle.Render(r.Role.Name))
		}
		b.WriteString("\n")
	}
	if m.busy {
		b.WriteString("\n  " + dimStyle.Render("working...") + "\n")
	}
	b.WriteString(statusLine(m.statusMsg, m.err))
	return b.String()
}

func (m *readerScreen) editing() bool { return m.form.focused }

func (m *readerScreen) helpKeys() string {
	if !m.form.focused && m.reader != nil {
		return helpEntry("s", "toggle state") + "  " + helpEntry("c", "copy email") + "  " + m.form.helpKeys()
	}
	return m.form.helpKeys()
}

// --- Returns ---

type loanReturnedMsg struct {
	id   int64
	loan *domain.Loan
	err  error
}

type returnsScreen struct {
	env       env
	form      form
	email     string
	loans     []domain.Loan
	loaded    bool
	cursor    int
	busy      bool
	statusMsg string
	err       error
	height    int
}

func newReturnsScreen(e env) *returnsScreen {
	return &returnsScreen{
		env:  e,
		form: newForm(formField{label: "reader email", placeholder: "reader@university.edu"}),
	}
}

func (m *returnsScreen) Init() tea.Cmd { return nil }

func (m *returnsScreen) Update(msg tea.Msg) (screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height
		return m, nil

	case loansLoadedMsg:
		m.busy = false
		m.loaded = true
		m.loans = msg.loans
		m.err = msg.err
		m.cursor = 0
		if msg.err != nil {
			m.statusMsg = "lookup failed: " + errText(msg.err)
			return m, nil
		}
		m.form.focused = false
		return m, nil

	case loanReturnedMsg:
		m.busy = false
		m.err = msg.err
		if msg.err != nil {
			m.statusMsg = "return failed: " + errText(msg.err)
			return m, nil
		}
		for i := range m.loans {
			if m.loans[i].ID == msg.id {
				if msg.loan != nil && msg.loan.ID == msg.id {
					m.loans[i] = *msg.loan
				}
				m.loans[i].Active = false
			}
		}
		m.statusMsg = fmt.Sprintf("loan #%d returned", msg.id)
		return m, nil

	case tea.KeyMsg:
		if m.busy {
			return m, nil
		}
		m.statusMsg = ""
		m.err = nil
		if !m.form.focused {
			switch key := msg.String(); key {
			case "x":
				return m.returnSelected()
			case "j", "k", "up", "down", "g", "G", "home", "end":
				m.cursor = moveCursor(m.cursor, len(m.loans), key)
				return m, nil
			}
		}
		if m.form.update(msg.String()) == formSubmit {
			return m.lookup()
		}
	}
	return m, nil
}

func (m *returnsScreen) lookup() (screen, tea.Cmd) {
	email := m.form.value(0)
	if email == "" {
		m.statusMsg = "reader email is required"
		return m, nil
	}
	m.email = email
	m.busy = true
	return m, loadLoans(m.env, email)
}

func (m *returnsScreen) returnSelected() (screen, tea.Cmd) {
	if m.cursor >= len(m.loans) {
		return m, nil
	}
	loan := m.loans[m.cursor]
	if !loan.Active {
		m.statusMsg = fmt.Sprintf("loan #%d is already returned", loan.ID)
		return m, nil
	}
	m.busy = true
	c := m.env.client
	return m, func() tea.Msg {
		l, err := c.ReturnLoan(context.Background(), loan.ID, false)
		return loanReturnedMsg{id: loan.ID, loan: l, err: err}
	}
}

func (m *returnsScreen) View() string {
	var b strings.Builder
	b.WriteString("\n " + sectionHeaderStyle.Render("RETURNS") + "\n\n")
	b.WriteString(m.form.View())
	if m.loaded && m.err == nil {
		b.WriteString("\n")
		if len(m.loans) == 0 {
			b.WriteString("  " + dimStyle.Render("no loans for "+m.email) + "\n")
		}
		start, end := listWindow(m.cursor, len(m.loans), m.height-6)
		for i := start; i < end; i++ {
			b.WriteString(loanRow(m.loans[i], !m.form.focused && i == m.cursor) + "\n")
		}
	}
	b.WriteString(statusLine(m.statusMsg, m.err))
	return b.String()
}

func (m *returnsScreen) editing() bool { return m.form.focused }

func (m *returnsScreen) helpKeys() string {
	if !m.form.focused && len(m.loans) > 0 {
		return helpEntry("j/k", "nav") + "  " + helpEntry("x", "mark returned") + "  " + m.form.helpKeys()
	}
	return m.form.helpKeys()
}
