package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/biblio/pkg/domain"
)

// catalogScreen lists titles, filtered by type or searched by title, and
// shows the copies of the selected title.
type catalogScreen struct {
	env       env
	books     []domain.Book
	cursor    int
	types     []string // distinct types of the unfiltered catalog
	typeIdx   int      // 0 = all types, i = types[i-1]
	search    string
	searching bool
	loading   bool
	err       error
	detail    bool
	copies    []domain.BookCopy
	copiesErr error
	statusMsg string
	width     int
	height    int
}

type booksLoadedMsg struct {
	books []domain.Book
	all   bool // unfiltered listing; refreshes the type filter
	err   error
}

type copiesLoadedMsg struct {
	title  string
	copies []domain.BookCopy
	err    error
}

type copyResultMsg struct{ err error }

type coverOpenedMsg struct {
	path string
	err  error
}

func newCatalogScreen(e env) *catalogScreen {
	return &catalogScreen{env: e, loading: true}
}

func (m *catalogScreen) Init() tea.Cmd {
	return m.loadBooks()
}

func (m *catalogScreen) typeFilter() string {
	if m.typeIdx <= 0 || m.typeIdx > len(m.types) {
		return ""
	}
	return m.types[m.typeIdx-1]
}

// distinctTypes returns the book types in order of first appearance.
func distinctTypes(books []domain.Book) []string {
	seen := make(map[string]bool, len(books))
	var out []string
	for _, b := range books {
		if b.Type == "" || seen[b.Type] {
			continue
		}
		seen[b.Type] = true
		out = append(out, b.Type)
	}
	return out
}

func (m *catalogScreen) loadBooks() tea.Cmd {
	c := m.env.client
	search, bookType := strings.TrimSpace(m.search), m.typeFilter()
	return func() tea.Msg {
		var books []domain.Book
		var err error
		switch {
		case search != "":
			books, err = c.FindBooksByTitle(context.Background(), search)
		case bookType != "":
			books, err = c.ListBooksByType(context.Background(), bookType)
		default:
			books, err = c.ListBooks(context.Background())
		}
		return booksLoadedMsg{books: books, all: search == "" && bookType == "", err: err}
	}
}

func (m *catalogScreen) loadCopies(title string) tea.Cmd {
	c := m.env.client
	return func() tea.Msg {
		copies, err := c.ListCopiesByTitle(context.Background(), title)
		return copiesLoadedMsg{title: title, copies: copies, err: err}
	}
}

func (m *catalogScreen) selected() (domain.Book, bool) {
	if m.cursor < 0 || m.cursor >= len(m.books) {
		return domain.Book{}, false
	}
	return m.books[m.cursor], true
}

func (m *catalogScreen) Update(msg tea.Msg) (screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case booksLoadedMsg:
		m.loading = false
		m.books = msg.books
		m.err = msg.err
		if msg.all && msg.err == nil {
			current := m.typeFilter()
			m.types = distinctTypes(msg.books)
			m.typeIdx = 0
			for i, t := range m.types {
				if t == current {
					m.typeIdx = i + 1
				}
			}
		}
		if m.cursor >= len(m.books) {
			m.cursor = 0
		}
		return m, nil

	case copiesLoadedMsg:
		if b, ok := m.selected(); !ok || b.Title != msg.title {
			return m, nil
		}
		m.copies = msg.copies
		m.copiesErr = msg.err
		return m, nil

	case copyResultMsg:
		if msg.err != nil {
			m.statusMsg = "copy failed: " + msg.err.Error()
		} else {
			m.statusMsg = "copied to clipboard"
		}
		return m, nil

	case coverOpenedMsg:
		if msg.err != nil {
			m.statusMsg = "could not open cover: " + msg.err.Error()
		} else {
			m.statusMsg = "cover opened from " + msg.path
		}
		return m, nil

	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m *catalogScreen) updateSearch(msg tea.KeyMsg) (screen, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.searching = false
		return m, nil
	case "enter":
		m.searching = false
		m.loading = true
		m.cursor = 0
		m.detail = false
		return m, m.loadBooks()
	default:
		m.search = editRune(m.search, msg.String())
	}
	return m, nil
}

func (m *catalogScreen) updateKeys(msg tea.KeyMsg) (screen, tea.Cmd) {
	m.statusMsg = ""
	key := msg.String()

	if m.detail {
		switch key {
		case "esc", "backspace":
			m.detail = false
			m.copies = nil
			m.copiesErr = nil
		case "c":
			return m, m.copyTitle()
		case "o":
			return m, m.viewCover()
		}
		return m, nil
	}

	switch key {
	case "/":
		m.searching = true
	case "esc":
		if m.search != "" {
			m.search = ""
			m.loading = true
			m.cursor = 0
			return m, m.loadBooks()
		}
	case "t":
		if len(m.types) == 0 {
			return m, nil
		}
		m.typeIdx = (m.typeIdx + 1) % (len(m.types) + 1)
		m.search = ""
		m.loading = true
		m.cursor = 0
		return m, m.loadBooks()
	case "r":
		m.loading = true
		return m, m.loadBooks()
	case "c":
		return m, m.copyTitle()
	case "enter":
		if b, ok := m.selected(); ok {
			m.detail = true
			m.copies = nil
			m.copiesErr = nil
			return m, m.loadCopies(b.Title)
		}
	default:
		m.cursor = moveCursor(m.cursor, len(m.books), key)
	}
	return m, nil
}

func (m *catalogScreen) copyTitle() tea.Cmd {
	b, ok := m.selected()
	if !ok {
		return nil
	}
	text := b.Title
	return func() tea.Msg {
		return copyResultMsg{err: copyToClipboard(text)}
	}
}

func (m *catalogScreen) viewCover() tea.Cmd {
	b, ok := m.selected()
	if !ok || b.Image64 == "" {
		return nil
	}
	return func() tea.Msg {
		path, err := openCover(b.ID, b.Image64)
		return coverOpenedMsg{path: path, err: err}
	}
}

func (m *catalogScreen) View() string {
	if m.detail {
		return m.viewDetail()
	}

	var b strings.Builder
	b.WriteString("\n " + sectionHeaderStyle.Render("CATALOG"))
	b.WriteString("  " + dimStyle.Render("type ") + m.viewTypeFilter() + "\n")

	switch {
	case m.searching:
		b.WriteString(" " + accentStyle.Render("/ "+m.search+"█") + "\n")
	case m.search != "":
		b.WriteString(" " + accentStyle.Render("/ "+m.search) + "\n")
	default:
		b.WriteString(" " + dimStyle.Render("/ search by title...") + "\n")
	}
	b.WriteString("\n")

	switch {
	case m.loading:
		b.WriteString("  " + dimStyle.Render("loading catalog...") + "\n")
	case m.err != nil:
		b.WriteString("  " + errStyle.Render("could not load catalog: "+errText(m.err)) + "\n")
	case len(m.books) == 0:
		b.WriteString("  " + dimStyle.Render("no books found") + "\n")
	default:
		start, end := listWindow(m.cursor, len(m.books), m.height-5)
		for i := start; i < end; i++ {
			b.WriteString(m.viewRow(i) + "\n")
		}
	}

	if m.statusMsg != "" {
		b.WriteString("\n  " + accentStyle.Render(m.statusMsg) + "\n")
	}
	return b.String()
}

func (m *catalogScreen) viewTypeFilter() string {
	if t := m.typeFilter(); t != "" {
		return TypeStyle(t).Render(t)
	}
	return normalStyle.Render("all")
}

func (m *catalogScreen) viewRow(i int) string {
	book := m.books[i]
	titleWidth := 40
	if m.width > 0 && m.width < 80 {
		titleWidth = m.width / 2
	}
	title := fmt.Sprintf("%-*s", titleWidth, truncate(book.Title, titleWidth))
	row := " " + TypeStyle(book.Type).Render(fmt.Sprintf("%-10s", truncate(book.Type, 10))) + " "
	if i == m.cursor {
		row = accentStyle.Render("›") + row + selectedStyle.Render(title)
	} else {
		row = " " + row + normalStyle.Render(title)
	}
	return row + "  " + metaStyle.Render(book.Author)
}

func (m *catalogScreen) viewDetail() string {
	book, ok := m.selected()
	if !ok {
		return ""
	}
	var b strings.Builder
	b.WriteString("\n " + selectedStyle.Render(book.Title) + "\n")
	b.WriteString(" " + dimStyle.Render("by "+book.Author) + "  " + TypeStyle(book.Type).Render(book.Type) + "\n")
	if book.Image64 != "" {
		b.WriteString(" " + metaStyle.Render("cover on file, press o to view") + "\n")
	}
	b.WriteString("\n " + sectionHeaderStyle.Render("COPIES") + "\n")

	switch {
	case m.copiesErr != nil:
		b.WriteString("  " + errStyle.Render("could not load copies: "+errText(m.copiesErr)) + "\n")
	case m.copies == nil:
		b.WriteString("  " + dimStyle.Render("loading...") + "\n")
	case len(m.copies) == 0:
		b.WriteString("  " + dimStyle.Render("no copies registered") + "\n")
	default:
		available := 0
		for _, c := range m.copies {
			if c.Available {
				available++
			}
			b.WriteString(fmt.Sprintf("  %s  %s\n", metaStyle.Render(fmt.Sprintf("#%-5d", c.ID)), stateBadge(c.Available, "available", "on loan")))
		}
		b.WriteString("\n  " + dimStyle.Render(fmt.Sprintf("%d of %d available", available, len(m.copies))) + "\n")
	}

	if m.statusMsg != "" {
		b.WriteString("\n  " + accentStyle.Render(m.statusMsg) + "\n")
	}
	return b.String()
}

func (m *catalogScreen) editing() bool { return m.searching }

func (m *catalogScreen) helpKeys() string {
	switch {
	case m.searching:
		return helpEntry("enter", "search") + "  " + helpEntry("esc", "cancel")
	case m.detail:
		return helpEntry("c", "copy title") + "  " + helpEntry("o", "cover") + "  " + helpEntry("esc", "back")
	}
	return helpEntry("j/k", "nav") + "  " + helpEntry("enter", "copies") + "  " + helpEntry("/", "search") + "  " +
		helpEntry("t", "type") + "  " + helpEntry("c", "copy") + "  " + helpEntry("r", "refresh")
}
