package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/naveenspark/biblio/pkg/domain"
)

// Shimmer animation for the BIBLIO logo.
type shimmerTickMsg time.Time

func shimmerTickCmd() tea.Cmd {
	return tea.Tick(120*time.Millisecond, func(t time.Time) tea.Msg {
		return shimmerTickMsg(t)
	})
}

// renderShimmerLogo renders "BIBLIO" as a slow wave of lamplight over old paper.
// Dim sepia (#4a3a22) -> warm amber (#f5c56b).
func renderShimmerLogo(frame int) string {
	const text = "BIBLIO"
	n := len(text)

	var out strings.Builder
	t := float64(frame)

	for i := 0; i < n; i++ {
		x := float64(i) / float64(n-1)

		phase := t*0.08 - x*2.5
		b := math.Sin(phase)*0.5 + 0.5
		b = math.Pow(b, 1.4)
		b = b*0.8 + 0.15

		if b > 1.0 {
			b = 1.0
		} else if b < 0.05 {
			b = 0.05
		}

		r := clampByte(74 + b*(245-74))
		g := clampByte(58 + b*(197-58))
		bl := clampByte(34 + b*(107-34))

		s := lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(fmt.Sprintf("#%02X%02X%02X", r, g, bl)))
		out.WriteString(s.Render(string(text[i])))

		if i < n-1 {
			out.WriteString("  ")
		}
	}

	return out.String()
}

func clampByte(v float64) int {
	if v > 255 {
		return 255
	}
	if v < 0 {
		return 0
	}
	return int(v)
}

var (
	// Base styles — reading-room palette
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ece4d4")).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#c8c0b0"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#585048"))

	// Help bar
	helpKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	helpLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#585048"))

	accentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f5c56b"))

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#6cc08b"))

	errStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d06050"))

	sectionHeaderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#786858"))

	inputPromptStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#f5c56b")).
				Bold(true)

	inputPlaceholderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#3c3830"))

	// Surface colors
	borderColor  = lipgloss.Color("#2a2620")
	surfaceColor = lipgloss.Color("#14120e")

	selectedRowBg = lipgloss.NewStyle().Background(lipgloss.Color("#2a2620"))

	// Book type colors
	typeColors = map[string]lipgloss.Color{
		"novela":     lipgloss.Color("#d4a844"),
		"ciencia":    lipgloss.Color("#60a0e0"),
		"historia":   lipgloss.Color("#b080d0"),
		"tecnologia": lipgloss.Color("#3ecce4"),
		"arte":       lipgloss.Color("#e06080"),
		"infantil":   lipgloss.Color("#6cc08b"),
	}

	roleColors = map[domain.Role]lipgloss.Color{
		domain.RoleAdmin:     lipgloss.Color("#e06050"),
		domain.RoleReader:    lipgloss.Color("#60a0e0"),
		domain.RoleAnonymous: lipgloss.Color("#585048"),
	}
)

// TypeStyle returns a bold style colored for the given book type.
func TypeStyle(bookType string) lipgloss.Style {
	if c, ok := typeColors[strings.ToLower(bookType)]; ok {
		return lipgloss.NewStyle().Foreground(c).Bold(true)
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color("#786858")).Bold(true)
}

// RoleBadge returns a short colored badge, e.g. "[ADMIN]".
func RoleBadge(role domain.Role) string {
	return lipgloss.NewStyle().Foreground(roleColors[role]).Bold(true).Render("[" + role.String() + "]")
}

// stateBadge renders a boolean state with the given labels.
func stateBadge(on bool, onLabel, offLabel string) string {
	if on {
		return okStyle.Render(onLabel)
	}
	return errStyle.Render(offLabel)
}

// helpEntry renders a single "key label" pair for help bars.
func helpEntry(key, label string) string {
	return helpKeyStyle.Render(key) + " " + helpLabelStyle.Render(label)
}

// helpView renders the help overlay.
func helpView() string {
	title := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#f5c56b")).
		Bold(true).
		Render("B I B L I O")

	cmdStyle := lipgloss.NewStyle().Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	sectionStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Bold(true)

	commands := []struct{ cmd, desc string }{
		{"biblio", "Open the library (interactive TUI)"},
		{"biblio login <email>", "Log in from the shell"},
		{"biblio logout", "Clear your session"},
		{"biblio whoami", "Show the current session"},
		{"biblio version", "Show version"},
	}
	keys := []struct{ key, desc string }{
		{"1-9", "switch screen"},
		{"esc", "leave a form field"},
		{"L", "log out"},
		{"h", "toggle help"},
		{"q", "quit"},
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n  %s\n\n", title)
	fmt.Fprintf(&b, "  %s\n", sectionStyle.Render("Commands"))
	for _, c := range commands {
		fmt.Fprintf(&b, "    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-22s", c.cmd)), descStyle.Render(c.desc))
	}
	fmt.Fprintf(&b, "\n  %s\n", sectionStyle.Render("Keys"))
	for _, k := range keys {
		fmt.Fprintf(&b, "    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-22s", k.key)), descStyle.Render(k.desc))
	}
	return b.String()
}
