package main

import (
	"fmt"
	"io"
	"math/rand/v2"

	"github.com/charmbracelet/lipgloss"
)

var libraryGreetings = [...]string{
	"The stacks are quiet. Your card is not in the slot.",
	"Every shelf has a gap shaped like a returned book.",
	"The catalog remembers every title. It has yet to meet you.",
	"Silence is requested. Logging in is encouraged.",
	"Due dates wait for no one. Neither does the reading room.",
	"The librarian looked up, saw no card, and went back to shelving.",
	"A book on the shelf is a promise. A book on loan is a promise kept.",
	"The returns cart is full. The circulation desk is open.",
}

func printHelp(w io.Writer) {
	title := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#f5c56b")).
		Bold(true).
		Render("B I B L I O")

	quote := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Italic(true).
		Render(`"Ask at the desk. Here is what the desk can do."`)

	cmdStyle := lipgloss.NewStyle().Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	commands := []struct{ cmd, desc string }{
		{"biblio", "Open the library (interactive TUI)"},
		{"biblio login <email>", "Log in; the password is read from stdin"},
		{"biblio logout", "Clear your session"},
		{"biblio whoami", "Show who is logged in"},
		{"biblio version", "Show version"},
		{"biblio help", "You are here"},
	}

	fmt.Fprintf(w, "\n  %s\n\n  %s\n\n  Commands:\n", title, quote)
	for _, c := range commands {
		fmt.Fprintf(w, "    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-22s", c.cmd)), descStyle.Render(c.desc))
	}
	env := lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Render("config: ~/.biblio/config.yaml, BIBLIO_CONFIG, BIBLIO_API_URL")
	fmt.Fprintf(w, "\n  %s\n\n", env)
}

func printGreeting(w io.Writer) {
	msg := libraryGreetings[rand.IntN(len(libraryGreetings))]

	title := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#f5c56b")).
		Bold(true).
		Render("BIBLIO")

	quote := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Italic(true).
		Render(msg)

	hint := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Render("Not logged in. To enter: biblio login <email>")

	fmt.Fprintf(w, "\n%s\n\n%s\n\n%s\n\n", title, quote, hint)
}
