package tui

import (
	"strings"
	"unicode/utf8"
)

// maxInputLen is the maximum number of runes allowed in form inputs.
const maxInputLen = 512

// editRune processes a keystroke for inline text editing.
// Handles backspace (rune-aware) and single printable characters.
// Returns the text unchanged for non-printable keys (enter, esc, etc.).
// Input is clamped to maxInputLen runes.
func editRune(text string, key string) string {
	switch key {
	case "backspace":
		if len(text) > 0 {
			runes := []rune(text)
			return string(runes[:len(runes)-1])
		}
		return text
	case "space":
		key = " "
	}
	if utf8.RuneCountInString(key) == 1 {
		if utf8.RuneCountInString(text) >= maxInputLen {
			return text
		}
		return text + key
	}
	return text
}

// truncateToHeight limits output to maxLines newline-delimited lines.
// Returns the original string if it fits or maxLines is <= 0.
func truncateToHeight(s string, maxLines int) string {
	if maxLines <= 0 {
		return s
	}
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			n++
			if n >= maxLines {
				return s[:i+1]
			}
		}
	}
	return s
}

// formField is one labelled input. A field with choices is cycled with
// left/right instead of typed into.
type formField struct {
	label       string
	value       string
	placeholder string
	secret      bool
	optional    bool
	choices     []string
}

// form is a vertical list of fields with a single focus. A blurred form
// lets global keys through; enter or i focuses it again.
type form struct {
	fields  []formField
	focus   int
	focused bool
}

type formEvent int

const (
	formNone formEvent = iota
	formSubmit
	formBlur
)

func newForm(fields ...formField) form {
	for i := range fields {
		if len(fields[i].choices) > 0 && fields[i].value == "" {
			fields[i].value = fields[i].choices[0]
		}
	}
	return form{fields: fields, focused: true}
}

// update applies key to the form. Enter on the last field or ctrl+s submits.
func (f *form) update(key string) formEvent {
	if !f.focused {
		if key == "enter" || key == "i" {
			f.focused = true
		}
		return formNone
	}
	n := len(f.fields)
	if n == 0 {
		return formNone
	}
	switch key {
	case "esc":
		f.focused = false
		return formBlur
	case "ctrl+s":
		return formSubmit
	case "tab", "down":
		f.focus = (f.focus + 1) % n
	case "shift+tab", "up":
		f.focus = (f.focus - 1 + n) % n
	case "enter":
		if f.focus == n-1 {
			return formSubmit
		}
		f.focus++
	case "left", "right":
		fld := &f.fields[f.focus]
		if len(fld.choices) == 0 {
			return formNone
		}
		idx := 0
		for i, c := range fld.choices {
			if c == fld.value {
				idx = i
				break
			}
		}
		if key == "right" {
			idx = (idx + 1) % len(fld.choices)
		} else {
			idx = (idx - 1 + len(fld.choices)) % len(fld.choices)
		}
		fld.value = fld.choices[idx]
	default:
		fld := &f.fields[f.focus]
		if len(fld.choices) == 0 {
			fld.value = editRune(fld.value, key)
		}
	}
	return formNone
}

// value returns the trimmed value of field i.
func (f form) value(i int) string {
	return strings.TrimSpace(f.fields[i].value)
}

// missing returns the label of the first required field left blank.
func (f form) missing() string {
	for i, fld := range f.fields {
		if !fld.optional && f.value(i) == "" {
			return fld.label
		}
	}
	return ""
}

// reset clears typed values and focuses the first field. Choice fields
// return to their first choice.
func (f *form) reset() {
	for i := range f.fields {
		f.fields[i].value = ""
		if len(f.fields[i].choices) > 0 {
			f.fields[i].value = f.fields[i].choices[0]
		}
	}
	f.focus = 0
	f.focused = true
}

func (f form) View() string {
	width := 0
	for _, fld := range f.fields {
		if w := utf8.RuneCountInString(fld.label); w > width {
			width = w
		}
	}

	var b strings.Builder
	for i, fld := range f.fields {
		active := f.focused && i == f.focus
		label := fld.label + strings.Repeat(" ", width-utf8.RuneCountInString(fld.label))
		if active {
			b.WriteString("  " + inputPromptStyle.Render("> ") + selectedStyle.Render(label) + "  ")
		} else {
			b.WriteString("    " + dimStyle.Render(label) + "  ")
		}

		val := fld.value
		if fld.secret {
			val = strings.Repeat("•", utf8.RuneCountInString(val))
		}
		switch {
		case len(fld.choices) > 0:
			b.WriteString(accentStyle.Render("‹ ") + TypeStyle(val).Render(val) + accentStyle.Render(" ›"))
		case val == "":
			b.WriteString(inputPlaceholderStyle.Render(fld.placeholder))
		case active:
			b.WriteString(normalStyle.Render(val))
		default:
			b.WriteString(dimStyle.Render(val))
		}
		if active && len(fld.choices) == 0 {
			b.WriteString(accentStyle.Render("█"))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (f form) helpKeys() string {
	if !f.focused {
		return helpEntry("enter", "edit")
	}
	return helpEntry("tab", "next") + "  " + helpEntry("enter", "submit") + "  " + helpEntry("esc", "leave form")
}
