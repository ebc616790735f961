package tui

import (
	"errors"
	"net/http"

	"github.com/atotto/clipboard"

	"github.com/naveenspark/biblio/internal/browser"
	"github.com/naveenspark/biblio/pkg/client"
)

// Desktop hooks, swapped out in tests.
var (
	copyToClipboard = clipboard.WriteAll
	openCover       = browser.OpenCover
)

// errText renders err for a status line. Backend messages are shown as
// sent; a 401 or 403 gets a fixed hint.
func errText(err error) string {
	var httpErr *client.HTTPError
	if errors.As(err, &httpErr) {
		switch httpErr.StatusCode {
		case http.StatusUnauthorized:
			return "not logged in"
		case http.StatusForbidden:
			return "not allowed"
		}
		if httpErr.Message != "" {
			return httpErr.Message
		}
		return http.StatusText(httpErr.StatusCode)
	}
	return err.Error()
}

// moveCursor applies j/k style navigation to cursor within n items.
func moveCursor(cursor, n int, key string) int {
	switch key {
	case "j", "down":
		if cursor < n-1 {
			return cursor + 1
		}
	case "k", "up":
		if cursor > 0 {
			return cursor - 1
		}
	case "g", "home":
		return 0
	case "G", "end":
		if n > 0 {
			return n - 1
		}
	}
	return cursor
}

// listWindow returns the [start, end) range of n rows to show so that
// cursor stays visible in height rows.
func listWindow(cursor, n, height int) (int, int) {
	if height <= 0 || n <= height {
		return 0, n
	}
	start := cursor - height/2
	if start < 0 {
		start = 0
	}
	if start+height > n {
		start = n - height
	}
	return start, start + height
}

// truncate shortens s to width runes, adding an ellipsis.
func truncate(s string, width int) string {
	r := []rune(s)
	if width <= 0 || len(r) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return string(r[:width-1]) + "…"
}
