// Package browser hands files and URLs to the desktop's default viewer.
package browser

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

var (
	// ErrNoCover is returned by WriteCover for a book without an image.
	ErrNoCover = errors.New("book has no cover")
	// ErrCoverType is returned by EncodeCover for anything but JPEG or PNG.
	ErrCoverType = errors.New("cover must be a JPEG or PNG image")
)

// start launches the platform opener. Swapped out in tests.
var start = func(name string, args ...string) error {
	return exec.Command(name, args...).Start()
}

// Open opens target, a URL or file path, with the default application.
func Open(target string) error {
	switch runtime.GOOS {
	case "darwin":
		return start("open", target)
	case "linux":
		return start("xdg-open", target)
	case "windows":
		return start("rundll32", "url.dll,FileProtocolHandler", target)
	default:
		return fmt.Errorf("unsupported OS: %s", runtime.GOOS)
	}
}

var coverExt = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
	"image/bmp":  ".bmp",
}

// EncodeCover returns data as a data URL, the form the web client stores
// and renders directly.
func EncodeCover(data []byte) (string, error) {
	mime := http.DetectContentType(data)
	if mime != "image/jpeg" && mime != "image/png" {
		return "", ErrCoverType
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// WriteCover decodes a base64 cover, optionally wrapped in a data URL, into
// dir and returns the file path. The extension follows the sniffed type.
func WriteCover(dir string, bookID int64, image64 string) (string, error) {
	image64 = strings.TrimSpace(image64)
	if image64 == "" {
		return "", ErrNoCover
	}
	if strings.HasPrefix(image64, "data:") {
		if i := strings.Index(image64, ","); i >= 0 {
			image64 = image64[i+1:]
		}
	}
	data, err := base64.StdEncoding.DecodeString(image64)
	if err != nil {
		return "", fmt.Errorf("browser.WriteCover: decode: %w", err)
	}

	ext, ok := coverExt[http.DetectContentType(data)]
	if !ok {
		ext = ".img"
	}
	path := filepath.Join(dir, fmt.Sprintf("biblio-cover-%d%s", bookID, ext))
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("browser.WriteCover: %w", err)
	}
	return path, nil
}

// OpenCover writes the cover to the temp dir and opens it.
func OpenCover(bookID int64, image64 string) (string, error) {
	path, err := WriteCover(os.TempDir(), bookID, image64)
	if err != nil {
		return "", err
	}
	return path, Open(path)
}
