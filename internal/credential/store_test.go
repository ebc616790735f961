package credential

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token")
	s := NewFileStore(path)

	if _, ok, err := s.Load(); err != nil || ok {
		t.Fatalf("Load() on missing file = (ok=%v, err=%v), want (false, nil)", ok, err)
	}

	if err := s.Save("first"); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if err := s.Save("second"); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	raw, ok, err := s.Load()
	if err != nil || !ok || raw != "second" {
		t.Fatalf("Load() = (%q, %v, %v), want (\"second\", true, nil)", raw, ok, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("token file perm = %o, want 600", perm)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the token file in dir, got %d entries", len(entries))
	}
}

func TestFileStoreClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	s := NewFileStore(path)

	if err := s.Clear(); err != nil {
		t.Fatalf("Clear() on missing file error: %v", err)
	}
	if err := s.Save("tok"); err != nil {
		t.Fatal(err)
	}
	if err := s.Clear(); err != nil {
		t.Fatalf("Clear() error: %v", err)
	}
	if _, ok, _ := s.Load(); ok {
		t.Error("Load() after Clear() reported a credential")
	}
}

func TestFileStoreBlankFileIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	if err := os.WriteFile(path, []byte(" \n"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, ok, err := NewFileStore(path).Load(); ok || err != nil {
		t.Errorf("Load() on blank file = (ok=%v, err=%v), want (false, nil)", ok, err)
	}
}

func TestFileStoreTrimsWhitespace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	if err := os.WriteFile(path, []byte("abc.def.ghi\n"), 0600); err != nil {
		t.Fatal(err)
	}
	raw, ok, err := NewFileStore(path).Load()
	if err != nil || !ok || raw != "abc.def.ghi" {
		t.Errorf("Load() = (%q, %v, %v), want (\"abc.def.ghi\", true, nil)", raw, ok, err)
	}
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore("")
	if _, ok, _ := s.Load(); ok {
		t.Error("empty MemoryStore reported a credential")
	}
	s.Save("tok") //nolint:errcheck
	if raw, ok, _ := s.Load(); !ok || raw != "tok" {
		t.Errorf("Load() = (%q, %v), want (\"tok\", true)", raw, ok)
	}
	s.Clear() //nolint:errcheck
	if _, ok, _ := s.Load(); ok {
		t.Error("Load() after Clear() reported a credential")
	}
}
