package exposure

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	sharedDir := t.TempDir()
	return NewStore(sharedDir), sharedDir
}

func writeSource(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	return path
}

func TestExposeCreatesLink(t *testing.T) {
	store, sharedDir := newTestStore(t)
	src := writeSource(t, t.TempDir(), "report.pdf", "pdf bytes")

	entry, err := store.Expose(src)
	if err != nil {
		t.Fatalf("Expose: %v", err)
	}
	if entry.PublicName != "report.pdf" {
		t.Errorf("PublicName = %q, want report.pdf", entry.PublicName)
	}
	if entry.URL != "report.pdf" {
		t.Errorf("URL suffix = %q, want report.pdf", entry.URL)
	}

	link := filepath.Join(sharedDir, "report.pdf")
	target, err := os.Readlink(link)
	if err != nil {
		t.Fatalf("Readlink: %v", err)
	}
	if target != src {
		t.Errorf("link target = %q, want %q", target, src)
	}
	data, err := os.ReadFile(link)
	if err != nil {
		t.Fatalf("read through link: %v", err)
	}
	if string(data) != "pdf bytes" {
		t.Errorf("bytes through link = %q", data)
	}
}

func TestExposePercentEncodesName(t *testing.T) {
	store, _ := newTestStore(t)
	src := writeSource(t, t.TempDir(), "my report.pdf", "x")

	entry, err := store.Expose(src)
	if err != nil {
		t.Fatalf("Expose: %v", err)
	}
	if entry.URL != "my%20report.pdf" {
		t.Errorf("URL suffix = %q, want my%%20report.pdf", entry.URL)
	}
}

func TestExposeMissingSource(t *testing.T) {
	store, _ := newTestStore(t)
	if _, err := store.Expose(filepath.Join(t.TempDir(), "nope.txt")); err == nil {
		t.Fatal("Expose of missing path should fail")
	}
}

func TestExposeDirectory(t *testing.T) {
	store, sharedDir := newTestStore(t)
	srcDir := t.TempDir()
	writeSource(t, srcDir, "inner.txt", "inner")

	entry, err := store.Expose(srcDir)
	if err != nil {
		t.Fatalf("Expose directory: %v", err)
	}
	through := filepath.Join(sharedDir, entry.PublicName, "inner.txt")
	data, err := os.ReadFile(through)
	if err != nil {
		t.Fatalf("read through directory link: %v", err)
	}
	if string(data) != "inner" {
		t.Errorf("bytes = %q", data)
	}
}

func TestNameConflictKeepsFirstExposure(t *testing.T) {
	store, sharedDir := newTestStore(t)
	first := writeSource(t, t.TempDir(), "notes.txt", "first")
	second := writeSource(t, t.TempDir(), "notes.txt", "second")

	if _, err := store.Expose(first); err != nil {
		t.Fatalf("first Expose: %v", err)
	}
	_, err := store.Expose(second)
	if !errors.Is(err, ErrNameConflict) {
		t.Fatalf("second Expose err = %v, want ErrNameConflict", err)
	}

	data, err := os.ReadFile(filepath.Join(sharedDir, "notes.txt"))
	if err != nil {
		t.Fatalf("first exposure gone: %v", err)
	}
	if string(data) != "first" {
		t.Errorf("first exposure replaced, got %q", data)
	}
	if store.Len() != 1 {
		t.Errorf("Len = %d, want 1", store.Len())
	}
}

func TestClearAllRemovesLinksOnly(t *testing.T) {
	store, sharedDir := newTestStore(t)
	srcDir := t.TempDir()
	a := writeSource(t, srcDir, "a.txt", "a")
	b := writeSource(t, srcDir, "b.txt", "b")
	for _, p := range []string{a, b} {
		if _, err := store.Expose(p); err != nil {
			t.Fatalf("Expose %s: %v", p, err)
		}
	}

	if err := store.ClearAll(); err != nil {
		t.Fatalf("ClearAll: %v", err)
	}
	left, err := os.ReadDir(sharedDir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(left) != 0 {
		t.Errorf("shared dir still has %d entries", len(left))
	}
	if store.Len() != 0 {
		t.Errorf("Len = %d, want 0", store.Len())
	}
	// sources survive
	for _, p := range []string{a, b} {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("source %s touched: %v", p, err)
		}
	}
	// name is reusable after clearing
	if _, err := store.Expose(a); err != nil {
		t.Errorf("re-Expose after ClearAll: %v", err)
	}
}
