package fileserver

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testSlug = "AbCdEfGh"

// newTestServer builds a server over a fresh web root with the slug
// directory created, mirroring how the share session lays it out.
func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	webRoot := t.TempDir()
	sharedDir := filepath.Join(webRoot, testSlug)
	if err := os.Mkdir(sharedDir, 0o700); err != nil {
		t.Fatalf("mkdir shared dir: %v", err)
	}
	return New(webRoot, testSlug, 0, 1000, 1000), sharedDir
}

func expose(t *testing.T, sharedDir, name, content string) string {
	t.Helper()
	src := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(src, []byte(content), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	if err := os.Symlink(src, filepath.Join(sharedDir, name)); err != nil {
		t.Fatalf("symlink: %v", err)
	}
	return src
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestRootAlwaysForbidden(t *testing.T) {
	srv, sharedDir := newTestServer(t)
	expose(t, sharedDir, "report.pdf", "pdf bytes")
	h := srv.Handler()

	for _, path := range []string{"/", "//", "/.", "/" + testSlug + "/.."} {
		if w := get(t, h, path); w.Code != http.StatusForbidden {
			t.Errorf("GET %s = %d, want 403", path, w.Code)
		}
	}
}

func TestSlugRootForbidden(t *testing.T) {
	srv, sharedDir := newTestServer(t)
	expose(t, sharedDir, "report.pdf", "pdf bytes")
	h := srv.Handler()

	for _, path := range []string{"/" + testSlug, "/" + testSlug + "/"} {
		if w := get(t, h, path); w.Code != http.StatusForbidden {
			t.Errorf("GET %s = %d, want 403", path, w.Code)
		}
	}
}

func TestExposedFileBytesUnchanged(t *testing.T) {
	srv, sharedDir := newTestServer(t)
	src := expose(t, sharedDir, "report.pdf", "exact pdf bytes")
	h := srv.Handler()

	w := get(t, h, "/"+testSlug+"/report.pdf")
	if w.Code != http.StatusOK {
		t.Fatalf("GET exposed file = %d, want 200", w.Code)
	}
	want, err := os.ReadFile(src)
	if err != nil {
		t.Fatal(err)
	}
	got, _ := io.ReadAll(w.Body)
	if string(got) != string(want) {
		t.Errorf("served bytes differ from source")
	}
}

func TestHeadExposedFile(t *testing.T) {
	srv, sharedDir := newTestServer(t)
	expose(t, sharedDir, "report.pdf", "pdf bytes")
	h := srv.Handler()

	req := httptest.NewRequest(http.MethodHead, "/"+testSlug+"/report.pdf", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("HEAD = %d, want 200", w.Code)
	}
}

func TestUnknownPathsNotFound(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	for _, path := range []string{"/" + testSlug + "/missing.txt", "/otherdir/x.txt", "/wrongslug/file"} {
		if w := get(t, h, path); w.Code != http.StatusNotFound {
			t.Errorf("GET %s = %d, want 404", path, w.Code)
		}
	}
}

func TestSubdirectoryListingAllowed(t *testing.T) {
	srv, sharedDir := newTestServer(t)
	srcDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(srcDir, "inner.txt"), []byte("inner"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(srcDir, filepath.Join(sharedDir, "docs")); err != nil {
		t.Fatal(err)
	}
	h := srv.Handler()

	w := get(t, h, "/"+testSlug+"/docs/")
	if w.Code != http.StatusOK {
		t.Fatalf("GET exposed dir listing = %d, want 200", w.Code)
	}
	if body, _ := io.ReadAll(w.Body); !strings.Contains(string(body), "inner.txt") {
		t.Errorf("directory index does not list inner.txt")
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv, sharedDir := newTestServer(t)
	expose(t, sharedDir, "report.pdf", "pdf bytes")
	h := srv.Handler()

	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete} {
		req := httptest.NewRequest(method, "/"+testSlug+"/report.pdf", nil)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		if w.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s = %d, want 405", method, w.Code)
		}
	}
}

func TestRateLimiterKicksIn(t *testing.T) {
	webRoot := t.TempDir()
	sharedDir := filepath.Join(webRoot, testSlug)
	if err := os.Mkdir(sharedDir, 0o700); err != nil {
		t.Fatal(err)
	}
	expose(t, sharedDir, "a.txt", "a")
	srv := New(webRoot, testSlug, 0, 1, 2)
	h := srv.Handler()

	limited := false
	for i := 0; i < 10; i++ {
		if w := get(t, h, "/"+testSlug+"/a.txt"); w.Code == http.StatusTooManyRequests {
			limited = true
			break
		}
	}
	if !limited {
		t.Error("rate limiter never returned 429")
	}
}
