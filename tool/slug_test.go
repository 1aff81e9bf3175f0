package tool

import (
	"strings"
	"testing"
)

func TestGenerateSlugShape(t *testing.T) {
	for i := 0; i < 100; i++ {
		slug := GenerateSlug()
		if len(slug) != 8 {
			t.Fatalf("slug %q has length %d, want 8", slug, len(slug))
		}
		for _, r := range slug {
			if !strings.ContainsRune(slugAlphabet, r) {
				t.Fatalf("slug %q contains %q outside [A-Za-z]", slug, r)
			}
		}
	}
}

func TestGenerateSlugVaries(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 50; i++ {
		seen[GenerateSlug()] = struct{}{}
	}
	// 52^8 possibilities; any repeat in 50 draws means a broken source
	if len(seen) != 50 {
		t.Errorf("only %d distinct slugs out of 50", len(seen))
	}
}

func TestEncodePublicName(t *testing.T) {
	cases := map[string]string{
		"report.pdf":    "report.pdf",
		"my report.pdf": "my%20report.pdf",
		"a+b.txt":       "a+b.txt",
	}
	for in, want := range cases {
		if got := EncodePublicName(in); got != want {
			t.Errorf("EncodePublicName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestBuildPublicURL(t *testing.T) {
	got := BuildPublicURL("http://abc.b32.i2p", "AbCdEfGh", "report.pdf")
	if got != "http://abc.b32.i2p/AbCdEfGh/report.pdf" {
		t.Errorf("BuildPublicURL = %q", got)
	}
}
