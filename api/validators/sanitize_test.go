package validators

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSanitizeStringTrimsAndCaps(t *testing.T) {
	if got := SanitizeString("  kadota  ", 10); got != "kadota" {
		t.Fatalf("expected trimmed value, got %q", got)
	}
	if got := SanitizeString("abcdef", 3); got != "abc" {
		t.Fatalf("expected abc, got %q", got)
	}
	if got := SanitizeString("abcdef", 0); got != "abcdef" {
		t.Fatalf("zero cap must not truncate, got %q", got)
	}
}

func TestSanitizeStringKeepsRunesWhole(t *testing.T) {
	name := "أمينة بن علي"
	got := SanitizeString(name, 3)
	if !utf8.ValidString(got) {
		t.Fatalf("truncation produced invalid utf-8: %q", got)
	}
	if got != "أمي" {
		t.Fatalf("expected first three letters, got %q", got)
	}
	if !strings.HasPrefix(name, got) {
		t.Fatalf("expected a prefix of %q, got %q", name, got)
	}
	if got := SanitizeString(name, 50); got != name {
		t.Fatalf("short input must be returned whole, got %q", got)
	}
}
