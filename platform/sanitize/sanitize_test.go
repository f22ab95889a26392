package sanitize

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestMessage_StripsControlCharacters(t *testing.T) {
	got := Message("ac\x00 is\x1b broken\ttoday\n", 0)
	if got != "ac is broken\ttoday" {
		t.Fatalf("unexpected result: %q", got)
	}
}

func TestMessage_StripsHTML(t *testing.T) {
	got := Message("<b>AC</b> broken &amp; leaking", 0)
	if got != "AC broken & leaking" {
		t.Fatalf("unexpected result: %q", got)
	}
}

func TestMessage_TruncatesOnRuneBoundary(t *testing.T) {
	// "é" is two bytes; a byte-boundary cut at 5 would split it.
	got := Message("abcdéf", 5)
	if !utf8.ValidString(got) {
		t.Fatalf("truncation produced invalid UTF-8: %q", got)
	}
	if !strings.HasPrefix(got, "abcd") || !strings.HasSuffix(got, "... [truncated]") {
		t.Fatalf("unexpected truncation: %q", got)
	}
	if strings.Contains(strings.TrimSuffix(got, "... [truncated]"), "�") {
		t.Fatalf("truncation left a replacement rune: %q", got)
	}

	whole := Message("short", 100)
	if whole != "short" {
		t.Fatalf("text under the cap must pass through, got %q", whole)
	}
}
