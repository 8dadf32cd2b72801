// Package textx contains tests for the text utilities.
package textx

import (
	"testing"
	"unicode/utf8"
)

func TestSanitizeText(t *testing.T) {
	in := "he\x00llo\nwo\x7frld\t!"
	got := SanitizeText(in)
	if got != "hello\nworld\t!" {
		t.Fatalf("unexpected: %q", got)
	}
}

func TestTruncateRunes(t *testing.T) {
	cases := []struct {
		in   string
		n    int
		want string
	}{
		{"hello", 10, "hello"},
		{"hello", 5, "hello"},
		{"hello", 3, "hel…"},
		{"负责后端开发", 3, "负责后…"},
		{"负责go开发", 4, "负责go…"},
		{"anything", 0, ""},
		{"", 3, ""},
	}
	for _, c := range cases {
		got := TruncateRunes(c.in, c.n)
		if got != c.want {
			t.Fatalf("TruncateRunes(%q, %d) = %q, want %q", c.in, c.n, got, c.want)
		}
		// a cut must never leave a split multi-byte rune behind
		if !utf8.ValidString(got) {
			t.Fatalf("TruncateRunes(%q, %d) produced invalid UTF-8: %q", c.in, c.n, got)
		}
	}
}
