// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jsax_test

import (
	"testing"

	"github.com/creachadair/jsax"
	"github.com/google/go-cmp/cmp"
)

func TestQuote(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"Empty", "", `""`},
		{"Plain", "hello", `"hello"`},
		{"QuoteAndBackslash", `a"b\c`, `"a\"b\\c"`},
		{"ControlChars", "\t\n\r\b\f", `"\t\n\r\b\f"`},
		{"OtherControl", "\x01", `"\u0001"`},
		{"Unicode", "héllo", `"héllo"`},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := jsax.Quote(test.input); got != test.want {
				t.Errorf("Quote(%q) = %s, want %s", test.input, got, test.want)
			}
		})
	}
}

func TestUnquote(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"Empty", `""`, ""},
		{"Plain", `"hello"`, "hello"},
		{"Escapes", `"a\"b\\c"`, `a"b\c`},
		{"ControlEscapes", `"\t\n\r\b\f"`, "\t\n\r\b\f"},
		{"Unicode", `"é"`, "é"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := jsax.Unquote(test.input)
			if err != nil {
				t.Fatalf("Unquote(%q): %v", test.input, err)
			}
			if diff := cmp.Diff(test.want, string(got)); diff != "" {
				t.Errorf("Unquote(%q) mismatch (-want +got):\n%s", test.input, diff)
			}
		})
	}
}

func TestUnquoteRejectsMissingQuotes(t *testing.T) {
	for _, input := range []string{"", `"`, "hello", `"hello`, `hello"`} {
		if _, err := jsax.Unquote(input); err == nil {
			t.Errorf("Unquote(%q): want error, got nil", input)
		}
	}
}

func TestQuoteUnquoteRoundTrip(t *testing.T) {
	for _, s := range []string{"", "hello", `with "quotes" and \backslash`, "line1\nline2", "héllo wörld"} {
		got, err := jsax.Unquote(jsax.Quote(s))
		if err != nil {
			t.Fatalf("Unquote(Quote(%q)): %v", s, err)
		}
		if string(got) != s {
			t.Errorf("round trip of %q produced %q", s, got)
		}
	}
}
