package language_test

import (
	"testing"

	"murmur/internal/language"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"en-US", "en-US"},
		{"en_US.UTF-8", "en-US"},
		{"EN", "en"},
		{"pt_BR", "pt-BR"},
		{"de_DE@euro", "de-DE"},
	}
	for _, tc := range cases {
		got, err := language.Normalize(tc.in)
		if err != nil {
			t.Errorf("Normalize(%q) failed: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "   ", "!!"} {
		if _, err := language.Normalize(in); err == nil {
			t.Errorf("expected error for %q", in)
		}
	}
}

func TestBase(t *testing.T) {
	got, err := language.Base("en_US.UTF-8")
	if err != nil {
		t.Fatalf("Base failed: %v", err)
	}
	if got != "en" {
		t.Errorf("Base = %q, want en", got)
	}
}

func TestMatches(t *testing.T) {
	supported := []string{"en", "es", "fr", "de"}
	if !language.Matches("en-US", supported) {
		t.Error("en-US should match supported en")
	}
	if !language.Matches("fr", supported) {
		t.Error("fr should match supported fr")
	}
	if language.Matches("ja-JP", supported) {
		t.Error("ja-JP should not match")
	}
	if language.Matches("en", nil) {
		t.Error("empty supported set should never match")
	}
}

func TestSystemDefault(t *testing.T) {
	t.Setenv("LC_ALL", "")
	t.Setenv("LC_MESSAGES", "")
	t.Setenv("LANG", "fr_FR.UTF-8")
	if got := language.SystemDefault(); got != "fr-FR" {
		t.Errorf("SystemDefault = %q, want fr-FR", got)
	}

	t.Setenv("LANG", "C")
	if got := language.SystemDefault(); got != "en-US" {
		t.Errorf("SystemDefault with C locale = %q, want en-US", got)
	}
}
