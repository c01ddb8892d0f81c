package logging

import "testing"

func TestMaskToken(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		expected string
	}{
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
		{"short token", "abc123", "***"},
		{"exactly eight", "12345678", "***"},
		{"long token", "gumr_live_abcdef123456", "gum***456"},
		{"trims before masking", "  gumr_live_abcdef123456  ", "gum***456"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MaskToken(tt.in); got != tt.expected {
				t.Errorf("MaskToken(%q) = %q, want %q", tt.in, got, tt.expected)
			}
		})
	}
}

func TestNew_LevelParsing(t *testing.T) {
	// all spellings must yield a usable logger
	for _, level := range []string{"debug", "info", "WARN", "warning", "Error", "bogus", ""} {
		if log := New(level); log == nil {
			t.Fatalf("New(%q) returned nil", level)
		}
	}
}
