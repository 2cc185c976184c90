package util

import (
	"testing"
)

const (
	id1 = "sGvgBXbBcVCjBIKCLS2Os"
	id2 = "tHwhCYcCdWDkCJLDMT3Pt"
)

func TestIsNanoid(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"Valid21Chars", id1, true},
		{"Valid21CharsAlt", id2, true},
		{"TooShort", "abc123", false},
		{"TooLong", "sGvgBXbBcVCjBIKCLS2OsX", false},
		{"WithSpace", "sGvgBXbBcVCjBIKCL 2Os", false},
		{"WithComma", "sGvgBXbBcVCjBIKCL,2Os", false},
		{"WithPipe", "sGvgBXbBcVCjBIKCL|2Os", false},
		{"Empty", "", false},
		{"AllDashes", "---------------------", true},
		{"AllUnderscores", "_____________________", true},
		{"MixedValid", "Aa0_-Bb1_-Cc2_-Dd3_-E", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := IsSessionID(tc.in)
			if got != tc.want {
				t.Fatalf("IsSessionID(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestNewSessionID(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id, err := NewSessionID()
		if err != nil {
			t.Fatalf("NewSessionID() error = %v", err)
		}
		if !IsSessionID(id) {
			t.Fatalf("NewSessionID() = %q, not a session id", id)
		}
		if seen[id] {
			t.Fatalf("NewSessionID() repeated %q", id)
		}
		seen[id] = true
	}
}
