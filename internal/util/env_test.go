package util

import "testing"

func TestGetEnvInt(t *testing.T) {
	tests := []struct {
		name  string
		value string
		set   bool
		want  int
	}{
		{name: "unset", want: 64},
		{name: "valid", value: "12", set: true, want: 12},
		{name: "padded", value: " 7 ", set: true, want: 7},
		{name: "malformed", value: "lots", set: true, want: 64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.set {
				t.Setenv("EXPLORER_TEST_INT", tt.value)
			}
			if got := GetEnvInt("EXPLORER_TEST_INT", 64); got != tt.want {
				t.Fatalf("GetEnvInt() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestGetEnvBool(t *testing.T) {
	t.Setenv("EXPLORER_TEST_BOOL", "yes")
	if got := GetEnvBool("EXPLORER_TEST_BOOL", true); !got {
		t.Fatalf("GetEnvBool() with unknown value = %v, want default", got)
	}
	t.Setenv("EXPLORER_TEST_BOOL", "false")
	if got := GetEnvBool("EXPLORER_TEST_BOOL", true); got {
		t.Fatalf("GetEnvBool(false) = %v", got)
	}
}

func TestGetEnvNumeric(t *testing.T) {
	if got := GetEnvNumeric("EXPLORER_TEST_NUMERIC", 10); got != 10 {
		t.Fatalf("GetEnvNumeric() unset = %v, want 10", got)
	}
	t.Setenv("EXPLORER_TEST_NUMERIC", "2.5")
	if got := GetEnvNumeric("EXPLORER_TEST_NUMERIC", 10); got != 2.5 {
		t.Fatalf("GetEnvNumeric() = %v, want 2.5", got)
	}
	t.Setenv("EXPLORER_TEST_NUMERIC", "soon")
	if got := GetEnvNumeric("EXPLORER_TEST_NUMERIC", 10); got != 10 {
		t.Fatalf("GetEnvNumeric() malformed = %v, want 10", got)
	}
}
