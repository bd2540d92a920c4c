package utils

import "testing"

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "abc", 0},
		{"abc", "abd", 1},
		{"push", "pus", 1},
		{"lenght", "length", 2},
		{"kitten", "sitting", 3},
	}
	for _, tt := range tests {
		if got := Levenshtein(tt.a, tt.b); got != tt.want {
			t.Errorf("Levenshtein(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestClosestMatch(t *testing.T) {
	methods := []string{"push", "pop", "length", "contains"}
	if got := ClosestMatch("lenght", methods); got != "length" {
		t.Errorf("expected 'length', got %q", got)
	}
	if got := ClosestMatch("zzzzzz", methods); got != "" {
		t.Errorf("expected no suggestion, got %q", got)
	}
}
