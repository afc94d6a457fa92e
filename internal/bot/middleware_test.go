package bot

import "testing"

func TestCommandWord(t *testing.T) {
	tests := []struct {
		text     string
		expected string
	}{
		{"book 2 2025-03-20 17:30 john", "book"},
		{"PING", "ping"},
		{"  timeslots tomorrow", "timeslots"},
		{"", "handler"},
		{"   ", "handler"},
	}

	for _, tt := range tests {
		if got := CommandWord(tt.text); got != tt.expected {
			t.Errorf("CommandWord(%q) = %q, want %q", tt.text, got, tt.expected)
		}
	}
}
