// ABOUTME: Unit tests for sync daemon mode
// ABOUTME: Tests interval parsing and minimum-interval enforcement
package cli

import (
	"testing"
	"time"
)

func TestParseInterval(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected time.Duration
		wantErr  bool
	}{
		{
			name:     "valid 1 hour",
			input:    "1h",
			expected: time.Hour,
		},
		{
			name:     "valid 15 minutes",
			input:    "15m",
			expected: 15 * time.Minute,
		},
		{
			name:     "valid 5 minutes (minimum)",
			input:    "5m",
			expected: 5 * time.Minute,
		},
		{
			name:    "invalid 4 minutes (below minimum)",
			input:   "4m",
			wantErr: true,
		},
		{
			name:    "invalid 1 minute",
			input:   "1m",
			wantErr: true,
		},
		{
			name:     "valid 24 hours",
			input:    "24h",
			expected: 24 * time.Hour,
		},
		{
			name:    "invalid format",
			input:   "invalid",
			wantErr: true,
		},
		{
			name:    "empty string",
			input:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseInterval(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error for %q, got %v", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error for %q: %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}
