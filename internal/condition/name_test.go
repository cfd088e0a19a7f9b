package condition

import (
	"strings"
	"testing"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		// Happy paths
		{"simple", "blackout", false},
		{"with dash", "web-down", false},
		{"with underscore", "web_down", false},
		{"with dot inside", "svc.web", false},
		{"single char", "x", false},
		{"max length", strings.Repeat("a", MaxNameLen), false},

		// Sad paths
		{"empty", "", true},
		{"too long", strings.Repeat("a", MaxNameLen+1), true},
		{"slash", "a/b", true},
		{"leading slash", "/etc", true},
		{"dot", ".", true},
		{"dotdot", "..", true},
		{"space", "a b", true},
		{"newline", "a\nb", true},
		{"nul", "a\x00b", true},
		{"tab", "a\tb", true},
		{"del", "a\x7fb", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
