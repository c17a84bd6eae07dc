package cmd

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestValidateFlagPath_EdgeCases tests additional edge cases not covered
// in the main validation tests.
func TestValidateFlagPath_EdgeCases(t *testing.T) {
	tests := []struct {
		name        string
		path        string
		expectError bool
		errorType   string
	}{
		// Unicode and encoding edge cases
		{
			name:        "unicode null character",
			path:        "calc\x00.yml",
			expectError: false, // Control chars not explicitly blocked here
		},
		{
			name:        "unicode homoglyph cyrillic",
			path:        "cаlc.yml", // 'а' is cyrillic
			expectError: false,      // Unicode homoglyphs not blocked
		},
		{
			name:        "unicode zero-width space",
			path:        "ca​lc.yml",
			expectError: false, // Zero-width chars not blocked
		},

		// Path shape edge cases
		{
			name:        "extremely long path",
			path:        strings.Repeat("a", 4096) + ".yml",
			expectError: false, // Long paths not explicitly blocked
		},
		{
			name:        "windows style separators",
			path:        "runs\\fe2o3\\calc.yml",
			expectError: false, // Backslash passes through to the filesystem
		},
		{
			name:        "path with spaces and tabs",
			path:        "calc with spaces\t.yml",
			expectError: false, // Whitespace not blocked
		},
		{
			name:        "path with newline",
			path:        "calc\n.yml",
			expectError: false, // Newlines not explicitly blocked
		},
		{
			name:        "relative parent reference",
			path:        "../shared/calc.yml",
			expectError: false, // Documents may live outside the workspace
		},

		// URL-encoded injection attempts
		{
			name:        "url encoded semicolon",
			path:        "calc%3Brm+-rf+/.yml",
			expectError: false, // URL encoding not decoded
		},
		{
			name:        "hex encoded semicolon",
			path:        "calc\x3b.yml", // \x3b is a literal semicolon
			expectError: true,
			errorType:   "dangerous character",
		},

		// Whitespace with payload
		{
			name:        "whitespace wrapped injection",
			path:        "  ;  ",
			expectError: true,
			errorType:   "dangerous character",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateFlagPath(tt.path)

			if tt.expectError {
				assert.Error(t, err)
				assert.Contains(t, strings.ToLower(err.Error()), tt.errorType)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// TestValidateStagingFlag_EdgeCases exercises the traversal check corners.
func TestValidateStagingFlag_EdgeCases(t *testing.T) {
	tests := []struct {
		name        string
		dir         string
		expectError bool
	}{
		{
			name:        "current directory",
			dir:         ".",
			expectError: false,
		},
		{
			name:        "bare parent reference",
			dir:         "..",
			expectError: true,
		},
		{
			name:        "dots only",
			dir:         "....",
			expectError: true, // Contains ".." as a substring
		},
		{
			name:        "trailing slash",
			dir:         "staging/",
			expectError: false,
		},
		{
			name:        "deeply nested clean path",
			dir:         "staging/runs/fe2o3/attempt-2",
			expectError: false,
		},
		{
			name:        "traversal buried mid path",
			dir:         "staging/runs/../../../escape",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateStagingFlag(tt.dir)

			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func BenchmarkValidateFlagPath_LongPath(b *testing.B) {
	path := strings.Repeat("runs/", 200) + "calc.yml"

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = validateFlagPath(path)
	}
}
