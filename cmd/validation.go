package cmd

import (
	"fmt"
	"path/filepath"
	"strings"
)

// validateFlagPath validates path arguments that arrive via flags or
// positional arguments and therefore bypass configuration validation.
// Absolute paths are allowed: documents and staging trees commonly live
// on scratch filesystems.
func validateFlagPath(path string) error {
	if path == "" {
		return fmt.Errorf("empty path")
	}

	dangerousChars := []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'"}
	for _, char := range dangerousChars {
		if strings.Contains(path, char) {
			return fmt.Errorf("contains dangerous character: %s", char)
		}
	}

	return nil
}

// validateStagingFlag validates a staging directory override. Staging
// overrides additionally reject traversal so a prepared deck cannot be
// steered outside the workspace through a flag.
func validateStagingFlag(dir string) error {
	if err := validateFlagPath(dir); err != nil {
		return err
	}

	if strings.Contains(filepath.Clean(dir), "..") {
		return fmt.Errorf("path traversal attempt detected")
	}

	return nil
}

// validateFlagPaths validates a slice of path arguments.
func validateFlagPaths(paths []string) error {
	for _, path := range paths {
		if err := validateFlagPath(path); err != nil {
			return fmt.Errorf("invalid path '%s': %w", path, err)
		}
	}
	return nil
}
