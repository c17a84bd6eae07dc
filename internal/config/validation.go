package config

import (
	"fmt"
	"os"
	"strings"
)

// ValidationError represents a configuration validation error with suggestions
type ValidationError struct {
	Field       string
	Value       interface{}
	Message     string
	Suggestions []string
}

func (ve *ValidationError) Error() string {
	return fmt.Sprintf("validation error in %s: %s", ve.Field, ve.Message)
}

// ValidationResult holds the result of configuration validation
type ValidationResult struct {
	Valid    bool
	Errors   []ValidationError
	Warnings []ValidationError
}

// HasErrors returns true if there are any validation errors
func (vr *ValidationResult) HasErrors() bool {
	return len(vr.Errors) > 0
}

// HasWarnings returns true if there are any validation warnings
func (vr *ValidationResult) HasWarnings() bool {
	return len(vr.Warnings) > 0
}

// String returns a formatted string of all validation issues
func (vr *ValidationResult) String() string {
	var builder strings.Builder

	if len(vr.Errors) > 0 {
		builder.WriteString("❌ Validation Errors:\n")
		for _, err := range vr.Errors {
			builder.WriteString(fmt.Sprintf("  • %s: %s\n", err.Field, err.Message))
			for _, suggestion := range err.Suggestions {
				builder.WriteString(fmt.Sprintf("    💡 %s\n", suggestion))
			}
		}
		builder.WriteString("\n")
	}

	if len(vr.Warnings) > 0 {
		builder.WriteString("⚠️  Validation Warnings:\n")
		for _, warning := range vr.Warnings {
			builder.WriteString(fmt.Sprintf("  • %s: %s\n", warning.Field, warning.Message))
			for _, suggestion := range warning.Suggestions {
				builder.WriteString(fmt.Sprintf("    💡 %s\n", suggestion))
			}
		}
	}

	return builder.String()
}

// ValidateConfigWithDetails performs comprehensive validation with detailed feedback
func ValidateConfigWithDetails(config *Config) *ValidationResult {
	result := &ValidationResult{
		Valid:    true,
		Errors:   []ValidationError{},
		Warnings: []ValidationError{},
	}

	// Validate document configuration
	validateDocumentConfigDetails(&config.Document, result)

	// Validate staging configuration
	validateStagingConfigDetails(&config.Staging, result)

	// Validate plan configuration
	validatePlanConfigDetails(&config.Plan, result)

	// Validate logging configuration
	validateLoggingConfigDetails(&config.Logging, result)

	// Validate watch configuration
	validateWatchConfigDetails(&config.Watch, result)

	// Set overall validity
	result.Valid = !result.HasErrors()

	return result
}

func validateDocumentConfigDetails(config *DocumentConfig, result *ValidationResult) {
	// Validate document path
	if config.Path == "" {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "document.path",
			Value:   config.Path,
			Message: "no calculation document specified",
			Suggestions: []string{
				"Point document.path at your calculation document",
				"Run 'uscfprep init' to scaffold one",
			},
		})
		return
	}

	if err := validatePath(config.Path); err != nil {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "document.path",
			Value:   config.Path,
			Message: err.Error(),
			Suggestions: []string{
				"Avoid shell metacharacters in paths",
				"Use relative paths from the project root",
			},
		})
		return
	}

	// Check if the document exists
	if !pathExists(config.Path) {
		result.Warnings = append(result.Warnings, ValidationError{
			Field:   "document.path",
			Value:   config.Path,
			Message: "calculation document does not exist",
			Suggestions: []string{
				"Run 'uscfprep init' to scaffold a document",
				"Check for typos in the path",
			},
		})
	}

	// Validate extension
	if !strings.HasSuffix(config.Path, ".yml") && !strings.HasSuffix(config.Path, ".yaml") {
		result.Warnings = append(result.Warnings, ValidationError{
			Field:   "document.path",
			Value:   config.Path,
			Message: "calculation documents are YAML files",
			Suggestions: []string{
				"Use a .yml or .yaml extension",
			},
		})
	}
}

func validateStagingConfigDetails(config *StagingConfig, result *ValidationResult) {
	if err := validateStagingConfig(config); err != nil {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "staging.dir",
			Value:   config.Dir,
			Message: err.Error(),
			Suggestions: []string{
				"Keep the staging directory inside the project",
				"Avoid parent directory references (..)",
			},
		})
		return
	}

	// The staging directory is created on demand, but an existing
	// non-directory at its path would make every prepare fail.
	if info, err := os.Stat(config.Dir); err == nil && !info.IsDir() {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "staging.dir",
			Value:   config.Dir,
			Message: "staging path exists and is not a directory",
			Suggestions: []string{
				"Remove the file at " + config.Dir,
				"Point staging.dir somewhere else",
			},
		})
	}
}

func validatePlanConfigDetails(config *PlanConfig, result *ValidationResult) {
	// Empty means stdout
	if config.File == "" {
		return
	}

	if err := validatePath(config.File); err != nil {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "plan.file",
			Value:   config.File,
			Message: err.Error(),
			Suggestions: []string{
				"Avoid shell metacharacters in paths",
				"Leave plan.file empty to print the plan to stdout",
			},
		})
		return
	}

	if !strings.HasSuffix(config.File, ".yml") && !strings.HasSuffix(config.File, ".yaml") {
		result.Warnings = append(result.Warnings, ValidationError{
			Field:   "plan.file",
			Value:   config.File,
			Message: "submission plans are written as YAML",
			Suggestions: []string{
				"Use a .yml or .yaml extension",
			},
		})
	}
}

func validateLoggingConfigDetails(config *LoggingConfig, result *ValidationResult) {
	// Validate level
	validLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLevels, config.Level) {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "logging.level",
			Value:   config.Level,
			Message: fmt.Sprintf("unknown log level '%s'", config.Level),
			Suggestions: []string{
				"Valid levels: " + strings.Join(validLevels, ", "),
			},
		})
	}

	// Validate format
	validFormats := []string{"text", "json"}
	if !contains(validFormats, config.Format) {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "logging.format",
			Value:   config.Format,
			Message: fmt.Sprintf("unknown log format '%s'", config.Format),
			Suggestions: []string{
				"Use 'text' for terminals",
				"Use 'json' for log aggregation",
			},
		})
	}
}

func validateWatchConfigDetails(config *WatchConfig, result *ValidationResult) {
	// Validate debounce
	if config.DebounceMs < 0 || config.DebounceMs > 60000 {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "watch.debounce_ms",
			Value:   config.DebounceMs,
			Message: fmt.Sprintf("debounce %dms is not in valid range 0-60000", config.DebounceMs),
			Suggestions: []string{
				"Use a debounce between 100-1000ms for typical editors",
				"300ms is a reasonable default",
			},
		})
	} else if config.DebounceMs > 10000 {
		result.Warnings = append(result.Warnings, ValidationError{
			Field:   "watch.debounce_ms",
			Value:   config.DebounceMs,
			Message: "debounce above 10s delays feedback noticeably",
			Suggestions: []string{
				"Lower the debounce unless your editor writes very slowly",
			},
		})
	}

	// Validate watched paths
	for i, path := range config.Paths {
		if err := validatePath(path); err != nil {
			result.Errors = append(result.Errors, ValidationError{
				Field:   fmt.Sprintf("watch.paths[%d]", i),
				Value:   path,
				Message: err.Error(),
				Suggestions: []string{
					"Avoid shell metacharacters in paths",
					"Use relative paths from the project root",
				},
			})
			continue
		}

		if !pathExists(path) {
			result.Warnings = append(result.Warnings, ValidationError{
				Field:   fmt.Sprintf("watch.paths[%d]", i),
				Value:   path,
				Message: "watched path does not exist",
				Suggestions: []string{
					"Create the path or remove it from watch.paths",
					"Check for typos in the path",
				},
			})
		}
	}
}

// Helper validation functions

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
