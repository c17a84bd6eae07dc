package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/calcforge/uscfprep/internal/document"
	"github.com/calcforge/uscfprep/internal/uscf"
)

var validateFormat string

// validateCmd represents the validate command.
var validateCmd = &cobra.Command{
	Use:   "validate [document...]",
	Short: "Validate calculation documents without writing anything",
	Long: `Validate runs the full preparation pipeline against an in-memory
staging area: document parsing, parameter normalization, reserved-key
checks, q-point mesh validation, parent resolution, and deck rendering
all execute, but nothing is written to disk.

Examples:
  uscfprep validate                      # Validate the configured document
  uscfprep validate runs/fe2o3/calc.yml  # Validate a specific document
  uscfprep validate a.yml b.yml          # Validate several documents
  uscfprep validate --format json        # Output results as JSON`,
	RunE: runValidateCommand,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().
		StringVarP(&validateFormat, "format", "f", "text", "Output format (text, json)")
}

type ValidationResult struct {
	Document    string   `json:"document"`
	Calculation string   `json:"calculation,omitempty"`
	Valid       bool     `json:"valid"`
	Errors      []string `json:"errors"`
	Warnings    []string `json:"warnings"`
}

type ValidationSummary struct {
	Total   int                `json:"total"`
	Valid   int                `json:"valid"`
	Invalid int                `json:"invalid"`
	Results []ValidationResult `json:"results"`
}

func runValidateCommand(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	documents := args
	if len(documents) == 0 {
		documents = []string{cfg.Document.Path}
	}
	if err := validateFlagPaths(documents); err != nil {
		return err
	}

	summary := ValidationSummary{
		Total:   len(documents),
		Results: make([]ValidationResult, 0, len(documents)),
	}

	ctx := context.Background()

	for _, docPath := range documents {
		result := validateDocument(ctx, docPath)
		summary.Results = append(summary.Results, result)

		if result.Valid {
			summary.Valid++
		} else {
			summary.Invalid++
		}
	}

	switch validateFormat {
	case "json":
		return outputValidationJSON(summary)
	case "text":
		return outputValidationText(summary)
	default:
		return fmt.Errorf("unsupported format: %s", validateFormat)
	}
}

func validateDocument(ctx context.Context, docPath string) ValidationResult {
	result := ValidationResult{
		Document: docPath,
		Valid:    true,
		Errors:   make([]string, 0),
		Warnings: make([]string, 0),
	}

	if _, err := os.Stat(docPath); os.IsNotExist(err) {
		result.Valid = false
		result.Errors = append(result.Errors, "File not found: "+docPath)

		return result
	}

	if ext := filepath.Ext(docPath); ext != ".yml" && ext != ".yaml" {
		result.Warnings = append(result.Warnings, "File does not have a .yml extension")
	}

	doc, err := document.Load(afero.NewOsFs(), docPath)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())

		return result
	}
	result.Calculation = doc.Calculation

	calc, inputs, _ := doc.Build()

	if err := calc.SetParentRemoteFolder(inputs.ParentFolder); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())

		return result
	}

	// Dry run against an in-memory stage: every check runs, nothing
	// lands on disk.
	stage := uscf.NewStage(afero.NewMemMapFs(), "staging")
	if _, err := calc.Prepare(ctx, stage, inputs); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
	}

	return result
}

func outputValidationText(summary ValidationSummary) error {
	fmt.Printf("Validation Summary:\n")
	fmt.Printf("  Total documents: %d\n", summary.Total)
	fmt.Printf("  Valid: %d\n", summary.Valid)
	fmt.Printf("  Invalid: %d\n", summary.Invalid)
	fmt.Println()

	for _, result := range summary.Results {
		status := "✅"
		if !result.Valid {
			status = "❌"
		}

		name := result.Document
		if result.Calculation != "" {
			name = fmt.Sprintf("%s (%s)", result.Document, result.Calculation)
		}

		fmt.Printf("%s %s\n", status, name)

		for _, err := range result.Errors {
			fmt.Printf("    Error: %s\n", err)
		}

		for _, warning := range result.Warnings {
			fmt.Printf("    Warning: %s\n", warning)
		}

		if len(result.Errors) > 0 || len(result.Warnings) > 0 {
			fmt.Println()
		}
	}

	if summary.Invalid > 0 {
		return fmt.Errorf("validation failed: %d invalid documents", summary.Invalid)
	}

	fmt.Println("✅ All documents are valid!")

	return nil
}

func outputValidationJSON(summary ValidationSummary) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")

	return encoder.Encode(summary)
}
