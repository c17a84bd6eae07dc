package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"

	"github.com/calcforge/uscfprep/internal/config"
	"github.com/calcforge/uscfprep/internal/document"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose the preparation environment",
	Long: `Diagnose your preparation environment and check for setup issues.

The doctor command analyzes your workspace and reports on:

- Configuration file presence and validity
- Calculation document readability
- Staging directory permissions
- Quantum ESPRESSO tool visibility
- Version control hygiene
- Watch path configuration

Examples:
  uscfprep doctor                  # Full environment diagnosis
  uscfprep doctor --verbose        # Detailed diagnostic output
  uscfprep doctor --format json    # Output as JSON for tooling
  uscfprep doctor --format yaml    # Output as YAML`,
	RunE: runDoctor,
}

var (
	doctorVerbose bool
	doctorFormat  string
)

// DiagnosticResult represents the result of a diagnostic check
type DiagnosticResult struct {
	Name        string                 `json:"name" yaml:"name"`
	Category    string                 `json:"category" yaml:"category"`
	Status      string                 `json:"status" yaml:"status"` // "ok", "warning", "error", "info"
	Message     string                 `json:"message" yaml:"message"`
	Suggestion  string                 `json:"suggestion,omitempty" yaml:"suggestion,omitempty"`
	Details     map[string]interface{} `json:"details,omitempty" yaml:"details,omitempty"`
	AutoFixable bool                   `json:"auto_fixable" yaml:"auto_fixable"`
}

// DoctorReport represents the complete diagnostic report
type DoctorReport struct {
	Timestamp   time.Time          `json:"timestamp" yaml:"timestamp"`
	Environment map[string]string  `json:"environment" yaml:"environment"`
	Results     []DiagnosticResult `json:"results" yaml:"results"`
	Summary     ReportSummary      `json:"summary" yaml:"summary"`
}

// ReportSummary provides an overview of diagnostic results
type ReportSummary struct {
	Total    int `json:"total" yaml:"total"`
	OK       int `json:"ok" yaml:"ok"`
	Warnings int `json:"warnings" yaml:"warnings"`
	Errors   int `json:"errors" yaml:"errors"`
	Info     int `json:"info" yaml:"info"`
}

func init() {
	rootCmd.AddCommand(doctorCmd)

	doctorCmd.Flags().BoolVarP(&doctorVerbose, "verbose", "v", false, "Show verbose diagnostic information")
	doctorCmd.Flags().StringVarP(&doctorFormat, "format", "f", "table", "Output format (table|json|yaml)")
}

func runDoctor(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	fmt.Println("🔍 uscfprep Environment Doctor")
	fmt.Println("==============================")
	fmt.Println()

	// Create diagnostic report
	report := &DoctorReport{
		Timestamp:   time.Now(),
		Environment: gatherEnvironmentInfo(),
		Results:     []DiagnosticResult{},
	}

	// Run all diagnostic checks
	checks := []func(context.Context, *DoctorReport) DiagnosticResult{
		checkConfiguration,
		checkDocument,
		checkStagingArea,
		checkEspressoTools,
		checkGitIntegration,
		checkWatchConfiguration,
	}

	for _, check := range checks {
		result := check(ctx, report)
		report.Results = append(report.Results, result)

		if !doctorVerbose && result.Status == "info" {
			continue
		}

		displayResult(result)
	}

	// Calculate summary
	report.Summary = calculateSummary(report.Results)

	// Display summary
	fmt.Println("\n📊 Summary")
	fmt.Println("==========")
	displaySummary(report.Summary)

	// Output formatted report if requested
	if doctorFormat != "table" {
		fmt.Println("\n📋 Detailed Report")
		fmt.Println("==================")
		if err := outputReport(report, doctorFormat); err != nil {
			return fmt.Errorf("failed to output report: %w", err)
		}
	}

	// Provide final recommendations
	provideFinalRecommendations(report)

	return nil
}

func gatherEnvironmentInfo() map[string]string {
	env := map[string]string{
		"os":              runtime.GOOS,
		"arch":            runtime.GOARCH,
		"go_version":      runtime.Version(),
		"user":            os.Getenv("USER"),
		"shell":           os.Getenv("SHELL"),
		"editor":          getPreferredEditor(),
		"espresso_pseudo": os.Getenv("ESPRESSO_PSEUDO"),
	}

	// Add working directory info
	if wd, err := os.Getwd(); err == nil {
		env["working_dir"] = wd
	}

	return env
}

func checkConfiguration(ctx context.Context, report *DoctorReport) DiagnosticResult {
	result := DiagnosticResult{
		Name:     "Configuration",
		Category: "Configuration",
		Status:   "ok",
	}

	// Check if .uscfprep.yml exists
	configPath := ".uscfprep.yml"
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		result.Status = "warning"
		result.Message = "No .uscfprep.yml configuration file found"
		result.Suggestion = "Run 'uscfprep init' to scaffold a workspace, or rely on defaults (calc.yml, ./staging)"
		result.AutoFixable = true
		return result
	}

	// Try to load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		result.Status = "error"
		result.Message = fmt.Sprintf("Configuration file exists but has errors: %v", err)
		result.Suggestion = "Fix the configuration errors or regenerate with 'uscfprep init'"
		return result
	}

	result.Message = "Configuration file is valid"
	result.Details = map[string]interface{}{
		"document":    cfg.Document.Path,
		"staging_dir": cfg.Staging.Dir,
		"plan_file":   cfg.Plan.File,
		"log_level":   cfg.Logging.Level,
		"debounce_ms": cfg.Watch.DebounceMs,
	}

	// Surface softer issues the strict loader lets through
	validation := config.ValidateConfigWithDetails(cfg)
	if validation.HasWarnings() {
		result.Status = "warning"
		warnings := make([]string, 0, len(validation.Warnings))
		for _, w := range validation.Warnings {
			warnings = append(warnings, w.Message)
		}
		result.Message = fmt.Sprintf("Configuration loads with warnings: %s", strings.Join(warnings, "; "))
	}

	return result
}

func checkDocument(ctx context.Context, report *DoctorReport) DiagnosticResult {
	result := DiagnosticResult{
		Name:     "Calculation Document",
		Category: "Document",
		Status:   "ok",
	}

	docPath := "calc.yml"
	if cfg, err := config.Load(); err == nil {
		docPath = cfg.Document.Path
	}

	if _, err := os.Stat(docPath); os.IsNotExist(err) {
		result.Status = "warning"
		result.Message = fmt.Sprintf("Calculation document not found: %s", docPath)
		result.Suggestion = "Run 'uscfprep init' to scaffold a starter document"
		result.AutoFixable = true
		return result
	}

	doc, err := document.Load(afero.NewOsFs(), docPath)
	if err != nil {
		result.Status = "error"
		result.Message = fmt.Sprintf("Calculation document has errors: %v", err)
		result.Suggestion = "Fix the document, then confirm with 'uscfprep validate'"
		return result
	}

	result.Message = fmt.Sprintf("Calculation document parses: %s", doc.Calculation)
	result.Details = map[string]interface{}{
		"calculation":        doc.Calculation,
		"parent_calculation": doc.Parent.Calculation,
		"computer":           doc.Computer.Name,
		"qpoint_mesh":        doc.Qpoints.Mesh,
	}

	return result
}

func checkStagingArea(ctx context.Context, report *DoctorReport) DiagnosticResult {
	result := DiagnosticResult{
		Name:     "Staging Area",
		Category: "System",
		Status:   "ok",
	}

	stagingDir := "./staging"
	if cfg, err := config.Load(); err == nil {
		stagingDir = cfg.Staging.Dir
	}

	if info, err := os.Stat(stagingDir); err == nil && !info.IsDir() {
		result.Status = "error"
		result.Message = fmt.Sprintf("Staging path exists and is not a directory: %s", stagingDir)
		result.Suggestion = "Move the file aside or point staging.dir somewhere else"
		return result
	}

	if err := os.MkdirAll(stagingDir, 0755); err != nil {
		result.Status = "error"
		result.Message = fmt.Sprintf("Cannot create staging directory: %v", err)
		result.Suggestion = "Check permissions or point staging.dir at a writable location"
		return result
	}

	// Check write permissions with a throwaway file
	testFile := filepath.Join(stagingDir, ".uscfprep-permission-test")
	if err := os.WriteFile(testFile, []byte("test"), 0644); err != nil {
		result.Status = "error"
		result.Message = fmt.Sprintf("Cannot write to staging directory: %s", stagingDir)
		result.Suggestion = "Check directory permissions or point staging.dir at a writable location"
		return result
	}
	os.Remove(testFile) // Clean up

	result.Message = fmt.Sprintf("Staging directory is writable: %s", stagingDir)
	return result
}

func checkEspressoTools(ctx context.Context, report *DoctorReport) DiagnosticResult {
	result := DiagnosticResult{
		Name:     "Quantum ESPRESSO Tools",
		Category: "Tools",
		Status:   "info",
	}

	found := map[string]interface{}{}
	for _, tool := range []string{"uscf.x", "pw.x"} {
		if path, err := exec.LookPath(tool); err == nil {
			found[tool] = path
		}
	}

	if len(found) == 0 {
		result.Message = "No Quantum ESPRESSO binaries on PATH"
		result.Suggestion = "Preparation does not need them locally; uscf.x runs on the target computer"
		return result
	}

	result.Status = "ok"
	result.Message = fmt.Sprintf("Quantum ESPRESSO binaries detected: %d", len(found))
	result.Details = found

	return result
}

func checkGitIntegration(ctx context.Context, report *DoctorReport) DiagnosticResult {
	result := DiagnosticResult{
		Name:     "Git Integration",
		Category: "Version Control",
		Status:   "info",
	}

	// Check if we're in a git repository
	if _, err := os.Stat(".git"); os.IsNotExist(err) {
		result.Message = "Not a Git repository"
		result.Suggestion = "Calculation documents version well: git init"
		result.AutoFixable = true
		return result
	}

	result.Status = "ok"
	result.Message = "Git repository detected"

	// Check for .gitignore
	gitignoreExists := false
	if _, err := os.Stat(".gitignore"); err == nil {
		gitignoreExists = true
	}

	if !gitignoreExists {
		result.Status = "warning"
		result.Message = "Git repository found but no .gitignore file"
		result.Suggestion = "Create .gitignore to exclude the staging directory"
		result.AutoFixable = true
	} else {
		// Check if generated artifacts are ignored
		content, err := os.ReadFile(".gitignore")
		if err == nil {
			gitignoreContent := string(content)
			requiredPatterns := []string{"staging/"}
			missingPatterns := []string{}

			for _, pattern := range requiredPatterns {
				if !strings.Contains(gitignoreContent, pattern) {
					missingPatterns = append(missingPatterns, pattern)
				}
			}

			if len(missingPatterns) > 0 {
				result.Status = "warning"
				result.Message = "Git configured but .gitignore does not exclude generated artifacts"
				result.Suggestion = fmt.Sprintf("Add these patterns to .gitignore: %v", missingPatterns)
				result.AutoFixable = true
			}
		}
	}

	result.Details = map[string]interface{}{
		"has_gitignore": gitignoreExists,
	}

	return result
}

func checkWatchConfiguration(ctx context.Context, report *DoctorReport) DiagnosticResult {
	result := DiagnosticResult{
		Name:     "Watch Configuration",
		Category: "Configuration",
		Status:   "info",
	}

	cfg, err := config.Load()
	if err != nil {
		result.Message = "Configuration could not be loaded, watch settings unknown"
		return result
	}

	if len(cfg.Watch.Paths) == 0 {
		result.Message = "No extra watch paths configured"
		result.Suggestion = "prepare --watch always watches the document itself; watch.paths adds extra trees"
		result.Details = map[string]interface{}{
			"debounce_ms": cfg.Watch.DebounceMs,
		}
		return result
	}

	missing := []string{}
	for _, path := range cfg.Watch.Paths {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			missing = append(missing, path)
		}
	}

	if len(missing) > 0 {
		result.Status = "warning"
		result.Message = fmt.Sprintf("Configured watch paths do not exist: %v", missing)
		result.Suggestion = "Create the directories or remove them from watch.paths"
		return result
	}

	result.Status = "ok"
	result.Message = fmt.Sprintf("All %d watch paths exist", len(cfg.Watch.Paths))
	result.Details = map[string]interface{}{
		"paths":       cfg.Watch.Paths,
		"debounce_ms": cfg.Watch.DebounceMs,
	}

	return result
}

// Helper functions

func getPreferredEditor() string {
	editors := []string{"VISUAL", "EDITOR"}
	for _, env := range editors {
		if editor := os.Getenv(env); editor != "" {
			return editor
		}
	}
	return "unknown"
}

func displayResult(result DiagnosticResult) {
	var icon string
	switch result.Status {
	case "ok":
		icon = "✅"
	case "warning":
		icon = "⚠️"
	case "error":
		icon = "❌"
	case "info":
		icon = "ℹ️"
	default:
		icon = "•"
	}

	fmt.Printf("%s [%s] %s: %s\n", icon, strings.ToUpper(result.Category), result.Name, result.Message)

	if result.Suggestion != "" {
		fmt.Printf("   💡 %s\n", result.Suggestion)
	}

	if doctorVerbose && result.Details != nil && len(result.Details) > 0 {
		fmt.Printf("   📋 Details: %+v\n", result.Details)
	}

	fmt.Println()
}

func calculateSummary(results []DiagnosticResult) ReportSummary {
	summary := ReportSummary{
		Total: len(results),
	}

	for _, result := range results {
		switch result.Status {
		case "ok":
			summary.OK++
		case "warning":
			summary.Warnings++
		case "error":
			summary.Errors++
		case "info":
			summary.Info++
		}
	}

	return summary
}

func displaySummary(summary ReportSummary) {
	fmt.Printf("Total Checks: %d\n", summary.Total)
	fmt.Printf("✅ OK: %d\n", summary.OK)
	fmt.Printf("⚠️  Warnings: %d\n", summary.Warnings)
	fmt.Printf("❌ Errors: %d\n", summary.Errors)
	fmt.Printf("ℹ️  Info: %d\n", summary.Info)

	// Calculate health score
	healthScore := float64(summary.OK) / float64(summary.Total) * 100
	fmt.Printf("\n🎯 Environment Health Score: %.0f%%\n", healthScore)
}

func outputReport(report *DoctorReport, format string) error {
	switch format {
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(report)
	case "yaml":
		encoder := yaml.NewEncoder(os.Stdout)
		return encoder.Encode(report)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func provideFinalRecommendations(report *DoctorReport) {
	fmt.Println("\n🚀 Final Recommendations")
	fmt.Println("========================")

	hasErrors := report.Summary.Errors > 0
	hasWarnings := report.Summary.Warnings > 0

	if hasErrors {
		fmt.Println("❌ Critical Issues Detected:")
		fmt.Println("   Address the errors above before preparing calculations")
		fmt.Println()
	}

	if hasWarnings {
		fmt.Println("⚠️  Setup Opportunities:")
		fmt.Println("   Review warnings above to tighten your workspace")
		fmt.Println()
	}

	if !hasErrors && !hasWarnings {
		fmt.Println("🎉 Your preparation environment looks great!")
		fmt.Println()
	}

	// Provide specific next steps based on findings
	fmt.Println("📝 Next Steps:")

	if !hasWorkspaceConfig(report) {
		fmt.Println("   1. Run 'uscfprep init' to set up a workspace")
		fmt.Println("   2. Edit calc.yml with your provenance identifiers")
	} else {
		fmt.Println("   1. Run 'uscfprep validate' to dry-run the document")
		fmt.Println("   2. Run 'uscfprep prepare' to stage the input deck")
	}

	fmt.Println()
}

func hasWorkspaceConfig(report *DoctorReport) bool {
	for _, result := range report.Results {
		if result.Name == "Configuration" && result.Status == "ok" {
			return true
		}
	}
	return false
}
