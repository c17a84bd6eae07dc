package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/calcforge/uscfprep/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage uscfprep configuration",
	Long: `Manage uscfprep configuration files and settings.

This command provides subcommands for:
- Validating existing configuration files
- Showing current configuration values

Examples:
  uscfprep config validate             # Validate current configuration
  uscfprep config show                 # Show current configuration
  uscfprep config validate --file .uscfprep.yml  # Validate specific config file`,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate a uscfprep configuration file for correctness.

This command checks for:
- Required fields and proper data types
- Safe document, staging, and plan paths
- Valid logging levels and formats
- Watch debounce ranges and watched path existence

Examples:
  uscfprep config validate             # Validate .uscfprep.yml in current directory
  uscfprep config validate --file config.yml  # Validate specific file
  uscfprep config validate --strict    # Enable strict validation with warnings as errors`,
	RunE: runConfigValidate,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Display the current uscfprep configuration including all resolved values.

This shows the final configuration after:
- Loading from configuration file
- Applying environment variable overrides
- Setting default values
- Processing command-line flags

Examples:
  uscfprep config show                 # Show all configuration
  uscfprep config show --format yaml   # Show in YAML format
  uscfprep config show --format json   # Show in JSON format`,
	RunE: runConfigShow,
}

var (
	configFile   string
	configFormat string
	configStrict bool
)

func init() {
	rootCmd.AddCommand(configCmd)

	// Add subcommands
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configShowCmd)

	// Validate flags
	configValidateCmd.Flags().
		StringVarP(&configFile, "file", "f", "", "Configuration file to validate (default: .uscfprep.yml)")
	configValidateCmd.Flags().BoolVar(&configStrict, "strict", false, "Treat warnings as errors")
	addFlagValidation(configValidateCmd, "file", validateFlagPath)

	// Show flags
	configShowCmd.Flags().StringVar(&configFormat, "format", "yaml", "Output format (yaml, json)")
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	// Determine config file to validate
	targetFile := configFile
	if targetFile == "" {
		// Look for .uscfprep.yml in current directory
		if _, err := os.Stat(".uscfprep.yml"); err == nil {
			targetFile = ".uscfprep.yml"
		} else {
			return errors.New("no configuration file found. Use --file to specify a config file " +
				"or run 'uscfprep init' to create one")
		}
	}

	// Check if file exists
	if _, err := os.Stat(targetFile); os.IsNotExist(err) {
		return fmt.Errorf("configuration file %s does not exist", targetFile)
	}

	fmt.Printf("🔍 Validating configuration file: %s\n", targetFile)
	fmt.Println("=====================================")

	// Load the configuration using Viper
	v := viper.New()
	v.SetConfigFile(targetFile)

	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read configuration file: %w", err)
	}

	// Unmarshal into config struct
	var cfg config.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("failed to parse configuration: %w", err)
	}

	// Underscore keys do not survive Unmarshal (workaround as in Load)
	if v.IsSet("logging.add_source") {
		cfg.Logging.AddSource = v.GetBool("logging.add_source")
	}
	if v.IsSet("watch.debounce_ms") {
		cfg.Watch.DebounceMs = v.GetInt("watch.debounce_ms")
	}

	// Validation runs against the resolved configuration, so apply the
	// same defaults Load would
	if cfg.Document.Path == "" {
		cfg.Document.Path = "calc.yml"
	}
	if cfg.Staging.Dir == "" {
		cfg.Staging.Dir = "./staging"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
	if !v.IsSet("watch.debounce_ms") && cfg.Watch.DebounceMs == 0 {
		cfg.Watch.DebounceMs = 300
	}

	// Run detailed validation
	validation := config.ValidateConfigWithDetails(&cfg)

	if validation.Valid && !validation.HasWarnings() {
		fmt.Println("✅ Configuration is valid!")
		fmt.Println("No errors or warnings found.")

		return nil
	}

	// Print validation results
	if validation.HasErrors() {
		fmt.Print(validation.String())

		return fmt.Errorf("configuration validation failed with %d errors", len(validation.Errors))
	}

	if validation.HasWarnings() {
		fmt.Print(validation.String())

		if configStrict {
			return fmt.Errorf(
				"configuration validation failed in strict mode with %d warnings",
				len(validation.Warnings),
			)
		}

		fmt.Println("✅ Configuration is valid with warnings.")
		fmt.Printf(
			"Found %d warnings. Use --strict to treat warnings as errors.\n",
			len(validation.Warnings),
		)
	}

	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	fmt.Println("📋 Current uscfprep Configuration")
	fmt.Println("=================================")

	// Load current configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Show configuration in requested format
	switch configFormat {
	case "yaml", "yml":
		return showConfigYAML(cfg)
	case "json":
		return showConfigJSON(cfg)
	default:
		return fmt.Errorf("unsupported format: %s (supported: yaml, json)", configFormat)
	}
}

func showConfigYAML(cfg *config.Config) error {
	fmt.Println("# Current uscfprep Configuration")
	fmt.Println("# Resolved from all sources (file, env vars, defaults)")
	fmt.Println()

	// Document configuration
	fmt.Println("document:")
	fmt.Printf("  path: %s\n", cfg.Document.Path)
	fmt.Println()

	// Staging configuration
	fmt.Println("staging:")
	fmt.Printf("  dir: %s\n", cfg.Staging.Dir)
	fmt.Println()

	// Plan configuration
	fmt.Println("plan:")
	fmt.Printf("  file: \"%s\"\n", cfg.Plan.File)
	fmt.Println()

	// Logging configuration
	fmt.Println("logging:")
	fmt.Printf("  level: %s\n", cfg.Logging.Level)
	fmt.Printf("  format: %s\n", cfg.Logging.Format)
	fmt.Printf("  add_source: %t\n", cfg.Logging.AddSource)
	fmt.Println()

	// Watch configuration
	fmt.Println("watch:")
	fmt.Printf("  debounce_ms: %d\n", cfg.Watch.DebounceMs)
	if len(cfg.Watch.Paths) > 0 {
		fmt.Println("  paths:")
		for _, path := range cfg.Watch.Paths {
			fmt.Printf("    - \"%s\"\n", path)
		}
	}

	return nil
}

func showConfigJSON(cfg *config.Config) error {
	out := map[string]interface{}{
		"document": map[string]interface{}{
			"path": cfg.Document.Path,
		},
		"staging": map[string]interface{}{
			"dir": cfg.Staging.Dir,
		},
		"plan": map[string]interface{}{
			"file": cfg.Plan.File,
		},
		"logging": map[string]interface{}{
			"level":      cfg.Logging.Level,
			"format":     cfg.Logging.Format,
			"add_source": cfg.Logging.AddSource,
		},
		"watch": map[string]interface{}{
			"debounce_ms": cfg.Watch.DebounceMs,
			"paths":       cfg.Watch.Paths,
		},
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")

	return encoder.Encode(out)
}
