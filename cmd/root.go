// Package cmd provides the command-line interface for uscfprep with
// configuration management supporting multiple configuration sources.
//
// Configuration System:
//
//	The CLI supports flexible configuration through multiple sources with clear precedence:
//	1. Command-line flags (--config, --log-level, etc.) - highest priority
//	2. USCFPREP_CONFIG_FILE environment variable - custom config file path
//	3. Individual environment variables (USCFPREP_STAGING_DIR, etc.)
//	4. Configuration files (.uscfprep.yml) - lowest priority
//
// Environment Variables:
//
//	USCFPREP_CONFIG_FILE: Path to custom configuration file
//	USCFPREP_DOCUMENT_PATH: Override calculation document location
//	USCFPREP_STAGING_DIR: Override staging directory
//	USCFPREP_LOGGING_LEVEL: Override log level
//	And the rest following the USCFPREP_<SECTION>_<OPTION> pattern
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/calcforge/uscfprep/internal/config"
	"github.com/calcforge/uscfprep/internal/logging"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "uscfprep",
	Short: "Prepare input decks for uscf.x Hubbard parameter calculations",
	Long: `uscfprep turns a YAML calculation document into a ready-to-submit
uscf.x input deck: it validates the parameters, resolves the parent pw.x
calculation, serializes the INPUTUSCF namelist deterministically, and
emits the transfer plan a scheduler needs to stage and retrieve files.

Quick Start:
  uscfprep init                   Scaffold a calculation document
  uscfprep validate               Check a document without writing anything
  uscfprep prepare                Write the input deck and transfer plan
  uscfprep prepare --watch        Re-prepare whenever the document changes
  uscfprep doctor                 Diagnose configuration and environment`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .uscfprep.yml, can also use USCFPREP_CONFIG_FILE env var)")
	rootCmd.PersistentFlags().StringP("log-level", "l", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "", "log format (text, json)")
	viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("logging.format", rootCmd.PersistentFlags().Lookup("log-format"))

	addFlagValidation(rootCmd, "config", validateFlagPath)
}

// initConfig initializes the configuration system.
//
// Configuration Loading Priority (highest to lowest):
//  1. --config flag: Explicitly specified config file path
//  2. USCFPREP_CONFIG_FILE environment variable: Custom config file path
//  3. Default: .uscfprep.yml in current directory
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv("USCFPREP_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".uscfprep")
	}

	// Enable automatic environment variable binding with USCFPREP_ prefix
	// Examples: USCFPREP_DOCUMENT_PATH, USCFPREP_STAGING_DIR
	viper.SetEnvPrefix("USCFPREP")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Missing or malformed config files fall back to defaults silently;
	// validation problems surface when commands call config.Load.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig resolves the tool configuration and builds the logger the
// commands share.
func loadConfig() (*config.Config, logging.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	return cfg, logging.NewLogger(cfg.LoggerConfig()), nil
}
