package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/calcforge/uscfprep/internal/document"
)

var initCmd = &cobra.Command{
	Use:     "init [name]",
	Aliases: []string{"i"},
	Short:   "Initialize a new calculation workspace",
	Long: `Initialize a new uscfprep workspace with a starter calculation document
and configuration file. If no name is provided, initializes in the
current directory.

The starter document carries placeholder identifiers for the computer,
code, and parent pw.x calculation. Edit those to match your provenance
records before preparing.

Examples:
  uscfprep init                # Initialize in current directory
  uscfprep init fe2o3-hubbard  # Initialize in new directory 'fe2o3-hubbard'
  uscfprep init --minimal      # Configuration file only, no document`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

var initMinimal bool

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().BoolVar(&initMinimal, "minimal", false, "Configuration file only, no starter document")
}

func runInit(cmd *cobra.Command, args []string) error {
	var workspaceDir string

	if len(args) == 0 {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get current directory: %w", err)
		}
		workspaceDir = cwd
	} else {
		workspaceDir = args[0]
		if err := os.MkdirAll(workspaceDir, 0755); err != nil {
			return fmt.Errorf("failed to create workspace directory: %w", err)
		}
	}

	fmt.Printf("Initializing uscfprep workspace in %s\n", workspaceDir)

	if err := os.MkdirAll(filepath.Join(workspaceDir, "staging"), 0755); err != nil {
		return fmt.Errorf("failed to create staging directory: %w", err)
	}

	if err := createConfigFile(workspaceDir); err != nil {
		return fmt.Errorf("failed to create configuration file: %w", err)
	}

	if !initMinimal {
		if err := createDocumentFile(workspaceDir); err != nil {
			return fmt.Errorf("failed to create calculation document: %w", err)
		}
	}

	fmt.Println("✓ Workspace initialized successfully!")
	fmt.Println("\nNext steps:")
	if len(args) > 0 {
		fmt.Println("  1. cd " + workspaceDir)
		fmt.Println("  2. Edit calc.yml with your computer, code, and parent identifiers")
		fmt.Println("  3. uscfprep validate")
		fmt.Println("  4. uscfprep prepare")
	} else {
		fmt.Println("  1. Edit calc.yml with your computer, code, and parent identifiers")
		fmt.Println("  2. uscfprep validate")
		fmt.Println("  3. uscfprep prepare")
	}

	return nil
}

func createConfigFile(workspaceDir string) error {
	configPath := filepath.Join(workspaceDir, ".uscfprep.yml")

	// Don't overwrite existing config
	if _, err := os.Stat(configPath); err == nil {
		fmt.Println("⚠ Configuration file already exists, skipping")
		return nil
	}

	configContent := `# uscfprep configuration file
document:
  path: calc.yml

staging:
  dir: ./staging

# plan:
#   file: plan.yml          # Omit to print the plan to stdout

logging:
  level: info
  format: text
  add_source: false

watch:
  debounce_ms: 300
  # paths:                  # Extra trees to watch in prepare --watch
  #   - ./pseudo
`

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Println("✓ Created .uscfprep.yml configuration file")
	return nil
}

func createDocumentFile(workspaceDir string) error {
	docPath := filepath.Join(workspaceDir, "calc.yml")

	// Don't overwrite an existing document
	if _, err := os.Stat(docPath); err == nil {
		fmt.Println("⚠ Calculation document already exists, skipping")
		return nil
	}

	if err := os.WriteFile(docPath, []byte(document.Scaffold), 0644); err != nil {
		return fmt.Errorf("failed to write calculation document: %w", err)
	}

	fmt.Println("✓ Created calc.yml starter document")
	return nil
}
