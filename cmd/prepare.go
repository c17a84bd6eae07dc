package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/calcforge/uscfprep/internal/config"
	"github.com/calcforge/uscfprep/internal/document"
	"github.com/calcforge/uscfprep/internal/logging"
	"github.com/calcforge/uscfprep/internal/uscf"
	"github.com/calcforge/uscfprep/internal/watcher"
)

var (
	prepareWatch   bool
	prepareFormat  string
	prepareOutput  string
	prepareStaging string
)

// prepareCmd represents the prepare command.
var prepareCmd = &cobra.Command{
	Use:   "prepare [document]",
	Short: "Write the uscf.x input deck and emit the transfer plan",
	Long: `Prepare reads a calculation document, validates it, resolves the parent
pw.x calculation, and writes the aiida.in input deck into the staging
directory. The submission plan (invocation, retrieve list, remote copy)
is printed to stdout or written to a file.

Nothing is written unless every validation passes: a failed prepare
leaves the staging directory untouched.

Examples:
  uscfprep prepare                       # Prepare the configured document
  uscfprep prepare runs/fe2o3/calc.yml   # Prepare a specific document
  uscfprep prepare --format json         # Emit the plan as JSON
  uscfprep prepare -o plan.yml           # Write the plan to a file
  uscfprep prepare --watch               # Re-prepare on document changes`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPrepare,
}

func init() {
	rootCmd.AddCommand(prepareCmd)

	prepareCmd.Flags().BoolVarP(&prepareWatch, "watch", "w", false, "Re-prepare whenever the document changes")
	prepareCmd.Flags().StringVarP(&prepareFormat, "format", "f", "yaml", "Plan output format (yaml, json)")
	prepareCmd.Flags().StringVarP(&prepareOutput, "output", "o", "", "Write the plan to a file instead of stdout")
	prepareCmd.Flags().StringVar(&prepareStaging, "staging-dir", "", "Override the staging directory")

	addFlagValidation(prepareCmd, "output", validateFlagPath)
	addFlagValidation(prepareCmd, "staging-dir", validateStagingFlag)
}

func runPrepare(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	docPath := cfg.Document.Path
	if len(args) > 0 {
		docPath = args[0]
	}
	if err := validateFlagPath(docPath); err != nil {
		return fmt.Errorf("invalid document path '%s': %w", docPath, err)
	}

	if prepareStaging != "" {
		if err := validateStagingFlag(prepareStaging); err != nil {
			return fmt.Errorf("invalid staging dir '%s': %w", prepareStaging, err)
		}
		cfg.Staging.Dir = prepareStaging
	}
	if prepareOutput != "" {
		if err := validateFlagPath(prepareOutput); err != nil {
			return fmt.Errorf("invalid plan file '%s': %w", prepareOutput, err)
		}
		cfg.Plan.File = prepareOutput
	}

	if prepareFormat != "yaml" && prepareFormat != "json" {
		return fmt.Errorf("unknown plan format %q (expected yaml or json)", prepareFormat)
	}

	ctx := context.Background()

	if err := prepareOnce(ctx, cfg, logger, docPath); err != nil {
		if !prepareWatch {
			return err
		}
		// In watch mode a broken document is a state to recover from,
		// not a reason to exit.
		fmt.Fprintf(os.Stderr, "Preparation failed: %v\n", err)
	}

	if !prepareWatch {
		return nil
	}

	return watchAndPrepare(cfg, logger, docPath)
}

// prepareOnce runs the full pipeline for one document revision.
func prepareOnce(ctx context.Context, cfg *config.Config, logger logging.Logger, docPath string) error {
	fs := afero.NewOsFs()

	doc, err := document.Load(fs, docPath)
	if err != nil {
		return err
	}

	calc, inputs, _ := doc.Build()
	calc.WithLogger(logger)

	if err := calc.SetParentRemoteFolder(inputs.ParentFolder); err != nil {
		return err
	}

	stage := uscf.NewStage(fs, filepath.Join(cfg.Staging.Dir, doc.Calculation))
	info, err := calc.Prepare(ctx, stage, inputs)
	if err != nil {
		return err
	}

	if err := writePlan(info, cfg.Plan.File); err != nil {
		return err
	}

	fmt.Printf("✅ Prepared %s\n", doc.Calculation)
	fmt.Printf("   Input deck: %s\n", stage.Path(uscf.InputFileName))
	if cfg.Plan.File != "" {
		fmt.Printf("   Plan: %s\n", cfg.Plan.File)
	}

	return nil
}

// writePlan encodes the submission descriptor to the configured sink.
func writePlan(info *uscf.CalcInfo, file string) error {
	var (
		encoded []byte
		err     error
	)

	switch prepareFormat {
	case "json":
		encoded, err = json.MarshalIndent(info, "", "  ")
		if err == nil {
			encoded = append(encoded, '\n')
		}
	default:
		encoded, err = yaml.Marshal(info)
	}
	if err != nil {
		return fmt.Errorf("failed to encode plan: %w", err)
	}

	if file == "" {
		_, err = os.Stdout.Write(encoded)
		return err
	}

	if err := os.WriteFile(file, encoded, 0o644); err != nil {
		return fmt.Errorf("failed to write plan: %w", err)
	}

	return nil
}

func watchAndPrepare(cfg *config.Config, logger logging.Logger, docPath string) error {
	debounce := time.Duration(cfg.Watch.DebounceMs) * time.Millisecond
	fileWatcher, err := watcher.NewFileWatcher(debounce)
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fileWatcher.Stop()
	fileWatcher.WithLogger(logger)

	fileWatcher.AddFilter(watcher.NoHiddenFilter)
	fileWatcher.AddFilter(watcher.NoBackupFilter)

	// The plan file must never retrigger preparation when it lands in a
	// watched directory.
	if planFile := cfg.Plan.File; planFile != "" {
		fileWatcher.AddFilter(func(path string) bool {
			return filepath.Clean(path) != filepath.Clean(planFile)
		})
	}

	docFilter := watcher.PathFilter(docPath)
	if len(cfg.Watch.Paths) == 0 {
		fileWatcher.AddFilter(docFilter)
	} else {
		fileWatcher.AddFilter(func(path string) bool {
			return docFilter(path) || watcher.YamlFilter(path)
		})
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fmt.Println("🔍 Setting up document watching...")
	if err := fileWatcher.AddDocument(docPath); err != nil {
		return fmt.Errorf("failed to watch document: %w", err)
	}
	fmt.Printf("   - Watching: %s\n", docPath)

	for _, path := range cfg.Watch.Paths {
		if err := fileWatcher.AddRecursive(path); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to watch path %s: %v\n", path, err)
		} else {
			fmt.Printf("   - Watching: %s\n", path)
		}
	}

	fileWatcher.AddHandler(func(events []watcher.ChangeEvent) error {
		fmt.Printf("📄 %d change(s) detected, re-preparing\n", len(events))
		if err := prepareOnce(ctx, cfg, logger, docPath); err != nil {
			fmt.Fprintf(os.Stderr, "Preparation failed: %v\n", err)
		}
		return nil
	})

	if err := fileWatcher.Start(ctx); err != nil {
		return fmt.Errorf("failed to start file watcher: %w", err)
	}

	fmt.Println("👀 Watching for changes... (Press Ctrl+C to stop)")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	<-sigChan
	fmt.Println("\n🛑 Stopping")
	cancel()

	return nil
}
