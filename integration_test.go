package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calcforge/uscfprep/internal/config"
	"github.com/calcforge/uscfprep/internal/document"
	"github.com/calcforge/uscfprep/internal/uscf"
	"github.com/calcforge/uscfprep/internal/watcher"
)

func TestIntegration_DocumentToPlan(t *testing.T) {
	workDir := t.TempDir()
	docPath := filepath.Join(workDir, "calc.yml")
	require.NoError(t, os.WriteFile(docPath, []byte(document.Scaffold), 0o644))

	doc, err := document.Load(afero.NewOsFs(), docPath)
	require.NoError(t, err)

	calc, inputs, graph := doc.Build()
	require.NotNil(t, graph)
	require.NoError(t, calc.SetParentRemoteFolder(inputs.ParentFolder))

	stagingDir := filepath.Join(workDir, "staging", doc.Calculation)
	stage := uscf.NewOsStage(stagingDir)

	info, err := calc.Prepare(context.Background(), stage, inputs)
	require.NoError(t, err)

	// The deck landed on the real filesystem
	deck, err := os.ReadFile(filepath.Join(stagingDir, uscf.InputFileName))
	require.NoError(t, err)
	assert.Contains(t, string(deck), "&INPUTUSCF")
	assert.Contains(t, string(deck), "nq1 = 2")
	assert.Contains(t, string(deck), "outdir = './out/'")

	// The plan points the scheduler back at the parent scratch folder
	require.Len(t, info.Plan.RemoteCopy, 1)
	assert.Equal(t, "/scratch/project/pw-0001/out", info.Plan.RemoteCopy[0].SourcePath)
	assert.Equal(t, "./out/", info.Plan.RemoteCopy[0].DestPath)
	assert.Equal(t,
		[]string{"aiida.out", "aiida.chi.dat", "aiida.Hubbard_U.dat"},
		info.Plan.Retrieve)
	assert.Equal(t, []string{"-in", "aiida.in"}, info.Invocation.CmdlineParams)
}

func TestIntegration_ConfigurationLoading(t *testing.T) {
	// Save original environment
	originalEnv := os.Environ()
	defer func() {
		// Restore environment
		os.Clearenv()
		for _, env := range originalEnv {
			parts := strings.SplitN(env, "=", 2)
			if len(parts) == 2 {
				os.Setenv(parts[0], parts[1])
			}
		}
	}()

	// Test different configuration sources
	tests := []struct {
		name   string
		setup  func()
		verify func(t *testing.T, cfg *config.Config)
	}{
		{
			name: "default configuration",
			setup: func() {
				viper.Reset()
			},
			verify: func(t *testing.T, cfg *config.Config) {
				assert.Equal(t, "calc.yml", cfg.Document.Path)
				assert.Equal(t, "./staging", cfg.Staging.Dir)
				assert.Equal(t, 300, cfg.Watch.DebounceMs)
			},
		},
		{
			name: "custom configuration",
			setup: func() {
				viper.Reset()
				viper.Set("document.path", "runs/fe2o3/calc.yml")
				viper.Set("staging.dir", "/tmp/uscfprep-staging")
				viper.Set("logging.level", "debug")
				viper.Set("logging.format", "json")
				viper.Set("watch.debounce_ms", 500)
				viper.Set("watch.paths", []string{"./pseudo"})
			},
			verify: func(t *testing.T, cfg *config.Config) {
				assert.Equal(t, "runs/fe2o3/calc.yml", cfg.Document.Path)
				assert.Equal(t, "/tmp/uscfprep-staging", cfg.Staging.Dir)
				assert.Equal(t, "debug", cfg.Logging.Level)
				assert.Equal(t, "json", cfg.Logging.Format)
				assert.Equal(t, 500, cfg.Watch.DebounceMs)
				assert.Equal(t, []string{"./pseudo"}, cfg.Watch.Paths)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()

			cfg, err := config.Load()
			require.NoError(t, err)

			tt.verify(t, cfg)
		})
	}
}

func TestIntegration_ErrorHandling(t *testing.T) {
	// Configuration loading with undecodable data
	viper.Reset()
	viper.Set("document", "not_a_section")

	_, err := config.Load()
	assert.Error(t, err)

	// Configuration loading with invalid values
	viper.Reset()
	viper.Set("logging.level", "verbose")

	_, err = config.Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")

	viper.Reset()
}

func TestIntegration_WatcherRePreparation(t *testing.T) {
	workDir := t.TempDir()
	docPath := filepath.Join(workDir, "calc.yml")
	require.NoError(t, os.WriteFile(docPath, []byte(document.Scaffold), 0o644))

	var prepared atomic.Int32

	fw, err := watcher.NewFileWatcher(50 * time.Millisecond)
	require.NoError(t, err)
	defer fw.Stop()

	fw.AddFilter(watcher.PathFilter(docPath))
	fw.AddHandler(func(events []watcher.ChangeEvent) error {
		doc, err := document.Load(afero.NewOsFs(), docPath)
		if err != nil {
			return err
		}

		calc, inputs, _ := doc.Build()
		if err := calc.SetParentRemoteFolder(inputs.ParentFolder); err != nil {
			return err
		}

		stage := uscf.NewStage(afero.NewMemMapFs(), "/stage")
		if _, err := calc.Prepare(context.Background(), stage, inputs); err != nil {
			return err
		}

		prepared.Add(1)
		return nil
	})

	require.NoError(t, fw.AddDocument(docPath))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, fw.Start(ctx))

	// Give the watcher time to come up before touching the document
	time.Sleep(100 * time.Millisecond)

	updated := strings.Replace(document.Scaffold, "conv_thr: 1.0e-08", "conv_thr: 1.0e-10", 1)
	require.NoError(t, os.WriteFile(docPath, []byte(updated), 0o644))

	assert.Eventually(t, func() bool {
		return prepared.Load() >= 1
	}, 2*time.Second, 50*time.Millisecond, "document change should trigger re-preparation")
}
