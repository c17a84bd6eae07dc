package uscf

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
)

// Stage is the local scratch directory the input deck is written into
// before the scheduler collaborator uploads it.
type Stage struct {
	fs   afero.Fs
	root string
}

// NewStage creates a stage rooted at dir on the given filesystem.
func NewStage(fs afero.Fs, dir string) *Stage {
	return &Stage{fs: fs, root: dir}
}

// NewOsStage creates a stage rooted at dir on the host filesystem.
func NewOsStage(dir string) *Stage {
	return NewStage(afero.NewOsFs(), dir)
}

// Path returns the path of name inside the stage.
func (s *Stage) Path(name string) string {
	return filepath.Join(s.root, name)
}

// WriteFile writes data to name inside the stage, creating the stage
// directory if needed.
func (s *Stage) WriteFile(name string, data []byte) error {
	if err := s.fs.MkdirAll(s.root, 0o755); err != nil {
		return fmt.Errorf("creating staging folder %s: %w", s.root, err)
	}

	target := s.Path(name)
	if err := afero.WriteFile(s.fs, target, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", target, err)
	}
	return nil
}

// ReadFile reads name back from the stage.
func (s *Stage) ReadFile(name string) ([]byte, error) {
	data, err := afero.ReadFile(s.fs, s.Path(name))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.Path(name), err)
	}
	return data, nil
}
