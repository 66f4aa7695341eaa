package dataset

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"ControlCajaSaas/internal/config"
)

// ErrNoSavedFile reports that no workbook has been uploaded yet.
var ErrNoSavedFile = errors.New("no hay archivo guardado")

// Store persists uploaded workbooks under the data directory and caches the
// loaded datasets. The files on disk are the cross-session resource; the
// cached datasets are replaced wholesale on upload or clear, so readers only
// ever observe a fully loaded dataset.
type Store struct {
	dir string

	mu         sync.RWMutex
	single     *Dataset
	comparison *Dataset
}

func NewStore(dir string) *Store {
	if dir == "" {
		dir = config.DefaultDataDir
	}
	return &Store{dir: dir}
}

func (s *Store) Dir() string { return s.dir }

// SaveSingle writes the uploaded workbook to disk, loads it, and makes it
// the current single-mode dataset.
func (s *Store) SaveSingle(content []byte, filename string) (*Dataset, error) {
	ds, err := Load(bytes.NewReader(content), filename)
	if err != nil {
		return nil, err
	}
	if err := s.writeFile(config.SingleWorkbookBase, filename, content); err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.single = ds
	s.mu.Unlock()
	return ds, nil
}

// SaveComparison persists both workbooks and rebuilds the tagged, combined
// dataset. Both files must load cleanly before either replaces saved state.
func (s *Store) SaveComparison(ejecutado []byte, ejName string, proyectado []byte, prName string) (*Dataset, error) {
	ds, err := LoadComparison(bytes.NewReader(ejecutado), ejName, bytes.NewReader(proyectado), prName)
	if err != nil {
		return nil, err
	}
	if err := s.writeFile(config.ExecutedBase, ejName, ejecutado); err != nil {
		return nil, err
	}
	if err := s.writeFile(config.ProjectedBase, prName, proyectado); err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.comparison = ds
	s.mu.Unlock()
	return ds, nil
}

// Single returns the current single-mode dataset, reloading from disk when
// the process restarted after an upload.
func (s *Store) Single() (*Dataset, error) {
	s.mu.RLock()
	if s.single != nil {
		defer s.mu.RUnlock()
		return s.single, nil
	}
	s.mu.RUnlock()

	ds, err := s.loadFromDisk(config.SingleWorkbookBase)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.single = ds
	s.mu.Unlock()
	return ds, nil
}

// Comparison returns the combined executed/projected dataset, reloading both
// saved files when needed.
func (s *Store) Comparison() (*Dataset, error) {
	s.mu.RLock()
	if s.comparison != nil {
		defer s.mu.RUnlock()
		return s.comparison, nil
	}
	s.mu.RUnlock()

	ejPath, err := s.findStored(config.ExecutedBase)
	if err != nil {
		return nil, err
	}
	prPath, err := s.findStored(config.ProjectedBase)
	if err != nil {
		return nil, err
	}
	ej, err := os.Open(ejPath)
	if err != nil {
		return nil, ErrNoSavedFile
	}
	defer ej.Close()
	pr, err := os.Open(prPath)
	if err != nil {
		return nil, ErrNoSavedFile
	}
	defer pr.Close()

	ds, err := LoadComparison(ej, ejPath, pr, prPath)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.comparison = ds
	s.mu.Unlock()
	return ds, nil
}

// Clear removes every saved workbook and drops the cached datasets.
func (s *Store) Clear() error {
	s.mu.Lock()
	s.single = nil
	s.comparison = nil
	s.mu.Unlock()

	var firstErr error
	for _, base := range []string{config.SingleWorkbookBase, config.ExecutedBase, config.ProjectedBase} {
		matches, err := filepath.Glob(filepath.Join(s.dir, base+".*"))
		if err != nil {
			continue
		}
		for _, path := range matches {
			if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (s *Store) loadFromDisk(base string) (*Dataset, error) {
	path, err := s.findStored(base)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNoSavedFile
		}
		return nil, err
	}
	defer f.Close()
	return Load(f, path)
}

// findStored locates the saved file for a base name regardless of which
// extension the original upload carried.
func (s *Store) findStored(base string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(s.dir, base+".*"))
	if err != nil || len(matches) == 0 {
		return "", ErrNoSavedFile
	}
	return matches[0], nil
}

func (s *Store) writeFile(base, uploadName string, content []byte) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return err
	}
	ext := strings.ToLower(filepath.Ext(uploadName))
	if ext == "" {
		ext = ".xlsx"
	}
	// Drop any stale copy saved under a different extension.
	if matches, err := filepath.Glob(filepath.Join(s.dir, base+".*")); err == nil {
		for _, path := range matches {
			if path != filepath.Join(s.dir, base+ext) {
				os.Remove(path)
			}
		}
	}
	return os.WriteFile(filepath.Join(s.dir, base+ext), content, 0644)
}
