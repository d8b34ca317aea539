package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/matzehuels/forestplot/pkg/errors"
	"github.com/matzehuels/forestplot/pkg/forest"
)

// FileStore persists plots as JSON envelope files in a directory.
// Suitable for a single-host server or CLI use.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// fileRecord wraps the canonical spec encoding with listing metadata,
// so List never has to decode full specs.
type fileRecord struct {
	ID        string          `json:"id"`
	Title     string          `json:"title,omitempty"`
	Rows      int             `json:"rows"`
	Spec      json.RawMessage `json:"spec"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// NewFileStore creates a file-based plot store.
// If baseDir is empty, defaults to ~/.config/forestplot/plots/
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		baseDir = filepath.Join(home, ".config", "forestplot", "plots")
	}
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("create plot dir: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

func (s *FileStore) plotPath(id string) string {
	return filepath.Join(s.baseDir, id+".json")
}

func (s *FileStore) Put(ctx context.Context, id string, spec *forest.Spec) error {
	if err := validID(id); err != nil {
		return err
	}
	raw, err := spec.Marshal()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	rec := fileRecord{
		ID:        id,
		Title:     spec.Labels.Title,
		Rows:      len(spec.Data.Rows),
		Spec:      raw,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if prev, err := s.readRecord(id); err == nil {
		rec.CreatedAt = prev.CreatedAt
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal plot record: %w", err)
	}
	if err := os.WriteFile(s.plotPath(id), data, 0600); err != nil {
		return fmt.Errorf("write plot file: %w", err)
	}
	return nil
}

func (s *FileStore) Get(ctx context.Context, id string) (*forest.Spec, error) {
	if err := validID(id); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, err := s.readRecord(id)
	if err != nil {
		return nil, err
	}
	return forest.Parse(rec.Spec)
}

func (s *FileStore) Delete(ctx context.Context, id string) error {
	if err := validID(id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.plotPath(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove plot file: %w", err)
	}
	return nil
}

func (s *FileStore) List(ctx context.Context) ([]Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("read plot dir: %w", err)
	}

	var infos []Info
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		id := entry.Name()[:len(entry.Name())-len(".json")]
		rec, err := s.readRecord(id)
		if err != nil {
			// Unreadable or foreign files don't break the listing.
			continue
		}
		infos = append(infos, Info{
			ID:        rec.ID,
			Title:     rec.Title,
			Rows:      rec.Rows,
			CreatedAt: rec.CreatedAt,
			UpdatedAt: rec.UpdatedAt,
		})
	}
	sortInfos(infos)
	return infos, nil
}

func (s *FileStore) Close() error { return nil }

// Path returns the base directory for plot files.
func (s *FileStore) Path() string {
	return s.baseDir
}

// readRecord loads one envelope. Callers hold the lock.
func (s *FileStore) readRecord(id string) (*fileRecord, error) {
	data, err := os.ReadFile(s.plotPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, notFound(id)
		}
		return nil, fmt.Errorf("read plot file: %w", err)
	}
	var rec fileRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "parse plot record %s", id)
	}
	return &rec, nil
}

var _ Store = (*FileStore)(nil)
