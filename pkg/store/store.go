// Package store persists plot specs by id for the preview server.
//
// Three backends share one interface:
//   - memory: in-process map for development and tests
//   - file: JSON envelopes under a config directory, for single-host use
//   - mongo: MongoDB collection for shared deployments
//
// Every backend round-trips specs through their canonical JSON encoding,
// so a stored spec decodes to the same plot regardless of backend. Get
// returns a freshly decoded spec on each call; callers own the copy and
// may mutate it without affecting the store.
//
// # Usage
//
//	st := store.NewMemoryStore()
//	if err := st.Put(ctx, id, spec); err != nil {
//	    return err
//	}
//	spec, err := st.Get(ctx, id)
//	if errors.Is(err, errors.ErrCodePlotNotFound) {
//	    // Unknown id
//	}
package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/matzehuels/forestplot/pkg/errors"
	"github.com/matzehuels/forestplot/pkg/forest"
)

// Store is the interface for plot spec storage backends.
type Store interface {
	// Put stores a spec under the given id, replacing any previous spec.
	Put(ctx context.Context, id string, spec *forest.Spec) error

	// Get retrieves the spec stored under id. Returns a PLOT_NOT_FOUND
	// error when the id is unknown.
	Get(ctx context.Context, id string) (*forest.Spec, error)

	// Delete removes the spec stored under id. Deleting an unknown id
	// is not an error.
	Delete(ctx context.Context, id string) error

	// List returns summaries of all stored plots, newest first.
	List(ctx context.Context) ([]Info, error)

	// Close releases backend resources.
	Close() error
}

// Info summarizes a stored plot without decoding the full spec.
type Info struct {
	ID        string    `json:"id"`
	Title     string    `json:"title,omitempty"`
	Rows      int       `json:"rows"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// validID rejects ids that could escape a storage namespace. Server ids
// are UUIDs, but ids also arrive from URLs and CLI arguments.
func validID(id string) error {
	if id == "" {
		return errors.New(errors.ErrCodeInvalidInput, "missing plot id")
	}
	if strings.ContainsAny(id, "/\\") || strings.Contains(id, "..") {
		return errors.New(errors.ErrCodeInvalidInput, "invalid plot id: %q", id)
	}
	return nil
}

func notFound(id string) error {
	return errors.New(errors.ErrCodePlotNotFound, "plot not found: %s", id)
}

// =============================================================================
// Memory Store
// =============================================================================

// MemoryStore is an in-process store for development and testing.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*memoryEntry
}

type memoryEntry struct {
	info Info
	data []byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]*memoryEntry)}
}

func (s *MemoryStore) Put(ctx context.Context, id string, spec *forest.Spec) error {
	if err := validID(id); err != nil {
		return err
	}
	data, err := spec.Marshal()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	entry, ok := s.entries[id]
	if !ok {
		entry = &memoryEntry{info: Info{ID: id, CreatedAt: now}}
		s.entries[id] = entry
	}
	entry.data = data
	entry.info.Title = spec.Labels.Title
	entry.info.Rows = len(spec.Data.Rows)
	entry.info.UpdatedAt = now
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*forest.Spec, error) {
	if err := validID(id); err != nil {
		return nil, err
	}

	s.mu.RLock()
	entry, ok := s.entries[id]
	s.mu.RUnlock()

	if !ok {
		return nil, notFound(id)
	}
	return forest.Parse(entry.data)
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	if err := validID(id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
	return nil
}

func (s *MemoryStore) List(ctx context.Context) ([]Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	infos := make([]Info, 0, len(s.entries))
	for _, entry := range s.entries {
		infos = append(infos, entry.info)
	}
	sortInfos(infos)
	return infos, nil
}

func (s *MemoryStore) Close() error { return nil }

// sortInfos orders summaries newest first, with the id as tiebreaker so
// listings are stable under equal timestamps.
func sortInfos(infos []Info) {
	sort.Slice(infos, func(i, j int) bool {
		if !infos[i].UpdatedAt.Equal(infos[j].UpdatedAt) {
			return infos[i].UpdatedAt.After(infos[j].UpdatedAt)
		}
		return infos[i].ID < infos[j].ID
	})
}

var _ Store = (*MemoryStore)(nil)
