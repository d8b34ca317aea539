package interactive

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// CurrentViewStateVersion is the persisted view state format version.
const CurrentViewStateVersion = 1

// ViewState is the small per-plot blob viewer shells persist between
// sessions. It carries an explicit version tag; decoding any other
// version returns the defaults rather than partially applying unknown
// fields.
type ViewState struct {
	Version   int      `json:"version"`
	Zoom      float64  `json:"zoom,omitempty"`
	AutoFit   bool     `json:"auto_fit,omitempty"`
	MinWidth  float64  `json:"min_width,omitempty"`
	MaxWidth  float64  `json:"max_width,omitempty"`
	MinHeight float64  `json:"min_height,omitempty"`
	MaxHeight float64  `json:"max_height,omitempty"`
	Collapsed []string `json:"collapsed,omitempty"`
}

// DefaultViewState returns the state of a freshly opened plot.
func DefaultViewState() ViewState {
	return ViewState{Version: CurrentViewStateVersion, Zoom: 1}
}

// DecodeViewState parses a persisted view state. Unparseable blobs and
// unrecognized versions return the defaults.
func DecodeViewState(data []byte) ViewState {
	var vs ViewState
	if err := json.Unmarshal(data, &vs); err != nil || vs.Version != CurrentViewStateVersion {
		return DefaultViewState()
	}
	return vs
}

// Encode marshals the state with the current version stamped in.
func (v ViewState) Encode() ([]byte, error) {
	v.Version = CurrentViewStateVersion
	return json.MarshalIndent(v, "", "  ")
}

// CaptureViewState snapshots the plot's persistable state: the group
// IDs whose effective collapse state is on, in stable order.
func (p *Plot) CaptureViewState() ViewState {
	vs := DefaultViewState()
	for _, id := range p.tree.GroupIDs() {
		collapsed := false
		if g, ok := p.tree.Group(id); ok {
			collapsed = g.Collapsed
		}
		if v, ok := p.state.Collapsed[id]; ok {
			collapsed = v
		}
		if collapsed {
			vs.Collapsed = append(vs.Collapsed, id)
		}
	}
	sort.Strings(vs.Collapsed)
	return vs
}

// ApplyViewState restores a captured collapse set: listed groups
// collapse, all others expand. Unknown IDs are ignored. No-op when the
// spec disables collapsing, matching ToggleGroup.
func (p *Plot) ApplyViewState(vs ViewState) {
	if !p.Interaction().Collapse {
		return
	}
	collapsed := make(map[string]bool, len(vs.Collapsed))
	for _, id := range vs.Collapsed {
		if _, ok := p.tree.Group(id); ok {
			collapsed[id] = true
		}
	}
	for _, id := range p.tree.GroupIDs() {
		if _, ok := collapsed[id]; !ok {
			collapsed[id] = false
		}
	}
	p.state.Collapsed = collapsed
	p.recompute()
}

// =============================================================================
// View State Store
// =============================================================================

// ViewStateStore persists view state as one JSON file per plot id.
type ViewStateStore struct {
	mu      sync.RWMutex
	baseDir string
}

// NewViewStateStore creates a file-based view state store.
// If baseDir is empty, defaults to ~/.config/forestplot/state/
func NewViewStateStore(baseDir string) (*ViewStateStore, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		baseDir = filepath.Join(home, ".config", "forestplot", "state")
	}
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	return &ViewStateStore{baseDir: baseDir}, nil
}

func (s *ViewStateStore) statePath(id string) string {
	return filepath.Join(s.baseDir, id+".json")
}

// Load returns the persisted state for a plot id, or the defaults when
// nothing usable is stored. Load never fails; a corrupt or foreign file
// reads as a fresh state.
func (s *ViewStateStore) Load(ctx context.Context, id string) ViewState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.statePath(id))
	if err != nil {
		return DefaultViewState()
	}
	return DecodeViewState(data)
}

// Save persists the state for a plot id.
func (s *ViewStateStore) Save(ctx context.Context, id string, vs ViewState) error {
	data, err := vs.Encode()
	if err != nil {
		return fmt.Errorf("marshal view state: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.WriteFile(s.statePath(id), data, 0600); err != nil {
		return fmt.Errorf("write view state: %w", err)
	}
	return nil
}

// Delete removes the persisted state for a plot id.
func (s *ViewStateStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.statePath(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove view state: %w", err)
	}
	return nil
}

// Path returns the base directory for view state files.
func (s *ViewStateStore) Path() string {
	return s.baseDir
}
