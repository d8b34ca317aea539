package server

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/forestplot/pkg/cache"
	apperrors "github.com/matzehuels/forestplot/pkg/errors"
	"github.com/matzehuels/forestplot/pkg/forest"
	"github.com/matzehuels/forestplot/pkg/interactive"
	"github.com/matzehuels/forestplot/pkg/observability"
)

// maxSpecSize caps uploaded spec documents at 8 MiB.
const maxSpecSize = 8 << 20

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleCreate ingests a spec document and returns the new plot id.
func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxSpecSize))
	if err != nil {
		s.writeError(w, r, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "read request body"))
		return
	}

	spec, err := forest.Parse(body)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := interactive.New(spec)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.store.Put(r.Context(), p.ID(), spec); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.register(p)

	s.logger.Info("plot created", "id", p.ID(), "rows", len(spec.Data.Rows))
	writeJSON(w, http.StatusCreated, map[string]string{"id": p.ID()})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	infos, err := s.store.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"plots": infos})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.drop(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSVG renders the plot's current state, serving repeated reads of
// an unchanged state from the artifact cache. Cache failures degrade to
// rendering, never to an error.
func (s *Server) handleSVG(w http.ResponseWriter, r *http.Request) {
	e, err := s.entry(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	e.mu.Lock()
	key := svgKey(e.hash, e.plot)
	e.mu.Unlock()

	if key != "" {
		if data, hit, err := s.cache.Get(r.Context(), key); err == nil && hit {
			observability.Cache().OnCacheHit(r.Context(), "svg")
			writeSVG(w, data)
			return
		}
		observability.Cache().OnCacheMiss(r.Context(), "svg")
	}

	// Re-key under the render lock so the stored bytes always match
	// the state they were keyed for, even if a mutation landed between
	// the probe and here.
	e.mu.Lock()
	key = svgKey(e.hash, e.plot)
	svg := e.plot.SVG()
	e.mu.Unlock()

	if key != "" {
		if err := s.cache.Set(r.Context(), key, svg, cache.TTLArtifact); err == nil {
			observability.Cache().OnCacheSet(r.Context(), "svg", len(svg))
		}
	}

	writeSVG(w, svg)
}

// handleLayout emits the current geometry as the versioned layout record.
func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	e, err := s.entry(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	e.mu.Lock()
	data, err := e.plot.LayoutJSON()
	e.mu.Unlock()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// handleToggle flips one group's collapse state. The response reports
// whether the toggle applied; specs with collapse disabled report false.
func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	e, err := s.entry(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	group := chi.URLParam(r, "group")

	e.mu.Lock()
	applied := e.plot.ToggleGroup(group)
	e.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]bool{"applied": applied})
}

func (s *Server) handleSort(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Field string `json:"field"`
		Desc  bool   `json:"desc"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	e, err := s.entry(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	e.mu.Lock()
	e.plot.SetSort(req.Field, req.Desc)
	e.mu.Unlock()

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleWidth(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Column string  `json:"column"`
		Width  float64 `json:"width"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Column == "" {
		s.writeError(w, r, apperrors.New(apperrors.ErrCodeMissingField, "missing required field: column"))
		return
	}

	e, err := s.entry(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	e.mu.Lock()
	e.plot.SetColumnWidth(req.Column, req.Width)
	e.mu.Unlock()

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleResize(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Width  float64 `json:"width"`
		Height float64 `json:"height"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	e, err := s.entry(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	e.mu.Lock()
	e.plot.Resize(req.Width, req.Height)
	e.mu.Unlock()

	w.WriteHeader(http.StatusNoContent)
}

// handleGetState returns the persisted shell blob with the collapse set
// refreshed from the live plot, so toggles made through the toggle
// endpoint show up here.
func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	e, err := s.entry(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	e.mu.Lock()
	vs := e.view
	vs.Collapsed = e.plot.CaptureViewState().Collapsed
	e.mu.Unlock()

	writeJSON(w, http.StatusOK, vs)
}

// handlePutState replaces the shell blob. Unrecognized versions are
// discarded and the defaults take their place, never a partial apply.
// The response carries the state that actually took effect.
func (s *Server) handlePutState(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxSpecSize))
	if err != nil {
		s.writeError(w, r, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "read request body"))
		return
	}

	e, err := s.entry(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	vs := interactive.DecodeViewState(body)

	e.mu.Lock()
	e.view = vs
	e.plot.ApplyViewState(vs)
	vs.Collapsed = e.plot.CaptureViewState().Collapsed
	e.mu.Unlock()

	writeJSON(w, http.StatusOK, vs)
}

// =============================================================================
// Helpers
// =============================================================================

// specHash hashes the canonical spec encoding, the same basis the
// pipeline keyer uses, so formatting differences in uploads never split
// the cache. Empty on marshal failure, which disables caching for the
// plot.
func specHash(spec *forest.Spec) string {
	data, err := spec.Marshal()
	if err != nil {
		return ""
	}
	return cache.Hash(data)
}

// svgKey fingerprints everything that shapes the rendered document: the
// spec identity plus the mutable view state. Plots with an active row
// filter return no key because predicates have no stable encoding.
// Callers must hold the plot lock.
func svgKey(specHash string, p *interactive.Plot) string {
	if specHash == "" {
		return ""
	}
	st := p.State()
	if st.Filter != nil {
		return ""
	}
	fp := struct {
		Spec      string             `json:"spec"`
		Collapsed map[string]bool    `json:"collapsed,omitempty"`
		SortField string             `json:"sort_field,omitempty"`
		SortDesc  bool               `json:"sort_desc,omitempty"`
		Widths    map[string]float64 `json:"widths,omitempty"`
		Width     float64            `json:"width,omitempty"`
		Height    float64            `json:"height,omitempty"`
	}{specHash, st.Collapsed, st.SortField, st.SortDesc, st.ColumnWidths, st.Width, st.Height}
	data, err := json.Marshal(fp)
	if err != nil {
		return ""
	}
	return "plotsvg:" + cache.Hash(data)
}

func writeSVG(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "image/svg+xml")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxSpecSize))
	if err := dec.Decode(v); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "decode request body")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps a typed error onto its HTTP status and logs server
// faults.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	observability.HTTP().OnError(r.Context(), r.Method, r.URL.Path, err)

	code := apperrors.GetCode(err)
	if code == "" {
		code = apperrors.ErrCodeInternal
	}
	writeJSON(w, status, map[string]string{
		"error": apperrors.UserMessage(err),
		"code":  string(code),
	})
}

// logRequests logs every request and feeds the HTTP hooks.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		observability.HTTP().OnRequest(r.Context(), r.Method, r.URL.Path)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		duration := time.Since(start)
		observability.HTTP().OnResponse(r.Context(), r.Method, r.URL.Path, rec.status, duration)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", duration,
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
