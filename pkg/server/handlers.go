package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vango-dev/statebox/pkg/state"
)

type stateInfo struct {
	Name  string          `json:"name"`
	Value json.RawMessage `json:"value,omitempty"`
	Stats state.Stats     `json:"stats"`
}

type errorBody struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ok")
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	names := s.store.Names()
	out := make([]stateInfo, 0, len(names))
	for _, name := range names {
		c, ok := s.store.Lookup(name)
		if !ok {
			continue
		}
		out = append(out, stateInfo{Name: name, Stats: c.Stats()})
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	c, ok := s.lookup(w, r)
	if !ok {
		return
	}

	stats := c.Stats()
	if stats.Poisoned {
		s.writeError(w, http.StatusConflict, state.ErrPoisoned)
		return
	}

	value, err := c.ValueJSON()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, stateInfo{Name: c.Name(), Value: value, Stats: stats})
}

func (s *Server) handlePut(w http.ResponseWriter, r *http.Request) {
	c, ok := s.lookup(w, r)
	if !ok {
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.config.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, http.StatusRequestEntityTooLarge, err)
			return
		}
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := c.SetJSON(r.Context(), body); err != nil {
		switch {
		case errors.Is(err, state.ErrDecode):
			s.writeError(w, http.StatusBadRequest, err)
		case errors.Is(err, state.ErrPoisoned):
			s.writeError(w, http.StatusConflict, err)
		default:
			s.writeError(w, http.StatusInternalServerError, err)
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCompact(w http.ResponseWriter, r *http.Request) {
	c, ok := s.lookup(w, r)
	if !ok {
		return
	}
	removed := c.Compact()
	s.logger.Info("compacted", "container", c.Name(), "removed", removed)
	s.writeJSON(w, http.StatusOK, map[string]int{"removed": removed})
}

// lookup resolves the {name} URL parameter, writing 404 when unknown.
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (state.Inspectable, bool) {
	name := chi.URLParam(r, "name")
	c, ok := s.store.Lookup(name)
	if !ok {
		s.writeJSON(w, http.StatusNotFound, errorBody{Error: "unknown state " + name})
		return nil, false
	}
	return c, true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("write response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, errorBody{Error: err.Error()})
}
