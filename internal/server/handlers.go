package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mesh-intelligence/facet/pkg/types"
)

// request is the JSON body shared by every operation endpoint. Read
// operations use where/select/include; writes add data.
type request struct {
	Where    types.Where      `json:"where,omitempty"`
	Select   types.SelectMap  `json:"select,omitempty"`
	Include  types.IncludeMap `json:"include,omitempty"`
	Strategy types.Strategy   `json:"relationLoadStrategy,omitempty"`
	Data     types.Record     `json:"data,omitempty"`
}

func (r *request) query() types.Query {
	return types.Query{
		Where:    r.Where,
		Select:   r.Select,
		Include:  r.Include,
		Strategy: r.Strategy,
	}
}

// operation executes one decoded request against a collection and returns
// the response body.
type operation func(col types.Collection, req *request) (any, error)

// handle wraps an operation with request decoding, error mapping, logging,
// and metrics.
func (s *Server) handle(op string, fn operation) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		model := chi.URLParam(r, "model")

		status := http.StatusOK
		defer func() {
			s.metrics.observe(model, op, status, time.Since(start))
		}()

		var req request
		if r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				status = http.StatusBadRequest
				writeError(w, status, fmt.Errorf("decode request: %w", err))
				return
			}
		}

		col, err := s.store.Collection(model)
		if err != nil {
			status = errStatus(err)
			writeError(w, status, err)
			return
		}

		body, err := fn(col, &req)
		if err != nil {
			status = errStatus(err)
			s.log.Error("operation failed", "model", model, "op", op, "error", err)
			writeError(w, status, err)
			return
		}
		writeJSON(w, status, body)
	}
}

func (s *Server) findUnique(col types.Collection, req *request) (any, error) {
	// A missing record serializes as null; absence is a value, not an error.
	return col.FindUnique(req.query())
}

func (s *Server) findMany(col types.Collection, req *request) (any, error) {
	return col.FindMany(req.query())
}

func (s *Server) create(col types.Collection, req *request) (any, error) {
	return col.Create(req.Data, req.query())
}

func (s *Server) update(col types.Collection, req *request) (any, error) {
	return col.Update(req.Where, req.Data, req.query())
}

func (s *Server) delete(col types.Collection, req *request) (any, error) {
	if err := col.Delete(req.Where); err != nil {
		return nil, err
	}
	return map[string]any{"ok": true}, nil
}

func (s *Server) count(col types.Collection, req *request) (any, error) {
	n, err := col.Count(req.Where)
	if err != nil {
		return nil, err
	}
	return map[string]any{"count": n}, nil
}

// errStatus maps store errors onto HTTP statuses: directive and data
// validation problems are client errors, missing models and records are
// 404s, everything else is a 500.
func errStatus(err error) int {
	switch {
	case errors.Is(err, types.ErrModelNotFound),
		errors.Is(err, types.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, types.ErrUnknownField),
		errors.Is(err, types.ErrNotRelation),
		errors.Is(err, types.ErrSelectIncludeConflict),
		errors.Is(err, types.ErrEmptySelect),
		errors.Is(err, types.ErrInvalidWhere),
		errors.Is(err, types.ErrUnknownStrategy),
		errors.Is(err, types.ErrInvalidData):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
