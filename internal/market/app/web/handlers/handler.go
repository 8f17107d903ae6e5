// Package handlers exposes the market core to the presentation layer: the
// filtered/sorted listing view, per-listing derived pricing strings and the
// capability predicates gating edit/delete/moderation affordances. Every
// check made here is advisory; the remote store's row policies are the real
// boundary and may still reject what these handlers permit.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"surplusmarket_api/internal/market/business"
	"surplusmarket_api/internal/market/storage"
	"surplusmarket_api/pkg/logger"
)

// Handler registers its routes on the served mux.
type Handler interface {
	RegisterRoutes(mux *http.ServeMux)
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, log logger.Logger, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error("failed to encode response: %v", err)
	}
}

// writeError maps the error taxonomy onto HTTP statuses: bad input 400,
// missing capability 403, store rejection or transport failure 502,
// unusable configuration 503. Anonymous callers never reach this path for
// authorization, RequireSession answers 401 before the handler runs.
func writeError(w http.ResponseWriter, log logger.Logger, err error) {
	var (
		verr *business.ValidationError
		aerr *business.AuthorizationError
		rerr *storage.RemoteError
		nerr *storage.NetworkError
		serr *storage.StorageError
		cerr *storage.ConfigError
	)
	switch {
	case errors.As(err, &verr):
		writeJSON(w, log, http.StatusBadRequest, errorResponse{Error: verr.Error()})
	case errors.As(err, &aerr):
		writeJSON(w, log, http.StatusForbidden, errorResponse{Error: aerr.Error()})
	case errors.As(err, &rerr), errors.As(err, &nerr), errors.As(err, &serr):
		writeJSON(w, log, http.StatusBadGateway, errorResponse{Error: err.Error()})
	case errors.As(err, &cerr):
		writeJSON(w, log, http.StatusServiceUnavailable, errorResponse{Error: cerr.Error()})
	default:
		log.Error("unclassified handler error: %v", err)
		writeJSON(w, log, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func writeNotFound(w http.ResponseWriter, log logger.Logger, what string) {
	writeJSON(w, log, http.StatusNotFound, errorResponse{Error: what + " not found"})
}

// decodeBody reads a JSON request body into dst, capping it so a hostile
// payload cannot exhaust memory.
func decodeBody(r *http.Request, dst interface{}) error {
	defer r.Body.Close()
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	if err := dec.Decode(dst); err != nil {
		return &business.ValidationError{Field: "body", Reason: "malformed json"}
	}
	return nil
}
