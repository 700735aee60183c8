package api

import (
	"net/http"

	"github.com/padelrpm/ranking/internal/domain/record"
)

// SessionsHandler serves the raw session rows as JSON.
type SessionsHandler struct {
	deps Dependencies
}

// NewSessionsHandler creates a new sessions handler.
func NewSessionsHandler(deps Dependencies) *SessionsHandler {
	return &SessionsHandler{deps: deps}
}

// HandleGetSessions handles GET /api/sesiones requests. The rows are served
// exactly as fetched, one JSON object per worksheet row. refresh=1 bypasses
// the source cache.
func (h *SessionsHandler) HandleGetSessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}

	force := forceParam(r)
	rows, err := h.deps.Sessions(r.Context(), force)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "sessions_failed", ErrUpstream)
		return
	}
	if rows == nil {
		rows = []record.Record{}
	}
	writeJSON(w, http.StatusOK, rows)
}

// forceParam reads the cache-bypass flag from the query string.
func forceParam(r *http.Request) bool {
	switch r.URL.Query().Get("refresh") {
	case "1", "true", "yes":
		return true
	}
	return false
}
