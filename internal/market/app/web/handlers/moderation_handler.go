package handlers

import (
	"net/http"

	"surplusmarket_api/internal/auth"
	"surplusmarket_api/internal/market/business"
	"surplusmarket_api/internal/market/session"
	"surplusmarket_api/pkg/logger"
)

// ModerationHandler is the admin surface: the featured/hidden toggles, the
// moderation refresh that includes hidden rows, and the sync journal that
// records where local state and the remote store may disagree.
type ModerationHandler struct {
	manager *business.Manager
	log     logger.Logger
}

func NewModerationHandler(manager *business.Manager, log logger.Logger) *ModerationHandler {
	return &ModerationHandler{manager: manager, log: log}
}

func (h *ModerationHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.Handle("POST /api/listings/{id}/moderate", auth.RequireAdmin(http.HandlerFunc(h.ModerateHandler)))
	mux.Handle("POST /api/listings/refresh", auth.RequireAdmin(http.HandlerFunc(h.RefreshHandler)))
	mux.Handle("GET /api/journal", auth.RequireAdmin(http.HandlerFunc(h.JournalHandler)))
	mux.Handle("POST /api/journal/compact", auth.RequireAdmin(http.HandlerFunc(h.CompactHandler)))
}

// ModerateHandler toggles the only two admin-mutable fields. Omitted flags
// stay untouched.
func (h *ModerationHandler) ModerateHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, ok := h.manager.Get(id); !ok {
		writeNotFound(w, h.log, "listing")
		return
	}

	var patch struct {
		Featured *bool `json:"featured"`
		Hidden   *bool `json:"hidden"`
	}
	if err := decodeBody(r, &patch); err != nil {
		writeError(w, h.log, err)
		return
	}

	actor := session.ActorFrom(r.Context())
	l, err := h.manager.AdminUpdate(r.Context(), actor, id, patch.Featured, patch.Hidden)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, h.log, http.StatusOK, l)
}

// RefreshHandler re-pulls the listing set with hidden rows included, so a
// moderation session sees what non-admins cannot.
func (h *ModerationHandler) RefreshHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.RefreshAll(r.Context()); err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, h.log, http.StatusOK, map[string]int{"listings": h.manager.Len()})
}

type journalResponse struct {
	Operations []business.Operation `json:"operations"`
	Unsynced   int                  `json:"unsynced"`
}

func (h *ModerationHandler) JournalHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.log, http.StatusOK, journalResponse{
		Operations: h.manager.Journal().Operations(),
		Unsynced:   len(h.manager.Journal().Unsynced()),
	})
}

func (h *ModerationHandler) CompactHandler(w http.ResponseWriter, r *http.Request) {
	dropped := h.manager.Journal().Compact()
	h.log.Log("journal compacted, %d settled operations dropped", dropped)
	writeJSON(w, h.log, http.StatusOK, map[string]int{"dropped": dropped})
}
