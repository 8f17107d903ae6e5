package handlers

import (
	"net/http"

	"surplusmarket_api/internal/auth"
	"surplusmarket_api/internal/market/business"
	"surplusmarket_api/internal/market/session"
	"surplusmarket_api/pkg/logger"
)

// maxImageBytes caps one listing image upload.
const maxImageBytes = 10 << 20

// MediaHandler accepts listing images ahead of listing creation and hands
// back the bucket URL to put in the draft. Upload failure is not an error
// here: the response carries an empty URL and the listing falls back to its
// category placeholder.
type MediaHandler struct {
	manager *business.Manager
	log     logger.Logger
}

func NewMediaHandler(manager *business.Manager, log logger.Logger) *MediaHandler {
	return &MediaHandler{manager: manager, log: log}
}

func (h *MediaHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.Handle("POST /api/images", auth.RequireSession(http.HandlerFunc(h.UploadHandler)))
}

func (h *MediaHandler) UploadHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImageBytes)
	file, header, err := r.FormFile("image")
	if err != nil {
		writeJSON(w, h.log, http.StatusBadRequest, errorResponse{Error: "multipart field 'image' is required"})
		return
	}
	defer file.Close()

	actor := session.ActorFrom(r.Context())
	url := h.manager.ResolveImage(r.Context(), actor, header.Filename, file)
	writeJSON(w, h.log, http.StatusOK, map[string]string{"url": url})
}
