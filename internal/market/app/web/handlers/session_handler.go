package handlers

import (
	"net/http"
	"strings"

	"surplusmarket_api/internal/market/models"
	"surplusmarket_api/internal/market/session"
	"surplusmarket_api/internal/market/storage"
	"surplusmarket_api/pkg/logger"
)

type sessionResponse struct {
	State        session.State        `json:"state"`
	Actor        *actorPayload        `json:"actor,omitempty"`
	Capabilities *models.Capabilities `json:"capabilities,omitempty"`
}

type actorPayload struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// SessionHandler runs the auth flows against the external collaborator and
// keeps the in-process session context in step with them. auth may be nil
// for deployments without the hosted auth service; tokens are then verified
// only by the session middleware's local signature check.
type SessionHandler struct {
	auth     storage.AuthService
	sessions *session.Context
	log      logger.Logger
}

func NewSessionHandler(auth storage.AuthService, sessions *session.Context, log logger.Logger) *SessionHandler {
	return &SessionHandler{auth: auth, sessions: sessions, log: log}
}

func (h *SessionHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/session", h.CurrentHandler)
	mux.HandleFunc("POST /api/session/signin", h.SignInHandler)
	mux.HandleFunc("POST /api/session/verify", h.VerifyHandler)
	mux.HandleFunc("POST /api/session/signout", h.SignOutHandler)
}

func sessionPayload(actor *models.Actor) sessionResponse {
	if actor == nil {
		return sessionResponse{State: session.StateAnonymous}
	}
	caps := actor.Capabilities
	return sessionResponse{
		State:        session.StateAuthenticated,
		Actor:        &actorPayload{ID: actor.ID, Email: actor.Email},
		Capabilities: &caps,
	}
}

// CurrentHandler reports who the caller is, per the bearer the session
// middleware already resolved.
func (h *SessionHandler) CurrentHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.log, http.StatusOK, sessionPayload(session.ActorFrom(r.Context())))
}

// SignInHandler starts the passwordless flow: the auth collaborator mails a
// magic link and the flow completes out of band, so the answer is 202 with
// no session.
func (h *SessionHandler) SignInHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, h.log, err)
		return
	}
	email := strings.TrimSpace(body.Email)
	if email == "" || !strings.Contains(email, "@") {
		writeJSON(w, h.log, http.StatusBadRequest, errorResponse{Error: "a valid email address is required"})
		return
	}
	if h.auth == nil {
		writeError(w, h.log, &storage.ConfigError{Reason: "no auth service configured"})
		return
	}
	if err := h.auth.SignInWithEmailLink(r.Context(), email); err != nil {
		writeError(w, h.log, err)
		return
	}
	h.log.Log("magic link requested for %s", email)
	writeJSON(w, h.log, http.StatusAccepted, map[string]string{"message": "check your email for the sign-in link"})
}

// VerifyHandler completes the flow: the caller comes back with the token
// from the link, and the session transitions to authenticated. With a
// configured auth service the token is re-verified remotely, which also
// picks up metadata the local claims may not carry.
func (h *SessionHandler) VerifyHandler(w http.ResponseWriter, r *http.Request) {
	actor := session.ActorFrom(r.Context())
	if h.auth != nil {
		remote, err := h.auth.CurrentSession(r.Context())
		if err != nil {
			writeError(w, h.log, err)
			return
		}
		actor = remote
	}
	if actor == nil {
		writeJSON(w, h.log, http.StatusUnauthorized, errorResponse{Error: "the sign-in token is missing or no longer valid"})
		return
	}
	h.sessions.SetSession(actor)
	writeJSON(w, h.log, http.StatusOK, sessionPayload(h.sessions.Actor()))
}

// SignOutHandler revokes the token and returns the session to anonymous.
// Revocation failure still ends the local session; the token dies on its
// own when it expires.
func (h *SessionHandler) SignOutHandler(w http.ResponseWriter, r *http.Request) {
	if h.auth != nil && session.TokenFrom(r.Context()) != "" {
		if err := h.auth.SignOut(r.Context()); err != nil {
			h.log.Error("remote sign-out failed: %v", err)
		}
	}
	h.sessions.Clear()
	writeJSON(w, h.log, http.StatusOK, sessionPayload(nil))
}
