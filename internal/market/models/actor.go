package models

import "strings"

// Metadata is the free-form JSON object the auth provider attaches to an
// account, either server-controlled (app_metadata) or self-service
// (user_metadata).
type Metadata map[string]interface{}

// Capabilities are the market-level permissions resolved for an actor.
// They are computed once when a session is established and never re-read
// from metadata afterwards.
type Capabilities struct {
	Admin bool `json:"admin"`
}

// Actor is an authenticated account as the auth provider describes it.
type Actor struct {
	ID           string       `json:"id"`
	Email        string       `json:"email"`
	AppMetadata  Metadata     `json:"app_metadata"`
	UserMetadata Metadata     `json:"user_metadata"`
	Capabilities Capabilities `json:"-"`
}

// IsAdmin reports the resolved capability, not the raw metadata.
func (a *Actor) IsAdmin() bool {
	if a == nil {
		return false
	}
	return a.Capabilities.Admin
}

// ResolveCapabilities reads the admin flag from app_metadata first, then
// user_metadata. Deployments have stored it in either place, and as a bool,
// a string, or a number, so all three encodings count.
func ResolveCapabilities(app, user Metadata) Capabilities {
	return Capabilities{
		Admin: metaBool(app, "admin") || metaBool(user, "admin"),
	}
}

// Resolve fills in Capabilities from the actor's own metadata.
func (a *Actor) Resolve() {
	a.Capabilities = ResolveCapabilities(a.AppMetadata, a.UserMetadata)
}

// Clone copies the actor with its own metadata maps.
func (a *Actor) Clone() *Actor {
	if a == nil {
		return nil
	}
	out := *a
	out.AppMetadata = cloneMetadata(a.AppMetadata)
	out.UserMetadata = cloneMetadata(a.UserMetadata)
	return &out
}

func cloneMetadata(m Metadata) Metadata {
	if m == nil {
		return nil
	}
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func metaBool(m Metadata, key string) bool {
	if m == nil {
		return false
	}
	switch v := m[key].(type) {
	case bool:
		return v
	case string:
		return strings.EqualFold(v, "true")
	case float64:
		return v != 0
	case int:
		return v != 0
	default:
		return false
	}
}
