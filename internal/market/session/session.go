// Package session tracks who is using the marketplace right now. It is a
// two-state machine: Anonymous (no actor) and Authenticated (an actor with
// resolved capabilities). Transitions come from the external auth
// collaborator; the package itself never talks to the network.
package session

import (
	"sync"

	"surplusmarket_api/internal/market/models"
	"surplusmarket_api/pkg/logger"
)

// State names the two session states.
type State string

const (
	StateAnonymous     State = "anonymous"
	StateAuthenticated State = "authenticated"
)

// Listener is notified after every transition with the new actor, or nil
// when the session became anonymous.
type Listener func(actor *models.Actor)

// Context holds the current session. Capabilities are resolved exactly
// once per transition into Authenticated; later metadata edits are
// invisible until the next sign-in. All checks derived from it are
// advisory, the remote store enforces the real rules.
type Context struct {
	log logger.Logger

	mu        sync.RWMutex
	actor     *models.Actor
	listeners map[int]Listener
	nextID    int
}

func NewContext(log logger.Logger) *Context {
	return &Context{
		log:       log,
		listeners: make(map[int]Listener),
	}
}

// State reports the current session state.
func (c *Context) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.actor == nil {
		return StateAnonymous
	}
	return StateAuthenticated
}

// Actor returns the signed-in actor, or nil when anonymous. The returned
// value is shared; treat it as read-only.
func (c *Context) Actor() *models.Actor {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.actor
}

// IsAdmin reports the resolved admin capability of the current actor.
func (c *Context) IsAdmin() bool {
	return c.Actor().IsAdmin()
}

// SetSession transitions to Authenticated with the given actor, resolving
// its capabilities once. A nil actor is a sign-out. Listeners fire on
// every call, matching the auth provider's own change events.
func (c *Context) SetSession(actor *models.Actor) {
	if actor == nil {
		c.Clear()
		return
	}
	next := actor.Clone()
	next.Resolve()

	c.mu.Lock()
	c.actor = next
	listeners := c.snapshotListenersLocked()
	c.mu.Unlock()

	c.log.Log("session: authenticated as %s (admin=%v)", next.Email, next.Capabilities.Admin)
	for _, fn := range listeners {
		fn(next)
	}
}

// Clear transitions to Anonymous.
func (c *Context) Clear() {
	c.mu.Lock()
	wasAnonymous := c.actor == nil
	c.actor = nil
	listeners := c.snapshotListenersLocked()
	c.mu.Unlock()

	if !wasAnonymous {
		c.log.Log("session: signed out")
	}
	for _, fn := range listeners {
		fn(nil)
	}
}

// Subscribe registers a transition listener and returns its remover.
func (c *Context) Subscribe(fn Listener) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

// snapshotListenersLocked copies the listener set in registration order so
// notification happens outside the lock. Callers hold c.mu.
func (c *Context) snapshotListenersLocked() []Listener {
	out := make([]Listener, 0, len(c.listeners))
	for id := 0; id < c.nextID; id++ {
		if fn, ok := c.listeners[id]; ok {
			out = append(out, fn)
		}
	}
	return out
}
