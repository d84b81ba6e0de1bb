// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Modhost Contributors

package callback

import (
	"log/slog"
	"slices"
	"sync"

	"github.com/gobwas/glob"
	"github.com/samber/oops"

	"github.com/modhost/modhost/internal/observability"
)

// ContextFactory builds the shared invocation context for a new Callback.
type ContextFactory func() Context

// Registry owns every live Callback created through it. Lookup is linear by
// name with first-match-wins; duplicate names are permitted (callback pairs
// register under the empty name and are held by reference instead).
//
// The host creates one registry at startup and calls ClearAllCallbacks at
// shutdown; there is no implicit teardown.
type Registry struct {
	newContext ContextFactory

	mu      sync.Mutex
	managed []*Callback
}

// NewRegistry creates a registry whose callbacks get their invocation
// context from newContext. Panics if newContext is nil.
func NewRegistry(newContext ContextFactory) *Registry {
	if newContext == nil {
		panic("callback.NewRegistry: context factory is required")
	}
	return &Registry{newContext: newContext}
}

// CreateCallback allocates a new Callback under name and retains ownership
// of it. The returned reference stays valid until ReleaseCallback or
// ClearAllCallbacks destroys it.
func (r *Registry) CreateCallback(name string) *Callback {
	cb := newCallback(name, r.newContext())

	r.mu.Lock()
	r.managed = append(r.managed, cb)
	count := len(r.managed)
	r.mu.Unlock()

	slog.Debug("created callback", "callback", name, "id", cb.id.String())
	observability.SetManagedCallbacks(count)
	return cb
}

// FindCallback returns the first managed callback with the given name, or
// nil when none matches. It does not distinguish zero from multiple matches.
func (r *Registry) FindCallback(name string) *Callback {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, cb := range r.managed {
		if cb.name == name {
			return cb
		}
	}
	return nil
}

// ReleaseCallback removes every entry equal to the given reference from the
// managed set and destroys the callback. A reference that is not in the set
// is destroyed anyway so it cannot leak, with a warning. Releasing the same
// reference twice is detected via the destroyed flag and logged as an
// error, since it usually masks a lifecycle bug in the caller.
func (r *Registry) ReleaseCallback(cb *Callback) {
	if cb == nil {
		slog.Warn("attempted to release nil callback")
		return
	}
	if cb.Destroyed() {
		slog.Error("double release of callback detected",
			"callback", cb.name, "id", cb.id.String())
		return
	}

	slog.Debug("releasing callback", "callback", cb.name, "id", cb.id.String())

	r.mu.Lock()
	before := len(r.managed)
	r.managed = slices.DeleteFunc(r.managed, func(other *Callback) bool {
		return other == cb
	})
	found := len(r.managed) != before
	count := len(r.managed)
	r.mu.Unlock()

	if !found {
		slog.Warn("callback not found in managed set during release",
			"callback", cb.name, "id", cb.id.String())
	}

	cb.destroy()
	observability.SetManagedCallbacks(count)
}

// TryAddFunction registers handle under the named callback. It reports
// false only when no callback with that name exists; a handle the callback
// itself rejects is logged there and still reported as true here.
func (r *Registry) TryAddFunction(name string, h *Handle) bool {
	cb := r.FindCallback(name)
	if cb == nil {
		slog.Warn("no callback registered under name", "callback", name)
		return false
	}
	cb.AddListener(h)
	return true
}

// TryRemoveFunction removes handle from the named callback, reporting
// whether any registration was removed. False when the name is unknown.
func (r *Registry) TryRemoveFunction(name string, h *Handle) bool {
	cb := r.FindCallback(name)
	if cb == nil {
		slog.Warn("no callback registered under name", "callback", name)
		return false
	}
	return cb.RemoveListener(h)
}

// ClearAllCallbacks destroys every managed callback unconditionally and
// empties the registry. Called at host shutdown; safe against callbacks
// that were already handed out and are still referenced elsewhere.
func (r *Registry) ClearAllCallbacks() {
	r.mu.Lock()
	managed := r.managed
	r.managed = nil
	r.mu.Unlock()

	slog.Debug("clearing all managed callbacks", "count", len(managed))
	for _, cb := range managed {
		slog.Debug("clearing callback", "callback", cb.name, "id", cb.id.String())
		cb.destroy()
	}
	observability.SetManagedCallbacks(0)
}

// Len returns the number of managed callbacks.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.managed)
}

// Names returns the names of managed callbacks matching pattern, in
// creation order. Pattern uses glob syntax; empty matches everything.
func (r *Registry) Names(pattern string) ([]string, error) {
	var g glob.Glob
	if pattern != "" {
		var err error
		g, err = glob.Compile(pattern)
		if err != nil {
			return nil, oops.In("callback").With("pattern", pattern).Wrap(err)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.managed))
	for _, cb := range r.managed {
		if g == nil || g.Match(cb.name) {
			names = append(names, cb.name)
		}
	}
	return names, nil
}

// PrintCallbackDebug logs the managed callbacks matching pattern. Purely
// diagnostic; read-only.
func (r *Registry) PrintCallbackDebug(pattern string) {
	names, err := r.Names(pattern)
	if err != nil {
		slog.Error("invalid callback debug pattern", "pattern", pattern, "error", err)
		return
	}
	slog.Info("---- callbacks ----", "count", len(names))
	for _, name := range names {
		slog.Info("managed callback", "callback", name)
	}
}
