// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Modhost Contributors

package callback

import (
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/modhost/modhost/internal/observability"
)

// Callback is one named, ordered list of listener handles sharing a single
// invocation context. Registration order is call order and duplicate
// handles are permitted. Callbacks are created and destroyed only by a
// Registry; nothing else may end their lifetime.
type Callback struct {
	id   ulid.ULID
	name string
	ctx  Context

	mu        sync.Mutex
	listeners []*Handle

	destroyed atomic.Bool
}

func newCallback(name string, ctx Context) *Callback {
	return &Callback{
		id:   NewULID(),
		name: name,
		ctx:  ctx,
	}
}

// Name returns the immutable name the callback was created under.
func (c *Callback) Name() string { return c.name }

// ID returns the registry-assigned stable identity of this callback.
func (c *Callback) ID() ulid.ULID { return c.id }

// Context returns the shared invocation context owned by this callback.
// The context is reset between passes but never reallocated.
func (c *Callback) Context() Context { return c.ctx }

// Len returns the number of registered listeners.
func (c *Callback) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.listeners)
}

// AddListener appends a handle to the call list. Nil handles and handles
// failing the address plausibility check are rejected and logged; no error
// is surfaced because rejection is a best-effort guard, not a verified
// defect. Duplicates are allowed.
func (c *Callback) AddListener(h *Handle) {
	if c.destroyed.Load() {
		slog.Warn("add listener on destroyed callback", "callback", c.name)
		return
	}
	if h == nil || h.fn == nil {
		slog.Error("attempted to add nil listener", "callback", c.name)
		observability.RecordRejectedHandle(c.name, "nil")
		return
	}
	if !h.Plausible() {
		slog.Error("attempted to add implausible listener handle",
			"callback", c.name, "handle", h.String())
		observability.RecordRejectedHandle(c.name, "implausible")
		return
	}

	c.mu.Lock()
	c.listeners = append(c.listeners, h)
	c.mu.Unlock()

	slog.Debug("added listener", "callback", c.name, "handle", h.String())
}

// RemoveListener removes every occurrence of an address-equal handle from
// the call list and reports whether anything was removed. A nil handle is
// logged and reported as a no-op.
func (c *Callback) RemoveListener(h *Handle) bool {
	if h == nil {
		slog.Warn("attempted to remove nil listener", "callback", c.name)
		return false
	}

	c.mu.Lock()
	before := len(c.listeners)
	c.listeners = slices.DeleteFunc(c.listeners, func(other *Handle) bool {
		return other.addr == h.addr
	})
	removed := len(c.listeners) != before
	c.mu.Unlock()

	if removed {
		slog.Debug("removed listener", "callback", c.name, "handle", h.String())
	}
	return removed
}

// IsContextSafe probes the shared context with a result access and reports
// whether it survived. Validity is not monotonic: the backing engine can
// tear a context down between calls, so Execute re-checks before every pass.
func (c *Callback) IsContextSafe() (safe bool) {
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("context probe faulted", "callback", c.name, "fault", r)
			safe = false
		}
	}()
	c.ctx.Result()
	return true
}

// Execute invokes every listener registered at the time of the call, in
// registration order, against the shared context.
//
// The call list is snapshotted before the first listener runs: listeners
// that add or remove registrations mid-pass (script unload being the usual
// case) cannot affect this pass, and a listener added during the pass does
// not run until the next one.
//
// A fault inside one listener is captured, logged, and signalled into the
// context; the pass continues with the next listener. Only an unsafe
// context aborts the whole pass, before any listener runs. When
// resetContextAfter is set the context is reset after the pass regardless
// of partial failure.
func (c *Callback) Execute(resetContextAfter bool) {
	if c.destroyed.Load() {
		slog.Warn("execute on destroyed callback", "callback", c.name)
		return
	}
	if !c.IsContextSafe() {
		c.throwNativeError("callback %q execute aborted due to invalid context", c.name)
		slog.Warn("execute aborted due to invalid context", "callback", c.name)
		observability.RecordUnsafeContext(c.name)
		return
	}

	c.mu.Lock()
	snapshot := slices.Clone(c.listeners)
	c.mu.Unlock()

	for i, h := range snapshot {
		if h == nil || h.fn == nil {
			slog.Error("nil listener in call list", "callback", c.name, "index", i)
			continue
		}
		// Re-checked here: a handle that passed registration can still be
		// clobbered by the issuing runtime before the pass runs.
		if !h.Plausible() {
			slog.Error("implausible listener handle in call list",
				"callback", c.name, "index", i, "handle", h.String())
			observability.RecordRejectedHandle(c.name, "implausible")
			continue
		}

		if err := c.invoke(h); err != nil {
			c.throwNativeError("fault in callback %q listener %s", c.name, h)
			slog.Error("listener faulted",
				"callback", c.name, "index", i, "handle", h.String(), "error", err)
			observability.RecordListenerFault(c.name)
		}
	}

	observability.RecordExecute(c.name)

	if resetContextAfter {
		c.Reset()
	}
}

// invoke runs one listener with panics converted to errors, keeping fault
// isolation at per-listener granularity.
func (c *Callback) invoke(h *Handle) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = oops.In("callback").
				With("callback", c.name).
				With("handle", h.String()).
				Errorf("listener panic: %v", r)
		}
	}()
	return h.fn(c.ctx)
}

// throwNativeError signals a boundary fault into the context, tolerating a
// context that is itself too broken to accept the signal.
func (c *Callback) throwNativeError(format string, args ...any) {
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("context rejected native error signal",
				"callback", c.name, "fault", r)
		}
	}()
	c.ctx.ThrowNativeError(format, args...)
}

// Reset clears the shared context's held state for reuse. The listener list
// is untouched. A context the engine already tore down is tolerated.
func (c *Callback) Reset() {
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("context reset faulted", "callback", c.name, "fault", r)
		}
	}()
	c.ctx.Reset()
}

// Destroyed reports whether the registry has destroyed this callback.
// Operations on a destroyed callback log and no-op; Go references cannot be
// invalidated, so this flag is what makes stale use detectable.
func (c *Callback) Destroyed() bool { return c.destroyed.Load() }

func (c *Callback) destroy() {
	c.mu.Lock()
	c.listeners = nil
	c.mu.Unlock()
	c.destroyed.Store(true)
}
