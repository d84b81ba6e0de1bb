// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Modhost Contributors

// Package callback implements the named callback registry that script
// runtimes register listener handles into and the host dispatches through.
package callback

import "fmt"

// minHandleAddr is the lowest interop address accepted for a listener
// handle. Addresses below it are almost always small-integer or offset
// corruption rather than real code pointers.
const minHandleAddr uintptr = 0x1000

// ListenerFunc is the invoker bound to a handle. A non-nil error marks the
// invocation as faulted; the dispatcher additionally captures panics, so a
// misbehaving listener cannot unwind past the dispatch loop.
type ListenerFunc func(ctx Context) error

// Handle is an opaque listener issued by a script runtime: the runtime-side
// interop address plus the bound invoker. Handles compare by address, so a
// runtime can remove every registration of the same underlying function
// with a single handle.
type Handle struct {
	addr uintptr
	fn   ListenerFunc
}

// NewHandle binds an invoker to an interop address.
func NewHandle(addr uintptr, fn ListenerFunc) *Handle {
	return &Handle{addr: addr, fn: fn}
}

// Addr returns the interop address reported by the issuing runtime.
func (h *Handle) Addr() uintptr { return h.addr }

func (h *Handle) String() string { return fmt.Sprintf("0x%x", h.addr) }

// Plausible reports whether the handle's address looks like a real code
// pointer: at least minHandleAddr and no high-order bits set. This is a
// best-effort heuristic against garbage crossing the interop boundary
// (pointers like 0x180000001400000); it cannot prove validity, only reject
// implausible bit patterns.
func (h *Handle) Plausible() bool {
	return h.addr >= minHandleAddr && h.addr>>56 == 0
}
