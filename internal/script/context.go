// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Modhost Contributors

// Package script provides the invocation context shared between the host
// and every listener of one callback.
package script

import (
	"fmt"
	"sync"

	"github.com/modhost/modhost/internal/callback"
)

// Compile-time interface check.
var _ callback.Context = (*Context)(nil)

// Context carries the arguments, result slot, and pending native error for
// one callback's execution passes. A single instance backs each callback
// for its whole lifetime; Reset clears it between passes instead of
// reallocating.
//
// Invalidate models the backing engine tearing the context down out from
// under the host. After it, accessors panic; the dispatcher's safety probe
// converts that into an aborted pass rather than a crash.
type Context struct {
	mu        sync.Mutex
	args      []any
	result    any
	nativeErr string
	hasErr    bool
	invalid   bool
}

// NewContext returns an empty, valid context.
func NewContext() *Context {
	return &Context{}
}

// checkValid panics when the context has been invalidated. Callers hold mu
// with a deferred unlock, so the mutex is released on the way out.
func (c *Context) checkValid() {
	if c.invalid {
		panic("script context has been invalidated")
	}
}

// PushArg appends an argument for the next execution pass.
func (c *Context) PushArg(v any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checkValid()
	c.args = append(c.args, v)
}

// Arg returns the i'th argument, or nil when out of range.
func (c *Context) Arg(i int) any {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checkValid()
	if i < 0 || i >= len(c.args) {
		return nil
	}
	return c.args[i]
}

// ArgCount returns the number of pushed arguments.
func (c *Context) ArgCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checkValid()
	return len(c.args)
}

// SetResult stores a value in the result slot. Listeners late in the pass
// overwrite earlier ones.
func (c *Context) SetResult(v any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checkValid()
	c.result = v
}

// Result returns the result slot. This is also the dispatcher's safety
// probe: it panics on an invalidated context.
func (c *Context) Result() any {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checkValid()
	return c.result
}

// ThrowNativeError records a boundary fault so the script side can observe
// it. The latest signal wins.
func (c *Context) ThrowNativeError(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checkValid()
	c.nativeErr = fmt.Sprintf(format, args...)
	c.hasErr = true
}

// NativeError returns the pending boundary fault, if any.
func (c *Context) NativeError() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checkValid()
	return c.nativeErr, c.hasErr
}

// Reset clears arguments, the result slot, and any pending native error.
func (c *Context) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checkValid()
	c.args = c.args[:0]
	c.result = nil
	c.nativeErr = ""
	c.hasErr = false
}

// Invalidate marks the context torn down. Every later access panics until
// the callback owning it is destroyed. There is no way back: engines do not
// resurrect contexts.
func (c *Context) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalid = true
}
