// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Modhost Contributors

package callback

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type noopContext struct{}

func (noopContext) Result() any                      { return nil }
func (noopContext) ThrowNativeError(string, ...any)  {}
func (noopContext) Reset()                           {}

// The public add path rejects nil and implausible handles, so these
// dispatch-loop guards can only be exercised by planting corruption in the
// call list directly.

func TestExecute_SkipsNilHandleInCallList(t *testing.T) {
	cb := newCallback("corrupted", noopContext{})

	invoked := 0
	cb.listeners = []*Handle{
		nil,
		NewHandle(0x5000, func(Context) error { invoked++; return nil }),
	}

	assert.NotPanics(t, func() { cb.Execute(false) })
	assert.Equal(t, 1, invoked)
}

func TestExecute_SkipsHandleClobberedAfterRegistration(t *testing.T) {
	cb := newCallback("corrupted", noopContext{})

	invoked := 0
	cb.listeners = []*Handle{
		// Passed no plausibility check: the runtime clobbered it after issue.
		{addr: 0x180000001400000, fn: func(Context) error { invoked++; return nil }},
		NewHandle(0x5000, func(Context) error { invoked++; return nil }),
	}

	assert.NotPanics(t, func() { cb.Execute(false) })
	assert.Equal(t, 1, invoked, "clobbered handle is skipped, the rest of the batch runs")
}

func TestDestroy_ClearsListenersAndFlags(t *testing.T) {
	cb := newCallback("doomed", noopContext{})
	cb.AddListener(NewHandle(0x5000, func(Context) error { return nil }))

	cb.destroy()

	assert.True(t, cb.Destroyed())
	assert.Equal(t, 0, cb.Len())

	// Every operation on a destroyed callback is a logged no-op.
	cb.AddListener(NewHandle(0x6000, func(Context) error { return nil }))
	assert.Equal(t, 0, cb.Len())
	assert.NotPanics(t, func() { cb.Execute(false) })
}
