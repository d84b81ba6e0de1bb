// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Modhost Contributors

package script_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modhost/modhost/internal/script"
)

func TestContext_Args(t *testing.T) {
	ctx := script.NewContext()

	ctx.PushArg("attacker")
	ctx.PushArg(42)

	assert.Equal(t, 2, ctx.ArgCount())
	assert.Equal(t, "attacker", ctx.Arg(0))
	assert.Equal(t, 42, ctx.Arg(1))
	assert.Nil(t, ctx.Arg(2))
	assert.Nil(t, ctx.Arg(-1))
}

func TestContext_Result(t *testing.T) {
	ctx := script.NewContext()
	assert.Nil(t, ctx.Result())

	ctx.SetResult("blocked")
	assert.Equal(t, "blocked", ctx.Result())

	// Later listeners overwrite earlier results.
	ctx.SetResult("allowed")
	assert.Equal(t, "allowed", ctx.Result())
}

func TestContext_NativeError(t *testing.T) {
	ctx := script.NewContext()

	_, ok := ctx.NativeError()
	assert.False(t, ok)

	ctx.ThrowNativeError("fault in callback %q", "on-join")

	msg, ok := ctx.NativeError()
	require.True(t, ok)
	assert.Equal(t, `fault in callback "on-join"`, msg)
}

func TestContext_Reset(t *testing.T) {
	ctx := script.NewContext()
	ctx.PushArg(1)
	ctx.SetResult("x")
	ctx.ThrowNativeError("boom")

	ctx.Reset()

	assert.Equal(t, 0, ctx.ArgCount())
	assert.Nil(t, ctx.Result())
	_, ok := ctx.NativeError()
	assert.False(t, ok)
}

func TestContext_InvalidatePanicsOnAccess(t *testing.T) {
	ctx := script.NewContext()
	ctx.PushArg(1)

	ctx.Invalidate()

	assert.Panics(t, func() { ctx.Result() })
	assert.Panics(t, func() { ctx.PushArg(2) })
	assert.Panics(t, func() { ctx.ArgCount() })
	assert.Panics(t, func() { ctx.ThrowNativeError("ignored") })
	assert.Panics(t, func() { ctx.Reset() })
}

func TestContext_SatisfiesDispatcherProbe(t *testing.T) {
	// The dispatcher treats a panicking Result as "unsafe"; a fresh context
	// must probe cleanly.
	ctx := script.NewContext()
	assert.NotPanics(t, func() { _ = ctx.Result() })
}
