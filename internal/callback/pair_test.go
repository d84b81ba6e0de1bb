// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Modhost Contributors

package callback_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modhost/modhost/internal/callback"
)

func TestPair_CreatesBothPhases(t *testing.T) {
	reg := newTestRegistry()

	pair := callback.NewPair(reg, "")
	require.NotNil(t, pair.Pre())
	require.NotNil(t, pair.Post())
	assert.NotSame(t, pair.Pre(), pair.Post())
	assert.Equal(t, 2, reg.Len())
}

func TestPair_Close(t *testing.T) {
	reg := newTestRegistry()
	pair := callback.NewPair(reg, "")

	pre, post := pair.Pre(), pair.Post()
	pair.Close()

	assert.Nil(t, pair.Pre())
	assert.Nil(t, pair.Post())
	assert.True(t, pre.Destroyed())
	assert.True(t, post.Destroyed())
	assert.Equal(t, 0, reg.Len())
}

func TestPair_CloseIsIdempotent(t *testing.T) {
	reg := newTestRegistry()
	pair := callback.NewPair(reg, "")

	pair.Close()
	// A second close must not double-release the underlying callbacks.
	assert.NotPanics(t, func() { pair.Close() })
	assert.Equal(t, 0, reg.Len())
}

func TestPair_Empty(t *testing.T) {
	reg := newTestRegistry()

	pair := callback.NewEmptyPair(reg)
	assert.Nil(t, pair.Pre())
	assert.Nil(t, pair.Post())
	assert.Equal(t, 0, reg.Len())

	assert.NotPanics(t, func() { pair.Close() })
}

func TestPair_PhasesDispatchIndependently(t *testing.T) {
	reg := newTestRegistry()
	pair := callback.NewPair(reg, "")
	defer pair.Close()

	var calls []string
	pair.Pre().AddListener(callback.NewHandle(0x5000, func(callback.Context) error {
		calls = append(calls, "pre")
		return nil
	}))
	pair.Post().AddListener(callback.NewHandle(0x6000, func(callback.Context) error {
		calls = append(calls, "post")
		return nil
	}))

	pair.Pre().Execute(false)
	pair.Post().Execute(false)
	assert.Equal(t, []string{"pre", "post"}, calls)
}
