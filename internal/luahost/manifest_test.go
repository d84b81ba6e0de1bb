// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Modhost Contributors

package luahost_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modhost/modhost/internal/luahost"
)

func TestParseManifest(t *testing.T) {
	data := []byte(`
name: greeter
version: 1.2.0
api_version: ">= 1.0"
entry: main.lua
`)

	m, err := luahost.ParseManifest(data)
	require.NoError(t, err)

	assert.Equal(t, "greeter", m.Name)
	assert.Equal(t, "1.2.0", m.Version)
	assert.Equal(t, ">= 1.0", m.APIVersion)
	assert.Equal(t, "main.lua", m.Entry)
}

func TestParseManifest_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty", ""},
		{"bad yaml", ":\n:"},
		{"missing name", "version: 1.0.0\nentry: main.lua"},
		{"uppercase name", "name: Greeter\nversion: 1.0.0\nentry: main.lua"},
		{"trailing hyphen", "name: greeter-\nversion: 1.0.0\nentry: main.lua"},
		{"missing version", "name: greeter\nentry: main.lua"},
		{"bad version", "name: greeter\nversion: banana\nentry: main.lua"},
		{"bad constraint", "name: greeter\nversion: 1.0.0\napi_version: '>=<'\nentry: main.lua"},
		{"missing entry", "name: greeter\nversion: 1.0.0"},
		{"non-lua entry", "name: greeter\nversion: 1.0.0\nentry: main.py"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := luahost.ParseManifest([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestManifest_CheckAPIVersion(t *testing.T) {
	m := &luahost.Manifest{Name: "greeter", Version: "1.0.0", Entry: "main.lua"}

	// Empty constraint accepts any host.
	assert.NoError(t, m.CheckAPIVersion())

	m.APIVersion = ">= 1.0"
	assert.NoError(t, m.CheckAPIVersion())

	m.APIVersion = ">= 99.0"
	assert.Error(t, m.CheckAPIVersion())
}

func TestValidateSchema(t *testing.T) {
	valid := []byte("name: greeter\nversion: 1.0.0\nentry: main.lua\n")
	assert.NoError(t, luahost.ValidateSchema(valid))

	assert.Error(t, luahost.ValidateSchema(nil))
	assert.Error(t, luahost.ValidateSchema([]byte(":\n:")))
}

func TestGenerateSchema(t *testing.T) {
	schema, err := luahost.GenerateSchema()
	require.NoError(t, err)
	assert.Contains(t, string(schema), "Modhost Script Manifest")
	assert.Contains(t, string(schema), "api_version")
}
