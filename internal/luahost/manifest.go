// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Modhost Contributors

// Package luahost runs sandboxed Lua scripts and issues the listener
// handles they register into the callback registry.
package luahost

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"
)

// APIVersion is the host function API version scripts pin against with the
// api_version manifest constraint.
const APIVersion = "1.0.0"

// Manifest represents a script.yaml file.
type Manifest struct {
	Name    string `yaml:"name" json:"name"`
	Version string `yaml:"version" json:"version"`
	// APIVersion is a semver constraint on the host API, e.g. ">= 1.0".
	// Empty means any.
	APIVersion string `yaml:"api_version,omitempty" json:"api_version,omitempty"`
	Entry      string `yaml:"entry" json:"entry"`
}

// maxNameLength is the maximum allowed length for script names.
const maxNameLength = 64

// namePattern validates script names: lowercase letter first, then
// lowercase letters, digits, or hyphens, not ending with a hyphen.
var namePattern = regexp.MustCompile(`^[a-z]([a-z0-9-]*[a-z0-9])?$`)

// ParseManifest parses and validates a script.yaml file.
func ParseManifest(data []byte) (*Manifest, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("manifest data is empty")
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}

	return &m, nil
}

// Validate checks manifest constraints.
func (m *Manifest) Validate() error {
	if m.Name == "" || !namePattern.MatchString(m.Name) {
		return fmt.Errorf("name %q must start with a-z, contain only a-z, 0-9, hyphens, and not end with a hyphen", m.Name)
	}
	if len(m.Name) > maxNameLength {
		return fmt.Errorf("name must be %d characters or less, got %d", maxNameLength, len(m.Name))
	}

	if m.Version == "" {
		return fmt.Errorf("version is required")
	}
	if _, err := semver.NewVersion(m.Version); err != nil {
		return fmt.Errorf("version %q is not valid semver: %w", m.Version, err)
	}

	if m.APIVersion != "" {
		if _, err := semver.NewConstraint(m.APIVersion); err != nil {
			return fmt.Errorf("api_version %q is not a valid constraint: %w", m.APIVersion, err)
		}
	}

	if m.Entry == "" {
		return fmt.Errorf("entry is required")
	}
	if !strings.HasSuffix(m.Entry, ".lua") {
		return fmt.Errorf("entry %q must be a .lua file", m.Entry)
	}

	return nil
}

// CheckAPIVersion reports whether the host API satisfies the manifest's
// api_version constraint. Assumes Validate passed.
func (m *Manifest) CheckAPIVersion() error {
	if m.APIVersion == "" {
		return nil
	}

	constraint, err := semver.NewConstraint(m.APIVersion)
	if err != nil {
		return fmt.Errorf("api_version %q is not a valid constraint: %w", m.APIVersion, err)
	}

	host := semver.MustParse(APIVersion)
	if !constraint.Check(host) {
		return fmt.Errorf("script requires host API %q, host provides %s", m.APIVersion, APIVersion)
	}
	return nil
}
