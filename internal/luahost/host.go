// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Modhost Contributors

package luahost

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"sync"

	"github.com/samber/oops"
	lua "github.com/yuin/gopher-lua"

	"github.com/modhost/modhost/internal/callback"
	"github.com/modhost/modhost/internal/script"
)

// Compile-time interface check.
var _ ArgContext = (*script.Context)(nil)

// ArgContext is the view of the invocation context the Lua bridge needs to
// marshal arguments in and results out. *script.Context satisfies it.
type ArgContext interface {
	Arg(i int) any
	ArgCount() int
	SetResult(v any)
}

// registration records one listener a script holds in the registry, so
// unload can withdraw it.
type registration struct {
	callbackName string
	handle       *callback.Handle
}

// loadedScript is one script with its long-lived Lua state. The state must
// outlive load because registered listener closures run from it on every
// execution pass.
type loadedScript struct {
	manifest      *Manifest
	state         *lua.LState
	registrations []registration
}

// Host loads Lua scripts and bridges their functions into the callback
// registry as listener handles. Like the rest of the dispatch engine it is
// driven by a single owner goroutine; the mutex only guards the script
// table against observation from other goroutines.
type Host struct {
	registry *callback.Registry

	mu      sync.Mutex
	scripts map[string]*loadedScript
	closed  bool
}

// NewHost creates a Lua script host that registers listeners into registry.
// Panics if registry is nil.
func NewHost(registry *callback.Registry) *Host {
	if registry == nil {
		panic("luahost.NewHost: registry is required")
	}
	return &Host{
		registry: registry,
		scripts:  make(map[string]*loadedScript),
	}
}

// DiscoveredScript is a manifest with the directory it came from.
type DiscoveredScript struct {
	Manifest *Manifest
	Dir      string
}

// Discover finds all valid scripts under scriptsDir. Each script lives in
// its own subdirectory with a script.yaml manifest. Invalid scripts are
// logged and skipped.
func (h *Host) Discover(_ context.Context, scriptsDir string) ([]*DiscoveredScript, error) {
	entries, err := os.ReadDir(scriptsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, oops.In("luahost").With("dir", scriptsDir).Hint("failed to read scripts directory").Wrap(err)
	}

	var scripts []*DiscoveredScript
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		scriptDir := filepath.Join(scriptsDir, entry.Name())
		manifestPath := filepath.Join(scriptDir, "script.yaml")

		data, err := os.ReadFile(manifestPath) //nolint:gosec // path built from ReadDir entries
		if err != nil {
			slog.Warn("skipping script without manifest", "dir", entry.Name(), "error", err)
			continue
		}

		if err := ValidateSchema(data); err != nil {
			slog.Warn("skipping script with malformed manifest", "dir", entry.Name(), "error", err)
			continue
		}

		manifest, err := ParseManifest(data)
		if err != nil {
			slog.Warn("skipping script with invalid manifest", "dir", entry.Name(), "error", err)
			continue
		}

		scripts = append(scripts, &DiscoveredScript{Manifest: manifest, Dir: scriptDir})
	}

	return scripts, nil
}

// LoadAll discovers and loads every script under scriptsDir. A script that
// fails to load is logged and skipped so one broken script cannot keep the
// host down.
func (h *Host) LoadAll(ctx context.Context, scriptsDir string) error {
	discovered, err := h.Discover(ctx, scriptsDir)
	if err != nil {
		return err
	}

	for _, ds := range discovered {
		if err := h.Load(ctx, ds.Manifest, ds.Dir); err != nil {
			slog.Warn("failed to load script", "script", ds.Manifest.Name, "error", err)
		}
	}
	return nil
}

// Load runs a script's entry file in a fresh sandboxed state. The script
// registers its listeners during this run through modhost.register_callback.
func (h *Host) Load(_ context.Context, manifest *Manifest, dir string) error {
	errb := oops.In("luahost").With("script", manifest.Name).With("operation", "load")

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return errb.New("host is closed")
	}
	if _, exists := h.scripts[manifest.Name]; exists {
		h.mu.Unlock()
		return errb.New("script already loaded")
	}
	h.mu.Unlock()

	if err := manifest.CheckAPIVersion(); err != nil {
		return errb.Wrap(err)
	}

	entryPath := filepath.Join(dir, manifest.Entry)
	code, err := os.ReadFile(filepath.Clean(entryPath))
	if err != nil {
		return errb.With("path", entryPath).Hint("failed to read entry file").Wrap(err)
	}

	L, err := newState()
	if err != nil {
		return errb.Hint("failed to create state").Wrap(err)
	}

	s := &loadedScript{manifest: manifest, state: L}
	h.registerHostFunctions(s)

	if err := L.DoString(string(code)); err != nil {
		h.withdraw(s)
		L.Close()
		return errb.With("entry", manifest.Entry).Hint("script error during load").Wrap(err)
	}

	h.mu.Lock()
	h.scripts[manifest.Name] = s
	h.mu.Unlock()

	slog.Info("loaded script",
		"script", manifest.Name,
		"version", manifest.Version,
		"listeners", len(s.registrations))
	return nil
}

// Unload withdraws every listener the script registered and closes its
// state.
func (h *Host) Unload(_ context.Context, name string) error {
	h.mu.Lock()
	s, ok := h.scripts[name]
	if !ok {
		h.mu.Unlock()
		return oops.In("luahost").With("script", name).With("operation", "unload").New("script not loaded")
	}
	delete(h.scripts, name)
	h.mu.Unlock()

	h.withdraw(s)
	s.state.Close()

	slog.Info("unloaded script", "script", name)
	return nil
}

// withdraw removes the script's registrations from the registry. Callbacks
// already released or cleared are simply no longer findable, which is fine.
func (h *Host) withdraw(s *loadedScript) {
	for _, reg := range s.registrations {
		h.registry.TryRemoveFunction(reg.callbackName, reg.handle)
	}
	s.registrations = nil
}

// Scripts returns the names of loaded scripts, sorted.
func (h *Host) Scripts() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	names := make([]string, 0, len(h.scripts))
	for name := range h.scripts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Close unloads every script and shuts the host down.
func (h *Host) Close(ctx context.Context) error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	names := make([]string, 0, len(h.scripts))
	for name := range h.scripts {
		names = append(names, name)
	}
	h.mu.Unlock()

	for _, name := range names {
		if err := h.Unload(ctx, name); err != nil {
			slog.Warn("failed to unload script during close", "script", name, "error", err)
		}
	}
	return nil
}

// newHandle wraps a Lua function into a listener handle. The interop
// address is the LFunction's pointer identity, so registering the same Lua
// function twice yields address-equal handles and RemoveListener semantics
// carry over.
func (h *Host) newHandle(s *loadedScript, fn *lua.LFunction) *callback.Handle {
	addr := reflect.ValueOf(fn).Pointer()
	return callback.NewHandle(addr, func(ctx callback.Context) error {
		return h.invoke(s, fn, ctx)
	})
}

// invoke calls one Lua listener with a ctx table marshalled from the shared
// invocation context. Lua errors surface as error returns; the dispatcher
// handles isolation.
func (h *Host) invoke(s *loadedScript, fn *lua.LFunction, ctx callback.Context) error {
	L := s.state
	tbl := L.NewTable()

	if ac, ok := ctx.(ArgContext); ok {
		args := L.NewTable()
		for i := range ac.ArgCount() {
			args.Append(toLValue(ac.Arg(i)))
		}
		L.SetField(tbl, "args", args)
		L.SetField(tbl, "set_result", L.NewFunction(func(L *lua.LState) int {
			ac.SetResult(fromLValue(L.Get(1)))
			return 0
		}))
	}

	if err := L.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}, tbl); err != nil {
		return oops.In("luahost").
			With("script", s.manifest.Name).
			Hint("listener raised a Lua error").
			Wrap(err)
	}
	return nil
}
