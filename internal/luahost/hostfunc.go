// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Modhost Contributors

package luahost

import (
	"log/slog"
	"reflect"
	"slices"

	lua "github.com/yuin/gopher-lua"

	"github.com/modhost/modhost/internal/callback"
)

// registerHostFunctions installs the modhost.* table into a script's state.
// These are the only host capabilities a sandboxed script sees.
func (h *Host) registerHostFunctions(s *loadedScript) {
	L := s.state
	mod := L.NewTable()

	L.SetField(mod, "log", L.NewFunction(h.logFn(s)))
	L.SetField(mod, "new_request_id", L.NewFunction(newRequestIDFn))
	L.SetField(mod, "register_callback", L.NewFunction(h.registerFn(s)))
	L.SetField(mod, "unregister_callback", L.NewFunction(h.unregisterFn(s)))

	L.SetGlobal("modhost", mod)
}

// logFn exposes leveled logging: modhost.log("warn", "message").
func (h *Host) logFn(s *loadedScript) lua.LGFunction {
	return func(L *lua.LState) int {
		level := L.CheckString(1)
		message := L.CheckString(2)

		logger := slog.Default().With("script", s.manifest.Name)
		switch level {
		case "debug":
			logger.Debug(message)
		case "warn":
			logger.Warn(message)
		case "error":
			logger.Error(message)
		default:
			logger.Info(message)
		}
		return 0
	}
}

// newRequestIDFn returns a fresh ULID string.
func newRequestIDFn(L *lua.LState) int {
	L.Push(lua.LString(callback.NewULID().String()))
	return 1
}

// registerFn implements modhost.register_callback(name, fn) -> bool.
// The bool is false when no callback with that name exists; a handle the
// callback rejects still reports true, matching TryAddFunction.
func (h *Host) registerFn(s *loadedScript) lua.LGFunction {
	return func(L *lua.LState) int {
		name := L.CheckString(1)
		fn := L.CheckFunction(2)

		handle := h.newHandle(s, fn)
		if !h.registry.TryAddFunction(name, handle) {
			L.Push(lua.LFalse)
			return 1
		}

		s.registrations = append(s.registrations, registration{
			callbackName: name,
			handle:       handle,
		})
		L.Push(lua.LTrue)
		return 1
	}
}

// unregisterFn implements modhost.unregister_callback(name, fn) -> bool.
// Removal is by function identity, so every registration of fn under name
// goes at once.
func (h *Host) unregisterFn(s *loadedScript) lua.LGFunction {
	return func(L *lua.LState) int {
		name := L.CheckString(1)
		fn := L.CheckFunction(2)

		addr := reflect.ValueOf(fn).Pointer()
		var handle *callback.Handle
		for _, reg := range s.registrations {
			if reg.callbackName == name && reg.handle.Addr() == addr {
				handle = reg.handle
				break
			}
		}
		if handle == nil {
			L.Push(lua.LFalse)
			return 1
		}

		removed := h.registry.TryRemoveFunction(name, handle)
		s.registrations = slices.DeleteFunc(s.registrations, func(reg registration) bool {
			return reg.callbackName == name && reg.handle.Addr() == addr
		})

		L.Push(lua.LBool(removed))
		return 1
	}
}
