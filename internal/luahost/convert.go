// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Modhost Contributors

package luahost

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

// toLValue converts a host argument into a Lua value. Unsupported types
// marshal as their string form rather than failing the pass.
func toLValue(v any) lua.LValue {
	switch val := v.(type) {
	case nil:
		return lua.LNil
	case bool:
		return lua.LBool(val)
	case int:
		return lua.LNumber(val)
	case int64:
		return lua.LNumber(val)
	case uint64:
		return lua.LNumber(val)
	case float64:
		return lua.LNumber(val)
	case string:
		return lua.LString(val)
	default:
		return lua.LString(fmt.Sprintf("%v", val))
	}
}

// fromLValue converts a Lua value a script handed back into a host value.
func fromLValue(v lua.LValue) any {
	switch val := v.(type) {
	case *lua.LNilType:
		return nil
	case lua.LBool:
		return bool(val)
	case lua.LNumber:
		return float64(val)
	case lua.LString:
		return string(val)
	default:
		return val.String()
	}
}
