// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Modhost Contributors

package callback

// Context is the shared invocation context a Callback owns for its whole
// lifetime and passes to every listener during one Execute pass. The
// concrete implementation lives with the script runtime; this package only
// needs the narrow accessor contract below.
//
// A context can become invalid between calls when the backing engine tears
// it down. Implementations signal that by panicking from Result, which the
// dispatcher's safety probe converts into "unsafe".
type Context interface {
	// Result returns the current result slot.
	Result() any

	// ThrowNativeError records a boundary fault into the context so the
	// script side can observe it.
	ThrowNativeError(format string, args ...any)

	// Reset clears held state for reuse.
	Reset()
}
