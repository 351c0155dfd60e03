// Package native describes the C contract of the Nix store library as a Go
// interface, so the safe wrappers in nixutil and nixstore can run against
// either the cgo binding or an in-process fake.
//
// # Handles
//
// Every native resource is an opaque pointer owned by the library. The Go
// types ContextPtr, StorePtr and PathPtr are distinct named pointer types so
// one kind of handle cannot be passed where another is expected. A nil value
// always means "no handle".
//
// # String return protocol
//
// Functions that return variable-length text take a callback and an opaque
// user-data pointer. The library calls the callback exactly once with the
// complete result, and the callback copies it into caller-owned memory.
// Go memory cannot be handed to C directly, so user data is a token naming a
// pinned StringBuffer (see StringBuffer.Pin). ReceiveString is the Go body of
// the callback; the cgo binding exports a C trampoline that forwards to it.
//
// # Registration
//
// Implementations register themselves with Register from an init function,
// the same way database/sql drivers do. Default returns the registered
// implementation.
package native
