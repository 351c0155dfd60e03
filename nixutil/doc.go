// Package nixutil makes the Nix C error and ownership conventions safe.
//
// The C API reports failure through a mutable context object that callers
// must check after every call, returns variable-length strings through a
// one-shot callback, and hands out opaque handles that must be freed exactly
// once. This package wraps each convention:
//
//   - Context owns a nix_c_context and turns its error code and message into
//     a *Error via Check.
//   - Handle owns one opaque native pointer and releases it exactly once.
//     Duplication is explicit through Clone.
//   - ReadString drives one string-returning call and decodes the result as
//     UTF-8.
//   - Once caches the outcome of a library bootstrap call for the lifetime
//     of the process.
//
// # Errors
//
// Recoverable failures are *Error values tagged with an ErrorKind. Use
// IsKeyError to treat a missing key as a normal outcome.
//
// Broken assumptions about the native contract (a string callback invoked
// twice, a null handle without a reported error, use after Close) panic.
// They indicate a bug and continuing would risk silent corruption.
//
// # Thread-safety
//
// Once and Lib are safe for concurrent use. Context and Handle are not.
package nixutil
