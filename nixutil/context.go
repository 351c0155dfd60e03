package nixutil

import (
	"runtime"

	"github.com/roach88/nixgo/internal/native"
)

// Context owns one nix_c_context.
//
// A context carries the outcome of the most recent native call made with
// it. It can be reused across calls; each call resets it.
type Context struct {
	api    native.API
	handle *Handle[native.ContextPtr]
}

// NewContext allocates a native context. The C library offers no recovery
// when allocation fails, so a null result panics.
func NewContext(api native.API) *Context {
	ptr := api.ContextCreate()
	if ptr == nil {
		panic("nixutil: nix_c_context_create returned a null pointer")
	}
	kind := Kind[native.ContextPtr]{Name: "nix_c_context", Free: api.ContextFree}
	return &Context{api: api, handle: Own(kind, ptr)}
}

// Ptr returns the raw context for a native call.
func (c *Context) Ptr() native.ContextPtr {
	return c.handle.Ptr()
}

// Code returns the code of the last call made with the context.
func (c *Context) Code() ErrCode {
	defer runtime.KeepAlive(c)
	return c.api.ErrCode(c.Ptr())
}

// Check converts the context state into an error. It returns nil for OK.
// Otherwise the message is copied out and decoded; a message that is not
// valid UTF-8 yields a KindTextDecoding error.
func (c *Context) Check() error {
	defer runtime.KeepAlive(c)

	code := c.api.ErrCode(c.Ptr())
	if code == native.OK {
		return nil
	}

	raw, ok := c.api.ErrMsg(c.Ptr())
	if !ok {
		return &Error{Kind: KindNativeCall, Code: code, Message: "no error message available"}
	}
	msg, err := DecodeText(raw)
	if err != nil {
		return err
	}
	return &Error{Kind: KindNativeCall, Code: code, Message: msg}
}

// IsKeyError reports whether the last call failed because a key was absent.
func (c *Context) IsKeyError() bool {
	return c.Code() == native.ErrKey
}

// Close releases the native context.
func (c *Context) Close() {
	c.handle.Close()
}
