package native

import (
	"errors"
	"fmt"
	"sync"
	"unsafe"
)

// ErrCode mirrors nix_err.
type ErrCode int32

const (
	// OK is NIX_OK.
	OK ErrCode = 0

	// ErrUnknown is NIX_ERR_UNKNOWN.
	ErrUnknown ErrCode = -1

	// ErrOverflow is NIX_ERR_OVERFLOW.
	ErrOverflow ErrCode = -2

	// ErrKey is NIX_ERR_KEY, returned when a key or attribute is absent.
	ErrKey ErrCode = -3

	// ErrNixError is NIX_ERR_NIX_ERROR, a generic error raised by Nix itself.
	ErrNixError ErrCode = -4
)

// String returns the C name of the code.
func (c ErrCode) String() string {
	switch c {
	case OK:
		return "NIX_OK"
	case ErrUnknown:
		return "NIX_ERR_UNKNOWN"
	case ErrOverflow:
		return "NIX_ERR_OVERFLOW"
	case ErrKey:
		return "NIX_ERR_KEY"
	case ErrNixError:
		return "NIX_ERR_NIX_ERROR"
	default:
		return fmt.Sprintf("nix_err(%d)", int32(c))
	}
}

// ContextPtr is an opaque nix_c_context*.
type ContextPtr unsafe.Pointer

// StorePtr is an opaque Store*.
type StorePtr unsafe.Pointer

// PathPtr is an opaque StorePath*.
type PathPtr unsafe.Pointer

// API is the subset of the Nix C API the wrappers consume.
//
// Methods taking a userData token deliver their result through ReceiveString
// exactly once. Methods taking a ContextPtr report failure through it; the
// library resets the context to OK at the start of each such call.
type API interface {
	// ContextCreate returns nil only when allocation fails.
	ContextCreate() ContextPtr
	ContextFree(ctx ContextPtr)
	ErrCode(ctx ContextPtr) ErrCode

	// ErrMsg returns a copy of the last error message. The native message
	// is only valid until the context is reused or freed, so implementations
	// copy it before returning. ok is false when no message is available.
	ErrMsg(ctx ContextPtr) (msg []byte, ok bool)

	LibUtilInit(ctx ContextPtr) ErrCode
	LibStoreInit(ctx ContextPtr) ErrCode

	// VersionGet returns the static library version string.
	VersionGet() string

	SettingGet(ctx ContextPtr, key string, userData uintptr) ErrCode
	SettingSet(ctx ContextPtr, key, value string) ErrCode

	// StoreOpen always passes an empty extra-parameters slot.
	StoreOpen(ctx ContextPtr, url string) StorePtr
	StoreFree(store StorePtr)
	StoreGetURI(ctx ContextPtr, store StorePtr, userData uintptr) ErrCode
	StoreGetVersion(ctx ContextPtr, store StorePtr, userData uintptr) ErrCode
	StoreGetStoreDir(ctx ContextPtr, store StorePtr, userData uintptr) ErrCode
	StoreParsePath(ctx ContextPtr, store StorePtr, path string) PathPtr
	StoreIsValidPath(ctx ContextPtr, store StorePtr, path PathPtr) bool
	StoreRealPath(ctx ContextPtr, store StorePtr, path PathPtr, userData uintptr) ErrCode

	// PathClone takes a borrowed handle and returns a new owned one.
	PathClone(path PathPtr) PathPtr
	PathFree(path PathPtr)

	// PathName has no context and cannot fail.
	PathName(path PathPtr, userData uintptr)
}

// ErrNotLinked is returned by Default when no implementation registered.
var ErrNotLinked = errors.New("native Nix library not linked (build with -tags nix and cgo enabled)")

var (
	registryMu sync.RWMutex
	registered API
)

// Register makes api the process default. It panics if called twice or with
// a nil api.
func Register(api API) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if api == nil {
		panic("native: Register api is nil")
	}
	if registered != nil {
		panic("native: Register called twice")
	}
	registered = api
}

// Default returns the registered implementation.
func Default() (API, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	if registered == nil {
		return nil, ErrNotLinked
	}
	return registered, nil
}
