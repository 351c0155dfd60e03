package native

import (
	"fmt"
	"io"
	"math"
	"os"
	"runtime/debug"
	"sync/atomic"
	"unsafe"

	"github.com/puzpuzpuz/xsync/v3"
)

// StringBuffer receives the result of exactly one string-returning call.
//
// Thread-safety: a buffer belongs to the goroutine driving the call. The
// token registry is safe for concurrent use.
type StringBuffer struct {
	data      []byte
	delivered bool
}

var (
	pinned    = xsync.NewMapOf[uintptr, *StringBuffer]()
	nextToken atomic.Uintptr
)

// exit and stderr are replaced in tests.
var (
	exit             = os.Exit
	stderr io.Writer = os.Stderr
)

// Bytes returns the delivered bytes.
func (b *StringBuffer) Bytes() []byte {
	return b.data
}

// Delivered reports whether the callback ran for this buffer.
func (b *StringBuffer) Delivered() bool {
	return b.delivered
}

// Pin registers the buffer and returns the user-data token to pass to the
// native call. unpin must be called once the call returns.
//
// Panics if the buffer already holds data.
func (b *StringBuffer) Pin() (token uintptr, unpin func()) {
	if len(b.data) != 0 || b.delivered {
		panic("native: StringBuffer must be empty before a string-returning call")
	}
	token = nextToken.Add(1)
	pinned.Store(token, b)
	return token, func() { pinned.Delete(token) }
}

// ReceiveString is the body of nix_get_string_callback.
//
// It appends exactly n bytes starting at start to the buffer named by
// userData. A second delivery to the same buffer means the callback ran more
// than once for one call; that panics instead of concatenating. An unknown
// token panics as well.
func ReceiveString(start unsafe.Pointer, n uint32, userData uintptr) {
	buf, ok := pinned.Load(userData)
	if !ok {
		panic(fmt.Sprintf("native: string callback invoked with unknown user data %#x", userData))
	}
	if len(buf.data) != 0 || buf.delivered {
		panic("native: string callback invoked twice for one call (buffer already populated)")
	}
	buf.delivered = true
	if n == 0 {
		return
	}
	buf.data = append(buf.data, unsafe.Slice((*byte)(start), n)...)
}

// ReceiveForeignString is ReceiveString for a callback entered from C.
//
// A Go panic would unwind past the native library's frames and could be
// recovered by an unrelated caller, so a protocol violation here prints the
// panic and exits the process with status 2.
func ReceiveForeignString(start unsafe.Pointer, n uint32, userData uintptr) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(stderr, "fatal: %v\n\n%s", r, debug.Stack())
			exit(2)
		}
	}()
	ReceiveString(start, n, userData)
}

// Deliver hands b to the callback the way the native library would. It is
// used by implementations that produce Go byte slices.
func Deliver(b []byte, userData uintptr) {
	if len(b) == 0 {
		ReceiveString(nil, 0, userData)
		return
	}
	ReceiveString(unsafe.Pointer(unsafe.SliceData(b)), deliveryLen(len(b)), userData)
}

// deliveryLen converts a length to the callback's unsigned int. Lengths that
// do not fit panic rather than truncate.
func deliveryLen(n int) uint32 {
	if uint64(n) > math.MaxUint32 {
		panic(fmt.Sprintf("native: %d bytes exceed the string callback's length range", n))
	}
	return uint32(n)
}
