//go:build cgo && nix

package cnix

// #include <stdint.h>
import "C"

import (
	"unsafe"

	"github.com/roach88/nixgo/internal/native"
)

// nixgoReceiveString is the C-callable nix_get_string_callback. Protocol
// violations exit the process instead of panicking back through libnixstore.
//
//export nixgoReceiveString
func nixgoReceiveString(start *C.char, n C.uint, userData unsafe.Pointer) {
	native.ReceiveForeignString(unsafe.Pointer(start), uint32(n), uintptr(userData))
}
