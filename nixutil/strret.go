package nixutil

import (
	"github.com/roach88/nixgo/internal/native"
)

// ReadString drives one string-returning native call.
//
// call receives the user-data token to pass alongside the string callback
// and returns the outcome of the call (normally Context.Check). The buffer
// is unpinned on every path. On success the delivered bytes are decoded as
// UTF-8.
func ReadString(call func(userData uintptr) error) (string, error) {
	var buf native.StringBuffer
	token, unpin := buf.Pin()
	defer unpin()

	if err := call(token); err != nil {
		return "", err
	}
	return DecodeText(buf.Bytes())
}
