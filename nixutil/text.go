package nixutil

import (
	"fmt"

	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

// DecodeText validates b as UTF-8 and returns it as a string.
func DecodeText(b []byte) (string, error) {
	out, _, err := transform.Bytes(encoding.UTF8Validator, b)
	if err != nil {
		return "", &Error{
			Kind:    KindTextDecoding,
			Message: fmt.Sprintf("%d bytes returned by the native library are not valid UTF-8", len(b)),
			Err:     err,
		}
	}
	return string(out), nil
}
