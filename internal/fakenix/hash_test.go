package fakenix

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNixBase32(t *testing.T) {
	assert.Equal(t, "00000000000000000000000000000000", nixBase32(make([]byte, 20)))

	ones := make([]byte, 20)
	for i := range ones {
		ones[i] = 0xff
	}
	assert.Equal(t, "zzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzz", nixBase32(ones))

	low := make([]byte, 20)
	low[0] = 1
	assert.Equal(t, "00000000000000000000000000000001", nixBase32(low), "least significant bits come last")
}

func TestPathFor_Stable(t *testing.T) {
	got := PathFor("/nix/store", "hello-2.12.1")
	assert.Equal(t, "/nix/store/8h2jacllsrx46k7mi8xsf8a6833lzpy0-hello-2.12.1", got)
	assert.Equal(t, got, PathFor("/nix/store", "hello-2.12.1"))
	assert.NotEqual(t, got, PathFor("/nix/store", "hello-2.12.2"))
}

func TestSplitStorePath(t *testing.T) {
	path := PathFor("/nix/store", "hello-2.12.1")

	base, name, ok := splitStorePath("/nix/store", path)
	assert.True(t, ok)
	assert.Equal(t, "8h2jacllsrx46k7mi8xsf8a6833lzpy0-hello-2.12.1", base)
	assert.Equal(t, "hello-2.12.1", name)

	tests := []struct {
		name string
		path string
	}{
		{"wrong store dir", "/gnu/store/8h2jacllsrx46k7mi8xsf8a6833lzpy0-hello"},
		{"nested", path + "/bin/hello"},
		{"short hash", "/nix/store/8h2jac-hello"},
		{"missing name", "/nix/store/8h2jacllsrx46k7mi8xsf8a6833lzpy0-"},
		{"bad alphabet", "/nix/store/eh2jacllsrx46k7mi8xsf8a6833lzpy0-hello"},
		{"no dash", "/nix/store/8h2jacllsrx46k7mi8xsf8a6833lzpy0_hello"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, ok := splitStorePath("/nix/store", tt.path)
			assert.False(t, ok)
		})
	}
}
