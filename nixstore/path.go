package nixstore

import (
	"runtime"

	"github.com/roach88/nixgo/internal/native"
	"github.com/roach88/nixgo/nixutil"
)

// StorePath refers to one entry in a store.
//
// Each StorePath owns its own native handle. Clone makes an independent
// copy; closing one never affects another.
type StorePath struct {
	api    native.API
	handle *nixutil.Handle[native.PathPtr]
}

func pathKind(api native.API) nixutil.Kind[native.PathPtr] {
	return nixutil.Kind[native.PathPtr]{Name: "StorePath", Free: api.PathFree, Clone: api.PathClone}
}

// newOwnedPath adopts a handle the caller owns.
func newOwnedPath(api native.API, ptr native.PathPtr) *StorePath {
	return &StorePath{api: api, handle: nixutil.Own(pathKind(api), ptr)}
}

// newClonedPath copies a borrowed handle, e.g. one passed to a native
// callback, into a StorePath that outlives it.
func newClonedPath(api native.API, borrowed native.PathPtr) *StorePath {
	return &StorePath{api: api, handle: nixutil.CloneBorrowed(pathKind(api), borrowed)}
}

// Name returns the name part of the path, e.g. "hello-2.12.1".
//
// nix_store_path_name takes no context and cannot fail, so the only error is
// a name that is not valid UTF-8.
func (p *StorePath) Name() (string, error) {
	defer runtime.KeepAlive(p)

	return nixutil.ReadString(func(userData uintptr) error {
		p.api.PathName(p.handle.Ptr(), userData)
		return nil
	})
}

// Clone returns an independent copy of the path.
func (p *StorePath) Clone() *StorePath {
	defer runtime.KeepAlive(p)
	return newClonedPath(p.api, p.handle.Ptr())
}

// Close releases the path. Later calls do nothing.
func (p *StorePath) Close() error {
	p.handle.Close()
	return nil
}
