package nixutil

import (
	"fmt"
	"runtime"
)

// Kind describes one kind of opaque native resource.
type Kind[P comparable] struct {
	// Name is the C type name, used in panic messages.
	Name string

	// Free releases a handle. Required.
	Free func(P)

	// Clone returns a new, independently owned handle from a borrowed one.
	// Nil when the resource cannot be duplicated.
	Clone func(P) P
}

// Handle is the exclusive owner of one non-nil native handle.
//
// The handle is released by Close, exactly once. A handle whose owner is
// dropped without Close is released by a runtime cleanup instead; Close
// cancels that cleanup, so the two paths never both run.
//
// Callers that pass Ptr to a native call must keep the Handle reachable
// until the call returns (runtime.KeepAlive).
type Handle[P comparable] struct {
	kind     Kind[P]
	ptr      P
	released bool
	cleanup  runtime.Cleanup
}

// Own takes ownership of ptr. Panics if ptr is nil.
func Own[P comparable](kind Kind[P], ptr P) *Handle[P] {
	var zero P
	if ptr == zero {
		panic(fmt.Sprintf("nixutil: cannot own a null %s handle", kind.Name))
	}
	if kind.Free == nil {
		panic(fmt.Sprintf("nixutil: %s has no free function", kind.Name))
	}
	h := &Handle[P]{kind: kind, ptr: ptr}
	h.cleanup = runtime.AddCleanup(h, kind.Free, ptr)
	return h
}

// CloneBorrowed clones a handle the caller does not own and takes ownership
// of the copy. The borrowed handle is left untouched.
func CloneBorrowed[P comparable](kind Kind[P], borrowed P) *Handle[P] {
	var zero P
	if kind.Clone == nil {
		panic(fmt.Sprintf("nixutil: %s handles cannot be cloned", kind.Name))
	}
	if borrowed == zero {
		panic(fmt.Sprintf("nixutil: cannot clone a null %s handle", kind.Name))
	}
	return Own(kind, kind.Clone(borrowed))
}

// Ptr returns the raw handle. Panics after Close.
func (h *Handle[P]) Ptr() P {
	if h.released {
		panic(fmt.Sprintf("nixutil: %s handle used after release", h.kind.Name))
	}
	return h.ptr
}

// Clone returns an independent copy via the native clone function.
func (h *Handle[P]) Clone() *Handle[P] {
	defer runtime.KeepAlive(h)
	return CloneBorrowed(h.kind, h.Ptr())
}

// Released reports whether Close has run.
func (h *Handle[P]) Released() bool {
	return h.released
}

// Close releases the handle. Later calls do nothing.
func (h *Handle[P]) Close() {
	if h.released {
		return
	}
	h.released = true
	h.cleanup.Stop()
	ptr := h.ptr
	var zero P
	h.ptr = zero
	h.kind.Free(ptr)
}
