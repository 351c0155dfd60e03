package nixstore

import (
	"fmt"
	"log/slog"
	"runtime"

	"github.com/google/uuid"

	"github.com/roach88/nixgo/internal/native"
	"github.com/roach88/nixgo/nixutil"
)

// Store is an open connection to a Nix store.
//
// It owns the native connection and one error context that is reused by
// every call, so calls on one Store must not overlap.
type Store struct {
	api    native.API
	handle *nixutil.Handle[native.StorePtr]
	ctx    *nixutil.Context

	// id correlates log records for this connection.
	id string
}

func storeKind(api native.API) nixutil.Kind[native.StorePtr] {
	return nixutil.Kind[native.StorePtr]{Name: "Store", Free: api.StoreFree}
}

// open requires nix_libstore_init to have succeeded. A null handle with no
// reported error means the native contract was broken and panics.
func (l *library) open(url string) (*Store, error) {
	if err := l.init.Do(); err != nil {
		return nil, err
	}
	if err := nixutil.CheckCString("store URL", url); err != nil {
		return nil, err
	}

	ctx := nixutil.NewContext(l.api)
	ptr := l.api.StoreOpen(ctx.Ptr(), url)
	if err := ctx.Check(); err != nil {
		if ptr != nil {
			l.api.StoreFree(ptr)
		}
		ctx.Close()
		return nil, fmt.Errorf("open store %q: %w", url, err)
	}
	if ptr == nil {
		ctx.Close()
		panic(fmt.Sprintf("nixstore: nix_store_open(%q) returned a null pointer without reporting an error", url))
	}

	s := &Store{
		api:    l.api,
		handle: nixutil.Own(storeKind(l.api), ptr),
		ctx:    ctx,
		id:     uuid.Must(uuid.NewV7()).String(),
	}
	slog.Debug("store opened", "url", url, "store", s.id)
	return s, nil
}

// URI returns the URI of the store, which may differ from the URL it was
// opened with (e.g. "https://cache.nixos.org/" reports no trailing slash).
func (s *Store) URI() (string, error) {
	return s.readString("get store URI", s.api.StoreGetURI)
}

// Version returns the version of the Nix daemon or store implementation
// behind the connection. Stores without a version return "".
func (s *Store) Version() (string, error) {
	return s.readString("get store version", s.api.StoreGetVersion)
}

// StoreDir returns the logical store directory, usually /nix/store.
func (s *Store) StoreDir() (string, error) {
	return s.readString("get store directory", s.api.StoreGetStoreDir)
}

func (s *Store) readString(op string, call func(native.ContextPtr, native.StorePtr, uintptr) native.ErrCode) (string, error) {
	defer runtime.KeepAlive(s)

	v, err := nixutil.ReadString(func(userData uintptr) error {
		call(s.ctx.Ptr(), s.handle.Ptr(), userData)
		return s.ctx.Check()
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return v, nil
}

// ParsePath parses an absolute store path such as
// /nix/store/<hash>-hello-2.12.1. The path does not have to be valid in the
// store; see IsValidPath.
func (s *Store) ParsePath(path string) (*StorePath, error) {
	defer runtime.KeepAlive(s)

	if err := nixutil.CheckCString("store path", path); err != nil {
		return nil, err
	}

	ptr := s.api.StoreParsePath(s.ctx.Ptr(), s.handle.Ptr(), path)
	if err := s.ctx.Check(); err != nil {
		if ptr != nil {
			s.api.PathFree(ptr)
		}
		return nil, fmt.Errorf("parse store path %q: %w", path, err)
	}
	if ptr == nil {
		panic(fmt.Sprintf("nixstore: nix_store_parse_path(%q) returned a null pointer without reporting an error", path))
	}

	slog.Debug("store path parsed", "path", path, "store", s.id)
	return newOwnedPath(s.api, ptr), nil
}

// IsValidPath reports whether p exists in the store.
func (s *Store) IsValidPath(p *StorePath) (bool, error) {
	defer runtime.KeepAlive(s)
	defer runtime.KeepAlive(p)

	valid := s.api.StoreIsValidPath(s.ctx.Ptr(), s.handle.Ptr(), p.handle.Ptr())
	if err := s.ctx.Check(); err != nil {
		return false, fmt.Errorf("check store path validity: %w", err)
	}
	return valid, nil
}

// RealPath returns where p lives on disk. It differs from the logical path
// for stores rooted elsewhere, such as local?root=/tmp/nixroot.
func (s *Store) RealPath(p *StorePath) (string, error) {
	defer runtime.KeepAlive(p)

	return s.readString("get real path", func(ctx native.ContextPtr, store native.StorePtr, userData uintptr) native.ErrCode {
		return s.api.StoreRealPath(ctx, store, p.handle.Ptr(), userData)
	})
}

// Close releases the connection and its context. Later calls do nothing;
// using the Store after Close panics.
func (s *Store) Close() error {
	if s.handle.Released() {
		return nil
	}
	s.handle.Close()
	s.ctx.Close()
	slog.Debug("store closed", "store", s.id)
	return nil
}
