package fakenix

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/nixgo/internal/native"
)

// readString drives one string call against the fake.
func readString(t *testing.T, call func(userData uintptr)) string {
	t.Helper()
	var buf native.StringBuffer
	token, unpin := buf.Pin()
	defer unpin()
	call(token)
	return string(buf.Bytes())
}

func initialized(t *testing.T, name string) (*Lib, native.ContextPtr) {
	t.Helper()
	l := MustNamed(name)
	ctx := l.ContextCreate()
	require.NotNil(t, ctx)
	require.Equal(t, native.OK, l.LibUtilInit(ctx))
	require.Equal(t, native.OK, l.LibStoreInit(ctx))
	return l, ctx
}

func TestLib_OpenAndQuery(t *testing.T) {
	l, ctx := initialized(t, "default")
	defer l.ContextFree(ctx)

	store := l.StoreOpen(ctx, "https://cache.nixos.org/")
	require.NotNil(t, store)
	assert.Equal(t, native.OK, l.ErrCode(ctx))

	uri := readString(t, func(ud uintptr) { l.StoreGetURI(ctx, store, ud) })
	assert.Equal(t, "https://cache.nixos.org", uri)

	dir := readString(t, func(ud uintptr) { l.StoreGetStoreDir(ctx, store, ud) })
	assert.Equal(t, "/nix/store", dir)

	l.StoreFree(store)
	assert.Equal(t, map[string]int{KindContext: 1}, l.Live())
}

func TestLib_OpenUnknownScheme(t *testing.T) {
	l, ctx := initialized(t, "default")
	defer l.ContextFree(ctx)

	store := l.StoreOpen(ctx, "invalid://uri")
	assert.Nil(t, store)
	assert.Equal(t, native.ErrNixError, l.ErrCode(ctx))

	msg, ok := l.ErrMsg(ctx)
	require.True(t, ok)
	assert.Equal(t, "don't know how to open Nix store with scheme 'invalid'", string(msg))
}

func TestLib_OpenRequiresStoreInit(t *testing.T) {
	l := MustNamed("default")
	ctx := l.ContextCreate()
	defer l.ContextFree(ctx)

	assert.Nil(t, l.StoreOpen(ctx, "auto"))
	assert.Equal(t, native.ErrUnknown, l.ErrCode(ctx))
}

func TestLib_CallsResetContext(t *testing.T) {
	l, ctx := initialized(t, "default")
	defer l.ContextFree(ctx)

	l.StoreOpen(ctx, "invalid://uri")
	require.Equal(t, native.ErrNixError, l.ErrCode(ctx))

	store := l.StoreOpen(ctx, "auto")
	require.NotNil(t, store)
	defer l.StoreFree(store)
	assert.Equal(t, native.OK, l.ErrCode(ctx))

	_, ok := l.ErrMsg(ctx)
	assert.False(t, ok, "no message once the context is reset")
}

func TestLib_PathLifecycle(t *testing.T) {
	l, ctx := initialized(t, "default")
	defer l.ContextFree(ctx)

	store := l.StoreOpen(ctx, "auto")
	require.NotNil(t, store)
	defer l.StoreFree(store)

	path := l.StoreParsePath(ctx, store, PathFor("/nix/store", "hello-2.12.1"))
	require.NotNil(t, path)
	assert.True(t, l.StoreIsValidPath(ctx, store, path))

	dup := l.PathClone(path)
	require.NotNil(t, dup)
	assert.NotEqual(t, path, dup, "clone is a distinct handle")

	l.PathFree(path)
	assert.Equal(t, "hello-2.12.1", readString(t, func(ud uintptr) { l.PathName(dup, ud) }))
	l.PathFree(dup)

	assert.Panics(t, func() { l.PathFree(dup) }, "double free is detected")
}

func TestLib_ParsePathRejectsForeignPath(t *testing.T) {
	l, ctx := initialized(t, "default")
	defer l.ContextFree(ctx)

	store := l.StoreOpen(ctx, "auto")
	require.NotNil(t, store)
	defer l.StoreFree(store)

	assert.Nil(t, l.StoreParsePath(ctx, store, "/usr/bin/env"))
	assert.Equal(t, native.ErrNixError, l.ErrCode(ctx))
}

func TestLib_InvalidPathIsParseableButNotValid(t *testing.T) {
	l, ctx := initialized(t, "default")
	defer l.ContextFree(ctx)

	store := l.StoreOpen(ctx, "daemon")
	require.NotNil(t, store)
	defer l.StoreFree(store)

	path := l.StoreParsePath(ctx, store, PathFor("/nix/store", "glibc-2.39-52"))
	require.NotNil(t, path)
	defer l.PathFree(path)
	assert.False(t, l.StoreIsValidPath(ctx, store, path))
}

func TestLib_Settings(t *testing.T) {
	l, ctx := initialized(t, "default")
	defer l.ContextFree(ctx)

	assert.Equal(t, "4", readString(t, func(ud uintptr) { l.SettingGet(ctx, "max-jobs", ud) }))

	assert.Equal(t, native.OK, l.SettingSet(ctx, "max-jobs", "8"))
	assert.Equal(t, "8", readString(t, func(ud uintptr) { l.SettingGet(ctx, "max-jobs", ud) }))

	assert.Equal(t, native.ErrKey, l.SettingSet(ctx, "no-such-setting", "1"))

	got := readString(t, func(ud uintptr) { l.SettingGet(ctx, "no-such-setting", ud) })
	assert.Empty(t, got)
	assert.Equal(t, native.ErrKey, l.ErrCode(ctx))
}

func TestLib_InitFailures(t *testing.T) {
	l := MustNamed("broken_store_init")
	ctx := l.ContextCreate()
	defer l.ContextFree(ctx)

	assert.Equal(t, native.OK, l.LibUtilInit(ctx))
	assert.Equal(t, native.ErrNixError, l.LibStoreInit(ctx))
	msg, ok := l.ErrMsg(ctx)
	require.True(t, ok)
	assert.Contains(t, string(msg), "Permission denied")
	assert.Equal(t, 1, l.StoreInitCalls())
}

func TestLib_Faults(t *testing.T) {
	l, ctx := initialized(t, "default")
	defer l.ContextFree(ctx)

	l.SetFaults(Faults{NullContext: true})
	assert.Nil(t, l.ContextCreate())

	l.SetFaults(Faults{NullStoreWithoutError: true})
	assert.Nil(t, l.StoreOpen(ctx, "auto"))
	assert.Equal(t, native.OK, l.ErrCode(ctx))

	l.SetFaults(Faults{})
	store := l.StoreOpen(ctx, "auto")
	require.NotNil(t, store)
	defer l.StoreFree(store)

	l.SetFaults(Faults{DoubleDelivery: true})
	var buf native.StringBuffer
	token, unpin := buf.Pin()
	defer unpin()
	assert.Panics(t, func() { l.StoreGetURI(ctx, store, token) })

	l.SetFaults(Faults{InvalidUTF8: true})
	got := readString(t, func(ud uintptr) { l.StoreGetURI(ctx, store, ud) })
	assert.Equal(t, "daemon\xff", got)
}
