//go:build cgo && nix

package cnix

/*
#cgo pkg-config: nix-store-c nix-util-c
#include <stdint.h>
#include <stdlib.h>
#include <nix_api_util.h>
#include <nix_api_store.h>

extern void nixgoReceiveString(char *start, unsigned int n, void *user_data);

static nix_err nixgo_setting_get(nix_c_context *ctx, const char *key, uintptr_t data) {
	return nix_setting_get(ctx, key, (nix_get_string_callback)nixgoReceiveString, (void *)data);
}

static nix_err nixgo_store_get_uri(nix_c_context *ctx, Store *store, uintptr_t data) {
	return nix_store_get_uri(ctx, store, (nix_get_string_callback)nixgoReceiveString, (void *)data);
}

static nix_err nixgo_store_get_version(nix_c_context *ctx, Store *store, uintptr_t data) {
	return nix_store_get_version(ctx, store, (nix_get_string_callback)nixgoReceiveString, (void *)data);
}

static nix_err nixgo_store_get_storedir(nix_c_context *ctx, Store *store, uintptr_t data) {
	return nix_store_get_storedir(ctx, store, (nix_get_string_callback)nixgoReceiveString, (void *)data);
}

static nix_err nixgo_store_real_path(nix_c_context *ctx, Store *store, StorePath *path, uintptr_t data) {
	return nix_store_real_path(ctx, store, path, (nix_get_string_callback)nixgoReceiveString, (void *)data);
}

static void nixgo_store_path_name(const StorePath *path, uintptr_t data) {
	nix_store_path_name(path, (nix_get_string_callback)nixgoReceiveString, (void *)data);
}

static Store *nixgo_store_open(nix_c_context *ctx, const char *uri) {
	return nix_store_open(ctx, uri, NULL);
}
*/
import "C"

import (
	"unsafe"

	"github.com/roach88/nixgo/internal/native"
)

func init() {
	native.Register(binding{})
}

// binding implements native.API with direct C calls. It holds no state; all
// state lives in the handles.
type binding struct{}

func cctx(ctx native.ContextPtr) *C.nix_c_context { return (*C.nix_c_context)(ctx) }
func cstore(s native.StorePtr) *C.Store             { return (*C.Store)(s) }
func cpath(p native.PathPtr) *C.StorePath           { return (*C.StorePath)(p) }

func (binding) ContextCreate() native.ContextPtr {
	return native.ContextPtr(C.nix_c_context_create())
}

func (binding) ContextFree(ctx native.ContextPtr) {
	C.nix_c_context_free(cctx(ctx))
}

func (binding) ErrCode(ctx native.ContextPtr) native.ErrCode {
	return native.ErrCode(C.nix_err_code(cctx(ctx)))
}

func (binding) ErrMsg(ctx native.ContextPtr) ([]byte, bool) {
	var n C.uint
	msg := C.nix_err_msg(nil, cctx(ctx), &n)
	if msg == nil {
		return nil, false
	}
	// msg is borrowed and only valid until the context is reused.
	return C.GoBytes(unsafe.Pointer(msg), C.int(n)), true
}

func (binding) LibUtilInit(ctx native.ContextPtr) native.ErrCode {
	return native.ErrCode(C.nix_libutil_init(cctx(ctx)))
}

func (binding) LibStoreInit(ctx native.ContextPtr) native.ErrCode {
	return native.ErrCode(C.nix_libstore_init(cctx(ctx)))
}

func (binding) VersionGet() string {
	return C.GoString(C.nix_version_get())
}

func (binding) SettingGet(ctx native.ContextPtr, key string, userData uintptr) native.ErrCode {
	ckey := C.CString(key)
	defer C.free(unsafe.Pointer(ckey))
	return native.ErrCode(C.nixgo_setting_get(cctx(ctx), ckey, C.uintptr_t(userData)))
}

func (binding) SettingSet(ctx native.ContextPtr, key, value string) native.ErrCode {
	ckey := C.CString(key)
	defer C.free(unsafe.Pointer(ckey))
	cvalue := C.CString(value)
	defer C.free(unsafe.Pointer(cvalue))
	return native.ErrCode(C.nix_setting_set(cctx(ctx), ckey, cvalue))
}

func (binding) StoreOpen(ctx native.ContextPtr, url string) native.StorePtr {
	// Callers reject URLs with interior NULs before reaching here.
	curl := C.CString(url)
	defer C.free(unsafe.Pointer(curl))
	return native.StorePtr(C.nixgo_store_open(cctx(ctx), curl))
}

func (binding) StoreFree(store native.StorePtr) {
	C.nix_store_free(cstore(store))
}

func (binding) StoreGetURI(ctx native.ContextPtr, store native.StorePtr, userData uintptr) native.ErrCode {
	return native.ErrCode(C.nixgo_store_get_uri(cctx(ctx), cstore(store), C.uintptr_t(userData)))
}

func (binding) StoreGetVersion(ctx native.ContextPtr, store native.StorePtr, userData uintptr) native.ErrCode {
	return native.ErrCode(C.nixgo_store_get_version(cctx(ctx), cstore(store), C.uintptr_t(userData)))
}

func (binding) StoreGetStoreDir(ctx native.ContextPtr, store native.StorePtr, userData uintptr) native.ErrCode {
	return native.ErrCode(C.nixgo_store_get_storedir(cctx(ctx), cstore(store), C.uintptr_t(userData)))
}

func (binding) StoreParsePath(ctx native.ContextPtr, store native.StorePtr, path string) native.PathPtr {
	cp := C.CString(path)
	defer C.free(unsafe.Pointer(cp))
	return native.PathPtr(C.nix_store_parse_path(cctx(ctx), cstore(store), cp))
}

func (binding) StoreIsValidPath(ctx native.ContextPtr, store native.StorePtr, path native.PathPtr) bool {
	return bool(C.nix_store_is_valid_path(cctx(ctx), cstore(store), cpath(path)))
}

func (binding) StoreRealPath(ctx native.ContextPtr, store native.StorePtr, path native.PathPtr, userData uintptr) native.ErrCode {
	return native.ErrCode(C.nixgo_store_real_path(cctx(ctx), cstore(store), cpath(path), C.uintptr_t(userData)))
}

func (binding) PathClone(path native.PathPtr) native.PathPtr {
	return native.PathPtr(C.nix_store_path_clone(cpath(path)))
}

func (binding) PathFree(path native.PathPtr) {
	C.nix_store_path_free(cpath(path))
}

func (binding) PathName(path native.PathPtr, userData uintptr) {
	C.nixgo_store_path_name(cpath(path), C.uintptr_t(userData))
}
