package fakenix

import (
	"fmt"
	"strings"
	"sync"
	"unsafe"

	"github.com/roach88/nixgo/internal/native"
)

// Handle kind names, as used in Live.
const (
	KindContext = "nix_c_context"
	KindStore   = "Store"
	KindPath    = "StorePath"
)

// Faults switches on misbehavior.
type Faults struct {
	// NullContext makes nix_c_context_create return null.
	NullContext bool

	// NullStoreWithoutError makes nix_store_open return null while leaving
	// the context at NIX_OK.
	NullStoreWithoutError bool

	// DoubleDelivery invokes the string callback twice per call.
	DoubleDelivery bool

	// InvalidUTF8 appends a 0xff byte to every delivered string.
	InvalidUTF8 bool

	// InvalidUTF8Messages appends a 0xff byte to every error message.
	InvalidUTF8Messages bool
}

type fakeContext struct {
	code native.ErrCode
	msg  string
}

type fakeStore struct {
	spec *StoreSpec
}

type fakePath struct {
	storeDir string
	base     string
	name     string
}

// Lib implements native.API in memory.
type Lib struct {
	mu         sync.Mutex
	world      *World
	faults     Faults
	settings   map[string]string
	live       map[unsafe.Pointer]string
	utilInits  int
	storeInits int
	utilReady  bool
	storeReady bool
}

var _ native.API = (*Lib)(nil)

// New returns a fake library answering from w.
func New(w *World) *Lib {
	settings := make(map[string]string, len(w.Settings))
	for k, v := range w.Settings {
		settings[k] = v
	}
	return &Lib{
		world:    w,
		settings: settings,
		live:     make(map[unsafe.Pointer]string),
	}
}

// SetFaults replaces the active faults.
func (l *Lib) SetFaults(f Faults) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.faults = f
}

// Live returns the number of unreleased handles per kind.
func (l *Lib) Live() map[string]int {
	l.mu.Lock()
	defer l.mu.Unlock()
	counts := make(map[string]int)
	for _, kind := range l.live {
		counts[kind]++
	}
	return counts
}

// LiveCount returns the total number of unreleased handles.
func (l *Lib) LiveCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.live)
}

// UtilInitCalls returns how many times nix_libutil_init ran.
func (l *Lib) UtilInitCalls() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.utilInits
}

// StoreInitCalls returns how many times nix_libstore_init ran.
func (l *Lib) StoreInitCalls() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.storeInits
}

// track and release must be called with mu held.

func (l *Lib) track(ptr unsafe.Pointer, kind string) {
	l.live[ptr] = kind
}

func (l *Lib) release(ptr unsafe.Pointer, kind string) {
	got, ok := l.live[ptr]
	if !ok {
		panic(fmt.Sprintf("fakenix: %s %p freed twice or never allocated", kind, ptr))
	}
	if got != kind {
		panic(fmt.Sprintf("fakenix: %s %p freed as %s", got, ptr, kind))
	}
	delete(l.live, ptr)
}

func (l *Lib) mustLive(ptr unsafe.Pointer, kind string) {
	if got, ok := l.live[ptr]; !ok || got != kind {
		panic(fmt.Sprintf("fakenix: %s %p used after free", kind, ptr))
	}
}

// enter validates ctx and resets it, as every context-taking C call does.
func (l *Lib) enter(ctx native.ContextPtr) *fakeContext {
	l.mustLive(unsafe.Pointer(ctx), KindContext)
	c := (*fakeContext)(ctx)
	c.code = native.OK
	c.msg = ""
	return c
}

func fail(c *fakeContext, code native.ErrCode, format string, args ...any) native.ErrCode {
	c.code = code
	c.msg = fmt.Sprintf(format, args...)
	return code
}

func (l *Lib) storeOf(s native.StorePtr) *fakeStore {
	l.mustLive(unsafe.Pointer(s), KindStore)
	return (*fakeStore)(s)
}

func (l *Lib) pathOf(p native.PathPtr) *fakePath {
	l.mustLive(unsafe.Pointer(p), KindPath)
	return (*fakePath)(p)
}

func (l *Lib) deliver(s string, userData uintptr) {
	b := []byte(s)
	if l.faults.InvalidUTF8 {
		b = append(b, 0xff)
	}
	native.Deliver(b, userData)
	if l.faults.DoubleDelivery {
		native.Deliver(b, userData)
	}
}

func (l *Lib) ContextCreate() native.ContextPtr {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.faults.NullContext {
		return nil
	}
	c := &fakeContext{}
	l.track(unsafe.Pointer(c), KindContext)
	return native.ContextPtr(c)
}

func (l *Lib) ContextFree(ctx native.ContextPtr) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.release(unsafe.Pointer(ctx), KindContext)
}

func (l *Lib) ErrCode(ctx native.ContextPtr) native.ErrCode {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.mustLive(unsafe.Pointer(ctx), KindContext)
	return (*fakeContext)(ctx).code
}

func (l *Lib) ErrMsg(ctx native.ContextPtr) ([]byte, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.mustLive(unsafe.Pointer(ctx), KindContext)
	c := (*fakeContext)(ctx)
	if c.code == native.OK {
		return nil, false
	}
	msg := []byte(c.msg)
	if l.faults.InvalidUTF8Messages {
		msg = append(msg, 0xff)
	}
	return msg, true
}

func (l *Lib) LibUtilInit(ctx native.ContextPtr) native.ErrCode {
	l.mu.Lock()
	defer l.mu.Unlock()
	c := l.enter(ctx)
	l.utilInits++
	if l.world.UtilInitError != "" {
		return fail(c, native.ErrNixError, "%s", l.world.UtilInitError)
	}
	l.utilReady = true
	return native.OK
}

func (l *Lib) LibStoreInit(ctx native.ContextPtr) native.ErrCode {
	l.mu.Lock()
	defer l.mu.Unlock()
	c := l.enter(ctx)
	l.storeInits++
	if l.world.StoreInitError != "" {
		return fail(c, native.ErrNixError, "%s", l.world.StoreInitError)
	}
	l.storeReady = true
	return native.OK
}

func (l *Lib) VersionGet() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.world.Version
}

func (l *Lib) SettingGet(ctx native.ContextPtr, key string, userData uintptr) native.ErrCode {
	l.mu.Lock()
	defer l.mu.Unlock()
	c := l.enter(ctx)
	if !l.utilReady {
		return fail(c, native.ErrUnknown, "nix_libutil_init was not called")
	}
	value, ok := l.settings[key]
	if !ok {
		return fail(c, native.ErrKey, "Setting not found")
	}
	l.deliver(value, userData)
	return native.OK
}

func (l *Lib) SettingSet(ctx native.ContextPtr, key, value string) native.ErrCode {
	l.mu.Lock()
	defer l.mu.Unlock()
	c := l.enter(ctx)
	if !l.utilReady {
		return fail(c, native.ErrUnknown, "nix_libutil_init was not called")
	}
	if _, ok := l.settings[key]; !ok {
		return fail(c, native.ErrKey, "Setting not found")
	}
	l.settings[key] = value
	return native.OK
}

func (l *Lib) StoreOpen(ctx native.ContextPtr, url string) native.StorePtr {
	l.mu.Lock()
	defer l.mu.Unlock()
	c := l.enter(ctx)
	if !l.storeReady {
		fail(c, native.ErrUnknown, "nix_libstore_init was not called")
		return nil
	}
	if l.faults.NullStoreWithoutError {
		return nil
	}
	for i := range l.world.Stores {
		spec := &l.world.Stores[i]
		if spec.URL == url {
			s := &fakeStore{spec: spec}
			l.track(unsafe.Pointer(s), KindStore)
			return native.StorePtr(s)
		}
	}
	scheme, _, found := strings.Cut(url, "://")
	if !found {
		scheme = url
	}
	fail(c, native.ErrNixError, "don't know how to open Nix store with scheme '%s'", scheme)
	return nil
}

func (l *Lib) StoreFree(store native.StorePtr) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.release(unsafe.Pointer(store), KindStore)
}

func (l *Lib) StoreGetURI(ctx native.ContextPtr, store native.StorePtr, userData uintptr) native.ErrCode {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.enter(ctx)
	l.deliver(l.storeOf(store).spec.URI, userData)
	return native.OK
}

func (l *Lib) StoreGetVersion(ctx native.ContextPtr, store native.StorePtr, userData uintptr) native.ErrCode {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.enter(ctx)
	l.deliver(l.storeOf(store).spec.Version, userData)
	return native.OK
}

func (l *Lib) StoreGetStoreDir(ctx native.ContextPtr, store native.StorePtr, userData uintptr) native.ErrCode {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.enter(ctx)
	l.deliver(l.storeOf(store).spec.StoreDir, userData)
	return native.OK
}

func (l *Lib) StoreParsePath(ctx native.ContextPtr, store native.StorePtr, path string) native.PathPtr {
	l.mu.Lock()
	defer l.mu.Unlock()
	c := l.enter(ctx)
	s := l.storeOf(store)
	base, name, ok := splitStorePath(s.spec.StoreDir, path)
	if !ok {
		fail(c, native.ErrNixError, "path '%s' is not a valid store path in '%s'", path, s.spec.StoreDir)
		return nil
	}
	p := &fakePath{storeDir: s.spec.StoreDir, base: base, name: name}
	l.track(unsafe.Pointer(p), KindPath)
	return native.PathPtr(p)
}

func (l *Lib) StoreIsValidPath(ctx native.ContextPtr, store native.StorePtr, path native.PathPtr) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.enter(ctx)
	s := l.storeOf(store)
	p := l.pathOf(path)
	if p.storeDir != s.spec.StoreDir {
		return false
	}
	full := p.storeDir + "/" + p.base
	for _, name := range s.spec.Paths {
		if PathFor(s.spec.StoreDir, name) == full {
			return true
		}
	}
	return false
}

func (l *Lib) StoreRealPath(ctx native.ContextPtr, store native.StorePtr, path native.PathPtr, userData uintptr) native.ErrCode {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.enter(ctx)
	s := l.storeOf(store)
	p := l.pathOf(path)
	l.deliver(s.spec.RealDir+"/"+p.base, userData)
	return native.OK
}

func (l *Lib) PathClone(path native.PathPtr) native.PathPtr {
	l.mu.Lock()
	defer l.mu.Unlock()
	dup := *l.pathOf(path)
	l.track(unsafe.Pointer(&dup), KindPath)
	return native.PathPtr(&dup)
}

func (l *Lib) PathFree(path native.PathPtr) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.release(unsafe.Pointer(path), KindPath)
}

func (l *Lib) PathName(path native.PathPtr, userData uintptr) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.deliver(l.pathOf(path).name, userData)
}
