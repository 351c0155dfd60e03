package nixutil

import (
	"fmt"
	"sync"

	_ "github.com/roach88/nixgo/internal/native/cnix"

	"github.com/roach88/nixgo/internal/native"
)

// Lib binds the wrappers to one native implementation and owns its
// libutil bootstrap.
//
// Thread-safety: safe for concurrent use; every call allocates its own
// context.
type Lib struct {
	api  native.API
	init *Once
}

var defaultLib = sync.OnceValues(func() (*Lib, error) {
	api, err := native.Default()
	if err != nil {
		return nil, &Error{Kind: KindInitialization, Message: "no native library", Err: err}
	}
	return NewLib(api), nil
})

// Default returns the Lib bound to the process-wide native implementation.
// The cgo binding is linked when building with cgo and -tags nix; otherwise
// Default fails with a KindInitialization error wrapping native.ErrNotLinked.
func Default() (*Lib, error) {
	return defaultLib()
}

// NewLib binds api. Each Lib runs its own bootstrap, so a process normally
// holds exactly one, returned by Default.
func NewLib(api native.API) *Lib {
	l := &Lib{api: api}
	l.init = NewOnce("nix_libutil_init", func() error {
		ctx := NewContext(api)
		defer ctx.Close()
		api.LibUtilInit(ctx.Ptr())
		return ctx.Check()
	})
	return l
}

// API returns the bound native implementation.
func (l *Lib) API() native.API {
	return l.api
}

// Init runs nix_libutil_init once and returns the cached outcome.
func (l *Lib) Init() error {
	return l.init.Do()
}

// Version returns the version of the linked Nix library.
func (l *Lib) Version() string {
	return l.api.VersionGet()
}

// Setting returns the value of a Nix setting. A setting that does not exist
// yields ok=false and a nil error.
func (l *Lib) Setting(key string) (value string, ok bool, err error) {
	if err := l.Init(); err != nil {
		return "", false, err
	}
	if err := CheckCString("setting key", key); err != nil {
		return "", false, err
	}

	ctx := NewContext(l.api)
	defer ctx.Close()

	value, err = ReadString(func(userData uintptr) error {
		l.api.SettingGet(ctx.Ptr(), key, userData)
		return ctx.Check()
	})
	if err != nil {
		if ctx.IsKeyError() {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get setting %q: %w", key, err)
	}
	return value, true, nil
}

// SetSetting updates a Nix setting. Unknown settings fail with ErrKey.
func (l *Lib) SetSetting(key, value string) error {
	if err := l.Init(); err != nil {
		return err
	}
	if err := CheckCString("setting key", key); err != nil {
		return err
	}
	if err := CheckCString("setting value", value); err != nil {
		return err
	}

	ctx := NewContext(l.api)
	defer ctx.Close()

	l.api.SettingSet(ctx.Ptr(), key, value)
	if err := ctx.Check(); err != nil {
		return fmt.Errorf("set setting %q: %w", key, err)
	}
	return nil
}
