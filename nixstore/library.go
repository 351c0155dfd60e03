package nixstore

import (
	"fmt"
	"sort"
	"sync"

	"github.com/roach88/nixgo/internal/native"
	"github.com/roach88/nixgo/nixutil"
)

// library pairs a bound nixutil.Lib with its libstore bootstrap.
type library struct {
	util *nixutil.Lib
	api  native.API
	init *nixutil.Once
}

var defaultLibrary = sync.OnceValues(func() (*library, error) {
	util, err := nixutil.Default()
	if err != nil {
		return nil, err
	}
	return newLibrary(util), nil
})

func newLibrary(util *nixutil.Lib) *library {
	api := util.API()
	return &library{
		util: util,
		api:  api,
		init: nixutil.NewOnce("nix_libstore_init", func() error {
			ctx := nixutil.NewContext(api)
			defer ctx.Close()
			api.LibStoreInit(ctx.Ptr())
			return ctx.Check()
		}),
	}
}

// Open connects to the store named by url.
func Open(url string) (*Store, error) {
	lib, err := defaultLibrary()
	if err != nil {
		return nil, err
	}
	return lib.open(url)
}

// OpenConfigured applies cfg.Settings and opens cfg.StoreURL.
func OpenConfigured(cfg *Config) (*Store, error) {
	lib, err := defaultLibrary()
	if err != nil {
		return nil, err
	}
	return lib.openConfigured(cfg)
}

func (l *library) openConfigured(cfg *Config) (*Store, error) {
	keys := make([]string, 0, len(cfg.Settings))
	for k := range cfg.Settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if err := l.util.SetSetting(k, cfg.Settings[k]); err != nil {
			return nil, fmt.Errorf("apply configured settings: %w", err)
		}
	}
	return l.open(cfg.StoreURL)
}
