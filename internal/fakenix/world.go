package fakenix

import (
	"bytes"
	"embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed worlds/*.yaml
var worldFS embed.FS

const defaultStoreDir = "/nix/store"

// World describes what the fake library answers.
type World struct {
	// Version is returned by nix_version_get.
	Version string `yaml:"version"`

	// UtilInitError makes nix_libutil_init fail with this message.
	UtilInitError string `yaml:"util_init_error,omitempty"`

	// StoreInitError makes nix_libstore_init fail with this message.
	StoreInitError string `yaml:"store_init_error,omitempty"`

	// Settings are the known settings and their initial values.
	Settings map[string]string `yaml:"settings,omitempty"`

	// Stores lists the URLs nix_store_open accepts.
	Stores []StoreSpec `yaml:"stores"`
}

// StoreSpec describes one openable store.
type StoreSpec struct {
	// URL is matched exactly against the URL passed to nix_store_open.
	URL string `yaml:"url"`

	// URI is what nix_store_get_uri reports.
	URI string `yaml:"uri"`

	// Version is what nix_store_get_version reports. Empty means the
	// store has no version, as for binary caches.
	Version string `yaml:"version,omitempty"`

	// StoreDir is the logical store directory. Defaults to /nix/store.
	StoreDir string `yaml:"store_dir,omitempty"`

	// RealDir is where paths live on disk. Defaults to StoreDir.
	RealDir string `yaml:"real_dir,omitempty"`

	// Paths are the names of valid paths in the store.
	Paths []string `yaml:"paths,omitempty"`
}

// LoadWorld reads and parses a world YAML file.
// Unknown fields are rejected.
func LoadWorld(path string) (*World, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read world file: %w", err)
	}
	return parseWorld(data)
}

// LoadNamed loads one of the built-in worlds by name (without extension).
func LoadNamed(name string) (*World, error) {
	data, err := worldFS.ReadFile("worlds/" + name + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("unknown world %q: %w", name, err)
	}
	return parseWorld(data)
}

// MustNamed is LoadNamed for tests; it panics on error.
func MustNamed(name string) *Lib {
	w, err := LoadNamed(name)
	if err != nil {
		panic(err)
	}
	return New(w)
}

func parseWorld(data []byte) (*World, error) {
	var w World
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&w); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateWorld(&w); err != nil {
		return nil, fmt.Errorf("invalid world: %w", err)
	}
	for i := range w.Stores {
		s := &w.Stores[i]
		if s.StoreDir == "" {
			s.StoreDir = defaultStoreDir
		}
		if s.RealDir == "" {
			s.RealDir = s.StoreDir
		}
	}
	return &w, nil
}

// validateWorld checks that required fields are present and valid.
func validateWorld(w *World) error {
	if w.Version == "" {
		return fmt.Errorf("version is required")
	}

	seen := make(map[string]bool, len(w.Stores))
	for i, s := range w.Stores {
		if s.URL == "" {
			return fmt.Errorf("stores[%d]: url is required", i)
		}
		if s.URI == "" {
			return fmt.Errorf("stores[%d]: uri is required", i)
		}
		if seen[s.URL] {
			return fmt.Errorf("stores[%d]: duplicate url %q", i, s.URL)
		}
		seen[s.URL] = true
		for j, p := range s.Paths {
			if p == "" {
				return fmt.Errorf("stores[%d].paths[%d]: name is required", i, j)
			}
		}
	}
	return nil
}
