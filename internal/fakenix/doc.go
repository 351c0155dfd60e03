// Package fakenix is an in-process stand-in for the Nix C libraries.
//
// It implements native.API against a World described in YAML, so the safe
// wrappers can be exercised without libnixstore. Beyond answering calls it
// keeps the books a real library cannot: which handles are live, how many
// times each bootstrap ran, and whether anything was freed twice.
//
// # World Format
//
//	version: "2.24.9"
//	settings:
//	  max-jobs: "4"
//	stores:
//	  - url: auto
//	    uri: daemon
//	    store_dir: /nix/store
//	    paths:
//	      - hello-2.12.1
//
// Paths are listed by name; PathFor derives the full store path the same
// way for the world and for tests.
//
// # Faults
//
// Faults switch on misbehavior the wrappers must survive or refuse:
// double string delivery, null handles without an error, invalid UTF-8.
//
// Thread-safety: Lib is safe for concurrent use.
package fakenix
