// Package nixstore is a safe API over the Nix store C library.
//
// A Store is a connection to a store named by URL ("auto", "daemon",
// "https://cache.nixos.org", ...); the URL scheme is interpreted by the
// native library. A StorePath refers to one entry in the store.
//
// Both own native handles and must be closed. Neither is safe for concurrent
// use; open one Store per goroutine or synchronize externally.
//
//	store, err := nixstore.Open("auto")
//	if err != nil {
//		return err
//	}
//	defer store.Close()
//
//	uri, err := store.URI()
//
// The native binding is linked with the "nix" build tag. Without it Open
// returns an initialization error.
//
// # Initialization
//
// nix_libstore_init runs once per process, on the first Open. Its outcome is
// cached: after a failure every Open fails with the same error and the
// bootstrap is never retried.
package nixstore
