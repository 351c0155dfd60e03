// Package cnix binds native.API to the Nix C libraries with cgo.
//
// The binding is only compiled with cgo enabled and the "nix" build tag,
// because it needs the nix-store-c and nix-util-c pkg-config modules:
//
//	go build -tags nix ./...
//
// Importing the package registers the binding as the process default.
// nixutil imports it, so every user of nixutil or nixstore is linked:
//
//	import _ "github.com/roach88/nixgo/internal/native/cnix"
//
// Without the tag the package is empty and native.Default reports
// native.ErrNotLinked.
package cnix
