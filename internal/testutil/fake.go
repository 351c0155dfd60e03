package testutil

import (
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/roach88/nixgo/internal/fakenix"
)

// NewFake loads a built-in fake world and fails the test if it is invalid.
func NewFake(t testing.TB, world string) *fakenix.Lib {
	t.Helper()
	w, err := fakenix.LoadNamed(world)
	require.NoError(t, err)
	return fakenix.New(w)
}

// RequireNoLiveHandles fails the test if any native handle is unreleased.
func RequireNoLiveHandles(t testing.TB, fake *fakenix.Lib) {
	t.Helper()
	require.Empty(t, fake.Live(), "leaked native handles")
}

// CollectGarbage runs the collector until cleanups queued by dropped handles
// have run, or gives up after a few rounds.
func CollectGarbage(fake *fakenix.Lib, wantLive int) {
	for i := 0; i < 20 && fake.LiveCount() > wantLive; i++ {
		runtime.GC()
		time.Sleep(5 * time.Millisecond)
	}
}
