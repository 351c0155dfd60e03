package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewFake(t *testing.T) {
	fake := NewFake(t, "default")
	assert.Equal(t, 0, fake.LiveCount())
	RequireNoLiveHandles(t, fake)
}

func TestCollectGarbage_ReleasesNothingWhenClean(t *testing.T) {
	fake := NewFake(t, "default")
	CollectGarbage(fake, 0)
	assert.Equal(t, 0, fake.LiveCount())
}
