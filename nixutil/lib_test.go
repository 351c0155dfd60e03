package nixutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/nixgo/internal/fakenix"
	"github.com/roach88/nixgo/internal/testutil"
)

func TestLib_InitRunsOnce(t *testing.T) {
	fake := testutil.NewFake(t, "default")
	lib := NewLib(fake)

	require.NoError(t, lib.Init())
	require.NoError(t, lib.Init())
	_, _, err := lib.Setting("max-jobs")
	require.NoError(t, err)

	assert.Equal(t, 1, fake.UtilInitCalls())
	testutil.RequireNoLiveHandles(t, fake)
}

func TestLib_InitFailureIsCached(t *testing.T) {
	fake := testutil.NewFake(t, "broken_util_init")
	lib := NewLib(fake)

	err := lib.Init()
	require.Error(t, err)
	assert.True(t, IsInitializationError(err))
	assert.Contains(t, err.Error(), "could not determine the home directory")

	_, _, err = lib.Setting("max-jobs")
	assert.True(t, IsInitializationError(err))
	assert.True(t, IsInitializationError(lib.SetSetting("max-jobs", "1")))

	assert.Equal(t, 1, fake.UtilInitCalls())
	testutil.RequireNoLiveHandles(t, fake)
}

func TestLib_Version(t *testing.T) {
	lib := NewLib(testutil.NewFake(t, "default"))
	assert.Equal(t, "2.24.9", lib.Version())
}

func TestLib_Setting(t *testing.T) {
	fake := testutil.NewFake(t, "default")
	lib := NewLib(fake)

	value, ok, err := lib.Setting("max-jobs")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "4", value)

	require.NoError(t, lib.SetSetting("max-jobs", "16"))
	value, ok, err = lib.Setting("max-jobs")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "16", value)

	testutil.RequireNoLiveHandles(t, fake)
}

func TestLib_MissingSettingIsAbsentNotError(t *testing.T) {
	fake := testutil.NewFake(t, "default")
	lib := NewLib(fake)

	value, ok, err := lib.Setting("no-such-setting")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, value)
	testutil.RequireNoLiveHandles(t, fake)
}

func TestLib_SetUnknownSetting(t *testing.T) {
	fake := testutil.NewFake(t, "default")
	lib := NewLib(fake)

	err := lib.SetSetting("no-such-setting", "1")
	require.Error(t, err)
	assert.True(t, IsKeyError(err))
	assert.Contains(t, err.Error(), `set setting "no-such-setting"`)
	testutil.RequireNoLiveHandles(t, fake)
}

func TestLib_RejectsNULArguments(t *testing.T) {
	fake := testutil.NewFake(t, "default")
	lib := NewLib(fake)

	_, _, err := lib.Setting("max\x00jobs")
	var ne *Error
	require.ErrorAs(t, err, &ne)
	assert.Equal(t, KindInvalidArgument, ne.Kind)

	require.ErrorAs(t, lib.SetSetting("max-jobs", "1\x002"), &ne)
	assert.Equal(t, KindInvalidArgument, ne.Kind)
}

func TestLib_SettingWithCorruptValue(t *testing.T) {
	fake := testutil.NewFake(t, "default")
	lib := NewLib(fake)
	fake.SetFaults(fakenix.Faults{InvalidUTF8: true})

	_, ok, err := lib.Setting("max-jobs")
	assert.False(t, ok)
	assert.True(t, IsTextDecodingError(err))
	testutil.RequireNoLiveHandles(t, fake)
}

func TestReadString_DoubleDeliveryPanics(t *testing.T) {
	fake := testutil.NewFake(t, "default")
	lib := NewLib(fake)
	require.NoError(t, lib.Init())
	fake.SetFaults(fakenix.Faults{DoubleDelivery: true})

	assert.Panics(t, func() {
		_, _, _ = lib.Setting("max-jobs")
	})
}

func TestReadString_ErrorSkipsDecoding(t *testing.T) {
	want := &Error{Kind: KindNativeCall, Code: ErrUnknown, Message: "x"}
	got, err := ReadString(func(uintptr) error { return want })
	assert.Empty(t, got)
	assert.Same(t, want, err)
}
