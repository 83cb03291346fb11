package audio

import (
	"io"
	"testing"

	pulseproto "github.com/jfreymuth/pulse/proto"
	"github.com/stretchr/testify/require"
)

func TestVolumeToServerAndBackRoundTrip(t *testing.T) {
	v := NewVolume(0.5)
	raw := volumeToServer(v)
	back := volumeFromServer(raw)
	require.InDelta(t, v.Get(), back.Get(), 0.01)
}

func TestVolumeToServerEndpoints(t *testing.T) {
	require.Equal(t, uint32(0), volumeToServer(ZeroVolume))
	require.Equal(t, uint32(pulseproto.VolumeNorm), volumeToServer(MaxVolume))
}

func TestVolumeFromServerClampsNegativeLikeValues(t *testing.T) {
	v := volumeFromServer(0)
	require.Equal(t, ZeroVolume, v)
}

func TestAvgVolumeAveragesChannels(t *testing.T) {
	cv := pulseproto.ChannelVolumes{100, 200}
	require.Equal(t, uint32(150), avgVolume(cv))
}

func TestAvgVolumeEmptyIsZero(t *testing.T) {
	require.Equal(t, uint32(0), avgVolume(nil))
}

func TestParseUint32(t *testing.T) {
	require.Equal(t, uint32(1234), parseUint32("1234"))
	require.Equal(t, uint32(0), parseUint32(""))
	require.Equal(t, uint32(0), parseUint32("not-a-number"))
}

func TestWrapCallbackInvokesInner(t *testing.T) {
	var innerCalled bool
	wrapped := wrapCallback(func(interface{}) { innerCalled = true }, func(error) {})

	wrapped(&pulseproto.SubscribeEvent{})
	require.True(t, innerCalled)
}

func TestWrapCallbackSurfacesErrors(t *testing.T) {
	var gotErr error
	wrapped := wrapCallback(nil, func(err error) { gotErr = err })

	sentinel := io.ErrClosedPipe
	wrapped(sentinel)
	require.Equal(t, io.ErrClosedPipe, gotErr)
}
