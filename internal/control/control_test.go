package control

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAnalogIDRoundTrip(t *testing.T) {
	for id := uint8(0); id < NumAnalog; id++ {
		ctl, ok := FromAnalogID(id)
		require.True(t, ok)
		require.Equal(t, id, ctl.ToAnalogID())
	}
}

func TestAnalogIDOutOfRange(t *testing.T) {
	_, ok := FromAnalogID(9)
	require.False(t, ok)
	_, ok = FromAnalogID(255)
	require.False(t, ok)
}

func TestButtonIDValidRange(t *testing.T) {
	for id := uint8(0); id < 5; id++ {
		ctl, ok := FromButtonID(id)
		require.True(t, ok)
		require.True(t, ctl.IsKnob())
	}
}

func TestButtonIDOutOfRange(t *testing.T) {
	_, ok := FromButtonID(5)
	require.False(t, ok)
}

func TestConfigKeyRoundTrip(t *testing.T) {
	for id := uint8(0); id < NumAnalog; id++ {
		ctl, _ := FromAnalogID(id)
		key := ctl.ConfigKey()
		parsed, ok := FromConfigKey(key)
		require.True(t, ok)
		require.Equal(t, ctl, parsed)
	}
}

func TestConfigKeyInvalid(t *testing.T) {
	for _, key := range []string{"knob0", "knob6", "slider0", "slider5", "fader1", "", "knob"} {
		_, ok := FromConfigKey(key)
		require.False(t, ok, "key %q should be invalid", key)
	}
}

func TestKnobIDsAreZeroToFour(t *testing.T) {
	for id := uint8(0); id < 5; id++ {
		ctl, ok := FromAnalogID(id)
		require.True(t, ok)
		require.Equal(t, ID{Kind: Knob, N: id}, ctl)
		require.True(t, ctl.IsKnob())
		require.False(t, ctl.IsSlider())
	}
}

func TestSliderIDsAreFiveToEight(t *testing.T) {
	for id := uint8(5); id < 9; id++ {
		ctl, ok := FromAnalogID(id)
		require.True(t, ok)
		require.Equal(t, ID{Kind: Slider, N: id - 5}, ctl)
		require.True(t, ctl.IsSlider())
		require.False(t, ctl.IsKnob())
	}
}

func TestEmptyMatcherMatchesNothing(t *testing.T) {
	m := AppMatcher{}
	require.False(t, m.IsValid())
	require.False(t, m.Matches(AppProperties{Binary: "firefox", Name: "Firefox"}))
}

func TestBinaryMatchCaseInsensitiveSubstring(t *testing.T) {
	m := AppMatcher{Binary: "fire"}
	require.True(t, m.Matches(AppProperties{Binary: "firefox"}))
	require.True(t, m.Matches(AppProperties{Binary: "Firefox"}))
	require.True(t, m.Matches(AppProperties{Binary: "FIREFOX-BIN"}))
	require.False(t, m.Matches(AppProperties{Binary: "chrome"}))
	require.False(t, m.Matches(AppProperties{}))
}

func TestFlatpakIDMatch(t *testing.T) {
	m := AppMatcher{FlatpakID: "org.mozilla.firefox"}
	require.True(t, m.Matches(AppProperties{FlatpakID: "org.mozilla.firefox"}))
	require.True(t, m.Matches(AppProperties{FlatpakID: "org.mozilla.Firefox"}))
	require.False(t, m.Matches(AppProperties{}))
}

func TestAndLogicMultipleFields(t *testing.T) {
	m := AppMatcher{Binary: "firefox", Name: "Firefox"}
	require.True(t, m.Matches(AppProperties{Binary: "firefox", Name: "Firefox Web Browser"}))
	require.False(t, m.Matches(AppProperties{Binary: "firefox", Name: "Chrome"}))
	require.False(t, m.Matches(AppProperties{Binary: "chrome", Name: "Firefox"}))
}

func TestAudioTargetDisplay(t *testing.T) {
	require.Equal(t, "default-output", AudioTarget{Type: TargetDefaultOutput}.String())
	require.Equal(t, "default-input", AudioTarget{Type: TargetDefaultInput}.String())
	require.Equal(t, "focused", AudioTarget{Type: TargetFocusedApp}.String())
	require.Equal(t, "app(binary=firefox)", AudioTarget{Type: TargetApp, Matcher: AppMatcher{Binary: "firefox"}}.String())
}

func TestNormalizeLegacyTargetSynonyms(t *testing.T) {
	target := AudioTarget{Type: "default_sink"}
	target.Normalize()
	require.Equal(t, TargetDefaultOutput, target.Type)

	target = AudioTarget{Type: "default_source"}
	target.Normalize()
	require.Equal(t, TargetDefaultInput, target.Type)
}

func TestMediaCommandMethodNames(t *testing.T) {
	cases := map[MediaCommand]string{
		MediaPlayPause: "PlayPause",
		MediaPlay:      "Play",
		MediaPause:     "Pause",
		MediaNext:      "Next",
		MediaPrevious:  "Previous",
		MediaStop:      "Stop",
	}
	for cmd, want := range cases {
		got, ok := cmd.MethodName()
		require.True(t, ok)
		require.Equal(t, want, got)
	}
}
