package config

import (
	"testing"

	"github.com/nikcident/pcpaneld/internal/control"
	"github.com/stretchr/testify/require"
)

func TestValidateDefaultConfigPasses(t *testing.T) {
	_, err := Validate(Default())
	require.NoError(t, err)
}

func TestValidateRejectsInvalidSignalFields(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "zero rolling window", mutate: func(c *Config) { c.Signal.Knob.RollingWindow = 0 }, wantErr: "signal.knob.rolling_window"},
		{name: "negative delta threshold", mutate: func(c *Config) { c.Signal.Slider.DeltaThreshold = -1 }, wantErr: "signal.slider.delta_threshold"},
		{name: "negative debounce", mutate: func(c *Config) { c.Signal.Knob.DebounceMS = -1 }, wantErr: "signal.knob.debounce_ms"},
		{name: "zero volume exponent", mutate: func(c *Config) { c.Signal.VolumeExponent = 0 }, wantErr: "volume_exponent"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)

			_, err := Validate(cfg)
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestValidateRejectsUnknownControlKey(t *testing.T) {
	cfg := Default()
	cfg.Controls["knob99"] = control.Binding{}

	_, err := Validate(cfg)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown control key")
}

func TestValidateRejectsButtonOnSlider(t *testing.T) {
	cfg := Default()
	cfg.Controls["slider1"] = control.Binding{
		Button: &control.ButtonAction{Type: control.ButtonMute, Target: control.AudioTarget{Type: control.TargetDefaultOutput}},
	}

	_, err := Validate(cfg)
	require.Error(t, err)
	require.Contains(t, err.Error(), "only valid on knobs")
}

func TestValidateRejectsAppTargetWithoutMatcher(t *testing.T) {
	cfg := Default()
	cfg.Controls["knob1"] = control.Binding{
		Dial: &control.DialAction{Type: control.DialVolume, Target: control.AudioTarget{Type: control.TargetApp}},
	}

	_, err := Validate(cfg)
	require.Error(t, err)
	require.Contains(t, err.Error(), "matcher")
}

func TestValidateRejectsExecWithoutCommand(t *testing.T) {
	cfg := Default()
	cfg.Controls["knob1"] = control.Binding{
		Button: &control.ButtonAction{Type: control.ButtonExec},
	}

	_, err := Validate(cfg)
	require.Error(t, err)
	require.Contains(t, err.Error(), "requires a command")
}

func TestValidateAcceptsMediaButton(t *testing.T) {
	cfg := Default()
	cfg.Controls["knob3"] = control.Binding{
		Button: &control.ButtonAction{Type: control.ButtonMedia, Command: "play_pause"},
	}

	_, err := Validate(cfg)
	require.NoError(t, err)
}
