// Package config resolves, parses, validates, and defaults pcpaneld's
// on-disk configuration: the panel's serial, signal-shaping parameters,
// per-control bindings, and LED zone toggles.
package config

import "github.com/nikcident/pcpaneld/internal/control"

// Config is the fully materialized runtime configuration used by pcpaneld.
type Config struct {
	Device   DeviceConfig
	Signal   SignalConfig
	// Controls is keyed by control.ID.ConfigKey() (e.g. "knob1", "slider3")
	// rather than by control.ID directly, since the on-disk format is TOML
	// and TOML table keys are strings.
	Controls map[string]control.Binding
	Leds     LedConfig
}

// Binding looks up the resolved Binding for id, if one is configured.
func (c Config) Binding(id control.ID) (control.Binding, bool) {
	b, ok := c.Controls[id.ConfigKey()]
	return b, ok
}

// DeviceConfig identifies which physical panel this config applies to.
// An empty Serial matches the first panel found.
type DeviceConfig struct {
	Serial string `toml:"serial"`
}

// FamilySignalConfig is the Signal Pipeline tuning for one control family
// (knobs or sliders).
type FamilySignalConfig struct {
	RollingWindow  int `toml:"rolling_window"`
	DeltaThreshold int `toml:"delta_threshold"`
	DebounceMS     int `toml:"debounce_ms"`
}

// SignalConfig groups per-family signal-shaping knobs plus the shared
// Volume Curve exponent.
type SignalConfig struct {
	Knob           FamilySignalConfig `toml:"knob"`
	Slider         FamilySignalConfig `toml:"slider"`
	VolumeExponent float64            `toml:"volume_exponent"`
}

// LedConfig toggles which LED zones the engine drives. A disabled zone is
// actively turned off (the logo is set to black).
type LedConfig struct {
	Knobs        bool `toml:"knobs"`
	Sliders      bool `toml:"sliders"`
	SliderLabels bool `toml:"slider_labels"`
	Logo         bool `toml:"logo"`
}

// Warning is a non-fatal config issue surfaced to the user without
// failing the load.
type Warning struct {
	Line    int
	Message string
}
