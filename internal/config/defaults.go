package config

import (
	"github.com/nikcident/pcpaneld/internal/control"
	"github.com/nikcident/pcpaneld/internal/signal"
)

// Default returns the canonical runtime configuration used when no file is
// present: an empty serial (match the first panel found), signal defaults
// matching internal/signal's per-family presets, a linear volume curve,
// every LED zone enabled, and no control bindings.
func Default() Config {
	return Config{
		Device: DeviceConfig{Serial: ""},
		Signal: SignalConfig{
			Knob:           familyFromParams(signal.KnobDefaults()),
			Slider:         familyFromParams(signal.SliderDefaults()),
			VolumeExponent: 1.0,
		},
		Controls: map[string]control.Binding{},
		Leds: LedConfig{
			Knobs:        true,
			Sliders:      true,
			SliderLabels: true,
			Logo:         true,
		},
	}
}

func familyFromParams(p signal.Params) FamilySignalConfig {
	return FamilySignalConfig{
		RollingWindow:  p.RollingWindow,
		DeltaThreshold: int(p.DeltaThreshold),
		DebounceMS:     int(p.DebounceMS),
	}
}
