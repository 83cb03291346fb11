package config

import (
	"fmt"

	"github.com/nikcident/pcpaneld/internal/control"
	"github.com/pelletier/go-toml/v2"
)

// rawConfig mirrors Config's on-disk shape. Controls is a table keyed by
// config key ("knob1".."knob5", "slider1".."slider4") since TOML table
// keys must be strings; Parse converts it to Config.Controls verbatim
// (both already use the same string-keyed representation).
type rawConfig struct {
	Device   DeviceConfig               `toml:"device"`
	Signal   SignalConfig               `toml:"signal"`
	Controls map[string]control.Binding `toml:"controls"`
	Leds     LedConfig                  `toml:"leds"`
}

// Parse decodes TOML configuration content, falling back to base (usually
// Default()) for any section the file omits, then validates the result.
func Parse(content string, base Config) (Config, []Warning, error) {
	raw := rawConfig{
		Device:   base.Device,
		Signal:   base.Signal,
		Controls: base.Controls,
		Leds:     base.Leds,
	}

	if err := toml.Unmarshal([]byte(content), &raw); err != nil {
		return Config{}, nil, fmt.Errorf("parse config: %w", err)
	}

	cfg := Config{
		Device:   raw.Device,
		Signal:   raw.Signal,
		Controls: normalizeControls(raw.Controls),
		Leds:     raw.Leds,
	}

	warnings, err := Validate(cfg)
	if err != nil {
		return Config{}, nil, err
	}
	return cfg, warnings, nil
}

// normalizeControls rewrites legacy default_sink/default_source target
// synonyms to default_output/default_input in every bound dial/button
// target, per §6.3's backward-compatibility rule.
func normalizeControls(controls map[string]control.Binding) map[string]control.Binding {
	if controls == nil {
		return map[string]control.Binding{}
	}
	for key, binding := range controls {
		if binding.Dial != nil {
			binding.Dial.Target.Normalize()
		}
		if binding.Button != nil {
			binding.Button.Target.Normalize()
		}
		controls[key] = binding
	}
	return controls
}

// Marshal serializes cfg back to TOML text for Save.
func Marshal(cfg Config) ([]byte, error) {
	raw := rawConfig{
		Device:   cfg.Device,
		Signal:   cfg.Signal,
		Controls: cfg.Controls,
		Leds:     cfg.Leds,
	}
	return toml.Marshal(raw)
}
