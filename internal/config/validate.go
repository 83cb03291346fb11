package config

import (
	"fmt"

	"github.com/nikcident/pcpaneld/internal/control"
)

// Validate enforces config invariants and returns non-fatal warnings.
func Validate(cfg Config) ([]Warning, error) {
	warnings := make([]Warning, 0)

	if err := validateFamily("signal.knob", cfg.Signal.Knob); err != nil {
		return nil, err
	}
	if err := validateFamily("signal.slider", cfg.Signal.Slider); err != nil {
		return nil, err
	}
	if cfg.Signal.VolumeExponent <= 0 {
		return nil, fmt.Errorf("signal.volume_exponent must be > 0")
	}

	for key, binding := range cfg.Controls {
		id, ok := control.FromConfigKey(key)
		if !ok {
			return nil, fmt.Errorf("controls: unknown control key %q", key)
		}
		if binding.Button != nil && !id.IsKnob() {
			return nil, fmt.Errorf("controls.%s: button bindings are only valid on knobs", key)
		}
		if binding.Dial != nil {
			if err := validateTarget(key+".dial", binding.Dial.Target); err != nil {
				return nil, err
			}
		}
		if binding.Button != nil {
			switch binding.Button.Type {
			case control.ButtonMute:
				if err := validateTarget(key+".button", binding.Button.Target); err != nil {
					return nil, err
				}
			case control.ButtonMedia:
				if binding.Button.Command == "" {
					return nil, fmt.Errorf("controls.%s.button: media action requires a command", key)
				}
			case control.ButtonExec:
				if binding.Button.Command == "" {
					return nil, fmt.Errorf("controls.%s.button: exec action requires a command", key)
				}
			default:
				return nil, fmt.Errorf("controls.%s.button: unknown action type %q", key, binding.Button.Type)
			}
		}
	}

	return warnings, nil
}

func validateFamily(path string, f FamilySignalConfig) error {
	if f.RollingWindow <= 0 {
		return fmt.Errorf("%s.rolling_window must be > 0", path)
	}
	if f.DeltaThreshold < 0 {
		return fmt.Errorf("%s.delta_threshold must be >= 0", path)
	}
	if f.DebounceMS < 0 {
		return fmt.Errorf("%s.debounce_ms must be >= 0", path)
	}
	return nil
}

func validateTarget(path string, t control.AudioTarget) error {
	switch t.Type {
	case control.TargetDefaultOutput, control.TargetDefaultInput, control.TargetFocusedApp:
		return nil
	case control.TargetApp, "default_sink", "default_source":
		normalized := t
		normalized.Normalize()
		if normalized.Type == control.TargetApp && !t.Matcher.IsValid() {
			return fmt.Errorf("%s: app target requires at least one matcher field", path)
		}
		return nil
	default:
		return fmt.Errorf("%s: unknown target type %q", path, t.Type)
	}
}
