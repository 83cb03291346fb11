// Package control defines the identity and policy types for a single
// physical control on the PCPanel Pro: which knob or slider it is, and
// what dial/button action is bound to it.
package control

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind distinguishes a knob (rotary, has a button) from a slider (linear,
// analog only).
type Kind int

const (
	Knob Kind = iota
	Slider
)

// NumKnobs is the number of rotary encoders on the PCPanel Pro.
const NumKnobs = 5

// NumSliders is the number of linear faders on the PCPanel Pro.
const NumSliders = 4

// NumAnalog is the total number of analog controls (knobs + sliders).
const NumAnalog = NumKnobs + NumSliders

// ID identifies a physical control: a knob 0..4 or a slider 0..3.
type ID struct {
	Kind Kind
	N    uint8
}

func (id ID) IsKnob() bool   { return id.Kind == Knob }
func (id ID) IsSlider() bool { return id.Kind == Slider }

// FromAnalogID converts a HID analog control ID (0-8) to an ID. IDs 0-4
// are knobs, 5-8 are sliders.
func FromAnalogID(raw uint8) (ID, bool) {
	switch {
	case raw < NumKnobs:
		return ID{Kind: Knob, N: raw}, true
	case raw < NumAnalog:
		return ID{Kind: Slider, N: raw - NumKnobs}, true
	default:
		return ID{}, false
	}
}

// ToAnalogID converts back to a HID analog control ID (0-8).
func (id ID) ToAnalogID() uint8 {
	if id.Kind == Knob {
		return id.N
	}
	return NumKnobs + id.N
}

// FromButtonID converts a HID button ID (0-4) to an ID. Only knobs have
// buttons on the PCPanel Pro.
func FromButtonID(raw uint8) (ID, bool) {
	if raw < NumKnobs {
		return ID{Kind: Knob, N: raw}, true
	}
	return ID{}, false
}

// ConfigKey returns the config key name for this control (e.g. "knob1",
// "slider2"), 1-based for human readability.
func (id ID) ConfigKey() string {
	if id.Kind == Knob {
		return fmt.Sprintf("knob%d", id.N+1)
	}
	return fmt.Sprintf("slider%d", id.N+1)
}

// FromConfigKey parses a config key name back to an ID. Accepts
// "knob1".."knob5" and "slider1".."slider4" (1-based).
func FromConfigKey(key string) (ID, bool) {
	if n, ok := strings.CutPrefix(key, "knob"); ok {
		v, err := strconv.Atoi(n)
		if err != nil || v < 1 || v > NumKnobs {
			return ID{}, false
		}
		return ID{Kind: Knob, N: uint8(v - 1)}, true
	}
	if n, ok := strings.CutPrefix(key, "slider"); ok {
		v, err := strconv.Atoi(n)
		if err != nil || v < 1 || v > NumSliders {
			return ID{}, false
		}
		return ID{Kind: Slider, N: uint8(v - 1)}, true
	}
	return ID{}, false
}

// AppMatcher matches PulseAudio sink-inputs by application properties.
// When multiple fields are set, ALL must match (AND logic). Each field
// uses case-insensitive substring matching.
type AppMatcher struct {
	Binary    string `toml:"binary,omitempty" json:"binary,omitempty"`
	Name      string `toml:"name,omitempty" json:"name,omitempty"`
	FlatpakID string `toml:"flatpak_id,omitempty" json:"flatpak_id,omitempty"`
}

// IsValid returns true if this matcher has at least one field set.
func (m AppMatcher) IsValid() bool {
	return m.Binary != "" || m.Name != "" || m.FlatpakID != ""
}

// AppProperties are the sink-input properties used for app matching.
type AppProperties struct {
	Binary    string
	Name      string
	FlatpakID string
}

// Matches reports whether props satisfies this matcher. An invalid
// (empty) matcher matches nothing.
func (m AppMatcher) Matches(props AppProperties) bool {
	if !m.IsValid() {
		return false
	}
	check := func(pattern, value string) bool {
		if pattern == "" {
			return true
		}
		return strings.Contains(strings.ToLower(value), strings.ToLower(pattern))
	}
	if m.Binary != "" && props.Binary == "" {
		return false
	}
	if m.Name != "" && props.Name == "" {
		return false
	}
	if m.FlatpakID != "" && props.FlatpakID == "" {
		return false
	}
	return check(m.Binary, props.Binary) && check(m.Name, props.Name) && check(m.FlatpakID, props.FlatpakID)
}

// TargetKind is the discriminator for AudioTarget.
type TargetKind string

const (
	TargetDefaultOutput TargetKind = "default_output"
	TargetDefaultInput  TargetKind = "default_input"
	TargetApp           TargetKind = "app"
	TargetFocusedApp    TargetKind = "focused_app"
)

// AudioTarget is the target for a volume/mute action.
type AudioTarget struct {
	Type    TargetKind `toml:"type" json:"type"`
	Matcher AppMatcher `toml:"matcher,omitempty" json:"matcher,omitempty"`
}

func (t AudioTarget) String() string {
	switch t.Type {
	case TargetDefaultOutput:
		return "default-output"
	case TargetDefaultInput:
		return "default-input"
	case TargetFocusedApp:
		return "focused"
	case TargetApp:
		var parts []string
		if t.Matcher.Binary != "" {
			parts = append(parts, "binary="+t.Matcher.Binary)
		}
		if t.Matcher.Name != "" {
			parts = append(parts, "name="+t.Matcher.Name)
		}
		if t.Matcher.FlatpakID != "" {
			parts = append(parts, "flatpak="+t.Matcher.FlatpakID)
		}
		return "app(" + strings.Join(parts, ", ") + ")"
	default:
		return string(t.Type)
	}
}

// normalizeTargetType maps the backward-compatible synonyms
// default_sink/default_source onto default_output/default_input.
func normalizeTargetType(t TargetKind) TargetKind {
	switch t {
	case "default_sink":
		return TargetDefaultOutput
	case "default_source":
		return TargetDefaultInput
	default:
		return t
	}
}

// Normalize rewrites legacy target-type synonyms in place.
func (t *AudioTarget) Normalize() {
	t.Type = normalizeTargetType(t.Type)
}

// DialActionKind is the discriminator for DialAction.
type DialActionKind string

const DialVolume DialActionKind = "volume"

// DialAction is the action bound to a knob/slider's analog motion.
type DialAction struct {
	Type   DialActionKind `toml:"type" json:"type"`
	Target AudioTarget    `toml:"target" json:"target"`
}

// MediaCommand is a closed set of MPRIS transport commands.
type MediaCommand string

const (
	MediaPlayPause MediaCommand = "play_pause"
	MediaPlay      MediaCommand = "play"
	MediaPause     MediaCommand = "pause"
	MediaNext      MediaCommand = "next"
	MediaPrevious  MediaCommand = "previous"
	MediaStop      MediaCommand = "stop"
)

// MethodName returns the MPRIS D-Bus method name for this command.
func (c MediaCommand) MethodName() (string, bool) {
	switch c {
	case MediaPlayPause:
		return "PlayPause", true
	case MediaPlay:
		return "Play", true
	case MediaPause:
		return "Pause", true
	case MediaNext:
		return "Next", true
	case MediaPrevious:
		return "Previous", true
	case MediaStop:
		return "Stop", true
	default:
		return "", false
	}
}

// ButtonActionKind is the discriminator for ButtonAction.
type ButtonActionKind string

const (
	ButtonMute  ButtonActionKind = "mute"
	ButtonMedia ButtonActionKind = "media"
	ButtonExec  ButtonActionKind = "exec"
)

// ButtonAction is the action bound to a knob's push-button.
type ButtonAction struct {
	Type    ButtonActionKind `toml:"type" json:"type"`
	Target  AudioTarget      `toml:"target,omitempty" json:"target,omitempty"`
	Command string           `toml:"command,omitempty" json:"command,omitempty"`
}

// Binding is the pair of optional actions bound to one control.
type Binding struct {
	Dial   *DialAction   `toml:"dial,omitempty" json:"dial,omitempty"`
	Button *ButtonAction `toml:"button,omitempty" json:"button,omitempty"`
}
