// Package audio owns the connection to the PulseAudio-compatible sound
// server: a live snapshot of sinks, sources, and application streams, and
// the commands that change their volume and mute state.
package audio

import "math"

// Volume is a normalized linear factor in [0.0, 1.0]. All constructors
// clamp to this range so a Volume value is never observed out of bounds.
type Volume float64

// ZeroVolume and MaxVolume are the two endpoints of the normalized range.
const (
	ZeroVolume Volume = 0.0
	MaxVolume  Volume = 1.0
)

// NewVolume clamps value to [0.0, 1.0].
func NewVolume(value float64) Volume {
	return Volume(math.Min(1.0, math.Max(0.0, value)))
}

// Get returns the raw normalized value.
func (v Volume) Get() float64 { return float64(v) }

// Curve is a parameterized power curve mapping hardware values (0-255) to
// normalized volume: volume = (hw/255)^exponent.
//
// PulseAudio's own volume scale already applies perceptual (cubic)
// weighting, so exponent 1.0 (the default) means slider position tracks
// perceived loudness percentage directly; exponent > 1.0 adds extra
// resolution at the quiet end on top of that.
type Curve struct {
	exponent float64
}

// MinExponent is the floor applied to non-positive exponents, keeping
// HwToVolume/VolumeToHw total functions.
const MinExponent = 0.01

// NewCurve builds a Curve with the given exponent, clamped to MinExponent.
func NewCurve(exponent float64) Curve {
	if exponent < MinExponent {
		exponent = MinExponent
	}
	return Curve{exponent: exponent}
}

// DefaultCurve is the linear (exponent 1.0) curve.
func DefaultCurve() Curve { return NewCurve(1.0) }

// Exponent returns the curve's (already-clamped) exponent.
func (c Curve) Exponent() float64 { return c.exponent }

// HwToVolume maps a hardware value (0-255) to a normalized volume.
func (c Curve) HwToVolume(hw uint8) Volume {
	normalized := float64(hw) / 255.0
	return NewVolume(math.Pow(normalized, c.exponent))
}

// VolumeToHw maps a normalized volume back to the nearest hardware value.
func (c Curve) VolumeToHw(v Volume) uint8 {
	normalized := math.Pow(v.Get(), 1.0/c.exponent)
	hw := math.Round(normalized * 255.0)
	if hw < 0 {
		hw = 0
	}
	if hw > 255 {
		hw = 255
	}
	return uint8(hw)
}

// SinkInfo describes a PulseAudio sink (output device).
type SinkInfo struct {
	Index       uint32
	Name        string
	Description string
	Volume      Volume
	Muted       bool
	Channels    uint8
}

// SourceInfo describes a PulseAudio source (input device).
type SourceInfo struct {
	Index       uint32
	Name        string
	Description string
	Volume      Volume
	Muted       bool
	Channels    uint8
}

// SinkInputInfo describes a PulseAudio sink-input (an application's audio
// stream routed to a sink).
type SinkInputInfo struct {
	Index     uint32
	Name      string
	Binary    string
	FlatpakID string
	PID       uint32 // 0 means unknown
	SinkIndex uint32
	Volume    Volume
	Muted     bool
	Channels  uint8
}

// Snapshot is a coherent, coalesced view of the audio server's state,
// produced as a unit after the four introspection queries complete.
type Snapshot struct {
	DefaultSinkName   string
	DefaultSourceName string
	Sinks             []SinkInfo
	Sources           []SourceInfo
	SinkInputs        []SinkInputInfo
}

// DeviceType distinguishes output (sink) from input (source) for the
// merged CLI device listing.
type DeviceType string

const (
	DeviceOutput DeviceType = "output"
	DeviceInput  DeviceType = "input"
)

// DeviceInfo is the combined device listing used by the "devices" CLI
// command, merging sinks and sources into one shape.
type DeviceInfo struct {
	DeviceType  DeviceType
	Index       uint32
	Name        string
	Description string
	Volume      Volume
	Muted       bool
}

// MergedDevices merges a Snapshot's sinks and sources into DeviceInfo list.
func MergedDevices(s Snapshot) []DeviceInfo {
	out := make([]DeviceInfo, 0, len(s.Sinks)+len(s.Sources))
	for _, sink := range s.Sinks {
		out = append(out, DeviceInfo{
			DeviceType: DeviceOutput, Index: sink.Index, Name: sink.Name,
			Description: sink.Description, Volume: sink.Volume, Muted: sink.Muted,
		})
	}
	for _, src := range s.Sources {
		out = append(out, DeviceInfo{
			DeviceType: DeviceInput, Index: src.Index, Name: src.Name,
			Description: src.Description, Volume: src.Volume, Muted: src.Muted,
		})
	}
	return out
}
