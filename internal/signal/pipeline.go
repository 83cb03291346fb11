// Package signal implements the per-control jitter-suppression pipeline
// that sits between a raw hardware sample and the volume curve: endpoint
// bypass, rolling average, delta threshold, and debounce.
package signal

import "time"

// Params configures one Pipeline.
type Params struct {
	// RollingWindow is the number of raw samples averaged, minimum 1.
	RollingWindow int
	// DeltaThreshold suppresses emissions closer than this to the last
	// emitted value.
	DeltaThreshold uint8
	// DebounceMS suppresses emissions closer together than this in time.
	DebounceMS uint64
}

// SliderDefaults are the out-of-the-box parameters for slider controls.
func SliderDefaults() Params { return Params{RollingWindow: 5, DeltaThreshold: 2, DebounceMS: 10} }

// KnobDefaults are the out-of-the-box parameters for knob controls.
func KnobDefaults() Params { return Params{RollingWindow: 3, DeltaThreshold: 1, DebounceMS: 0} }

// Pipeline is a per-control stateful transformer over hardware samples.
// It is not safe for concurrent use; the engine owns one per control and
// drives it from a single goroutine.
type Pipeline struct {
	params Params

	window      []uint8
	lastEmitted uint8
	haveEmitted bool
	lastEmitAt  time.Time
}

// New constructs a Pipeline with the given params and a minimum window of 1.
func New(params Params) *Pipeline {
	if params.RollingWindow < 1 {
		params.RollingWindow = 1
	}
	return &Pipeline{params: params}
}

// Reset clears window, last-emitted sample, and debounce timestamp,
// exactly as required when a Pipeline is created or rebuilt (invariant I2).
func (p *Pipeline) Reset() {
	p.window = p.window[:0]
	p.haveEmitted = false
	p.lastEmitted = 0
	p.lastEmitAt = time.Time{}
}

// Feed processes one raw hardware sample and returns the filtered value
// to emit, if any. now is injected for deterministic debounce testing.
func (p *Pipeline) Feed(raw uint8, now time.Time) (uint8, bool) {
	// Stage 1: endpoint bypass. Emits immediately, updates last_emitted,
	// and skips stages 2-4. The rolling window is deliberately left
	// untouched here (see DESIGN.md: this is spec.md's own resolution of
	// an open question, not the literal original-source behavior).
	if raw == 0 || raw == 255 {
		p.lastEmitted = raw
		p.haveEmitted = true
		p.lastEmitAt = now
		return raw, true
	}

	// Stage 2: rolling average (truncated integer mean over up to N samples).
	p.window = append(p.window, raw)
	if len(p.window) > p.params.RollingWindow {
		p.window = p.window[len(p.window)-p.params.RollingWindow:]
	}
	var sum int
	for _, v := range p.window {
		sum += int(v)
	}
	averaged := uint8(sum / len(p.window))

	// Stage 3: delta threshold.
	if p.haveEmitted {
		delta := absDiff(averaged, p.lastEmitted)
		if delta < p.params.DeltaThreshold {
			return 0, false
		}
	}

	// Stage 4: debounce.
	if p.haveEmitted && p.params.DebounceMS > 0 {
		elapsed := now.Sub(p.lastEmitAt)
		if elapsed < time.Duration(p.params.DebounceMS)*time.Millisecond {
			return 0, false
		}
	}

	p.lastEmitted = averaged
	p.haveEmitted = true
	p.lastEmitAt = now
	return averaged, true
}

func absDiff(a, b uint8) uint8 {
	if a > b {
		return a - b
	}
	return b - a
}
