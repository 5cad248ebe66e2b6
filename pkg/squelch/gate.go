package squelch

import (
	"github.com/dbehnke/dcs-nexus/pkg/dcs"
)

// Gate is a DCS-controlled audio squelch. It owns a decoder, watches its
// detections for one target (code, polarity), and passes audio through
// while the target is present plus a configurable tail.

// Config describes a gate's target and timing.
type Config struct {
	// Code is the DCS code that opens the gate.
	Code int

	// Inverted selects inverted stream polarity.
	Inverted bool

	// TailMs is how long the gate stays open after the last matching
	// detection, in milliseconds.
	TailMs float64
}

// Gate gates an audio stream on a DCS code. Not safe for concurrent
// use; drive it from a single goroutine.
type Gate struct {
	decoder *dcs.Decoder

	code     int
	inverted bool

	tailSamples int
	remaining   int
	open        bool

	onOpen   func()
	onClose  func()
	onDetect func(code int, inverted bool)
}

// NewGate creates a gate for the given sample rate and target.
func NewGate(sampleRate int, cfg Config) *Gate {
	g := &Gate{
		decoder:     dcs.New(sampleRate),
		code:        cfg.Code,
		inverted:    cfg.Inverted,
		tailSamples: int(float64(sampleRate) * cfg.TailMs / 1000),
	}
	g.decoder.SetCallback(g.onDetection, nil)
	return g
}

// SetHooks registers open/close notification functions. Either may be
// nil. Hooks run synchronously from Process.
func (g *Gate) SetHooks(onOpen, onClose func()) {
	g.onOpen = onOpen
	g.onClose = onClose
}

// SetDetectionHook registers a function called for every confirmed
// detection the gate's decoder produces, matching or not. Runs
// synchronously from Process.
func (g *Gate) SetDetectionHook(fn func(code int, inverted bool)) {
	g.onDetect = fn
}

// DecoderStats returns the underlying decoder's counters.
func (g *Gate) DecoderStats() dcs.Stats {
	return g.decoder.Stats()
}

// SetTarget changes the target code and polarity. The gate closes
// immediately and the tail is cleared; decoder state is untouched, so a
// stream already carrying the new target reopens at full confirmation
// speed.
func (g *Gate) SetTarget(code int, inverted bool) {
	g.code = code
	g.inverted = inverted
	g.remaining = 0
	g.setOpen(false)
}

// Target returns the current target code and polarity.
func (g *Gate) Target() (int, bool) {
	return g.code, g.inverted
}

// IsOpen reports whether audio is currently passing.
func (g *Gate) IsOpen() bool {
	return g.open
}

// Process runs one block of samples through the squelch. Input samples
// are copied to out while the gate is open and zeroed while it is
// closed. Both slices must be the same length; extra out capacity is
// left untouched.
func (g *Gate) Process(in, out []float32) {
	n := len(in)
	if len(out) < n {
		n = len(out)
	}
	for i := 0; i < n; i++ {
		g.decoder.ProcessSamples(in[i : i+1])
		if g.open {
			out[i] = in[i]
			g.remaining--
			if g.remaining <= 0 {
				g.setOpen(false)
			}
		} else {
			out[i] = 0
		}
	}
}

func (g *Gate) onDetection(_ any, code int, inverted bool) {
	if g.onDetect != nil {
		g.onDetect(code, inverted)
	}
	if code != g.code || inverted != g.inverted {
		return
	}
	g.remaining = g.tailSamples
	g.setOpen(true)
}

func (g *Gate) setOpen(open bool) {
	if g.open == open {
		return
	}
	g.open = open
	if open {
		if g.onOpen != nil {
			g.onOpen()
		}
	} else if g.onClose != nil {
		g.onClose()
	}
}
