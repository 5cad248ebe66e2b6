package audio

import (
	"fmt"

	"github.com/dbehnke/dcs-nexus/pkg/dcs"
)

// Tone synthesizes a continuous DCS waveform: the 23-bit codeword for a
// code, repeated MSB first as NRZ square samples at 134.4 bit/s. It is
// used by the self-test path and by tests that need a known-good signal.
type Tone struct {
	word       uint32
	inverted   bool
	sampleRate int
	amplitude  float32

	samplesPerBit float64
	bitIndex      int64
	current       float32
	remaining     int
}

// NewTone creates a generator for the given code. The code must be in
// the standard set.
func NewTone(code int, inverted bool, sampleRate int, amplitude float32) (*Tone, error) {
	if !dcs.ValidCode(code) {
		return nil, fmt.Errorf("unknown DCS code %d", code)
	}
	return &Tone{
		word:          dcs.Encode(uint32(code)),
		inverted:      inverted,
		sampleRate:    sampleRate,
		amplitude:     amplitude,
		samplesPerBit: float64(sampleRate) / 134.4,
	}, nil
}

// SampleRate returns the configured sample rate in Hz.
func (t *Tone) SampleRate() int {
	return t.sampleRate
}

// Read fills buf with waveform samples. The stream never ends.
func (t *Tone) Read(buf []float32) (int, error) {
	for i := range buf {
		if t.remaining == 0 {
			t.remaining = int(float64(t.bitIndex+1)*t.samplesPerBit) - int(float64(t.bitIndex)*t.samplesPerBit)
			bit := (t.word >> (22 - uint(t.bitIndex%23))) & 1
			if t.inverted {
				bit ^= 1
			}
			t.current = -t.amplitude
			if bit == 1 {
				t.current = t.amplitude
			}
			t.bitIndex++
		}
		buf[i] = t.current
		t.remaining--
	}
	return len(buf), nil
}
