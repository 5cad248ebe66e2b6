package dcs

import "math"

// Streaming DCS decoder.
//
// DCS is a continuous 134.4 bit/s NRZ stream below 300 Hz riding under
// voice audio. The decoder low-pass filters incoming samples, recovers
// the bit clock from zero crossings, slices bits, and matches the two
// 23-bit receive windows against the Golay codeword set.

const (
	// bitRate is the DCS signalling rate in bits per second.
	bitRate = 134.4

	// cutoffHz is the low-pass corner separating the subaudible
	// stream from voice.
	cutoffHz = 300.0

	// nudgeFraction is the bit-clock correction applied per zero
	// crossing, as a fraction of one bit period.
	nudgeFraction = 0.05

	// confirmThreshold is how many consecutive matching decodes are
	// required before detections are reported.
	confirmThreshold = 2
)

// Callback receives confirmed detections. It is invoked synchronously
// from ProcessSamples, in sample order, with the context registered via
// SetCallback.
type Callback func(ctx any, code int, inverted bool)

// Decoder recovers DCS codes from a mono float sample stream. It is not
// safe for concurrent use; feed it from a single goroutine.
type Decoder struct {
	// filter
	lpAlpha float64
	lpState float64
	lpPrev  float64

	// bit clock
	samplesPerBit float64
	bitPhase      float64
	bitAccum      float64

	// sliding codeword windows: windowA shifts MSB-in, windowB LSB-in,
	// so one of them holds the transmitted codeword at some alignment
	// regardless of transmission bit order.
	windowA uint32
	windowB uint32

	// confirmation state
	lastCode     int
	lastInverted bool
	confirmCount int

	callback    Callback
	callbackCtx any

	stats Stats
}

// Stats are cumulative decoder counters.
type Stats struct {
	// BitsSliced is how many bits the clock recovery has produced.
	BitsSliced uint64

	// CorrectionsApplied counts bit periods whose decoded reading needed
	// Golay error correction, whether or not it was confirmed.
	CorrectionsApplied uint64

	// WindowMisses counts bit periods where no window held a
	// recognizable codeword.
	WindowMisses uint64
}

// New creates a decoder for the given sample rate in Hz.
func New(sampleRate int) *Decoder {
	fs := float64(sampleRate)
	return &Decoder{
		lpAlpha:       1 - math.Exp(-2*math.Pi*cutoffHz/fs),
		samplesPerBit: fs / bitRate,
		lastCode:      -1,
	}
}

// SetCallback registers fn to receive confirmed detections, with ctx
// passed back on every invocation. A nil fn detaches the current
// callback.
func (d *Decoder) SetCallback(fn Callback, ctx any) {
	d.callback = fn
	d.callbackCtx = ctx
}

// ProcessSamples runs the decoder over a block of mono samples.
// Detections fire via the registered callback before the call returns.
func (d *Decoder) ProcessSamples(samples []float32) {
	for _, s := range samples {
		filtered := d.lpState + d.lpAlpha*(float64(s)-d.lpState)
		d.lpState = filtered

		// Zero crossings pull the bit phase toward the nearest bit
		// boundary so the slicer integrates whole bits.
		if (d.lpPrev < 0) != (filtered < 0) {
			if d.bitPhase < d.samplesPerBit/2 {
				d.bitPhase -= d.samplesPerBit * nudgeFraction
			} else {
				d.bitPhase += d.samplesPerBit * nudgeFraction
			}
		}
		d.lpPrev = filtered

		d.bitAccum += filtered
		d.bitPhase++
		if d.bitPhase >= d.samplesPerBit {
			d.bitPhase -= d.samplesPerBit
			var bit uint32
			if d.bitAccum > 0 {
				bit = 1
			}
			d.bitAccum = 0
			d.shiftBit(bit)
		}
	}
}

// Stats returns the decoder's cumulative counters.
func (d *Decoder) Stats() Stats {
	return d.stats
}

// shiftBit pushes one sliced bit into both windows and runs the match.
func (d *Decoder) shiftBit(bit uint32) {
	d.windowA = ((d.windowA >> 1) | (bit << (codewordBits - 1))) & codewordMask
	d.windowB = ((d.windowB << 1) | bit) & codewordMask
	d.stats.BitsSliced++

	code, inverted, corrected, ok := decodeWindows(d.windowA, d.windowB)
	if !ok {
		d.stats.WindowMisses++
		if d.confirmCount > 0 {
			d.confirmCount--
		}
		return
	}
	if corrected {
		d.stats.CorrectionsApplied++
	}

	if code == d.lastCode && inverted == d.lastInverted {
		d.confirmCount++
	} else {
		d.lastCode = code
		d.lastInverted = inverted
		d.confirmCount = 1
	}

	if d.confirmCount >= confirmThreshold && d.callback != nil {
		d.callback(d.callbackCtx, code, inverted)
	}
}

// decodeWindows tries both windows, each direct and complemented. A hit
// on a complemented window means the stream has inverted polarity.
// Codeword rotations and reversals alias onto other standard codes, so
// several candidates can hit for one physical signal; the smallest
// (code, polarity) reading is reported, normal polarity first.
func decodeWindows(windowA, windowB uint32) (code int, inverted, corrected, ok bool) {
	candidates := [4]struct {
		word     uint32
		inverted bool
	}{
		{windowA, false},
		{^windowA & codewordMask, true},
		{windowB, false},
		{^windowB & codewordMask, true},
	}

	bestCode := -1
	bestInverted := false
	bestCorrected := false
	for _, c := range candidates {
		r, viaCorrection, hit := decodeCandidate(c.word)
		if !hit {
			continue
		}
		if bestCode == -1 || r < bestCode || (r == bestCode && !c.inverted && bestInverted) {
			bestCode = r
			bestInverted = c.inverted
			bestCorrected = viaCorrection
		}
	}
	if bestCode == -1 {
		return 0, false, false, false
	}
	return bestCode, bestInverted, bestCorrected, true
}

// decodeCandidate validates a single 23-bit window. At the natural
// alignment the full 3-bit Golay correction applies; at the other 22
// cyclic alignments only exact codewords count, since correcting at
// every rotation accepts most random windows.
func decodeCandidate(word uint32) (code int, viaCorrection, ok bool) {
	best := -1
	corrected := false

	fixed := correct(word)
	if c, hit := extractCode(fixed); hit {
		best = c
		corrected = Syndrome(word) != 0
		// The corrected word is a codeword, so its rotations are too;
		// report the smallest code among them, as for exact matches.
		for n := 1; n < codewordBits; n++ {
			if c, hit := extractCode(rotateLeft(fixed, n)); hit && c < best {
				best = c
			}
		}
	}
	for n := 1; n < codewordBits; n++ {
		rotated := rotateLeft(word, n)
		if Syndrome(rotated) != 0 {
			continue
		}
		if c, hit := extractCode(rotated); hit && (best == -1 || c < best) {
			best = c
			corrected = false
		}
	}

	if best == -1 {
		return 0, false, false
	}
	return best, corrected, true
}

// extractCode pulls the 9-bit DCS code out of a valid codeword. The
// top 3 data bits must be zero and the code must be in the standard set.
func extractCode(codeword uint32) (int, bool) {
	data := (codeword >> 11) & 0xFFF
	if data&0xE00 != 0 {
		return 0, false
	}
	code := int(data)
	if !ValidCode(code) {
		return 0, false
	}
	return code, true
}
