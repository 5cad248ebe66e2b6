package audio

import (
	"encoding/binary"
	"io"
)

// RawSource reads signed 16-bit little-endian mono PCM, the format
// rtl_fm and most SDR pipelines emit on stdout.
type RawSource struct {
	r          io.Reader
	sampleRate int
	buf        []byte
}

// NewRawSource wraps r as a raw s16le mono sample source.
func NewRawSource(r io.Reader, sampleRate int) *RawSource {
	return &RawSource{r: r, sampleRate: sampleRate}
}

// SampleRate returns the configured sample rate in Hz.
func (s *RawSource) SampleRate() int {
	return s.sampleRate
}

// Read fills buf with normalized samples. A trailing odd byte at EOF is
// discarded.
func (s *RawSource) Read(buf []float32) (int, error) {
	want := len(buf) * 2
	if cap(s.buf) < want {
		s.buf = make([]byte, want)
	}
	raw := s.buf[:want]

	n, err := io.ReadFull(s.r, raw)
	if err == io.ErrUnexpectedEOF {
		err = io.EOF
	}
	if n < 2 {
		return 0, err
	}

	samples := n / 2
	for i := 0; i < samples; i++ {
		v := int16(binary.LittleEndian.Uint16(raw[i*2:]))
		buf[i] = float32(v) / 32768
	}
	if err == io.EOF && samples > 0 {
		return samples, nil
	}
	return samples, err
}
