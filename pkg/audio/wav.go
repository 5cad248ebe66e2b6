package audio

import (
	"fmt"
	"io"

	"github.com/youpy/go-wav"
)

// WAVSource reads PCM WAV audio and yields one channel as normalized
// float samples.
type WAVSource struct {
	reader  *wav.Reader
	format  *wav.WavFormat
	channel int
	scale   float32
	offset  int
}

// NewWAVSource wraps r as a sample source, selecting one channel of a
// PCM WAV stream. 8-bit and 16-bit PCM are supported.
func NewWAVSource(r io.Reader, channel int) (*WAVSource, error) {
	reader := wav.NewReader(r)
	format, err := reader.Format()
	if err != nil {
		return nil, fmt.Errorf("failed to read WAV format: %w", err)
	}

	if format.AudioFormat != wav.AudioFormatPCM {
		return nil, fmt.Errorf("unsupported WAV audio format %d, want PCM", format.AudioFormat)
	}
	if format.BitsPerSample != 8 && format.BitsPerSample != 16 {
		return nil, fmt.Errorf("unsupported WAV sample width %d bits", format.BitsPerSample)
	}
	if channel < 0 || channel >= int(format.NumChannels) {
		return nil, fmt.Errorf("channel %d out of range, stream has %d", channel, format.NumChannels)
	}

	s := &WAVSource{
		reader:  reader,
		format:  format,
		channel: channel,
	}
	if format.BitsPerSample == 8 {
		// 8-bit WAV samples are unsigned.
		s.scale = 1.0 / 128
		s.offset = 128
	} else {
		s.scale = 1.0 / 32768
	}
	return s, nil
}

// SampleRate returns the stream's sample rate in Hz.
func (s *WAVSource) SampleRate() int {
	return int(s.format.SampleRate)
}

// Read fills buf with normalized samples from the selected channel.
func (s *WAVSource) Read(buf []float32) (int, error) {
	samples, err := s.reader.ReadSamples(uint32(len(buf)))
	for i, sample := range samples {
		v := s.reader.IntValue(sample, uint(s.channel)) - s.offset
		buf[i] = float32(v) * s.scale
	}
	if len(samples) > 0 && err == io.EOF {
		err = nil
	}
	return len(samples), err
}
