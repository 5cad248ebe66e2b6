package audio

// Source is a stream of mono float samples feeding a squelch gate.
// Read fills buf with up to len(buf) samples in [-1, 1] and returns how
// many were written. It returns io.EOF when the stream ends.
type Source interface {
	Read(buf []float32) (int, error)
	SampleRate() int
}
