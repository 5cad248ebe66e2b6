package metrics

import (
	"sync"
)

// Collector collects DCS-Nexus metrics
type Collector struct {
	mu sync.RWMutex

	// Audio pipeline metrics
	samplesProcessed uint64
	bitsSliced       uint64
	golayCorrections uint64
	codewordsMissed  uint64

	// Detection metrics
	detectionsTotal  uint64
	detectionsByCode map[string]uint64 // key: designator, e.g. "D023"

	// Squelch metrics
	squelchOpens  uint64
	squelchCloses uint64
	openGates     map[string]bool // key: channel name
}

// NewCollector creates a new metrics collector
func NewCollector() *Collector {
	return &Collector{
		detectionsByCode: make(map[string]uint64),
		openGates:        make(map[string]bool),
	}
}

// SamplesProcessed records a block of processed audio samples
func (c *Collector) SamplesProcessed(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.samplesProcessed += uint64(n)
}

// SetDecoderCounters updates the cumulative decoder counters. Values
// are absolute totals summed across all gates.
func (c *Collector) SetDecoderCounters(bitsSliced, corrections, missed uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.bitsSliced = bitsSliced
	c.golayCorrections = corrections
	c.codewordsMissed = missed
}

// Detection records a confirmed detection for a designator
func (c *Collector) Detection(designator string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.detectionsTotal++
	c.detectionsByCode[designator]++
}

// SquelchOpened records a gate opening
func (c *Collector) SquelchOpened(channel string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.squelchOpens++
	c.openGates[channel] = true
}

// SquelchClosed records a gate closing
func (c *Collector) SquelchClosed(channel string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.squelchCloses++
	delete(c.openGates, channel)
}

// Reset resets transient state (useful for testing)
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.openGates = make(map[string]bool)
	// Cumulative counters are left alone
}

// Getters for metrics

// GetSamplesProcessed returns total audio samples processed
func (c *Collector) GetSamplesProcessed() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.samplesProcessed
}

// GetBitsSliced returns total bits recovered by the decoders
func (c *Collector) GetBitsSliced() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.bitsSliced
}

// GetGolayCorrections returns total bit periods decoded via error correction
func (c *Collector) GetGolayCorrections() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.golayCorrections
}

// GetCodewordsMissed returns total bit periods with no recognizable codeword
func (c *Collector) GetCodewordsMissed() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.codewordsMissed
}

// GetDetectionsTotal returns total confirmed detections
func (c *Collector) GetDetectionsTotal() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.detectionsTotal
}

// GetDetectionsByCode returns a copy of the per-designator detection counts
func (c *Collector) GetDetectionsByCode() map[string]uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]uint64, len(c.detectionsByCode))
	for k, v := range c.detectionsByCode {
		out[k] = v
	}
	return out
}

// GetSquelchOpens returns total gate open transitions
func (c *Collector) GetSquelchOpens() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.squelchOpens
}

// GetSquelchCloses returns total gate close transitions
func (c *Collector) GetSquelchCloses() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.squelchCloses
}

// GetOpenGates returns the number of currently open gates
func (c *Collector) GetOpenGates() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.openGates)
}
