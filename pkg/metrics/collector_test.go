package metrics

import (
	"testing"
)

// TestNewCollector tests creating a new metrics collector
func TestNewCollector(t *testing.T) {
	collector := NewCollector()
	if collector == nil {
		t.Fatal("Expected non-nil collector")
	}
}

// TestCollector_PipelineMetrics tests audio pipeline counters
func TestCollector_PipelineMetrics(t *testing.T) {
	collector := NewCollector()

	collector.SamplesProcessed(2048)
	collector.SamplesProcessed(1024)
	if got := collector.GetSamplesProcessed(); got != 3072 {
		t.Errorf("Expected 3072 samples processed, got %d", got)
	}

	collector.SetDecoderCounters(134, 3, 22)
	if got := collector.GetBitsSliced(); got != 134 {
		t.Errorf("Expected 134 bits sliced, got %d", got)
	}
	if got := collector.GetGolayCorrections(); got != 3 {
		t.Errorf("Expected 3 corrections, got %d", got)
	}
	if got := collector.GetCodewordsMissed(); got != 22 {
		t.Errorf("Expected 22 missed codewords, got %d", got)
	}
}

// TestCollector_DetectionMetrics tests detection counters
func TestCollector_DetectionMetrics(t *testing.T) {
	collector := NewCollector()

	collector.Detection("D023")
	collector.Detection("D023")
	collector.Detection("D025N")

	if got := collector.GetDetectionsTotal(); got != 3 {
		t.Errorf("Expected 3 detections, got %d", got)
	}

	byCode := collector.GetDetectionsByCode()
	if byCode["D023"] != 2 {
		t.Errorf("Expected 2 detections for D023, got %d", byCode["D023"])
	}
	if byCode["D025N"] != 1 {
		t.Errorf("Expected 1 detection for D025N, got %d", byCode["D025N"])
	}
}

// TestCollector_SquelchMetrics tests gate transition tracking
func TestCollector_SquelchMetrics(t *testing.T) {
	collector := NewCollector()

	collector.SquelchOpened("north")
	collector.SquelchOpened("south")
	if got := collector.GetOpenGates(); got != 2 {
		t.Errorf("Expected 2 open gates, got %d", got)
	}

	collector.SquelchClosed("north")
	if got := collector.GetOpenGates(); got != 1 {
		t.Errorf("Expected 1 open gate, got %d", got)
	}

	if got := collector.GetSquelchOpens(); got != 2 {
		t.Errorf("Expected 2 open transitions, got %d", got)
	}
	if got := collector.GetSquelchCloses(); got != 1 {
		t.Errorf("Expected 1 close transition, got %d", got)
	}
}

// TestCollector_Reset tests resetting transient state
func TestCollector_Reset(t *testing.T) {
	collector := NewCollector()

	collector.SquelchOpened("north")
	collector.Detection("D023")

	collector.Reset()

	if collector.GetOpenGates() != 0 {
		t.Error("Expected open gates to be 0 after reset")
	}
	// Cumulative counters survive a reset
	if collector.GetDetectionsTotal() != 1 {
		t.Error("Expected cumulative detections to survive reset")
	}
}

// TestCollector_Concurrent tests concurrent access
func TestCollector_Concurrent(t *testing.T) {
	collector := NewCollector()

	done := make(chan bool, 10)
	for i := 0; i < 10; i++ {
		go func(id int) {
			collector.SamplesProcessed(100)
			collector.Detection("D023")
			collector.SquelchOpened("north")
			done <- true
		}(i)
	}

	for i := 0; i < 10; i++ {
		<-done
	}

	if collector.GetDetectionsTotal() != 10 {
		t.Errorf("Expected 10 detections, got %d", collector.GetDetectionsTotal())
	}
	if collector.GetSamplesProcessed() != 1000 {
		t.Errorf("Expected 1000 samples, got %d", collector.GetSamplesProcessed())
	}
}
