package metrics

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/dbehnke/dcs-nexus/pkg/logger"
)

// PrometheusConfig holds Prometheus server configuration
type PrometheusConfig struct {
	Enabled bool
	Port    int
	Path    string
}

// PrometheusHandler handles Prometheus metrics HTTP requests
type PrometheusHandler struct {
	collector *Collector
}

// NewPrometheusHandler creates a new Prometheus handler
func NewPrometheusHandler(collector *Collector) *PrometheusHandler {
	return &PrometheusHandler{
		collector: collector,
	}
}

// ServeHTTP handles HTTP requests for metrics
func (h *PrometheusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	var output strings.Builder

	// Audio pipeline metrics
	output.WriteString("# HELP dcs_samples_processed_total Total audio samples processed\n")
	output.WriteString("# TYPE dcs_samples_processed_total counter\n")
	output.WriteString(fmt.Sprintf("dcs_samples_processed_total %d\n", h.collector.GetSamplesProcessed()))

	output.WriteString("# HELP dcs_bits_sliced_total Total bits recovered by the decoders\n")
	output.WriteString("# TYPE dcs_bits_sliced_total counter\n")
	output.WriteString(fmt.Sprintf("dcs_bits_sliced_total %d\n", h.collector.GetBitsSliced()))

	output.WriteString("# HELP dcs_golay_corrections_total Bit periods decoded via error correction\n")
	output.WriteString("# TYPE dcs_golay_corrections_total counter\n")
	output.WriteString(fmt.Sprintf("dcs_golay_corrections_total %d\n", h.collector.GetGolayCorrections()))

	output.WriteString("# HELP dcs_codewords_missed_total Bit periods with no recognizable codeword\n")
	output.WriteString("# TYPE dcs_codewords_missed_total counter\n")
	output.WriteString(fmt.Sprintf("dcs_codewords_missed_total %d\n", h.collector.GetCodewordsMissed()))

	// Detection metrics
	output.WriteString("# HELP dcs_detections_total Total confirmed detections\n")
	output.WriteString("# TYPE dcs_detections_total counter\n")
	output.WriteString(fmt.Sprintf("dcs_detections_total %d\n", h.collector.GetDetectionsTotal()))

	byCode := h.collector.GetDetectionsByCode()
	designators := make([]string, 0, len(byCode))
	for d := range byCode {
		designators = append(designators, d)
	}
	sort.Strings(designators)

	output.WriteString("# HELP dcs_detections_by_code_total Confirmed detections per designator\n")
	output.WriteString("# TYPE dcs_detections_by_code_total counter\n")
	for _, d := range designators {
		output.WriteString(fmt.Sprintf("dcs_detections_by_code_total{code=%q} %d\n", d, byCode[d]))
	}

	// Squelch metrics
	output.WriteString("# HELP dcs_squelch_opens_total Total gate open transitions\n")
	output.WriteString("# TYPE dcs_squelch_opens_total counter\n")
	output.WriteString(fmt.Sprintf("dcs_squelch_opens_total %d\n", h.collector.GetSquelchOpens()))

	output.WriteString("# HELP dcs_squelch_closes_total Total gate close transitions\n")
	output.WriteString("# TYPE dcs_squelch_closes_total counter\n")
	output.WriteString(fmt.Sprintf("dcs_squelch_closes_total %d\n", h.collector.GetSquelchCloses()))

	output.WriteString("# HELP dcs_gates_open Number of currently open gates\n")
	output.WriteString("# TYPE dcs_gates_open gauge\n")
	output.WriteString(fmt.Sprintf("dcs_gates_open %d\n", h.collector.GetOpenGates()))

	w.Write([]byte(output.String()))
}

// PrometheusServer is an HTTP server for Prometheus metrics
type PrometheusServer struct {
	config    PrometheusConfig
	collector *Collector
	log       *logger.Logger
	server    *http.Server
}

// NewPrometheusServer creates a new Prometheus metrics server
func NewPrometheusServer(config PrometheusConfig, collector *Collector, log *logger.Logger) *PrometheusServer {
	if log == nil {
		log = logger.New(logger.Config{Level: "info", Format: "text"})
	}

	return &PrometheusServer{
		config:    config,
		collector: collector,
		log:       log.WithComponent("metrics"),
	}
}

// Start starts the Prometheus metrics server
func (s *PrometheusServer) Start(ctx context.Context) error {
	if !s.config.Enabled {
		s.log.Info("Prometheus metrics server disabled")
		return nil
	}

	handler := NewPrometheusHandler(s.collector)
	mux := http.NewServeMux()
	mux.Handle(s.config.Path, handler)

	// Use a listener to get the actual port (useful for testing with port 0)
	addr := fmt.Sprintf(":%d", s.config.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	actualPort := listener.Addr().(*net.TCPAddr).Port

	s.server = &http.Server{
		Handler: mux,
	}

	s.log.Info("Starting Prometheus metrics server",
		logger.Int("port", actualPort),
		logger.String("path", s.config.Path))

	// Start server
	errChan := make(chan error, 1)
	go func() {
		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	// Wait for context cancellation or error
	select {
	case <-ctx.Done():
		s.log.Info("Shutting down Prometheus metrics server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("metrics server shutdown error: %w", err)
		}
		return ctx.Err()
	case err := <-errChan:
		return err
	}
}

// Stop stops the Prometheus metrics server
func (s *PrometheusServer) Stop() {
	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.server.Shutdown(ctx)
	}
}
