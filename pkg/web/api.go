package web

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/dbehnke/dcs-nexus/pkg/database"
	"github.com/dbehnke/dcs-nexus/pkg/logger"
)

// ChannelStatus describes the current state of a monitored channel
type ChannelStatus struct {
	Name       string `json:"name"`
	Designator string `json:"designator"`
	Open       bool   `json:"open"`
}

// DetectionStore provides access to recorded detections
type DetectionStore interface {
	GetRecent(limit int) ([]database.Detection, error)
}

// API handles REST API endpoints
type API struct {
	logger     *logger.Logger
	detections DetectionStore
	channels   func() []ChannelStatus
}

// NewAPI creates a new API instance
func NewAPI(log *logger.Logger) *API {
	return &API{
		logger: log,
	}
}

// SetDetectionStore sets the store used by the /api/detections endpoint
func (a *API) SetDetectionStore(store DetectionStore) {
	a.detections = store
}

// SetChannelStatusFunc sets the source for the /api/channels endpoint
func (a *API) SetChannelStatusFunc(fn func() []ChannelStatus) {
	a.channels = fn
}

// HandleStatus handles the /api/status endpoint
func (a *API) HandleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	version, commit, buildTime := GetVersionInfo()
	response := map[string]interface{}{
		"status":     "running",
		"service":    "dcs-nexus",
		"version":    version,
		"commit":     commit,
		"build_time": buildTime,
	}

	json.NewEncoder(w).Encode(response)
}

// HandleChannels handles the /api/channels endpoint
func (a *API) HandleChannels(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	channels := []ChannelStatus{}
	if a.channels != nil {
		channels = a.channels()
	}
	json.NewEncoder(w).Encode(channels)
}

// HandleDetections handles the /api/detections endpoint
func (a *API) HandleDetections(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 1000 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	w.Header().Set("Content-Type", "application/json")

	detections := []database.Detection{}
	if a.detections != nil {
		recent, err := a.detections.GetRecent(limit)
		if err != nil {
			a.logger.Error("Failed to load detections", logger.Error(err))
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		detections = recent
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(detections)
}
