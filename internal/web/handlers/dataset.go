package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/blockedby/sales-dashboard/internal/logger"
	"github.com/blockedby/sales-dashboard/internal/models"
	"github.com/blockedby/sales-dashboard/internal/sales"
	"github.com/blockedby/sales-dashboard/internal/web"
)

// DatasetHandler reloads the order source and tells clients about it.
type DatasetHandler struct {
	ds         Dataset
	pub        EventPublisher
	hub        Broadcaster
	instanceID uuid.UUID
	shared     bool
	log        *logger.Logger
}

// DatasetStatusResponse describes the loaded dataset.
type DatasetStatusResponse struct {
	Rows     int        `json:"rows"`
	Orders   int        `json:"orders"`
	Dropped  int        `json:"dropped"`
	LoadedAt *time.Time `json:"loaded_at,omitempty"`
}

// NewDatasetHandler creates a new DatasetHandler. pub and hub may be nil.
// instanceID tags published reload events so this server can ignore its own.
func NewDatasetHandler(ds Dataset, pub EventPublisher, hub Broadcaster, instanceID uuid.UUID) *DatasetHandler {
	return &DatasetHandler{
		ds:         ds,
		pub:        pub,
		hub:        hub,
		instanceID: instanceID,
		log:        logger.Get().Component("dataset"),
	}
}

// SetShared marks the dataset as shared with peer instances, as with a
// common database. Remote reloads are then announced without reloading again.
func (h *DatasetHandler) SetShared(shared bool) {
	h.shared = shared
}

// Status returns the stats of the loaded dataset.
// GET /api/dataset
func (h *DatasetHandler) Status(w http.ResponseWriter, _ *http.Request) {
	stats, loadedAt := h.ds.Stats()
	writeJSON(w, http.StatusOK, statusResponse(stats, loadedAt))
}

// Reload re-reads the dataset and notifies websocket clients and the bus.
// POST /api/dataset/reload
func (h *DatasetHandler) Reload(w http.ResponseWriter, r *http.Request) {
	stats, err := h.ds.Reload(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("reload dataset")
		http.Error(w, "failed to reload dataset: "+err.Error(), http.StatusInternalServerError)
		return
	}

	h.log.Info().Int("orders", stats.Orders).Int("dropped", stats.Dropped).Msg("dataset reloaded")

	if h.hub != nil {
		h.hub.Broadcast(web.DatasetReloadedEvent(stats))
	}
	if h.pub != nil {
		event := models.DatasetReloadedEvent{
			InstanceID: h.instanceID,
			Orders:     stats.Orders,
			Dropped:    stats.Dropped,
			ReloadedAt: time.Now().UTC(),
		}
		if err := h.pub.PublishDatasetReloaded(r.Context(), event); err != nil {
			h.log.Warn().Err(err).Msg("publish reload event")
		}
	}

	_, loadedAt := h.ds.Stats()
	writeJSON(w, http.StatusOK, statusResponse(stats, loadedAt))
}

// HandleRemoteReload consumes a dataset.reloaded message from another
// instance: it reloads locally and pushes the change to websocket clients.
// Events published by this instance are ignored.
func (h *DatasetHandler) HandleRemoteReload(ctx context.Context, data []byte) error {
	var event models.DatasetReloadedEvent
	if err := json.Unmarshal(data, &event); err != nil {
		// malformed messages are not worth redelivering
		h.log.Warn().Err(err).Msg("decode reload event")
		return nil
	}
	if event.InstanceID == h.instanceID {
		return nil
	}

	stats := sales.LoadStats{Orders: event.Orders, Dropped: event.Dropped}
	if !h.shared {
		var err error
		if stats, err = h.ds.Reload(ctx); err != nil {
			return fmt.Errorf("reload after remote event: %w", err)
		}
	}

	h.log.Info().Str("origin", event.InstanceID.String()).Int("orders", stats.Orders).Msg("dataset reloaded by peer")
	if h.hub != nil {
		h.hub.Broadcast(web.DatasetReloadedEvent(stats))
	}
	return nil
}

func statusResponse(stats sales.LoadStats, loadedAt time.Time) DatasetStatusResponse {
	resp := DatasetStatusResponse{
		Rows:    stats.Rows,
		Orders:  stats.Orders,
		Dropped: stats.Dropped,
	}
	if !loadedAt.IsZero() {
		resp.LoadedAt = &loadedAt
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		_ = err // Client disconnected
	}
}
