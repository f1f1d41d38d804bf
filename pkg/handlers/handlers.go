package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/chris/safe-signature-processor/pkg/processor"
	"github.com/chris/safe-signature-processor/pkg/scheduler"
)

// QueueInspector exposes the command queue's state.
type QueueInspector interface {
	Stats() scheduler.Stats
}

// Poller runs one discovery cycle on demand.
type Poller interface {
	ProcessPendingRequests(ctx context.Context) (processor.Result, error)
}

// ApiHandler serves the operational endpoints of the worker.
type ApiHandler struct {
	Queue  QueueInspector
	Poller Poller
}

// NewApiHandler creates a new ApiHandler.
func NewApiHandler(queue QueueInspector, poller Poller) *ApiHandler {
	return &ApiHandler{Queue: queue, Poller: poller}
}

// Health reports liveness.
func (h *ApiHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetQueueStats returns the pending and active command counts.
func (h *ApiHandler) GetQueueStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Queue.Stats())
}

// TriggerPoll runs a poll cycle immediately and returns its summary.
func (h *ApiHandler) TriggerPoll(w http.ResponseWriter, r *http.Request) {
	res, err := h.Poller.ProcessPendingRequests(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to process pending requests: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusAccepted, res)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, fmt.Sprintf("Failed to write response: %v", err), http.StatusInternalServerError)
	}
}
