package requests

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"

	"github.com/chris/safe-signature-processor/pkg/models"
	"github.com/chris/safe-signature-processor/pkg/storage"
)

// CommandLookup reports whether a request is waiting in the queue.
type CommandLookup interface {
	HasCommand(id string) bool
}

// RequestsHandler holds the dependencies for signature request handlers.
type RequestsHandler struct {
	Store storage.SignatureRequestReader
	Queue CommandLookup
}

// NewRequestsHandler creates a new RequestsHandler.
func NewRequestsHandler(store storage.SignatureRequestReader, queue CommandLookup) *RequestsHandler {
	return &RequestsHandler{Store: store, Queue: queue}
}

// SignatureRequestView is a stored request plus its queue membership.
type SignatureRequestView struct {
	models.SignatureRequest
	Queued bool `json:"queued"`
}

func (h *RequestsHandler) view(req models.SignatureRequest) SignatureRequestView {
	return SignatureRequestView{SignatureRequest: req, Queued: h.Queue != nil && h.Queue.HasCommand(req.Key().ID())}
}

// GetSignatureRequest returns a single request.
func (h *RequestsHandler) GetSignatureRequest(w http.ResponseWriter, r *http.Request, safeAddress, messageHash string) {
	req, err := h.Store.GetSignatureRequest(r.Context(), safeAddress, messageHash)
	if err != nil {
		if errors.Is(err, storage.ErrSignatureRequestNotFound) {
			http.Error(w, "Signature request not found", http.StatusNotFound)
		} else {
			http.Error(w, fmt.Sprintf("Failed to retrieve signature request: %v", err), http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusOK, h.view(*req))
}

// ListPendingSignatureRequests returns pending requests, newest first. The
// optional purpose query parameter filters by purpose.
func (h *RequestsHandler) ListPendingSignatureRequests(w http.ResponseWriter, r *http.Request) {
	purpose := models.SignatureRequestPurpose(r.URL.Query().Get("purpose"))

	pending, err := h.Store.ListPendingSignatureRequests(r.Context(), purpose)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to retrieve signature requests: %v", err), http.StatusInternalServerError)
		return
	}

	sort.Slice(pending, func(i, j int) bool {
		return pending[i].CreatedAt.After(pending[j].CreatedAt)
	})

	views := make([]SignatureRequestView, len(pending))
	for i, req := range pending {
		views[i] = h.view(req)
	}

	writeJSON(w, http.StatusOK, views)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, fmt.Sprintf("Failed to write response: %v", err), http.StatusInternalServerError)
	}
}
