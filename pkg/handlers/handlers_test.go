package handlers_test

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/chris/safe-signature-processor/pkg/handlers"
	"github.com/chris/safe-signature-processor/pkg/handlers/mocks"
	"github.com/chris/safe-signature-processor/pkg/handlers/requests"
	"github.com/chris/safe-signature-processor/pkg/metrics"
	"github.com/chris/safe-signature-processor/pkg/processor"
	"github.com/chris/safe-signature-processor/pkg/scheduler"
	storagemocks "github.com/chris/safe-signature-processor/pkg/storage/mocks"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHealth(t *testing.T) {
	h := handlers.NewApiHandler(nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()

	h.Health(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

func TestGetQueueStats(t *testing.T) {
	queue := mocks.NewQueueInspector(t)
	queue.On("Stats").Return(scheduler.Stats{Pending: 3, Active: 2, Running: true, Tokens: 1.5})

	h := handlers.NewApiHandler(queue, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/queue", nil)
	rr := httptest.NewRecorder()

	h.GetQueueStats(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"pending":3,"active":2,"running":true,"tokens":1.5}`, rr.Body.String())
}

func TestTriggerPoll(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		poller := mocks.NewPoller(t)
		poller.On("ProcessPendingRequests", mock.Anything).Return(processor.Result{CycleID: "c-1", Found: 4, Enqueued: 3, Skipped: 1}, nil)

		h := handlers.NewApiHandler(nil, poller)

		req := httptest.NewRequest(http.MethodPost, "/v1/poll", nil)
		rr := httptest.NewRecorder()

		h.TriggerPoll(rr, req)

		assert.Equal(t, http.StatusAccepted, rr.Code)
		var res processor.Result
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
		assert.Equal(t, 3, res.Enqueued)
	})

	t.Run("Store Failure", func(t *testing.T) {
		poller := mocks.NewPoller(t)
		poller.On("ProcessPendingRequests", mock.Anything).Return(processor.Result{}, errors.New("connection refused"))

		h := handlers.NewApiHandler(nil, poller)

		req := httptest.NewRequest(http.MethodPost, "/v1/poll", nil)
		rr := httptest.NewRecorder()

		h.TriggerPoll(rr, req)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.Contains(t, rr.Body.String(), "connection refused")
	})
}

func TestRouter(t *testing.T) {
	queue := mocks.NewQueueInspector(t)
	queue.On("Stats").Return(scheduler.Stats{})
	store := storagemocks.NewStorage(t)
	store.On("GetSignatureRequest", mock.Anything, "0xabc", "0xdef").Return(nil, errors.New("timeout"))

	reg := prometheus.NewRegistry()
	metrics.New(reg).CommandEnqueued()

	router := handlers.NewRouter(
		handlers.NewApiHandler(queue, nil),
		requests.NewRequestsHandler(store, nil),
		discardLogger(),
		reg,
	)

	tests := []struct {
		method string
		path   string
		status int
	}{
		{http.MethodGet, "/healthz", http.StatusOK},
		{http.MethodGet, "/v1/queue", http.StatusOK},
		{http.MethodGet, "/v1/signature-requests/0xabc/0xdef", http.StatusInternalServerError},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodGet, "/v1/poll", http.StatusMethodNotAllowed},
		{http.MethodGet, "/v1/unknown", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, httptest.NewRequest(tt.method, tt.path, nil))

			assert.Equal(t, tt.status, rr.Code)
			if tt.path == "/metrics" {
				assert.Contains(t, rr.Body.String(), "signature_processor_queue_enqueued_total 1")
			}
		})
	}
}
