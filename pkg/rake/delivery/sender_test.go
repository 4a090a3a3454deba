package delivery_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/randalmurphal/rake/pkg/rake/delivery"
	"github.com/randalmurphal/rake/pkg/rake/event"
	"github.com/randalmurphal/rake/pkg/rake/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPSender_PostsBatch(t *testing.T) {
	var got delivery.Batch
	var headers http.Header

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers = r.Header.Clone()
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	batch := delivery.Batch{
		ID: "batch-1",
		Events: []*event.Document{
			{SchemaID: "s", FieldOrder: map[string]any{"event": float64(0)}, Properties: event.Properties{"token": "tok"}},
		},
	}

	err := delivery.NewHTTPSender(nil).Send(context.Background(), srv.URL, batch)
	require.NoError(t, err)

	assert.Equal(t, "batch-1", got.ID)
	require.Len(t, got.Events, 1)
	assert.Equal(t, "s", got.Events[0].SchemaID)
	assert.Equal(t, "tok", got.Events[0].Token())

	assert.Equal(t, "application/json", headers.Get("Content-Type"))
	assert.Equal(t, "batch-1", headers.Get("X-Rake-Batch-Id"))
	assert.Contains(t, headers.Get("User-Agent"), "rake-go/")
}

func TestHTTPSender_ErrorStatus(t *testing.T) {
	tests := []struct {
		status    int
		retryable bool
	}{
		{http.StatusServiceUnavailable, true},
		{http.StatusTooManyRequests, true},
		{http.StatusBadRequest, false},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "nope", tt.status)
			}))
			defer srv.Close()

			err := delivery.NewHTTPSender(srv.Client()).Send(context.Background(), srv.URL, delivery.Batch{ID: "b"})

			var httpErr *retry.HTTPError
			require.ErrorAs(t, err, &httpErr)
			assert.Equal(t, tt.status, httpErr.StatusCode)
			assert.Equal(t, "nope", httpErr.Message)
			assert.Equal(t, tt.retryable, retry.IsRetryable(err))
		})
	}
}

func TestHTTPSender_ConnectionRefusedIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	err := delivery.NewHTTPSender(nil).Send(context.Background(), url, delivery.Batch{ID: "b"})
	require.Error(t, err)
	assert.True(t, retry.IsRetryable(err))
}
