package metadata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchJSON_Classification(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		retryAfter string
		body       string
		wantOK     bool
		wantStatus Status
		wantWait   time.Duration
	}{
		{name: "ok", status: 200, body: `{"title":"x"}`, wantOK: true},
		{name: "not found", status: 404, wantStatus: StatusNotFound},
		{name: "bad request", status: 400, wantStatus: StatusNotFound},
		{name: "unauthorized", status: 401, wantStatus: StatusNotFound},
		{name: "rate limited", status: 429, retryAfter: "7", wantStatus: StatusTransient, wantWait: 7 * time.Second},
		{name: "server error", status: 503, wantStatus: StatusTransient},
		{name: "bad body", status: 200, body: "<html>", wantStatus: StatusTransient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.retryAfter != "" {
					w.Header().Set("Retry-After", tt.retryAfter)
				}
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, srv.URL, nil)
			require.NoError(t, err)

			var out struct {
				Title string `json:"title"`
			}
			res, ok := FetchJSON(srv.Client(), req, &out)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, "x", out.Title)
				return
			}
			assert.Equal(t, tt.wantStatus, res.Status)
			assert.Equal(t, tt.wantWait, res.RetryAfter)
			if res.Status == StatusTransient {
				assert.Error(t, res.Err)
			}
		})
	}
}

func TestFetchJSON_TransportErrorIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)

	res, ok := FetchJSON(&http.Client{Timeout: time.Second}, req, &struct{}{})
	assert.False(t, ok)
	assert.Equal(t, StatusTransient, res.Status)
	assert.Error(t, res.Err)
}

func TestParseRetryAfter(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, 30*time.Second, ParseRetryAfter("30", now))
	assert.Equal(t, 90*time.Second, ParseRetryAfter(now.Add(90*time.Second).Format(http.TimeFormat), now))
	assert.Zero(t, ParseRetryAfter("", now))
	assert.Zero(t, ParseRetryAfter("-5", now))
	assert.Zero(t, ParseRetryAfter("soon", now))
	assert.Zero(t, ParseRetryAfter(now.Add(-time.Minute).Format(http.TimeFormat), now))
}
