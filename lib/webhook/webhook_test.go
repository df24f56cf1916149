package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSend(t *testing.T) {
	var received map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.Header.Get("Content-Type"), "application/json")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	err := NewClient(server.URL).Send(context.Background(), Payload{
		EmployerId:   "27620",
		StartDate:    "2024-01-01",
		EndDate:      "2024-01-31",
		ReportType:   ReportTypeJobsTotal,
		TimestampUtc: "2024-01-31T10:00:00Z",
		Report:       json.RawMessage(`{"jobs":[]}`),
	})
	require.NoError(t, err)

	require.Equal(t, "27620", received["employer_id"])
	require.Equal(t, "jobs_total", received["report_type"])
	require.Equal(t, map[string]any{"jobs": []any{}}, received["report"])
}

func TestSendRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusGone)
	}))
	defer server.Close()

	err := NewClient(server.URL).Send(context.Background(), Payload{Report: json.RawMessage(`{}`)})
	require.ErrorContains(t, err, "410")
}
