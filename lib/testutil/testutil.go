package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"appcast-scraper/lib/telemetry"
)

type ServiceParams struct {
	Name string
	// if unspecified, no portal server is started
	Portal http.Handler
}

type ServiceResult struct {
	// empty when no portal was given
	BaseUrl   string
	OutputDir string
	HistoryDb string
}

// SetupService prepares telemetry, a fake portal and scratch paths for a
// test, everything is torn down by the returned func.
func SetupService(t testing.TB, params ServiceParams) (ServiceResult, func()) {
	cleanupTel := telemetry.SetupForTesting(t, fmt.Sprintf("test:%s", params.Name))

	dir := t.TempDir()
	result := ServiceResult{
		OutputDir: filepath.Join(dir, "data"),
		HistoryDb: filepath.Join(dir, "history.db"),
	}

	var server *httptest.Server
	if params.Portal != nil {
		server = httptest.NewServer(params.Portal)
		result.BaseUrl = server.URL
	}

	return result, func() {
		if server != nil {
			server.Close()
		}
		cleanupTel()
	}
}
