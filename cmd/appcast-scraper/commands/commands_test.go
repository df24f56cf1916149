package commands

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"appcast-scraper/lib/chrono"
	"appcast-scraper/lib/config"
	"appcast-scraper/lib/runstore"
	"appcast-scraper/lib/testutil"
	"appcast-scraper/services/jobstats"

	"github.com/stretchr/testify/require"
)

func TestScrapeMissingConfigMakesNoRequests(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer server.Close()

	full := map[string]string{
		config.EnvBaseUrl:    server.URL,
		config.EnvEmployerId: "27620",
		config.EnvEmail:      "ops@example.com",
		config.EnvPassword:   "hunter2",
		config.EnvOutputDir:  t.TempDir(),
	}
	required := []string{config.EnvEmployerId, config.EnvEmail, config.EnvPassword}

	// every non-empty subset of the required variables
	for mask := 1; mask < 1<<len(required); mask++ {
		env := map[string]string{}
		for k, v := range full {
			env[k] = v
		}
		var unset []string
		for i, name := range required {
			if mask&(1<<i) != 0 {
				delete(env, name)
				unset = append(unset, name)
			}
		}

		t.Run(fmt.Sprint(unset), func(t *testing.T) {
			lookup := func(key string) string { return env[key] }
			_, err := scrape(context.Background(), lookup, filepath.Join(t.TempDir(), "none.json5"), jobstats.Options{})

			var missing *config.MissingVariableError
			require.True(t, errors.As(err, &missing))
			require.Equal(t, unset[0], missing.Name)
		})
	}

	require.Zero(t, hits.Load())
}

func TestScrapeUsesClockForDefaultWindow(t *testing.T) {
	var reportQuery atomic.Value
	res, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name: "cmd/appcast-scraper",
		Portal: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/user_sessions/new":
				fmt.Fprint(w, `<input name="authenticity_token" value="t">`)
			case "/user_sessions":
				w.WriteHeader(http.StatusOK)
			default:
				reportQuery.Store(r.URL.Query().Get("start_date") + "/" + r.URL.Query().Get("end_date"))
				fmt.Fprint(w, `[]`)
			}
		}),
	})
	defer cleanup()

	env := map[string]string{
		config.EnvBaseUrl:    res.BaseUrl,
		config.EnvEmployerId: "27620",
		config.EnvEmail:      "ops@example.com",
		config.EnvPassword:   "hunter2",
		config.EnvOutputDir:  res.OutputDir,
	}
	clock := chrono.FixedTime{Time: time.Date(2024, time.May, 10, 8, 0, 0, 0, time.Local)}

	result, err := scrape(
		context.Background(),
		func(key string) string { return env[key] },
		filepath.Join(t.TempDir(), "none.json5"),
		jobstats.Options{Clock: clock},
	)
	require.NoError(t, err)
	require.Equal(t, "2024-04-10/2024-05-10", reportQuery.Load())
	require.Equal(t, "appcast_raw_2024-04-10_to_2024-05-10.json", filepath.Base(result.RawPath))
	require.Empty(t, result.CsvPath)
}

func TestRenderReport(t *testing.T) {
	var out bytes.Buffer
	err := renderReport(&out, []byte(`{"data":[{"id":1,"title":"Engineer","stats":{"clicks":10}}]}`))
	require.NoError(t, err)
	require.Contains(t, out.String(), "Engineer")
	require.Contains(t, out.String(), "CLICKS")
	require.Contains(t, out.String(), "1 records")

	err = renderReport(&out, []byte(`{"totals":{}}`))
	require.Error(t, err)
}

func TestExecuteReturnsErrorInsteadOfExiting(t *testing.T) {
	t.Setenv(config.EnvEmployerId, "")
	t.Setenv(config.EnvEmail, "")
	t.Setenv(config.EnvPassword, "")

	rootCmd.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "none.json5")})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	err := ExecuteContext(context.Background())
	var missing *config.MissingVariableError
	require.ErrorAs(t, err, &missing)
	require.Equal(t, config.EnvEmployerId, missing.Name)
}

func TestListHistory(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "history.db")

	store, err := runstore.Open(ctx, dbPath)
	require.NoError(t, err)
	finished := time.Date(2024, time.January, 31, 12, 0, 0, 0, time.Local)
	require.NoError(t, store.Record(ctx, runstore.Run{
		EmployerId:  "27620",
		StartDate:   "2024-01-01",
		EndDate:     "2024-01-31",
		FinishedAt:  finished,
		RecordCount: 4,
		RawPath:     "data/appcast_raw_2024-01-01_to_2024-01-31.json",
	}))
	require.NoError(t, store.Record(ctx, runstore.Run{
		EmployerId: "99",
		StartDate:  "2023-12-01",
		EndDate:    "2023-12-31",
		FinishedAt: finished,
		RawPath:    "other.json",
	}))
	require.NoError(t, store.Close())

	env := map[string]string{
		config.EnvHistoryDb:  dbPath,
		config.EnvEmployerId: "27620",
	}
	lookup := func(key string) string { return env[key] }
	settings := filepath.Join(t.TempDir(), "none.json5")

	var out bytes.Buffer
	require.NoError(t, listHistory(ctx, &out, lookup, settings, "", 10))
	require.Contains(t, out.String(), "2024-01-01 - 2024-01-31")
	require.Contains(t, out.String(), "appcast_raw_2024-01-01_to_2024-01-31.json")
	require.Contains(t, out.String(), "2024-01-31 12:00:00")
	require.NotContains(t, out.String(), "other.json")

	out.Reset()
	require.NoError(t, listHistory(ctx, &out, lookup, settings, "99", 10))
	require.Contains(t, out.String(), "other.json")

	delete(env, config.EnvHistoryDb)
	err = listHistory(ctx, &out, lookup, settings, "", 10)
	require.ErrorContains(t, err, config.EnvHistoryDb)
}
