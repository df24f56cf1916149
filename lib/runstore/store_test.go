package runstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestRecordAndRecent(t *testing.T) {
	ctx := context.Background()
	store, err := Open(ctx, ":memory:")
	require.NoError(t, err)
	defer store.Close()

	base := time.Unix(1_700_000_000, 0)
	runs := []Run{
		{EmployerId: "1", StartDate: "2024-01-01", EndDate: "2024-01-31", FinishedAt: base, RecordCount: 3, RawPath: "a.json", CsvPath: "a.csv"},
		{EmployerId: "2", StartDate: "2024-01-01", EndDate: "2024-01-31", FinishedAt: base.Add(time.Hour), RawPath: "b.json"},
		{EmployerId: "1", StartDate: "2024-02-01", EndDate: "2024-02-29", FinishedAt: base.Add(2 * time.Hour), RawPath: "c.json"},
	}
	for _, r := range runs {
		require.NoError(t, store.Record(ctx, r))
	}

	recent, err := store.Recent(ctx, "1", 10)
	require.NoError(t, err)
	if diff := cmp.Diff([]Run{runs[2], runs[0]}, recent); diff != "" {
		t.Fatalf("recent runs mismatch (-want +got):\n%s", diff)
	}

	recent, err = store.Recent(ctx, "1", 1)
	require.NoError(t, err)
	require.Len(t, recent, 1)

	recent, err = store.Recent(ctx, "unknown", 10)
	require.NoError(t, err)
	require.Empty(t, recent)
}

func TestOpenFileReopens(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history.db")

	store, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, store.Record(ctx, Run{EmployerId: "1", FinishedAt: time.Unix(10, 0), RawPath: "x.json"}))
	require.NoError(t, store.Close())

	store, err = Open(ctx, path)
	require.NoError(t, err)
	defer store.Close()

	recent, err := store.Recent(ctx, "1", 5)
	require.NoError(t, err)
	require.Len(t, recent, 1)
}
