package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"appcast-scraper/lib/config"
	"appcast-scraper/lib/runstore"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var historyLimit *int
var historyEmployer *string

func init() {
	historyLimit = historyCmd.Flags().IntP("limit", "n", 10, "Number of runs to list.")
	historyEmployer = historyCmd.Flags().String("employer", "", "Employer id, defaults to APPCAST_EMPLOYER_ID.")
	rootCmd.AddCommand(historyCmd)
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Lists the most recent recorded runs of an employer.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return listHistory(cmd.Context(), cmd.OutOrStdout(), os.Getenv, *configPath, *historyEmployer, *historyLimit)
	},
}

func listHistory(ctx context.Context, out io.Writer, lookup config.Lookup, settingsPath, employerId string, limit int) error {
	file, err := config.ReadFile(settingsPath)
	if err != nil {
		return fmt.Errorf("read settings: %w", err)
	}
	path := config.HistoryPath(lookup, file)
	if path == "" {
		return fmt.Errorf("run history is off, set %s or history_db", config.EnvHistoryDb)
	}
	if employerId == "" {
		employerId = lookup(config.EnvEmployerId)
	}
	if employerId == "" {
		return &config.MissingVariableError{Name: config.EnvEmployerId}
	}

	store, err := runstore.Open(ctx, path)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.Recent(ctx, employerId, limit)
	if err != nil {
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"finished", "window", "records", "raw", "csv"})
	for _, r := range runs {
		csv := r.CsvPath
		if csv == "" {
			csv = "-"
		}
		t.AppendRow(table.Row{
			r.FinishedAt.Format(time.DateTime),
			fmt.Sprintf("%s - %s", r.StartDate, r.EndDate),
			r.RecordCount,
			r.RawPath,
			csv,
		})
	}
	t.Render()

	return nil
}
