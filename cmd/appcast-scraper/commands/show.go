package commands

import (
	"fmt"
	"io"
	"os"

	"appcast-scraper/lib/export"
	"appcast-scraper/lib/scrapers/appcast"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(showCmd)
}

var showCmd = &cobra.Command{
	Use:   "show <appcast_raw_*.json>",
	Short: "Prints the job records of a saved raw report as a table.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		contents, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read report: %w", err)
		}
		return renderReport(cmd.OutOrStdout(), contents)
	},
}

func renderReport(out io.Writer, contents []byte) error {
	report, err := appcast.DecodeReport(contents)
	if err != nil {
		return err
	}
	records, ok := export.Records(report.Data)
	if !ok {
		return fmt.Errorf("no job records in report")
	}

	t := table.NewWriter()
	t.SetOutputMirror(out)
	style := table.StyleLight
	style.Format.Footer = text.FormatDefault
	t.SetStyle(style)

	header := table.Row{}
	for _, c := range export.Columns {
		header = append(header, c)
	}
	t.AppendHeader(header)

	for _, r := range records {
		row := table.Row{}
		for _, v := range r {
			row = append(row, v)
		}
		t.AppendRow(row)
	}
	t.AppendFooter(table.Row{"", fmt.Sprintf("%d records", len(records))})
	t.Render()

	return nil
}
