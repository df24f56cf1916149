// Package export writes job reports to the output directory, once as the
// raw json payload and once as a flat csv table.
package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"appcast-scraper/lib/config"
	"appcast-scraper/lib/scrapers/appcast"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("export")

func RawFilename(w config.Window) string {
	return fmt.Sprintf("appcast_raw_%s_to_%s.json", w.Start, w.End)
}

func TableFilename(w config.Window) string {
	return fmt.Sprintf("appcast_jobs_%s_to_%s.csv", w.Start, w.End)
}

// SaveRaw writes the report pretty-printed with two space indentation,
// key order and number formatting are taken as is from the response.
func SaveRaw(ctx context.Context, dir string, w config.Window, report appcast.Report) (string, error) {
	_, span := tracer.Start(ctx, "SaveRaw")
	defer span.End()

	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	var pretty bytes.Buffer
	err = json.Indent(&pretty, report.Raw, "", "  ")
	if err != nil {
		return "", fmt.Errorf("indent report json: %w", err)
	}
	pretty.WriteByte('\n')

	path := filepath.Join(dir, RawFilename(w))
	err = os.WriteFile(path, pretty.Bytes(), 0644)
	if err != nil {
		return "", fmt.Errorf("write raw report: %w", err)
	}
	span.SetAttributes(attribute.String("path", path))
	return path, nil
}

// EscapeField quotes a csv field when it contains a comma or a double
// quote, embedded quotes are doubled.
func EscapeField(field string) string {
	if !strings.ContainsAny(field, `,"`) {
		return field
	}
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}

func writeRow(b *strings.Builder, fields []string) {
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(EscapeField(f))
	}
	b.WriteByte('\n')
}

// RenderTable renders the header and rows as csv text.
func RenderTable(rows []JobRecord) string {
	var b strings.Builder
	writeRow(&b, Columns)
	for _, row := range rows {
		writeRow(&b, row[:])
	}
	return b.String()
}

// SaveTable writes the jobs table for the report. When no record array can
// be found a warning is logged and ok is false, this is not an error.
func SaveTable(ctx context.Context, dir string, w config.Window, report appcast.Report) (path string, ok bool, err error) {
	ctx, span := tracer.Start(ctx, "SaveTable")
	defer span.End()

	elements, strategy, found := Discover(report.Data)
	if !found {
		slog.WarnContext(ctx, "no job records found in report, skipping csv",
			"tried", strategyNames(),
		)
		return "", false, nil
	}
	span.SetAttributes(
		attribute.String("strategy", strategy),
		attribute.Int("records", len(elements)),
	)

	rows := make([]JobRecord, len(elements))
	for i, e := range elements {
		rows[i] = toRecord(e)
	}

	err = os.MkdirAll(dir, 0755)
	if err != nil {
		return "", false, fmt.Errorf("create output dir: %w", err)
	}
	path = filepath.Join(dir, TableFilename(w))
	err = os.WriteFile(path, []byte(RenderTable(rows)), 0644)
	if err != nil {
		return "", false, fmt.Errorf("write jobs table: %w", err)
	}

	slog.DebugContext(ctx, "jobs table derived", "strategy", strategy, "records", len(rows))
	return path, true, nil
}

func strategyNames() []string {
	names := make([]string, len(Strategies))
	for i, s := range Strategies {
		names[i] = s.Name
	}
	return names
}
