// Package jobstats runs one scrape of the job statistics report: log in,
// fetch, persist.
package jobstats

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"appcast-scraper/lib/chrono"
	"appcast-scraper/lib/config"
	"appcast-scraper/lib/export"
	"appcast-scraper/lib/restyutil"
	"appcast-scraper/lib/runstore"
	"appcast-scraper/lib/scrapers/appcast"
	"appcast-scraper/lib/webhook"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
)

var tracer = otel.Tracer("services/jobstats")
var meter = otel.Meter("services/jobstats")

var runCounter, _ = meter.Int64Counter(
	"appcast.runs",
	metric.WithDescription("completed scrape runs"),
)
var recordCounter, _ = meter.Int64Counter(
	"appcast.records",
	metric.WithDescription("job records written to csv"),
)

type Options struct {
	Clock chrono.TimeAPI
	// optional, dumps every http exchange with the portal
	InstrumentOutput restyutil.InstrumentOutput
}

type Result struct {
	RawPath string
	// empty when the report had no recognizable record array
	CsvPath     string
	RecordCount int
}

// Run performs one scrape. Login, fetch and saving the raw report must
// succeed, everything after that is best effort.
func Run(ctx context.Context, cfg config.Config, opts Options) (Result, error) {
	ctx, span := tracer.Start(ctx, "Run")
	defer span.End()

	if opts.Clock == nil {
		opts.Clock = chrono.NewStandardTime()
	}
	span.SetAttributes(
		attribute.String("employer_id", cfg.EmployerId),
		attribute.String("start_date", cfg.Window.Start),
		attribute.String("end_date", cfg.Window.End),
	)

	result, report, err := scrape(ctx, cfg, opts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "scrape failed")
		return Result{}, err
	}

	if cfg.WebhookUrl != "" {
		notify(ctx, cfg, opts.Clock, report)
	}
	if cfg.HistoryDb != "" {
		remember(ctx, cfg, opts.Clock, result)
	}

	runCounter.Add(ctx, 1)
	recordCounter.Add(ctx, int64(result.RecordCount))
	return result, nil
}

func scrape(ctx context.Context, cfg config.Config, opts Options) (Result, appcast.Report, error) {
	client, err := appcast.NewClient(appcast.ClientOptions{
		BaseUrl:          cfg.BaseUrl,
		Timeout:          cfg.Timeout,
		UserAgent:        cfg.UserAgent,
		CloudflareBypass: cfg.CloudflareBypass,
		InstrumentOutput: opts.InstrumentOutput,
	})
	if err != nil {
		return Result{}, appcast.Report{}, err
	}

	slog.InfoContext(ctx, "logging in", "base_url", cfg.BaseUrl, "email", cfg.Email)
	auth, err := client.AcquireSession(ctx, appcast.Credentials{
		Email:    cfg.Email,
		Password: cfg.Password,
	})
	if err != nil {
		return Result{}, appcast.Report{}, err
	}
	slog.InfoContext(ctx, "logged in", "csrf_token", auth.CsrfToken != "")

	slog.InfoContext(ctx, "fetching job report",
		"employer_id", cfg.EmployerId,
		"start_date", cfg.Window.Start,
		"end_date", cfg.Window.End,
	)
	report, err := client.FetchReport(ctx, auth, appcast.ReportQuery{
		EmployerId: cfg.EmployerId,
		JobBoardId: cfg.JobBoardId,
		StartDate:  cfg.Window.Start,
		EndDate:    cfg.Window.End,
	})
	if err != nil {
		return Result{}, appcast.Report{}, err
	}
	slog.InfoContext(ctx, "job report fetched", "bytes", len(report.Raw))

	rawPath, err := export.SaveRaw(ctx, cfg.OutputDir, cfg.Window, report)
	if err != nil {
		return Result{}, appcast.Report{}, err
	}
	slog.InfoContext(ctx, "saved raw report", "path", rawPath)

	result := Result{RawPath: rawPath}

	csvPath, ok, err := export.SaveTable(ctx, cfg.OutputDir, cfg.Window, report)
	switch {
	case err != nil:
		// the raw report is already on disk, a broken table is not worth failing the run over
		slog.WarnContext(ctx, "failed to save jobs table", "err", err)
	case ok:
		rows, _ := export.Records(report.Data)
		result.CsvPath = csvPath
		result.RecordCount = len(rows)
		slog.InfoContext(ctx, "saved jobs table", "path", csvPath, "records", len(rows))
	}

	return result, report, nil
}

func notify(ctx context.Context, cfg config.Config, clock chrono.TimeAPI, report appcast.Report) {
	slog.InfoContext(ctx, "sending report to webhook")
	err := webhook.NewClient(cfg.WebhookUrl).Send(ctx, webhook.Payload{
		EmployerId:   cfg.EmployerId,
		StartDate:    cfg.Window.Start,
		EndDate:      cfg.Window.End,
		ReportType:   webhook.ReportTypeJobsTotal,
		TimestampUtc: clock.Now().UTC().Format(time.RFC3339),
		Report:       report.Raw,
	})
	if err != nil {
		slog.WarnContext(ctx, "webhook delivery failed", "err", err)
		return
	}
	slog.InfoContext(ctx, "webhook delivered")
}

func remember(ctx context.Context, cfg config.Config, clock chrono.TimeAPI, result Result) {
	store, err := runstore.Open(ctx, cfg.HistoryDb)
	if err != nil {
		slog.WarnContext(ctx, "failed to open run history", "path", cfg.HistoryDb, "err", err)
		return
	}
	defer store.Close()

	err = store.Record(ctx, runstore.Run{
		EmployerId:  cfg.EmployerId,
		StartDate:   cfg.Window.Start,
		EndDate:     cfg.Window.End,
		FinishedAt:  clock.Now(),
		RecordCount: result.RecordCount,
		RawPath:     result.RawPath,
		CsvPath:     result.CsvPath,
	})
	if err != nil {
		slog.WarnContext(ctx, "failed to record run", "err", err)
	}
}

// Describe renders a one-line summary of a result for humans.
func Describe(r Result) string {
	if r.CsvPath == "" {
		return fmt.Sprintf("raw report: %s (no jobs table)", r.RawPath)
	}
	return fmt.Sprintf("raw report: %s, jobs table: %s (%d records)", r.RawPath, r.CsvPath, r.RecordCount)
}
