// Package webhook forwards finished reports to an automation webhook.
package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"appcast-scraper/lib/restyutil"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("webhook")

const ReportTypeJobsTotal = "jobs_total"

const defaultTimeout = time.Second * 20

type Payload struct {
	EmployerId   string          `json:"employer_id"`
	StartDate    string          `json:"start_date"`
	EndDate      string          `json:"end_date"`
	ReportType   string          `json:"report_type"`
	TimestampUtc string          `json:"timestamp_utc"`
	Report       json.RawMessage `json:"report"`
}

type Client struct {
	url  string
	http *resty.Client
}

func NewClient(url string) *Client {
	client := resty.New()
	client.SetTimeout(defaultTimeout)
	restyutil.InstrumentClient(client, otel.Tracer("webhook/http"), nil)
	return &Client{url: url, http: client}
}

// Send posts the payload once, any non-2xx answer is an error.
func (c *Client) Send(ctx context.Context, payload Payload) error {
	ctx, span := tracer.Start(ctx, "Send")
	defer span.End()

	res, err := c.http.R().
		SetContext(ctx).
		SetHeader("content-type", "application/json").
		SetBody(payload).
		Post(c.url)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to post webhook")
		return fmt.Errorf("post webhook: %w", err)
	}
	if !res.IsSuccess() {
		err := fmt.Errorf("webhook responded with status %d", res.StatusCode())
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}
