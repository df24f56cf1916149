package appcast

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const reportPath = "/api/employer/{employerId}/jobs/total"

type ReportQuery struct {
	EmployerId string
	JobBoardId string
	StartDate  string
	EndDate    string
}

// these mirror the portal's "jobs total" report view, they are not meant
// to be tuned per run.
func (q ReportQuery) values() url.Values {
	values := url.Values{}
	values.Set("account_manager_id", "all")
	values.Set("boomerang", "all")
	values.Set("publisher_type", "all")
	values.Set("devise", "all")
	values.Set("job_group_stats_source", "jobs")
	values.Set("job_group_status", "data")
	values.Set("job_board_id", q.JobBoardId)
	values.Set("page", "1")
	values.Set("sort", "spend-desc")
	values.Set("aggregate_expansion_jobs", "true")
	values.Set("job_status", "active")
	values.Set("traffic", "all_wo_organic")
	values.Set("start_date", q.StartDate)
	values.Set("end_date", q.EndDate)
	return values
}

// Report is a report response, Raw is the body exactly as received.
// The shape of Data is not fixed by the api, numbers in it are json.Number.
type Report struct {
	Raw  json.RawMessage
	Data any
}

func DecodeReport(raw []byte) (Report, error) {
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()

	var data any
	err := decoder.Decode(&data)
	if err != nil {
		return Report{}, fmt.Errorf("decode report json: %w", err)
	}
	return Report{Raw: raw, Data: data}, nil
}

// FetchReport requests the job statistics for the query's date range.
func (c *Client) FetchReport(ctx context.Context, auth AuthorizedContext, query ReportQuery) (Report, error) {
	ctx, span := tracer.Start(ctx, "client:FetchReport")
	defer span.End()

	span.SetAttributes(
		attribute.String("employer_id", query.EmployerId),
		attribute.String("start_date", query.StartDate),
		attribute.String("end_date", query.EndDate),
	)

	req := c.http.R().
		SetContext(ctx).
		SetPathParam("employerId", query.EmployerId).
		SetQueryParamsFromValues(query.values()).
		SetHeader("accept", "application/json")
	if auth.CookieHeader != "" {
		req.SetHeader("cookie", auth.CookieHeader)
	}
	if auth.CsrfToken != "" {
		req.SetHeader("x-csrf-token", auth.CsrfToken)
	}

	res, err := req.Get(reportPath)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch report")
		return Report{}, fmt.Errorf("fetch report: %w", err)
	}
	if !res.IsSuccess() {
		apiErr := &ApiError{
			StatusCode: res.StatusCode(),
			Body:       truncate(string(res.Body()), maxErrorBody),
		}
		span.RecordError(apiErr)
		span.SetStatus(codes.Error, "report request rejected")
		return Report{}, apiErr
	}

	report, err := DecodeReport(res.Body())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to decode report")
		return Report{}, err
	}
	return report, nil
}
