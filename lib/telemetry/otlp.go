package telemetry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

const exporterDialTimeout = 3 * time.Second

// OtlpEndpoint is where one signal is exported to, grpc wins when both
// endpoints are given.
type OtlpEndpoint struct {
	Grpc    string            `json:"grpc_endpoint"`
	Http    string            `json:"http_endpoint"`
	Headers map[string]string `json:"headers"`
}

type protocol string

const (
	protocolGrpc protocol = "grpc"
	protocolHttp protocol = "http"
)

var errNoEndpoint = errors.New("neither grpc_endpoint nor http_endpoint is set")

func (e OtlpEndpoint) protocol() (protocol, string, error) {
	switch {
	case e.Grpc != "":
		return protocolGrpc, e.Grpc, nil
	case e.Http != "":
		return protocolHttp, e.Http, nil
	}
	return "", "", errNoEndpoint
}

// Config is the contents of telemetry.json5.
type Config struct {
	Otlp struct {
		Traces  OtlpEndpoint `json:"traces"`
		Metrics OtlpEndpoint `json:"metrics"`
	} `json:"otlp"`
	// fraction of traces kept, 0 keeps everything
	SampleRatio float64 `json:"sample_ratio"`
	// seconds between metric exports, 0 means 5
	MetricIntervalSeconds int `json:"metric_interval_seconds"`
}

func newResource(serviceName string) (*resource.Resource, error) {
	return resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
		),
	)
}

func sampler(ratio float64) trace.Sampler {
	if ratio <= 0 || ratio >= 1 {
		return trace.ParentBased(trace.AlwaysSample())
	}
	return trace.ParentBased(trace.TraceIDRatioBased(ratio))
}

func newSpanExporter(ctx context.Context, e OtlpEndpoint) (trace.SpanExporter, error) {
	proto, endpoint, err := e.protocol()
	if err != nil {
		return nil, fmt.Errorf("traces: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, exporterDialTimeout)
	defer cancel()

	slog.Debug("exporting traces", "protocol", proto, "endpoint", endpoint)
	if proto == protocolGrpc {
		return otlptracegrpc.New(
			ctx,
			otlptracegrpc.WithEndpointURL(endpoint),
			otlptracegrpc.WithHeaders(e.Headers),
		)
	}
	return otlptracehttp.New(
		ctx,
		otlptracehttp.WithEndpointURL(endpoint),
		otlptracehttp.WithHeaders(e.Headers),
	)
}

func newMetricExporter(ctx context.Context, e OtlpEndpoint) (metric.Exporter, error) {
	proto, endpoint, err := e.protocol()
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, exporterDialTimeout)
	defer cancel()

	slog.Debug("exporting metrics", "protocol", proto, "endpoint", endpoint)
	if proto == protocolGrpc {
		return otlpmetricgrpc.New(
			ctx,
			otlpmetricgrpc.WithEndpointURL(endpoint),
			otlpmetricgrpc.WithHeaders(e.Headers),
		)
	}
	return otlpmetrichttp.New(
		ctx,
		otlpmetrichttp.WithEndpointURL(endpoint),
		otlpmetrichttp.WithHeaders(e.Headers),
	)
}

func newTracerProvider(ctx context.Context, r *resource.Resource, c Config) (*trace.TracerProvider, error) {
	exporter, err := newSpanExporter(ctx, c.Otlp.Traces)
	if err != nil {
		return nil, err
	}
	return trace.NewTracerProvider(
		trace.WithBatcher(exporter),
		trace.WithResource(r),
		trace.WithSampler(sampler(c.SampleRatio)),
	), nil
}

func newMeterProvider(ctx context.Context, r *resource.Resource, c Config) (*metric.MeterProvider, error) {
	exporter, err := newMetricExporter(ctx, c.Otlp.Metrics)
	if err != nil {
		return nil, err
	}

	interval := 5 * time.Second
	if c.MetricIntervalSeconds > 0 {
		interval = time.Duration(c.MetricIntervalSeconds) * time.Second
	}
	return metric.NewMeterProvider(
		metric.WithReader(metric.NewPeriodicReader(exporter, metric.WithInterval(interval))),
		metric.WithResource(r),
	), nil
}
