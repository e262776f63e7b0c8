// Package tracing installs the global OpenTelemetry tracer provider.
package tracing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/zjrosen/dread/internal/log"
)

// ServiceName identifies dread's spans.
const ServiceName = "dread"

// Config selects an exporter.
type Config struct {
	// Exporter is "none", "stdout" or "otlp". Empty means none.
	Exporter string
	// Endpoint is the OTLP gRPC collector, e.g. localhost:4317.
	Endpoint string
	// File receives stdout spans. Empty writes to Writer.
	File string
	// Writer is used by the stdout exporter when File is empty. Defaults
	// to io.Discard; the terminal belongs to the UI.
	Writer io.Writer
	// Version is recorded on the resource.
	Version string
}

// Shutdown flushes and stops the provider.
type Shutdown func(context.Context) error

// Init installs a tracer provider for cfg. With no exporter the global
// no-op provider stays in place and Shutdown does nothing.
func Init(ctx context.Context, cfg Config) (Shutdown, error) {
	var (
		exporter sdktrace.SpanExporter
		closer   io.Closer
		err      error
	)

	switch cfg.Exporter {
	case "", "none":
		return func(context.Context) error { return nil }, nil

	case "stdout":
		w := cfg.Writer
		if w == nil {
			w = io.Discard
		}
		if cfg.File != "" {
			f, ferr := openSpanFile(cfg.File)
			if ferr != nil {
				return nil, ferr
			}
			w, closer = f, f
		}
		exporter, err = stdouttrace.New(stdouttrace.WithWriter(w))

	case "otlp":
		exporter, err = otlptracegrpc.New(ctx,
			otlptracegrpc.WithEndpoint(cfg.Endpoint),
			otlptracegrpc.WithInsecure(),
		)

	default:
		return nil, fmt.Errorf("unknown trace exporter %q", cfg.Exporter)
	}
	if err != nil {
		if closer != nil {
			_ = closer.Close()
		}
		return nil, fmt.Errorf("creating %s exporter: %w", cfg.Exporter, err)
	}

	res := resource.NewSchemaless(
		attribute.String("service.name", ServiceName),
		attribute.String("service.version", cfg.Version),
	)
	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(provider)
	log.Info(log.CatTracing, "Tracing enabled", "exporter", cfg.Exporter, "endpoint", cfg.Endpoint, "file", cfg.File)

	return func(ctx context.Context) error {
		err := provider.Shutdown(ctx)
		if closer != nil {
			err = errors.Join(err, closer.Close())
		}
		return err
	}, nil
}

func openSpanFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating span directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600) //nolint:gosec // path comes from config
	if err != nil {
		return nil, fmt.Errorf("opening span file: %w", err)
	}
	return f, nil
}
