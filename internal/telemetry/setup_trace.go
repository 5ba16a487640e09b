// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package telemetry provides utilities for setting up and configuring
// application observability, including logging, tracing, and metrics.
// This file initializes the OpenTelemetry SDK. The pipeline runs as a local
// CLI, so spans and metrics are exported to a local file rather than a cloud
// backend; a run's trace can be inspected after the fact without any
// infrastructure.
package telemetry

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/anayrshukla/manim-video-generation/internal/cloud"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
)

// TelemetryFileName is where span and metric data is written for one run.
const TelemetryFileName = "telemetry.log"

// SetupOpenTelemetry initializes and configures the OpenTelemetry SDK for the
// entire application, setting up both tracing and metrics. It returns a
// `shutdown` function that must be called on application exit to ensure all
// buffered telemetry data is flushed before the process terminates.
//
// Inputs:
//   - ctx: The parent context, used for initialization of the SDK components.
//   - config: The application's configuration struct, which provides the
//     service name attached to all telemetry.
//
// Returns:
//   - shutdown: A function the caller should defer to gracefully shut down
//     all telemetry components (TracerProvider, MeterProvider).
//   - err: An error if any part of the setup fails.
func SetupOpenTelemetry(ctx context.Context, config *cloud.Config) (shutdown func(context.Context) error, err error) {
	// When the operator disabled telemetry, leave the global no-op providers
	// in place: every span and counter call becomes free, and no telemetry
	// file is written.
	if !config.Application.OtelEnabled {
		return func(context.Context) error { return nil }, nil
	}

	var shutdownFuncs []func(context.Context) error

	// The returned shutdown function calls every registered component
	// shutdown, joining any errors into one.
	shutdown = func(ctx context.Context) error {
		var err error
		for _, fn := range shutdownFuncs {
			err = errors.Join(err, fn(ctx))
		}
		shutdownFuncs = nil
		return err
	}

	// The resource identifies this process as the producer of every span and
	// metric it exports.
	res, err := resource.New(ctx,
		resource.WithTelemetrySDK(),
		resource.WithAttributes(
			semconv.ServiceNameKey.String(config.Application.Name),
		),
	)
	if errors.Is(err, resource.ErrPartialResource) || errors.Is(err, resource.ErrSchemaURLConflict) {
		slog.Warn("partial resource detection", "error", err)
	} else if err != nil {
		slog.Error("resource.New failed", "error", err)
		return nil, err
	}

	// Spans and metrics share one local file so a run's telemetry travels as
	// a single artifact. Writing to stdout would interleave with the CLI's
	// own progress output.
	out, err := os.Create(TelemetryFileName)
	if err != nil {
		slog.Error("unable to create telemetry output file", "error", err)
		return nil, err
	}
	shutdownFuncs = append(shutdownFuncs, func(context.Context) error { return out.Close() })

	traceExporter, err := stdouttrace.New(stdouttrace.WithWriter(out))
	if err != nil {
		slog.Error("unable to set up trace exporter", "error", err)
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(res),
	)
	shutdownFuncs = append(shutdownFuncs, tp.Shutdown)
	otel.SetTracerProvider(tp)

	mExporter, err := stdoutmetric.New(stdoutmetric.WithWriter(out))
	if err != nil {
		slog.Error("unable to set up metric exporter", "error", err)
		return nil, err
	}

	mProvider := metric.NewMeterProvider(
		metric.WithReader(metric.NewPeriodicReader(mExporter)),
		metric.WithResource(res),
	)
	shutdownFuncs = append(shutdownFuncs, mProvider.Shutdown)
	otel.SetMeterProvider(mProvider)

	return shutdown, nil
}
