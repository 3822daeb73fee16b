// Package telemetry wires OpenTelemetry tracing for game commands.
package telemetry

import (
	"context"
	"os"
	"runtime"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	mb "github.com/saeidalz13/battleship-hotseat/models/battleship"
)

const (
	tracerPrefix   = "battleship/"
	serviceVersion = "0.1.0"

	EnvExporterEndpoint = "OTEL_EXPORTER_OTLP_ENDPOINT"
)

// Enabled reports whether an OTLP endpoint is configured.
func Enabled() bool {
	return os.Getenv(EnvExporterEndpoint) != ""
}

// Setup installs a global tracer provider exporting over OTLP HTTP. The
// exporter reads the standard OTEL_* environment variables. The returned
// function flushes and stops the provider.
func Setup(ctx context.Context, serviceName string) (shutdown func(context.Context) error, err error) {
	exporter, err := otlptracehttp.New(ctx)
	if err != nil {
		return nil, err
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			attribute.String("service.name", serviceName),
			attribute.String("service.version", serviceVersion),
			attribute.String("host.name", hostname()),
			attribute.String("os.type", runtime.GOOS),
			attribute.String("process.runtime.version", runtime.Version()),
		),
	)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return tp.Shutdown, nil
}

func Tracer(name string) trace.Tracer {
	return otel.GetTracerProvider().Tracer(tracerPrefix + name)
}

func NoopTracer() trace.Tracer {
	return noop.NewTracerProvider().Tracer(tracerPrefix + "noop")
}

// CommandName is the span name used for a dispatched command.
func CommandName(cmd mb.Command) string {
	switch cmd.(type) {
	case mb.StartGame:
		return "game.start"
	case mb.ClickCell:
		return "game.click_cell"
	case mb.ConfirmPlacement:
		return "game.confirm_placement"
	case mb.ResetGame:
		return "game.reset"
	default:
		return "game.unknown"
	}
}

// DispatchTraced runs cmd on game inside a span carrying the outcome.
func DispatchTraced(ctx context.Context, tracer trace.Tracer, game *mb.Game, cmd mb.Command) mb.Outcome {
	_, span := tracer.Start(ctx, CommandName(cmd),
		trace.WithAttributes(attribute.String("game.uuid", game.Uuid())),
	)
	defer span.End()

	if click, ok := cmd.(mb.ClickCell); ok {
		span.SetAttributes(
			attribute.Int("cell.board", click.Board),
			attribute.String("cell.key", click.Coordinates.Key()),
		)
	}

	outcome := game.Dispatch(cmd)
	span.SetAttributes(
		attribute.Bool("outcome.changed", outcome.Changed),
		attribute.String("outcome.phase", outcome.Phase.String()),
		attribute.Int("outcome.current_player", outcome.CurrentPlayer),
	)
	if outcome.Shot != nil {
		span.SetAttributes(attribute.Bool("outcome.hit", outcome.Shot.Hit))
	}
	return outcome
}

func hostname() string {
	name, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return name
}
