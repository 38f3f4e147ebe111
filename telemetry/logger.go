// Package telemetry provides structured logging with trace correlation.
package telemetry

import (
	"context"
	"io"
	"os"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/rioslabs/reaper/types"
)

// OTELHook adds trace and span IDs to every log entry carrying a context.
type OTELHook struct{}

func (h OTELHook) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	ctx := e.GetCtx()
	if ctx == nil {
		return
	}

	span := trace.SpanFromContext(ctx)
	if !span.SpanContext().IsValid() {
		return
	}

	e.Str("trace_id", span.SpanContext().TraceID().String())
	e.Str("span_id", span.SpanContext().SpanID().String())

	if level == zerolog.ErrorLevel {
		span.SetStatus(codes.Error, msg)
	}
}

// Logger wraps zerolog with OTEL integration.
type Logger struct {
	zerolog.Logger
}

// NewLogger creates a logger writing JSON lines to stdout.
func NewLogger(service string) *Logger {
	return newLogger(service, os.Stdout)
}

// NewLoggerTo creates a logger writing to w; used by tests.
func NewLoggerTo(service string, w io.Writer) *Logger {
	return newLogger(service, w)
}

func newLogger(service string, w io.Writer) *Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs

	logger := zerolog.New(w).
		With().
		Timestamp().
		Str("service", service).
		Logger().
		Hook(OTELHook{})

	return &Logger{Logger: logger}
}

// WithContext returns a logger bound to ctx for trace propagation.
func (l *Logger) WithContext(ctx context.Context) *zerolog.Logger {
	logger := l.Logger.With().Ctx(ctx).Logger()
	return &logger
}

// Convenience methods for run lifecycle events.

func (l *Logger) LogRunStart(ctx context.Context, region string, dryRun bool) {
	l.WithContext(ctx).Info().
		Str("region", region).
		Bool("dry_run", dryRun).
		Msg("reap run starting")
}

func (l *Logger) LogScanComplete(ctx context.Context, scanned, outOfScope int) {
	l.WithContext(ctx).Info().
		Int("scanned", scanned).
		Int("out_of_scope", outOfScope).
		Msg("inventory scan complete")
}

func (l *Logger) LogDecision(ctx context.Context, d types.ReapDecision) {
	l.WithContext(ctx).Debug().
		Str("instance_id", d.InstanceID).
		Bool("eligible", d.Eligible).
		Str("reason", d.Reason).
		Str("detail", d.Detail).
		Dur("age", d.Age).
		Msg("instance classified")
}

func (l *Logger) LogRunReport(ctx context.Context, report *types.RunReport) {
	l.WithContext(ctx).Info().
		Bool("dry_run", report.DryRun).
		Int("scanned", report.Scanned).
		Int("out_of_scope", report.OutOfScope).
		Int("eligible", report.Eligible).
		Int("terminated", report.Terminated).
		Int("failed", report.Failed()).
		Int("unattempted", report.Unattempted).
		Dur("duration", report.Duration).
		Msg("reap run complete")
}

func (l *Logger) LogFatal(ctx context.Context, err error, stage string) {
	l.WithContext(ctx).Error().
		Err(err).
		Str("stage", stage).
		Msg("run aborted")
}
