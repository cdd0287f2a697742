package log

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

// NewLogger builds the process-wide zerolog logger. Pretty output uses the
// console writer for local development; otherwise events are emitted as JSON
// lines. Unknown level strings fall back to info.
func NewLogger(level string, pretty bool) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if pretty {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	} else {
		logger = zerolog.New(os.Stderr)
	}

	return logger.Level(lvl).
		With().
		Timestamp().
		Logger().
		Hook(TracingHook{})
}

// TracingHook enriches log events with the trace and span IDs of the active
// OpenTelemetry span, when the event carries a context with one.
type TracingHook struct{}

// Run implements zerolog.Hook.
func (TracingHook) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	ctx := e.GetCtx()
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		e.Str("trace_id", span.SpanContext().TraceID().String()).
			Str("span_id", span.SpanContext().SpanID().String())
	}
}
