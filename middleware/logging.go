package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/toolrpc/protocol"
)

// Logger is the interface for structured logging. It is consumed by the
// registry for registration traces and by the logging middleware; no
// failure mode is visible to callers.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
}

// Field represents a key-value pair for structured logging.
type Field struct {
	Key   string
	Value any
}

// F creates a new Field with the given key and value.
func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Logging returns middleware that logs request details.
// Successful requests are logged at info level, errors at error level.
func Logging(logger Logger) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
			start := time.Now()

			resp, err := next(ctx, req)

			fields := []Field{
				F("method", req.Method),
				F("duration", time.Since(start)),
			}

			if requestID := RequestIDFromContext(ctx); requestID != "" {
				fields = append(fields, F("request_id", requestID))
			}

			switch {
			case err != nil:
				fields = append(fields, F("error", err.Error()))
				logger.Error("request failed", fields...)
			case resp != nil && resp.Error != nil:
				fields = append(fields, F("code", resp.Error.Code))
				logger.Warn("request rejected", fields...)
			default:
				logger.Info("request completed", fields...)
			}

			return resp, err
		}
	}
}

// NopLogger is a logger that discards all log entries.
type NopLogger struct{}

func (NopLogger) Debug(msg string, fields ...Field) {}
func (NopLogger) Info(msg string, fields ...Field)  {}
func (NopLogger) Warn(msg string, fields ...Field)  {}
func (NopLogger) Error(msg string, fields ...Field) {}

// SlogLogger adapts a *slog.Logger to the Logger interface.
type SlogLogger struct {
	L *slog.Logger
}

// NewSlogLogger wraps the given slog logger. A nil logger uses
// slog.Default.
func NewSlogLogger(l *slog.Logger) SlogLogger {
	if l == nil {
		l = slog.Default()
	}
	return SlogLogger{L: l}
}

func (s SlogLogger) Debug(msg string, fields ...Field) { s.L.Debug(msg, slogArgs(fields)...) }
func (s SlogLogger) Info(msg string, fields ...Field)  { s.L.Info(msg, slogArgs(fields)...) }
func (s SlogLogger) Warn(msg string, fields ...Field)  { s.L.Warn(msg, slogArgs(fields)...) }
func (s SlogLogger) Error(msg string, fields ...Field) { s.L.Error(msg, slogArgs(fields)...) }

func slogArgs(fields []Field) []any {
	args := make([]any, 0, len(fields))
	for _, f := range fields {
		args = append(args, slog.Any(f.Key, f.Value))
	}
	return args
}
