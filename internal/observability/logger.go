// Package observability provides structured logging and Prometheus metrics.
package observability

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/getsentry/sentry-go"
)

type contextKey string

const (
	requestIDKey contextKey = "requestID"
	componentKey contextKey = "component"
)

// Logger defines the interface for structured logging.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)

	// The Context variants add request_id and component from ctx.
	DebugContext(ctx context.Context, msg string, args ...any)
	InfoContext(ctx context.Context, msg string, args ...any)
	WarnContext(ctx context.Context, msg string, args ...any)
	ErrorContext(ctx context.Context, msg string, args ...any)

	// With returns a new Logger with the given attributes.
	With(args ...any) Logger
	// WithComponent returns a new Logger with the component field set.
	WithComponent(name string) Logger

	// Slog returns the underlying *slog.Logger.
	Slog() *slog.Logger
}

// Config holds configuration for the logger.
type Config struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string
	// Format is the output format (json, text).
	Format string
	// Output is the destination for logs (defaults to os.Stdout).
	Output io.Writer
	// AddSource adds source file and line to log entries.
	AddSource bool
	// Breadcrumbs records log entries at info and above as Sentry
	// breadcrumbs on the hub carried by the request context.
	Breadcrumbs bool
}

// DefaultConfig returns the default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:  "info",
		Format: "json",
		Output: os.Stdout,
	}
}

type slogLogger struct {
	slogger *slog.Logger
}

// NewLogger creates a new Logger with the given configuration.
func NewLogger(cfg Config) Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}
	opts := &slog.HandlerOptions{
		Level:     parseLevel(cfg.Level),
		AddSource: cfg.AddSource,
	}

	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "text":
		handler = slog.NewTextHandler(cfg.Output, opts)
	default:
		handler = slog.NewJSONHandler(cfg.Output, opts)
	}
	handler = contextHandler{Handler: handler}
	if cfg.Breadcrumbs {
		handler = breadcrumbHandler{Handler: handler}
	}
	return &slogLogger{slogger: slog.New(handler)}
}

// Discard returns a Logger that drops everything.
func Discard() Logger {
	return NewLogger(Config{Level: "error", Output: io.Discard})
}

// ValidLevel reports whether s names a supported level.
func ValidLevel(s string) error {
	switch strings.ToLower(s) {
	case "debug", "info", "warn", "warning", "error":
		return nil
	}
	return fmt.Errorf("unknown log level %q", s)
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (l *slogLogger) Debug(msg string, args ...any) { l.slogger.Debug(msg, args...) }
func (l *slogLogger) Info(msg string, args ...any)  { l.slogger.Info(msg, args...) }
func (l *slogLogger) Warn(msg string, args ...any)  { l.slogger.Warn(msg, args...) }
func (l *slogLogger) Error(msg string, args ...any) { l.slogger.Error(msg, args...) }

func (l *slogLogger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.slogger.DebugContext(ctx, msg, args...)
}

func (l *slogLogger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.slogger.InfoContext(ctx, msg, args...)
}

func (l *slogLogger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.slogger.WarnContext(ctx, msg, args...)
}

func (l *slogLogger) ErrorContext(ctx context.Context, msg string, args ...any) {
	l.slogger.ErrorContext(ctx, msg, args...)
}

func (l *slogLogger) With(args ...any) Logger {
	return &slogLogger{slogger: l.slogger.With(args...)}
}

func (l *slogLogger) WithComponent(name string) Logger {
	return l.With("component", name)
}

func (l *slogLogger) Slog() *slog.Logger { return l.slogger }

// contextHandler adds request_id and component from the record's context.
type contextHandler struct {
	slog.Handler
}

func (h contextHandler) Handle(ctx context.Context, r slog.Record) error {
	if id := RequestIDFromContext(ctx); id != "" {
		r.AddAttrs(slog.String("request_id", id))
	}
	if c := ComponentFromContext(ctx); c != "" {
		r.AddAttrs(slog.String("component", c))
	}
	return h.Handler.Handle(ctx, r)
}

func (h contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return contextHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h contextHandler) WithGroup(name string) slog.Handler {
	return contextHandler{Handler: h.Handler.WithGroup(name)}
}

// breadcrumbHandler mirrors records onto the request's Sentry hub so error
// events carry the log trail that led to them.
type breadcrumbHandler struct {
	slog.Handler
}

func (h breadcrumbHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelInfo {
		if hub := sentry.GetHubFromContext(ctx); hub != nil {
			data := make(map[string]any, r.NumAttrs())
			r.Attrs(func(a slog.Attr) bool {
				data[a.Key] = a.Value.Any()
				return true
			})
			hub.AddBreadcrumb(&sentry.Breadcrumb{
				Type:      "default",
				Category:  "log",
				Message:   r.Message,
				Level:     sentryLevel(r.Level),
				Data:      data,
				Timestamp: r.Time,
			}, nil)
		}
	}
	return h.Handler.Handle(ctx, r)
}

func (h breadcrumbHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return breadcrumbHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h breadcrumbHandler) WithGroup(name string) slog.Handler {
	return breadcrumbHandler{Handler: h.Handler.WithGroup(name)}
}

func sentryLevel(l slog.Level) sentry.Level {
	switch {
	case l >= slog.LevelError:
		return sentry.LevelError
	case l >= slog.LevelWarn:
		return sentry.LevelWarning
	case l >= slog.LevelInfo:
		return sentry.LevelInfo
	default:
		return sentry.LevelDebug
	}
}

// WithRequestID stores the request ID in the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	if requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestIDFromContext retrieves the request ID from context.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(requestIDKey).(string)
	return v
}

// WithComponent stores the component name in the context.
func WithComponent(ctx context.Context, component string) context.Context {
	if component == "" {
		return ctx
	}
	return context.WithValue(ctx, componentKey, component)
}

// ComponentFromContext retrieves the component name from context.
func ComponentFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(componentKey).(string)
	return v
}
