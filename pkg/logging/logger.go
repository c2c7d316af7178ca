package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/S1riyS/tfs/pkg/logging/slogpretty"
)

type ctxKey struct {
	Key string
}

var (
	loggerKey  = ctxKey{Key: "logger"}
	requestKey = ctxKey{Key: "request_id"}
	tokenKey   = ctxKey{Key: "fs_token"}
)

// GetLoggerFromContext returns the context logger with request_id and
// fs_token attached when present.
func GetLoggerFromContext(ctx context.Context) *slog.Logger {
	l, ok := ctx.Value(loggerKey).(*slog.Logger)
	if !ok || l == nil {
		l = slog.New(slog.NewJSONHandler(os.Stdout, nil))
	}

	if requestID := GetRequestIDFromCtx(ctx); requestID != "" {
		l = l.With(slog.String("request_id", requestID))
	}
	if token := GetFSTokenFromCtx(ctx); token != "" {
		l = l.With(slog.String("fs_token", token))
	}

	return l
}

// Returns logger from context and attaches operation name
func GetLoggerFromContextWithOp(ctx context.Context, op string) *slog.Logger {
	return GetLoggerFromContext(ctx).With(slog.String("op", op))
}

func MakeContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// New builds the process logger. Pretty output is meant for terminals.
func New(w io.Writer, level string, pretty bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	if pretty {
		prettyOpts := slogpretty.PrettyHandlerOptions{SlogOpts: opts}
		return slog.New(prettyOpts.NewPrettyHandler(w))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

// Discard is a logger that drops everything. Tests use it.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
