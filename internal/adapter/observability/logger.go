package observability

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/fairyhunter13/smart-resume-matcher/internal/config"
)

// SetupLogger builds the process logger: JSON on stdout tagged with the
// service name and environment.
func SetupLogger(cfg config.Config) *slog.Logger {
	return NewLogger(os.Stdout, cfg)
}

// NewLogger writes JSON records to w at LogLevel(cfg).
func NewLogger(w io.Writer, cfg config.Config) *slog.Logger {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: LogLevel(cfg)})
	return slog.New(h).With(
		slog.String("service", cfg.OTELServiceName),
		slog.String("env", cfg.AppEnv),
	)
}

// LogLevel parses LOG_LEVEL (debug, info, warn, error). When it is unset or
// unknown, dev logs at debug and everything else at info.
func LogLevel(cfg config.Config) slog.Level {
	var lvl slog.Level
	if raw := strings.TrimSpace(cfg.LogLevel); raw != "" && lvl.UnmarshalText([]byte(raw)) == nil {
		return lvl
	}
	if cfg.IsDev() {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}
