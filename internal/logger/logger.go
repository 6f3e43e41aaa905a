package logger

import (
	"os"

	"golang.org/x/exp/slog"

	"notevault/internal/config"
)

// New builds the process logger for the given environment: pretty text at
// debug level for local work, JSON elsewhere. Every handler is wrapped in
// the redacting handler so sensitive attrs never reach an output.
func New(env string) *slog.Logger {
	var handler slog.Handler

	switch env {
	case config.EnvLocal:
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
	case config.EnvDev:
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
	default:
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}

	return slog.New(NewRedactHandler(handler))
}

// Audit channels. The underlying level stays info/warn; the channel attr is
// what log shippers filter on.

func Security(log *slog.Logger) *slog.Logger {
	return log.With(slog.String("channel", "security"))
}

func Access(log *slog.Logger) *slog.Logger {
	return log.With(slog.String("channel", "access"))
}

func Replication(log *slog.Logger) *slog.Logger {
	return log.With(slog.String("channel", "replication"))
}
