// Command eigenview renders Eigen containers captured in debugger snapshots.
package main

import (
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/roach88/eigenview/internal/cli"
)

// EnvLogLevel selects the slog level (debug, info, warn, error).
const EnvLogLevel = "EIGENVIEW_LOG_LEVEL"

func main() {
	// A missing .env is fine; variables may come from the environment.
	_ = godotenv.Load()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel(os.Getenv(EnvLogLevel)),
	})))

	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(cli.GetExitCode(err))
	}
}

func logLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
