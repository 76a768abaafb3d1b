package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/spachava753/cargo-install/internal/models"
)

func registerLoggingFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String("loglevel", "", "set the log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringP("logformat", "f", "", "set the log format (text, json)")
}

// newLogger builds the process logger. Flags override the settings file.
func newLogger(cmd *cobra.Command, settings models.LogSettings, w io.Writer) (*slog.Logger, error) {
	level, format := settings.Level, settings.Format
	if f := cmd.Flag("loglevel"); f != nil && f.Changed {
		level = f.Value.String()
	}
	if f := cmd.Flag("logformat"); f != nil && f.Changed {
		format = f.Value.String()
	}

	var slogLevel slog.Level
	if err := slogLevel.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	var handler slog.Handler
	switch format {
	case "json":
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slogLevel})
	case "text", "":
		handler = log.NewWithOptions(w, log.Options{
			Level:           log.Level(slogLevel),
			ReportTimestamp: true,
		})
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}

	return slog.New(handler), nil
}
