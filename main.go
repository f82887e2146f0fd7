package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/tphakala/pathotrack/cmd"
	"github.com/tphakala/pathotrack/internal/conf"
	"github.com/tphakala/pathotrack/internal/logging"
)

func main() {
	logging.Init()

	settings, err := conf.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	// Route structured logs to the configured log file; diagnostics for
	// the operator still go to stdout through the upload command.
	if settings.Main.Log.Enabled {
		fileLogger, closeLogger, err := logging.NewFileLogger(settings.Main.Log.Path, "main", slog.LevelInfo)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file %s: %v\n", settings.Main.Log.Path, err)
		} else {
			slog.SetDefault(fileLogger)
			defer func() {
				_ = closeLogger()
			}()
		}
	}

	rootCmd := cmd.RootCommand(settings)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
