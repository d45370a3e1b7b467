package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/amishk599/hirecall/internal/config"
)

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "hirecall",
	Short: "Résumé scoring and screening calls for recruiters",
	Long:  "hirecall scores applications against job posts, runs AI screening calls with shortlisted candidates and analyses the transcripts.",
	// Default to `serve` so that `hirecall` with no args runs the API.
	RunE:         runServe,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: HIRECALL_CONFIG env var or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig resolves the config path and parses it.
// Priority: explicit path arg > HIRECALL_CONFIG env var > "./config.yaml"
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		if env := os.Getenv("HIRECALL_CONFIG"); env != "" {
			path = env
		} else {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}

func setupLogger(dbg bool, format string) *slog.Logger {
	return newLogger(os.Stdout, dbg, format)
}

func newLogger(w io.Writer, dbg bool, format string) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: logLevel}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// mustLoad loads the config and a logger matching its format, exiting on a
// bad config file.
func mustLoad() (*config.Config, *slog.Logger) {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		setupLogger(debug, "text").Error("failed to load config", "error", err)
		os.Exit(1)
	}
	return cfg, setupLogger(debug, cfg.Logging.Format)
}
