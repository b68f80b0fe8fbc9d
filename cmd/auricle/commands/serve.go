package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/auricle-labs/auricle/internal/server"
	"github.com/auricle-labs/auricle/pkg/voicedetect"
)

var serveFlags struct {
	addr     string
	config   string
	logLevel string
	logJSON  bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the detection HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger(serveFlags.logLevel, serveFlags.logJSON)
		if err != nil {
			return err
		}

		detector, err := buildDetector(serveFlags.config)
		if err != nil {
			return err
		}

		server.Version = version
		return server.New(detector, logger).Run(serveFlags.addr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveFlags.addr, "addr", ":8000", "listen address")
	serveCmd.Flags().StringVar(&serveFlags.config, "config", "", "detection config YAML (optional)")
	serveCmd.Flags().StringVar(&serveFlags.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	serveCmd.Flags().BoolVar(&serveFlags.logJSON, "log-json", false, "log as JSON instead of text")
}

// buildDetector constructs the detector, applying a config file when given.
func buildDetector(path string) (*voicedetect.Detector, error) {
	if path == "" {
		return voicedetect.NewDetector(), nil
	}
	cfg, err := voicedetect.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	return cfg.Detector()
}

func newLogger(level string, asJSON bool) (*slog.Logger, error) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		return nil, fmt.Errorf("unknown log level %q", level)
	}

	opts := &slog.HandlerOptions{Level: lvl}
	if asJSON {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts)), nil
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts)), nil
}
