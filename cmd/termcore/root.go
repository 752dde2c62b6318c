package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/termcore/internal/config"
	"github.com/dshills/termcore/internal/logging"
)

var (
	configPath string
	logLevel   string

	cfg      *config.Config
	logger   = logging.NullLogger
	closeLog func() error
)

var rootCmd = &cobra.Command{
	Use:   "termcore",
	Short: "Box-drawing canvas and terminal query toolkit",
	Long: `termcore renders line layouts with automatic box-drawing junctions and
exchanges query/response escape sequences with the controlling terminal.

Configuration is read from the user config directory (termcore/config.toml)
unless --config is given, and TERMCORE_<SECTION>_<KEY> environment variables
override file settings.`,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(drawCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(versionCmd)
}

// setup loads configuration and builds the logger.
func setup(cmd *cobra.Command, args []string) error {
	path := configPath
	opts := config.Options{Required: path != ""}
	if path == "" {
		path = config.DefaultPath()
	}

	var err error
	cfg, err = config.LoadWithOptions(path, opts)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if logLevel != "" {
		if _, ok := logging.ParseLevel(logLevel); !ok {
			return fmt.Errorf("invalid log level %q (must be debug, info, warn, or error)", logLevel)
		}
		cfg.Logging.Level = logLevel
	}

	logger, closeLog, err = cfg.Logger()
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	logger.Debug("config loaded from %s", path)
	return nil
}

func teardown(cmd *cobra.Command, args []string) error {
	if closeLog != nil {
		return closeLog()
	}
	return nil
}
