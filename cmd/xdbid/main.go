// Command xdbid serves the xdbi HTTP adapter over a local database
// directory.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dfki-ric/xdbi/internal/httpapi"
	"github.com/dfki-ric/xdbi/internal/xlog"
)

var (
	dbDir    string
	port     int
	logLevel string
	logFile  string
	verbose  bool
)

var rootCmd = &cobra.Command{
	Use:   "xdbid",
	Short: "xdbi database server",
	Long:  "xdbid serves the xdbi graph document store over HTTP.",
	RunE:  runServer,
}

func init() {
	rootCmd.Flags().StringVar(&dbDir, "db-dir", "", "database root directory (required)")
	rootCmd.Flags().IntVar(&port, "port", 8080, "bind port")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	rootCmd.Flags().StringVar(&logFile, "log-file", "", "write logs to this file instead of stderr")
	rootCmd.Flags().BoolVar(&verbose, "verbose", false, "shorthand for --log-level debug")
	_ = rootCmd.MarkFlagRequired("db-dir")
}

func runServer(cmd *cobra.Command, args []string) error {
	if verbose {
		logLevel = "debug"
	}
	level, err := parseLevel(logLevel)
	if err != nil {
		return err
	}
	xlog.SetLevel(level)

	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		xlog.SetOutput(f)
	}

	server := httpapi.NewServer(dbDir)
	addr := fmt.Sprintf(":%d", port)
	return server.ListenAndServe(addr)
}

func parseLevel(s string) (xlog.Level, error) {
	switch s {
	case "debug":
		return xlog.LevelDebug, nil
	case "info":
		return xlog.LevelInfo, nil
	case "warn":
		return xlog.LevelWarn, nil
	case "error":
		return xlog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", s)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
