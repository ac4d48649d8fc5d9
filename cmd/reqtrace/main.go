// Package main provides the reqtrace binary entry point.
// Reqtrace indexes requirement identifiers across a chain of documents and
// reports coverage, traceability matrices and consistency errors.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/c360studio/reqtrace/export"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "reqtrace"
)

// errUnhealthy is returned under --strict when the run reported diagnostics.
var errUnhealthy = errors.New("traceability errors found")

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		if !errors.Is(err, errUnhealthy) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	configPath string
	logLevel   string
	format     string
	strict     bool
}

func rootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Requirements traceability indexer",
		Long: `Reqtrace scans a chain of documents (specification, design, tests...)
for requirement identifiers and the references between them.

It reports:
- coverage statistics per document
- traceability matrices, forward and reverse
- the accumulated text of each requirement, for review
- consistency errors: duplicates, undefined references, missing documents

Documents and their patterns are configured in reqtrace.yaml.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(opts.logLevel)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Config file path (YAML, default: reqtrace.yaml in this or a parent directory)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVarP(&opts.format, "format", "f", string(export.FormatText), "Output format (text, json, csv, turtle, ntriples)")
	cmd.PersistentFlags().BoolVar(&opts.strict, "strict", false, "Exit with status 1 when traceability errors were found")

	cmd.AddCommand(
		statCmd(opts),
		tracCmd(opts),
		reviewCmd(opts),
		errorsCmd(opts),
		regexCmd(),
		watchCmd(opts),
		initCmd(),
		versionCmd(),
	)

	return cmd
}

// setupLogging installs a text handler on stderr at the given level.
func setupLogging(logLevel string) {
	level := slog.LevelInfo
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	}
}
