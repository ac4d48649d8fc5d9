package main

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/c360studio/reqtrace/export"
	"github.com/c360studio/reqtrace/ingester"
	"github.com/c360studio/reqtrace/watch"
)

func watchCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Rescan whenever a document changes",
		Long: `Run a full scan, print the coverage statistics and errors, then watch the
document files and repeat whenever their content changes. Stop with Ctrl-C.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, opts)
		},
	}
}

func runWatch(cmd *cobra.Command, opts *globalOptions) error {
	app, err := loadApp(opts)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	format := export.Format(opts.format)

	result, err := app.Scan(ctx)
	if err != nil {
		return err
	}
	if err := renderWatch(out, result, format); err != nil {
		return err
	}

	w, err := watch.New(app.docs, app.cfg.Watch.DebounceDelay, slog.Default())
	if err != nil {
		return err
	}
	defer w.Stop()

	if err := w.Start(ctx); err != nil {
		return err
	}

	for change := range w.Changes() {
		names := make([]string, 0, len(change.Paths))
		for _, p := range change.Paths {
			names = append(names, filepath.Base(p))
		}
		printBanner(out, fmt.Sprintf("%s changed: %v", change.At.Format("15:04:05"), names))

		result, err := app.Scan(ctx)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			return err
		}
		if err := renderWatch(out, result, format); err != nil {
			return err
		}
	}
	return nil
}

// renderWatch prints the stat view and the diagnostics of one scan.
func renderWatch(w io.Writer, result *ingester.Result, format export.Format) error {
	exp := export.NewExporter(result.Index)
	if err := exp.Export(w, export.ViewStat, format, export.Options{}); err != nil {
		return err
	}
	if format != export.FormatText {
		return exp.Export(w, export.ViewErrors, format, export.Options{})
	}
	printSummary(w, result)
	printDiagnostics(w, result)
	return nil
}
