package main

import (
	"github.com/spf13/cobra"

	"github.com/c360studio/reqtrace/export"
)

func statCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stat [document...]",
		Short: "Print coverage statistics per document",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd, opts, export.ViewStat, export.Options{Documents: args})
		},
	}
}

func tracCmd(opts *globalOptions) *cobra.Command {
	var reverse bool

	cmd := &cobra.Command{
		Use:   "trac [document...]",
		Short: "Print the traceability matrix",
		Long: `Print, for each requirement, the downstream requirements covering it.
With --reverse, print for each requirement the upstream requirements it covers.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd, opts, export.ViewTrac, export.Options{Documents: args, Reverse: reverse})
		},
	}
	cmd.Flags().BoolVarP(&reverse, "reverse", "r", false, "List covered instead of covering requirements")
	return cmd
}

func reviewCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "review [document...]",
		Short: "Print each requirement with its text",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd, opts, export.ViewReview, export.Options{Documents: args})
		},
	}
}

func errorsCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "errors",
		Short: "Print the traceability errors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd, opts, export.ViewErrors, export.Options{})
		},
	}
}

// runReport scans and writes one view to stdout. In text format the other
// views are followed by a summary and the diagnostics on stderr.
func runReport(cmd *cobra.Command, opts *globalOptions, view export.View, o export.Options) error {
	app, err := loadApp(opts)
	if err != nil {
		return err
	}
	defer app.Close()

	result, err := app.Scan(cmd.Context())
	if err != nil {
		return err
	}

	format := export.Format(opts.format)
	if err := export.NewExporter(result.Index).Export(cmd.OutOrStdout(), view, format, o); err != nil {
		return err
	}

	if format == export.FormatText && view != export.ViewErrors {
		printSummary(cmd.ErrOrStderr(), result)
		printDiagnostics(cmd.ErrOrStderr(), result)
	}

	if opts.strict && !result.Index.Healthy() {
		return errUnhealthy
	}
	return nil
}
