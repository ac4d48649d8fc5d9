package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/c360studio/reqtrace/config"
	"github.com/c360studio/reqtrace/export"
	"github.com/c360studio/reqtrace/ingester"
	"github.com/c360studio/reqtrace/metrics"
	"github.com/c360studio/reqtrace/trace"
)

// App wires the configured documents to the scan pipeline and its outputs.
type App struct {
	cfg    *config.Config
	docs   []*trace.Document
	logger *slog.Logger

	ingester *ingester.Ingester

	// Optional outputs, nil when not configured
	recorder  *metrics.Recorder
	publisher *export.Publisher
}

// NewApp compiles cfg and prepares the configured outputs.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	docs, err := cfg.Compile()
	if err != nil {
		return nil, err
	}

	app := &App{
		cfg:      cfg,
		docs:     docs,
		logger:   logger,
		ingester: ingester.New(docs, nil, logger),
	}

	if cfg.Output.MetricsFile != "" {
		app.recorder = metrics.NewRecorder()
	}

	if cfg.Output.NATSURL != "" {
		subject := cfg.Output.NATSSubject
		if subject == "" {
			subject = config.DefaultNATSSubject
		}
		publisher, err := export.Connect(cfg.Output.NATSURL, subject, logger)
		if err != nil {
			return nil, err
		}
		app.publisher = publisher
	}

	return app, nil
}

// loadApp loads the layered configuration and builds the app.
func loadApp(opts *globalOptions) (*App, error) {
	cfg, err := config.NewLoader(slog.Default()).Load(opts.configPath)
	if err != nil {
		if errors.Is(err, config.ErrNoDocuments) {
			return nil, fmt.Errorf("%w (run \"%s init\" to create %s)", err, appName, config.ProjectConfigFile)
		}
		return nil, err
	}
	return NewApp(cfg, slog.Default())
}

// Scan runs a full scan and feeds the result to the configured outputs.
// Output failures are logged; only a failed scan is an error.
func (a *App) Scan(ctx context.Context) (*ingester.Result, error) {
	result, err := a.ingester.Run(ctx)
	if err != nil {
		return nil, err
	}

	if a.recorder != nil {
		a.recorder.Observe(result)
		if err := a.recorder.WriteTextfile(a.cfg.Output.MetricsFile); err != nil {
			a.logger.Warn("Failed to write metrics", "path", a.cfg.Output.MetricsFile, "error", err)
		}
	}

	if a.publisher != nil {
		report, err := export.NewReport(result.RunID, result.Index)
		if err == nil {
			err = a.publisher.Publish(report)
		}
		if err != nil {
			a.logger.Warn("Failed to publish report", "error", err)
		}
	}

	return result, nil
}

// Close releases the NATS connection, if any.
func (a *App) Close() error {
	if a.publisher != nil {
		return a.publisher.Close()
	}
	return nil
}
