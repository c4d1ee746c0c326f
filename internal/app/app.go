// Package app wires one pipeline stage process together: configuration,
// paths, the stage log file, telemetry and graceful shutdown. Every binary
// under cmd/ builds an Application and runs its stage inside Run.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nutricli/internal/config"
	"nutricli/internal/infrastructure"
	"nutricli/internal/validation"
)

// shutdownTimeout bounds the telemetry flush on exit
const shutdownTimeout = 5 * time.Second

// Stage describes the process being started
type Stage struct {
	// Name labels metrics and traces, e.g. "cleaner"
	Name string
	// LogFile is the fixed log file name under the logs directory
	LogFile string
	// ConsoleOnly skips the log file
	ConsoleOnly bool
}

// Application is the container of one stage run
type Application struct {
	Stage   Stage
	Config  *config.Config
	Paths   *config.Paths
	Logger  *slog.Logger
	OTel    *infrastructure.OTelProviders
	Metrics *infrastructure.StageMetrics
	// Validator runs the preflight checks on stage paths
	Validator *validation.FileValidator
}

// New loads the configuration and initializes logging and telemetry
func New(stage Stage) (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return NewWithConfig(stage, cfg)
}

// NewWithConfig is New with an already loaded configuration
func NewWithConfig(stage Stage, cfg *config.Config) (*Application, error) {
	paths, err := config.GetPaths(cfg.Paths)
	if err != nil {
		return nil, fmt.Errorf("failed to get paths: %w", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}

	logCfg := infrastructure.StageLoggingConfig(cfg.Logging, paths, stage.LogFile)
	if stage.ConsoleOnly {
		logCfg.Output = "console"
	}
	logger, err := infrastructure.InitializeLogger(logCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	paths.LogPathResolution(logger)

	providers, err := infrastructure.InitializeOTel(cfg.Telemetry, stage.Name, paths, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	metrics, err := infrastructure.NewStageMetrics(providers.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create stage metrics: %w", err)
	}

	return &Application{
		Stage:     stage,
		Config:    cfg,
		Paths:     paths,
		Logger:    logger,
		OTel:      providers,
		Metrics:   metrics,
		Validator: validation.NewFileValidator(logger),
	}, nil
}

// Run executes fn with a context that carries a fresh run id and is
// cancelled on SIGINT or SIGTERM, then flushes telemetry and closes the log
// file. The error of fn is returned unchanged.
func (a *Application) Run(fn func(ctx context.Context) error) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = infrastructure.EnsureTraceID(ctx)

	a.Logger.InfoContext(ctx, "Stage starting",
		slog.String("stage", a.Stage.Name),
		slog.String("version", config.AppVersion),
		slog.String("work_dir", a.Paths.WorkDir))

	start := time.Now()
	err := fn(ctx)

	a.Logger.InfoContext(ctx, "Stage finished",
		slog.String("stage", a.Stage.Name),
		slog.Bool("success", err == nil),
		slog.Duration("duration", time.Since(start)))

	a.Stop(ctx)
	return err
}

// Stop flushes telemetry and releases the log file
func (a *Application) Stop(ctx context.Context) {
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if a.OTel != nil {
		if err := a.OTel.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		} else if file := a.OTel.MetricsFile(); file != "" {
			a.Logger.InfoContext(ctx, "Metrics written", slog.String("path", file))
		}
	}
	if err := infrastructure.CloseLogFile(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to close log file: %v\n", err)
	}
}
