package operations

import (
	"context"
	"log/slog"

	"nutricli/internal/charts"
	"nutricli/internal/cleaning"
	"nutricli/internal/config"
	"nutricli/internal/eda"
	"nutricli/internal/infrastructure"
	"nutricli/internal/insights"
	"nutricli/internal/report"
)

// Step IDs of the nutrition pipeline
const (
	StepCleaner    = cleaning.StageName
	StepInsights   = insights.StageName
	StepEDA        = eda.StageName
	StepVisualizer = charts.StageName
	StepReport     = report.StageName
)

// PipelineOptions describes one pipeline run
type PipelineOptions struct {
	// Input is the raw dataset handed to the cleaner
	Input   string
	Config  *config.Config
	Paths   *config.Paths
	Logger  *slog.Logger
	Metrics *infrastructure.StageMetrics
}

// NewPipeline registers the five stages: the cleaner first, then insights,
// EDA and the visualizer reading the cleaned file, then the report once
// the insights exist
func NewPipeline(opts PipelineOptions) (*Manager, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	paths := opts.Paths
	if paths == nil {
		var err error
		if paths, err = config.GetPaths(cfg.Paths); err != nil {
			return nil, err
		}
	}

	insightsCfg := cfg.Insights
	insightsCfg.XLSXPath = paths.Resolve(insightsCfg.XLSXPath)

	cleaner := cleaning.NewCleaner(infrastructure.WithComponent(logger, StepCleaner), cfg.Cleaning,
		cleaning.WithMetrics(opts.Metrics))
	generator := insights.NewGenerator(infrastructure.WithComponent(logger, StepInsights), insightsCfg,
		insights.WithMetrics(opts.Metrics))
	reporter := eda.NewReporter(infrastructure.WithComponent(logger, StepEDA),
		eda.WithMetrics(opts.Metrics))
	visualizer := charts.NewVisualizer(infrastructure.WithComponent(logger, StepVisualizer), cfg.Charts,
		charts.WithMetrics(opts.Metrics))
	writer := report.NewWriter(infrastructure.WithComponent(logger, StepReport),
		report.WithMetrics(opts.Metrics))

	steps := []Step{
		NewFuncStep(StepCleaner, "Data Cleaning", nil, func(ctx context.Context) error {
			_, err := cleaner.Clean(ctx, opts.Input, paths.CleanedCSV)
			return err
		}),
		NewFuncStep(StepInsights, "Nutrition-Based Insights", []string{StepCleaner}, func(ctx context.Context) error {
			_, err := generator.Generate(ctx, paths.CleanedCSV, paths.InsightsCSV)
			return err
		}),
		NewFuncStep(StepEDA, "Exploratory Data Analysis", []string{StepCleaner}, func(ctx context.Context) error {
			_, err := reporter.Run(ctx, paths.CleanedCSV)
			return err
		}),
		NewFuncStep(StepVisualizer, "Data Visualization", []string{StepCleaner}, func(ctx context.Context) error {
			_, err := visualizer.Run(ctx, paths.CleanedCSV, paths.VisualizationsDir)
			return err
		}),
		NewFuncStep(StepReport, "Documentation and Reporting", []string{StepInsights}, func(ctx context.Context) error {
			_, err := writer.Write(ctx, paths.InsightsCSV, paths.ReportTXT)
			return err
		}),
	}

	manager := NewManager(NewRegistry(), logger)
	for _, step := range steps {
		if err := manager.RegisterStep(step); err != nil {
			return nil, err
		}
	}
	return manager, nil
}
