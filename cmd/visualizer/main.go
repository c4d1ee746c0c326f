// Command visualizer renders the nutrition charts as PNG files.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"nutricli/internal/app"
	"nutricli/internal/charts"
	"nutricli/internal/config"
	"nutricli/internal/validation"
)

func main() {
	in := flag.String("in", "", "cleaned dataset (defaults to the configured cleaned CSV)")
	out := flag.String("out", "", "output directory (defaults to the configured visualizations directory)")
	flag.Parse()

	application, err := app.New(app.Stage{Name: charts.StageName, LogFile: config.VisualizerLogFile})
	if err != nil {
		slog.Error("Failed to start visualizer", "error", err)
		os.Exit(1)
	}
	if *in == "" {
		*in = application.Paths.CleanedCSV
	}
	if *out == "" {
		*out = application.Paths.VisualizationsDir
	}

	err = application.Run(func(ctx context.Context) error {
		if err := application.Validator.ValidateInputFile(ctx, *in, validation.CSVExtensions); err != nil {
			return err
		}
		if err := application.Validator.ValidateOutputDirectory(ctx, *out); err != nil {
			return err
		}

		visualizer := charts.NewVisualizer(application.Logger, application.Config.Charts,
			charts.WithMetrics(application.Metrics),
			charts.WithNutrientColumns(application.Config.Insights.NutrientColumns))
		written, err := visualizer.Run(ctx, *in, *out)
		application.Logger.InfoContext(ctx, "Charts written", slog.Int("count", len(written)))
		return err
	})
	if err != nil {
		os.Exit(1)
	}
}
