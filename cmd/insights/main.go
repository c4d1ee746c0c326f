// Command insights computes per-category nutrient means from the cleaned
// dataset and logs the highest and lowest calorie items.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"nutricli/internal/app"
	"nutricli/internal/config"
	"nutricli/internal/insights"
	"nutricli/internal/validation"
)

func main() {
	in := flag.String("in", "", "cleaned dataset (defaults to the configured cleaned CSV)")
	out := flag.String("out", "", "insights CSV (defaults to the configured insights CSV)")
	flag.Parse()

	application, err := app.New(app.Stage{Name: insights.StageName, LogFile: config.InsightsLogFile})
	if err != nil {
		slog.Error("Failed to start insights", "error", err)
		os.Exit(1)
	}

	if *in == "" {
		*in = application.Paths.CleanedCSV
	}
	if *out == "" {
		*out = application.Paths.InsightsCSV
	}

	err = application.Run(func(ctx context.Context) error {
		if err := application.Validator.ValidateInputFile(ctx, *in, validation.CSVExtensions); err != nil {
			return err
		}
		if err := application.Validator.ValidateOutputFile(ctx, *out); err != nil {
			return err
		}

		cfg := application.Config.Insights
		cfg.XLSXPath = application.Paths.Resolve(cfg.XLSXPath)

		generator := insights.NewGenerator(application.Logger, cfg, insights.WithMetrics(application.Metrics))
		_, err := generator.Generate(ctx, *in, *out)
		return err
	})
	if err != nil {
		os.Exit(1)
	}
}
