// Command eda logs an exploratory summary of the cleaned dataset. It writes
// no data files.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"nutricli/internal/app"
	"nutricli/internal/config"
	"nutricli/internal/eda"
	"nutricli/internal/validation"
)

func main() {
	in := flag.String("in", "", "cleaned dataset (defaults to the configured cleaned CSV)")
	flag.Parse()

	application, err := app.New(app.Stage{Name: eda.StageName, LogFile: config.EDALogFile})
	if err != nil {
		slog.Error("Failed to start EDA", "error", err)
		os.Exit(1)
	}
	if *in == "" {
		*in = application.Paths.CleanedCSV
	}

	err = application.Run(func(ctx context.Context) error {
		if err := application.Validator.ValidateInputFile(ctx, *in, validation.CSVExtensions); err != nil {
			return err
		}

		reporter := eda.NewReporter(application.Logger,
			eda.WithMetrics(application.Metrics),
			eda.WithNutrientColumns(application.Config.Insights.NutrientColumns))
		_, err := reporter.Run(ctx, *in)
		return err
	})
	if err != nil {
		os.Exit(1)
	}
}
