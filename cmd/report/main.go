// Command report writes the plain-text nutrition report from the insights
// table.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"nutricli/internal/app"
	"nutricli/internal/config"
	"nutricli/internal/report"
	"nutricli/internal/validation"
)

func main() {
	in := flag.String("in", "", "insights CSV (defaults to the configured insights CSV)")
	out := flag.String("out", "", "report file (defaults to the configured report path)")
	flag.Parse()

	application, err := app.New(app.Stage{Name: report.StageName, LogFile: config.ReportLogFile})
	if err != nil {
		slog.Error("Failed to start report", "error", err)
		os.Exit(1)
	}
	if *in == "" {
		*in = application.Paths.InsightsCSV
	}
	if *out == "" {
		*out = application.Paths.ReportTXT
	}

	err = application.Run(func(ctx context.Context) error {
		if err := application.Validator.ValidateInputFile(ctx, *in, validation.CSVExtensions); err != nil {
			return err
		}
		if err := application.Validator.ValidateOutputFile(ctx, *out); err != nil {
			return err
		}

		writer := report.NewWriter(application.Logger, report.WithMetrics(application.Metrics))
		_, err := writer.Write(ctx, *in, *out)
		return err
	})
	if err != nil {
		os.Exit(1)
	}
}
