// Command cleaner standardizes a raw nutrition dataset.
//
// Usage:
//
//	cleaner [-lenient] <input_file> <output_file>
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"nutricli/internal/app"
	"nutricli/internal/cleaning"
	"nutricli/internal/config"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

// run parses args and cleans the dataset, returning the process exit code:
// 2 for bad usage, 1 when a strict run fails, 0 otherwise.
func run(args []string, stdout io.Writer) int {
	fs := flag.NewFlagSet("cleaner", flag.ContinueOnError)
	fs.SetOutput(stdout)
	lenient := fs.Bool("lenient", false, "log to the console only and exit 0 when cleaning fails")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "Usage: cleaner [-lenient] <input_file> <output_file>")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 2 {
		fs.Usage()
		return 2
	}

	application, err := app.New(app.Stage{
		Name:        cleaning.StageName,
		LogFile:     config.CleanerLogFile,
		ConsoleOnly: *lenient,
	})
	if err != nil {
		slog.Error("Failed to start cleaner", "error", err)
		return 1
	}

	err = application.Run(func(ctx context.Context) error {
		return clean(ctx, application, fs.Arg(0), fs.Arg(1))
	})
	if err != nil && !*lenient {
		return 1
	}
	return 0
}

func clean(ctx context.Context, application *app.Application, input, output string) error {
	if err := application.Validator.ValidateInputFile(ctx, input, nil); err != nil {
		return err
	}
	if err := application.Validator.ValidateOutputFile(ctx, output); err != nil {
		return err
	}

	cleaner := cleaning.NewCleaner(application.Logger, application.Config.Cleaning,
		cleaning.WithMetrics(application.Metrics))

	summary, err := cleaner.Clean(ctx, input, output)
	if err != nil {
		return err
	}
	application.Logger.InfoContext(ctx, "Cleaning summary",
		slog.Int("rows_in", summary.RowsIn),
		slog.Int("rows_out", summary.RowsOut),
		slog.Int("duplicates_removed", summary.DuplicatesRemoved),
		slog.Int("values_imputed", summary.ValuesImputed()),
		slog.Int("outliers_clipped", summary.OutliersClipped()))
	return nil
}
