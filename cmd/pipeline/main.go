// Command pipeline runs every stage in-process: the cleaner, then insights,
// EDA and the visualizer concurrently, then the report.
//
// Usage:
//
//	pipeline <input_file>
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"nutricli/internal/app"
	"nutricli/internal/config"
	"nutricli/internal/infrastructure"
	"nutricli/internal/operations"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s <input_file>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	application, err := app.New(app.Stage{Name: "pipeline", LogFile: config.PipelineLogFile})
	if err != nil {
		slog.Error("Failed to start pipeline", "error", err)
		os.Exit(1)
	}

	err = application.Run(func(ctx context.Context) error {
		if err := application.Validator.ValidateInputFile(ctx, flag.Arg(0), nil); err != nil {
			return err
		}

		manager, err := operations.NewPipeline(operations.PipelineOptions{
			Input:   flag.Arg(0),
			Config:  application.Config,
			Paths:   application.Paths,
			Logger:  application.Logger,
			Metrics: application.Metrics,
		})
		if err != nil {
			return err
		}

		state, err := manager.Execute(ctx, infrastructure.GetTraceID(ctx))
		for _, id := range state.Order {
			application.Logger.InfoContext(ctx, "Step result",
				slog.String("step", id),
				slog.String("status", string(state.GetStep(id).GetStatus())))
		}
		return err
	})
	if err != nil {
		os.Exit(1)
	}
}
