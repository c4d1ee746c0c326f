// Package operations runs the nutrition pipeline as a dependency graph of
// steps.
//
// Manager executes every registered Step once its dependencies completed,
// so steps that only share an input run concurrently under one errgroup.
// A failing step cancels the steps still waiting; their state records the
// skip reason.
//
// Example usage:
//
//	manager, err := operations.NewPipeline(operations.PipelineOptions{
//		Input:  "Nutrical_Dataset.csv",
//		Config: cfg,
//		Paths:  paths,
//		Logger: logger,
//	})
//	if err != nil {
//		return err
//	}
//	state, err := manager.Execute(ctx, "")
package operations
