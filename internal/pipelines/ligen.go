package pipelines

import (
	"context"

	"github.com/me/ligflow/internal/graph"
	"github.com/me/ligflow/internal/ligen"
)

// SubmittedExpansion pairs an expansion config with its task so downstream
// stages can depend on it and read its declared output path.
type SubmittedExpansion struct {
	Config ligen.ExpansionConfig
	Task   *graph.Task
}

// SubmitExpansion records the ligand-library expansion stage.
func SubmitExpansion(job *graph.Job, tctx *ligen.TaskContext, config ligen.ExpansionConfig, deps []*graph.Task) (SubmittedExpansion, error) {
	task, err := job.Submit(graph.SubmitSpec{
		Name: ligen.ExpansionTaskName(config),
		Deps: deps,
		Run: func(ctx context.Context) error {
			return ligen.RunExpansion(ctx, tctx, config)
		},
	})
	if err != nil {
		return SubmittedExpansion{}, err
	}
	return SubmittedExpansion{Config: config, Task: task}, nil
}

// SubmittedScreening pairs a screening config with its task. Its config's
// OutputPath is the per-ligand score table downstream selection reads.
type SubmittedScreening struct {
	Config ligen.ScreeningConfig
	Task   *graph.Task
}

// SubmitScreening records the virtual-screening stage. It depends on the
// expansion that produced its input library.
func SubmitScreening(job *graph.Job, tctx *ligen.TaskContext, config ligen.ScreeningConfig, expansion SubmittedExpansion) (SubmittedScreening, error) {
	config.InputSMI = expansion.Config.OutputSMI

	// Reject invalid stage parameters at build time, before the task graph
	// is handed anywhere near the engine.
	probe := tctx.NewContainer()
	if _, err := ligen.ScreeningDescription(config, probe); err != nil {
		return SubmittedScreening{}, err
	}

	task, err := job.Submit(graph.SubmitSpec{
		Name:  ligen.ScreeningTaskName(config),
		Deps:  []*graph.Task{expansion.Task},
		Cores: config.Cores,
		Run: func(ctx context.Context) error {
			return ligen.RunScreening(ctx, tctx, config)
		},
	})
	if err != nil {
		return SubmittedScreening{}, err
	}
	return SubmittedScreening{Config: config, Task: task}, nil
}

// SubmittedDockingPipeline pairs a docking config with its task. Its config's
// OutputPath is the docked-pose table.
type SubmittedDockingPipeline struct {
	Config ligen.DockingConfig
	Task   *graph.Task
}

// SubmitDocking records the docking stage over the selected ligand library.
func SubmitDocking(job *graph.Job, tctx *ligen.TaskContext, config ligen.DockingConfig, selection SubmittedSelection) (SubmittedDockingPipeline, error) {
	config.InputSMI = selection.Config.OutputSMI

	probe := tctx.NewContainer()
	if _, err := ligen.DockingDescription(config, probe); err != nil {
		return SubmittedDockingPipeline{}, err
	}

	task, err := job.Submit(graph.SubmitSpec{
		Name:  ligen.DockingTaskName(config),
		Deps:  []*graph.Task{selection.Task},
		Cores: config.Cores,
		Run: func(ctx context.Context) error {
			return ligen.RunDocking(ctx, tctx, config)
		},
	})
	if err != nil {
		return SubmittedDockingPipeline{}, err
	}
	return SubmittedDockingPipeline{Config: config, Task: task}, nil
}
