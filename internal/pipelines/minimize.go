package pipelines

import (
	"context"
	"path/filepath"

	"github.com/me/ligflow/internal/gmx"
	"github.com/me/ligflow/internal/graph"
	"github.com/me/ligflow/internal/workspace"
)

// SubmittedMinimization carries the fan-out terminal task set of a
// minimization stage. Anything consuming the minimized structures must
// depend on all of Tasks, not a subset.
type SubmittedMinimization struct {
	Ligand  workspace.Workload
	Protein workspace.Workload
	Tasks   []*graph.Task
}

// SubmitMinimization records the solvate/minimize preparation: one editconf
// task boxing both structures, then one independent minimization task per
// workload. The ligand and protein workloads get disjoint directories so the
// two tasks can run fully in parallel.
func SubmitMinimization(job *graph.Job, c *gmx.Context, params gmx.MinimizationParams, deps []*graph.Task) (SubmittedMinimization, error) {
	ligandDir, err := workspace.EnsureDir(filepath.Join(c.Workdir, "ligand"), false)
	if err != nil {
		return SubmittedMinimization{}, err
	}
	proteinDir, err := workspace.EnsureDir(filepath.Join(c.Workdir, "protein"), false)
	if err != nil {
		return SubmittedMinimization{}, err
	}

	ligand := workspace.Workload{Kind: workspace.KindLigand, Dir: ligandDir}
	protein := workspace.Workload{Kind: workspace.KindProtein, Dir: proteinDir}

	editconf, err := job.Submit(graph.SubmitSpec{
		Name: "editconf",
		Deps: deps,
		Run: func(ctx context.Context) error {
			return c.Editconf(ctx, ligand, protein)
		},
	})
	if err != nil {
		return SubmittedMinimization{}, err
	}

	var tasks []*graph.Task
	for _, w := range []workspace.Workload{ligand, protein} {
		w := w
		task, err := job.Submit(graph.SubmitSpec{
			Name:   "minimize-" + filepath.Base(w.Dir),
			Deps:   []*graph.Task{editconf},
			Stdout: filepath.Join(w.Dir, "minimize.log"),
			Run: func(ctx context.Context) error {
				return c.MinimizeWorkload(ctx, w, params)
			},
		})
		if err != nil {
			return SubmittedMinimization{}, err
		}
		tasks = append(tasks, task)
	}

	return SubmittedMinimization{Ligand: ligand, Protein: protein, Tasks: tasks}, nil
}
