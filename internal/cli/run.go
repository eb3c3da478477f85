package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/me/ligflow/internal/config"
	"github.com/me/ligflow/internal/gmx"
	"github.com/me/ligflow/internal/graph"
	"github.com/me/ligflow/internal/ligen"
	"github.com/me/ligflow/internal/pipelines"
	"github.com/me/ligflow/internal/store"
	"github.com/me/ligflow/internal/workspace"
)

func newRunCmd() *cobra.Command {
	var configPath string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Build and execute an experiment workflow",
		RunE: func(cmd *cobra.Command, args []string) error {
			exp, err := config.Load(configPath)
			if err != nil {
				return err
			}
			return runExperiment(cmd.Context(), exp, dryRun, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "experiment.yaml", "Experiment configuration file")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Build the task graph and print it without executing")

	return cmd
}

func runExperiment(ctx context.Context, exp *config.Experiment, dryRun bool, out io.Writer) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	workdir, err := workspace.EnsureDir(exp.WorkDir, exp.ClearWorkDir)
	if err != nil {
		return err
	}

	// Lay out edge and ligand directories before any task runs.
	if err := prepareWorkspace(exp, workdir); err != nil {
		return err
	}

	job := graph.NewJob(exp.Name)
	wf, err := buildWorkflow(job, exp, workdir)
	if err != nil {
		return err
	}

	if dryRun {
		for _, task := range job.Tasks() {
			deps := make([]string, 0, len(task.Deps()))
			for _, d := range task.Deps() {
				deps = append(deps, d.Name())
			}
			fmt.Fprintf(out, "%s (cores=%d) deps=%v\n", task.Name(), task.Cores(), deps)
		}
		return nil
	}

	ledger, err := store.NewSQLiteStore(exp.Ledger, logger)
	if err != nil {
		return err
	}
	defer ledger.Close()
	if err := ledger.Migrate(ctx); err != nil {
		return err
	}

	recorder := store.NewRecorder(ledger, logger)
	if err := recorder.BeginRun(ctx, job); err != nil {
		return err
	}

	runner := graph.NewRunner(exp.Cores, logger)
	runner.Observe(recorder)
	runErr := runner.Run(ctx, job)
	if err := recorder.FinishRun(context.WithoutCancel(ctx), job, runErr); err != nil {
		logger.Warn("run ledger update failed", "error", err)
	}
	if runErr != nil {
		return runErr
	}

	for _, task := range wf.Terminal {
		logger.Info("workflow output ready", "task", task.Name())
	}
	return nil
}

// buildWorkflow maps the experiment configuration onto workflow parameters.
func buildWorkflow(job *graph.Job, exp *config.Experiment, workdir string) (*pipelines.Workflow, error) {
	params := pipelines.WorkflowParams{
		ProteinPDB:  exp.Protein.PDB,
		ProteinName: exp.Protein.Name,
		LigandsSMI:  exp.Ligands.SMI,
		CrystalMol2: exp.Ligands.CrystalMol2,
		Workdir:     workdir,
		Engine: &ligen.TaskContext{
			Workdir: workdir,
			Image:   exp.Engine.Image,
			Logger:  logger,
		},
		Screening: exp.ScreeningConfig(),
		Docking:   exp.DockingConfig(),
		NLigands:  exp.Selection.NLigands,
	}

	if exp.Minimization.Enabled {
		params.MD = &gmx.Context{
			GMX:       gmx.New(exp.Minimization.GMX, logger),
			Workdir:   filepath.Join(workdir, "md"),
			MDPDir:    exp.Minimization.MDPDir,
			ProteinFF: exp.ProteinForcefield(),
			Logger:    logger,
		}
		params.Minimization = gmx.MinimizationParams{Steps: exp.Minimization.Steps}
	}

	return pipelines.BuildVirtualScreening(job, params)
}

// prepareWorkspace creates the per-edge topology and structure directories so
// topology-generation tools can drop their outputs without racing on mkdir.
func prepareWorkspace(exp *config.Experiment, workdir string) error {
	if len(exp.Edges) == 0 {
		return nil
	}
	layout, err := workspace.NewLayout(workdir, exp.ProteinForcefield())
	if err != nil {
		return err
	}
	for _, edge := range exp.WorkspaceEdges() {
		for _, dir := range []string{layout.EdgeTopologyDir(edge), layout.EdgeStructureDir(edge)} {
			if _, err := workspace.EnsureDir(dir, false); err != nil {
				return err
			}
		}
	}
	if _, err := workspace.EnsureDir(layout.ProteinTopologyDir(), false); err != nil {
		return err
	}
	if _, err := workspace.EnsureDir(layout.ProteinStructureDir(), false); err != nil {
		return err
	}
	return nil
}
