package pipelines

import (
	"path/filepath"

	"github.com/me/ligflow/internal/gmx"
	"github.com/me/ligflow/internal/graph"
	"github.com/me/ligflow/internal/ligen"
	"github.com/me/ligflow/internal/workspace"
)

// WorkflowParams is everything the assembler needs to wire one experiment:
// input data, the engine context, stage configurations and the optional
// molecular-dynamics context for the final minimization.
type WorkflowParams struct {
	// ProteinPDB is the target protein structure.
	ProteinPDB string
	// ProteinName names the target in engine descriptions.
	ProteinName string
	// LigandsSMI is the raw ligand library.
	LigandsSMI string
	// CrystalMol2 is the crystal probe ligand for pocket filtering.
	CrystalMol2 string

	// Workdir is the experiment scratch directory.
	Workdir string

	// Engine runs the containerized screening/docking engine.
	Engine *ligen.TaskContext

	// Screening and Docking carry worker counts, core requests and scoring
	// functions; the assembler fills in all file paths.
	Screening ligen.ScreeningConfig
	Docking   ligen.DockingConfig

	// NLigands is how many top-scoring ligands survive selection.
	NLigands int

	// MD enables the final solvation/minimization stage when non-nil.
	MD           *gmx.Context
	Minimization gmx.MinimizationParams
}

// Workflow is the assembled experiment: the stage handles and the terminal
// task set of the whole graph.
type Workflow struct {
	Check     *graph.Task
	Expansion SubmittedExpansion
	Screening SubmittedScreening
	Selection SubmittedSelection
	Docking   SubmittedDockingPipeline
	// Topology is nil and Minimization zero-valued when the
	// molecular-dynamics stage is disabled.
	Topology     *graph.Task
	Minimization SubmittedMinimization

	// Terminal is the task set later stages or callers should depend on.
	Terminal []*graph.Task
}

// BuildVirtualScreening wires the full experiment into job: protein check →
// ligand expansion → virtual screening → top-K selection → docking →
// optional solvation/minimization. The assembler only threads configs and
// dependency sets; stage internals stay behind their submit functions.
func BuildVirtualScreening(job *graph.Job, params WorkflowParams) (*Workflow, error) {
	engineDir, err := workspace.EnsureDir(filepath.Join(params.Workdir, "ligen"), false)
	if err != nil {
		return nil, err
	}

	check, err := SubmitCheckProtein(job, params.ProteinPDB)
	if err != nil {
		return nil, err
	}

	expansion, err := SubmitExpansion(job, params.Engine, ligen.ExpansionConfig{
		InputSMI:  params.LigandsSMI,
		OutputSMI: filepath.Join(engineDir, "ligands-expanded.smi"),
	}, []*graph.Task{check})
	if err != nil {
		return nil, err
	}

	screeningCfg := params.Screening.WithDefaults()
	screeningCfg.InputPDB = params.ProteinPDB
	screeningCfg.InputMol2 = params.CrystalMol2
	screeningCfg.InputProteinName = params.ProteinName
	screeningCfg.OutputPath = filepath.Join(engineDir, "scores.csv")
	screening, err := SubmitScreening(job, params.Engine, screeningCfg, expansion)
	if err != nil {
		return nil, err
	}

	selection, err := SubmitSelection(job, SelectionConfig{
		InputSMI:  expansion.Config.OutputSMI,
		OutputSMI: filepath.Join(engineDir, "ligands-selected.smi"),
		NLigands:  params.NLigands,
	}, screening)
	if err != nil {
		return nil, err
	}

	dockingCfg := params.Docking.WithDefaults()
	dockingCfg.InputPDB = params.ProteinPDB
	dockingCfg.InputMol2 = params.CrystalMol2
	dockingCfg.InputProteinName = params.ProteinName
	dockingCfg.OutputPath = filepath.Join(engineDir, "poses.csv")
	docking, err := SubmitDocking(job, params.Engine, dockingCfg, selection)
	if err != nil {
		return nil, err
	}

	wf := &Workflow{
		Check:     check,
		Expansion: expansion,
		Screening: screening,
		Selection: selection,
		Docking:   docking,
		Terminal:  []*graph.Task{docking.Task},
	}

	if params.MD != nil {
		// Topology generation only needs the validated protein; it runs in
		// parallel with the screening stages.
		topology, err := SubmitProteinTopology(job, params.MD, params.ProteinPDB, []*graph.Task{check})
		if err != nil {
			return nil, err
		}
		minimization, err := SubmitMinimization(job, params.MD, params.Minimization, []*graph.Task{docking.Task, topology})
		if err != nil {
			return nil, err
		}
		wf.Topology = topology
		wf.Minimization = minimization
		wf.Terminal = minimization.Tasks
	}

	return wf, nil
}
