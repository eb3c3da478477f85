package ligen

import (
	"context"
	"path/filepath"
)

// Default per-stage worker counts for a docking run. Docking processes far
// fewer ligands than screening but spends more time per pose.
const (
	DefaultDockingNumParser            = 10
	DefaultDockingNumWorkersUnfold     = 10
	DefaultDockingNumWorkersDockNScore = 50
)

// DockingConfig holds the immutable parameters of one docking invocation over
// an already-selected ligand library.
type DockingConfig struct {
	// InputSMI is the reduced ligand library produced by selection.
	InputSMI string
	// InputMol2 is the crystal probe ligand used for pocket filtering.
	InputMol2 string
	// InputPDB is the target protein structure.
	InputPDB string
	// InputProteinName names the target block in the description.
	InputProteinName string
	// OutputPath is the docked-pose table the run produces. Poses are
	// emitted through the writer stage alongside their scores.
	OutputPath string

	// Cores is the CPU core request of the docking task.
	Cores int

	NumParser            int
	NumWorkersUnfold     int
	NumWorkersDockNScore int

	// ScoringFunctions defaults to DefaultScoringFunctions when empty.
	ScoringFunctions []string
}

// WithDefaults returns a copy with unset worker counts and scoring functions
// filled in.
func (c DockingConfig) WithDefaults() DockingConfig {
	if c.NumParser == 0 && c.NumWorkersUnfold == 0 && c.NumWorkersDockNScore == 0 {
		c.NumParser = DefaultDockingNumParser
		c.NumWorkersUnfold = DefaultDockingNumWorkersUnfold
		c.NumWorkersDockNScore = DefaultDockingNumWorkersDockNScore
	}
	if len(c.ScoringFunctions) == 0 {
		c.ScoringFunctions = append([]string(nil), DefaultScoringFunctions...)
	}
	return c
}

// DockingDescription builds the declarative stage pipeline for a docking run.
// The stage graph is the same shape as screening; the writer additionally
// carries the pose geometry column so downstream stages can extract docked
// structures.
func DockingDescription(config DockingConfig, c *Container) (*Description, error) {
	inputSMI := c.MapInput(config.InputSMI)
	inputPDB := c.MapInput(config.InputPDB)
	inputMol2 := c.MapInput(config.InputMol2)
	output := c.MapOutput(config.OutputPath)

	d := &Description{
		Name: "dock",
		Pipeline: []Stage{
			ReaderStage{
				Kind:          "reader_mol2",
				Name:          "reader",
				InputFilepath: inputSMI,
			},
			ParserStage{
				Kind:            "parser_mol2",
				NumberOfWorkers: config.NumParser,
			},
			BucketizerStage{
				Kind: "bucketizer_ligand",
				Name: "bucketizer",
			},
			UnfoldStage{
				Kind:       "unfold",
				CppWorkers: config.NumWorkersUnfold,
			},
			DockNScoreStage{
				Kind:             "dock_n_score",
				WaitSetup:        "reader",
				NumberOfRestart:  DefaultNumberOfRestart,
				ClippingFactor:   DefaultClippingFactor,
				ScoringFunctions: config.ScoringFunctions,
				CppWorkers:       config.NumWorkersDockNScore,
			},
			WriterStage{
				Kind:           "writer_csv_bucket",
				Name:           "writer",
				WaitSetup:      "reader",
				OutputFilepath: output,
				PrintPreamble:  "1",
				CsvFields:      []string{"LIGAND_NAME", "SCORE_PROTEIN_NAME", "D22_SCORE", "LIGAND_MOL2"},
			},
			TrackerStage{
				Kind:      "tracker_bucket",
				WaitSetup: "reader",
			},
			SinkStage{
				Kind:            "sink_bucket",
				NumberOfWorkers: "1",
			},
		},
		Targets: []Target{
			probeTarget(config.InputProteinName, inputPDB, inputMol2),
		},
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// RunDocking maps the config's files into a fresh engine container, builds
// the pipeline description and runs the engine with the description on stdin.
func RunDocking(ctx context.Context, tctx *TaskContext, config DockingConfig) error {
	c := tctx.NewContainer()
	description, err := DockingDescription(config, c)
	if err != nil {
		return err
	}
	payload, err := description.Encode()
	if err != nil {
		return err
	}
	return c.Run(ctx, "ligen", payload)
}

// DockingTaskName derives the task name of a docking run from its output.
func DockingTaskName(config DockingConfig) string {
	return "docking-" + filepath.Base(config.OutputPath)
}
