package ligen

import (
	"context"
	"path/filepath"
)

// Default per-stage worker counts for a screening run.
const (
	DefaultNumParser            = 20
	DefaultNumWorkersUnfold     = 20
	DefaultNumWorkersDockNScore = 100
)

// ScreeningConfig holds the immutable parameters of one virtual-screening
// invocation. Build it once, submit it, and never touch it again; all
// functions here take it by value.
type ScreeningConfig struct {
	// InputSMI is the (expanded) ligand library to screen.
	InputSMI string
	// InputMol2 is the crystal probe ligand used for pocket filtering.
	InputMol2 string
	// InputPDB is the target protein structure.
	InputPDB string
	// InputProteinName names the target block in the description.
	InputProteinName string
	// OutputPath is the per-ligand score table (CSV) the run produces.
	OutputPath string

	// Cores is the CPU core request of the screening task.
	Cores int

	NumParser            int
	NumWorkersUnfold     int
	NumWorkersDockNScore int

	// ScoringFunctions defaults to DefaultScoringFunctions when empty.
	ScoringFunctions []string
}

// WithDefaults returns a copy with unset worker counts and scoring functions
// filled in. Explicit zero values are left alone so validation can reject
// them; only negative-free "not set" zero fields get defaults when the whole
// worker block is unset.
func (c ScreeningConfig) WithDefaults() ScreeningConfig {
	if c.NumParser == 0 && c.NumWorkersUnfold == 0 && c.NumWorkersDockNScore == 0 {
		c.NumParser = DefaultNumParser
		c.NumWorkersUnfold = DefaultNumWorkersUnfold
		c.NumWorkersDockNScore = DefaultNumWorkersDockNScore
	}
	if len(c.ScoringFunctions) == 0 {
		c.ScoringFunctions = append([]string(nil), DefaultScoringFunctions...)
	}
	return c
}

// ScreeningDescription builds the declarative stage pipeline for a screening
// run. The paths in the returned description are the container-side paths
// produced by mapping the config's host paths through the given container.
func ScreeningDescription(config ScreeningConfig, c *Container) (*Description, error) {
	inputSMI := c.MapInput(config.InputSMI)
	inputPDB := c.MapInput(config.InputPDB)
	inputMol2 := c.MapInput(config.InputMol2)
	outputCSV := c.MapOutput(config.OutputPath)

	d := &Description{
		Name: "vscreen",
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
				OutputFilepath: outputCSV,
				PrintPreamble:  "1",
				CsvFields:      []string{"LIGAND_NAME", "SCORE_PROTEIN_NAME", "D22_SCORE"},
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

// RunScreening maps the config's files into a fresh engine container, builds
// the pipeline description and runs the engine with the description on stdin.
func RunScreening(ctx context.Context, tctx *TaskContext, config ScreeningConfig) error {
	c := tctx.NewContainer()
	description, err := ScreeningDescription(config, c)
	if err != nil {
		return err
	}
	payload, err := description.Encode()
	if err != nil {
		return err
	}
	return c.Run(ctx, "ligen", payload)
}

// ScreeningTaskName derives the task name of a screening run from its output.
func ScreeningTaskName(config ScreeningConfig) string {
	return "screening-" + filepath.Base(config.OutputPath)
}
