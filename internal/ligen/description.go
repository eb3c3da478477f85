// Package ligen generates declarative pipeline descriptions for the LiGen
// screening/docking engine and runs the containerized engine against them.
package ligen

import (
	"encoding/json"
	"fmt"

	"github.com/me/ligflow/pkg/model"
)

// The engine's embedded interpreter reads the description verbatim: stage
// kind identifiers, field names, nesting and even the string-vs-number typing
// of individual fields are an external wire contract. Do not rename anything
// in this file.

// Protocol constants for the dock/score stage. Fixed unless a config
// explicitly overrides them.
const (
	DefaultNumberOfRestart = "256"
	DefaultClippingFactor  = "256"

	defaultProbeRadius      = "8"
	defaultPocketAlgorithm  = "caviar_like"
	defaultAnchorAlgorithms = "maximum_points"
	defaultSeparationRadius = "4"
)

// DefaultScoringFunctions is the scoring function set used when a config
// does not name its own.
var DefaultScoringFunctions = []string{"d22"}

// Stage is one named processing stage of the engine pipeline. Stages are
// constructed through the typed structs below and validated before
// serialization; the pipeline is an ordered list, not a general DAG.
type Stage interface {
	validate() error
}

// ReaderStage reads the ligand library. Kind "reader_mol2".
type ReaderStage struct {
	Kind          string `json:"kind"`
	Name          string `json:"name"`
	InputFilepath string `json:"input_filepath"`
}

func (s ReaderStage) validate() error {
	if s.InputFilepath == "" {
		return model.NewConfigurationError("reader stage: input_filepath must not be empty")
	}
	return nil
}

// ParserStage parses raw ligand records. Kind "parser_mol2".
type ParserStage struct {
	Kind            string `json:"kind"`
	NumberOfWorkers int    `json:"number_of_workers"`
}

func (s ParserStage) validate() error {
	return validateWorkers("parser", s.NumberOfWorkers)
}

// BucketizerStage groups parsed ligands into buckets. Kind "bucketizer_ligand".
type BucketizerStage struct {
	Kind string `json:"kind"`
	Name string `json:"name"`
}

func (s BucketizerStage) validate() error { return nil }

// UnfoldStage enumerates ligand conformations. Kind "unfold".
type UnfoldStage struct {
	Kind       string `json:"kind"`
	CppWorkers int    `json:"cpp_workers"`
}

func (s UnfoldStage) validate() error {
	return validateWorkers("unfold", s.CppWorkers)
}

// DockNScoreStage docks poses and scores them. Kind "dock_n_score". It
// synchronizes on the reader's setup completion through wait_setup.
type DockNScoreStage struct {
	Kind             string   `json:"kind"`
	WaitSetup        string   `json:"wait_setup"`
	NumberOfRestart  string   `json:"number_of_restart"`
	ClippingFactor   string   `json:"clipping_factor"`
	ScoringFunctions []string `json:"scoring_functions"`
	CppWorkers       int      `json:"cpp_workers"`
}

func (s DockNScoreStage) validate() error {
	if len(s.ScoringFunctions) == 0 {
		return model.NewConfigurationError("dock_n_score stage: at least one scoring function is required")
	}
	return validateWorkers("dock_n_score", s.CppWorkers)
}

// WriterStage writes the per-bucket score table. Kind "writer_csv_bucket".
type WriterStage struct {
	Kind           string   `json:"kind"`
	Name           string   `json:"name"`
	WaitSetup      string   `json:"wait_setup"`
	OutputFilepath string   `json:"output_filepath"`
	PrintPreamble  string   `json:"print_preamble"`
	CsvFields      []string `json:"csv_fields"`
}

func (s WriterStage) validate() error {
	if s.OutputFilepath == "" {
		return model.NewConfigurationError("writer stage: output_filepath must not be empty")
	}
	if len(s.CsvFields) == 0 {
		return model.NewConfigurationError("writer stage: csv_fields must not be empty")
	}
	return nil
}

// TrackerStage reports bucket progress. Kind "tracker_bucket".
type TrackerStage struct {
	Kind      string `json:"kind"`
	WaitSetup string `json:"wait_setup"`
}

func (s TrackerStage) validate() error { return nil }

// SinkStage terminates the pipeline. Kind "sink_bucket". Its worker count is
// a string on the wire.
type SinkStage struct {
	Kind            string `json:"kind"`
	NumberOfWorkers string `json:"number_of_workers"`
}

func (s SinkStage) validate() error {
	if s.NumberOfWorkers == "0" || s.NumberOfWorkers == "" {
		return model.NewConfigurationError("sink stage: number_of_workers must be positive, got %q", s.NumberOfWorkers)
	}
	return nil
}

// Target describes the protein the pipeline docks against.
type Target struct {
	Name          string       `json:"name"`
	Configuration TargetConfig `json:"configuration"`
}

// TargetConfig nests the engine's per-target blocks.
type TargetConfig struct {
	Input                InputBlock        `json:"input"`
	Filtering            FilteringBlock    `json:"filtering"`
	PocketIdentification PocketIDBlock     `json:"pocket_identification"`
	AnchorPoints         AnchorPointsBlock `json:"anchor_points"`
}

// InputBlock names the protein structure input.
type InputBlock struct {
	Format      string `json:"format"`
	ProteinPath string `json:"protein_path"`
}

// FilteringBlock configures probe-based pocket filtering.
type FilteringBlock struct {
	Algorithm string `json:"algorithm"`
	Path      string `json:"path"`
	Radius    string `json:"radius"`
}

// PocketIDBlock selects the pocket-identification algorithm.
type PocketIDBlock struct {
	Algorithm string `json:"algorithm"`
}

// AnchorPointsBlock configures anchor-point selection. The plural "algorithms"
// key is what the engine expects.
type AnchorPointsBlock struct {
	Algorithms       string `json:"algorithms"`
	SeparationRadius string `json:"separation_radius"`
}

// Description is a complete pipeline description: the document piped to the
// engine's stdin.
type Description struct {
	Name     string   `json:"name"`
	Pipeline []Stage  `json:"pipeline"`
	Targets  []Target `json:"targets"`
}

// Validate checks every stage. Worker counts of zero are rejected here: a
// zero-worker stage would deadlock the engine pipeline, never complete, and
// never signal failure.
func (d *Description) Validate() error {
	if d.Name == "" {
		return model.NewConfigurationError("pipeline description: name must not be empty")
	}
	if len(d.Pipeline) == 0 {
		return model.NewConfigurationError("pipeline description %q: no stages", d.Name)
	}
	for i, stage := range d.Pipeline {
		if err := stage.validate(); err != nil {
			return fmt.Errorf("pipeline description %q, stage %d: %w", d.Name, i, err)
		}
	}
	if len(d.Targets) == 0 {
		return model.NewConfigurationError("pipeline description %q: no targets", d.Name)
	}
	return nil
}

// Encode validates the description and serializes it to the engine's wire
// format.
func (d *Description) Encode() ([]byte, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	data, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("encode pipeline description %q: %w", d.Name, err)
	}
	return data, nil
}

func validateWorkers(stage string, n int) error {
	if n <= 0 {
		return model.NewConfigurationError("%s stage: worker count must be positive, got %d", stage, n)
	}
	return nil
}

// probeTarget builds the standard single-target block used by both screening
// and docking runs.
func probeTarget(name, proteinPath, probeMol2 string) Target {
	return Target{
		Name: name,
		Configuration: TargetConfig{
			Input: InputBlock{
				Format:      "protein",
				ProteinPath: proteinPath,
			},
			Filtering: FilteringBlock{
				Algorithm: "probe",
				Path:      probeMol2,
				Radius:    defaultProbeRadius,
			},
			PocketIdentification: PocketIDBlock{
				Algorithm: defaultPocketAlgorithm,
			},
			AnchorPoints: AnchorPointsBlock{
				Algorithms:       defaultAnchorAlgorithms,
				SeparationRadius: defaultSeparationRadius,
			},
		},
	}
}
