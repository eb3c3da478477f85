// Package config loads and validates the experiment configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/me/ligflow/internal/gmx"
	"github.com/me/ligflow/internal/ligen"
	"github.com/me/ligflow/internal/workspace"
	"github.com/me/ligflow/pkg/model"
)

// ServerConfig holds configuration for the status server.
type ServerConfig struct {
	Addr      string // Listen address (default ":8080")
	LogLevel  string // Log level: debug, info, warn, error
	LogFormat string // Log format: text, json
	DBPath    string // SQLite ledger path (":memory:" for testing)
}

// DefaultServerConfig returns sensible defaults.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:      ":8080",
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// Protein describes the target protein.
type Protein struct {
	PDB        string `yaml:"pdb"`
	Name       string `yaml:"name"`
	Forcefield string `yaml:"forcefield"`
}

// Ligands describes the ligand library inputs.
type Ligands struct {
	SMI         string `yaml:"smi"`
	CrystalMol2 string `yaml:"crystal_mol2"`
}

// Engine configures the containerized screening/docking engine.
type Engine struct {
	Image string `yaml:"image"`
}

// Stage carries the per-stage tunables of a screening or docking pass.
type Stage struct {
	ParserWorkers int      `yaml:"parser_workers"`
	UnfoldWorkers int      `yaml:"unfold_workers"`
	DockWorkers   int      `yaml:"dock_workers"`
	Cores         int      `yaml:"cores"`
	Scoring       []string `yaml:"scoring_functions"`
}

// Selection configures the top-K ligand selection between screening and
// docking.
type Selection struct {
	NLigands int `yaml:"n_ligands"`
}

// Minimization configures the optional solvation/minimization stage.
type Minimization struct {
	Enabled bool   `yaml:"enabled"`
	Steps   int    `yaml:"steps"`
	GMX     string `yaml:"gmx"`
	MDPDir  string `yaml:"mdp_dir"`
}

// EdgeSpec names a directed ligand transformation in the configuration file.
type EdgeSpec struct {
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

// Experiment is the top-level configuration of one virtual-screening run.
type Experiment struct {
	Name string `yaml:"name"`

	DataDir      string `yaml:"data_dir"`
	WorkDir      string `yaml:"work_dir"`
	ClearWorkDir bool   `yaml:"clear_work_dir"`

	Protein Protein `yaml:"protein"`
	Ligands Ligands `yaml:"ligands"`
	Engine  Engine  `yaml:"engine"`

	Screening    Stage        `yaml:"screening"`
	Docking      Stage        `yaml:"docking"`
	Selection    Selection    `yaml:"selection"`
	Minimization Minimization `yaml:"minimization"`

	// Edges are the ligand transformations to prepare topologies for.
	Edges []EdgeSpec `yaml:"edges"`

	// Cores caps the runner's concurrent core budget (default: all CPUs).
	Cores int `yaml:"cores"`

	// Ledger is the SQLite run-ledger path (default: <work_dir>/ligflow.db).
	Ledger string `yaml:"ledger"`
}

// Load reads and validates an experiment configuration file. Relative input
// paths resolve against data_dir, which itself resolves against the file's
// directory.
func Load(path string) (*Experiment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	exp, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	exp.resolvePaths(filepath.Dir(path))
	if err := exp.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return exp, nil
}

// Parse decodes an experiment configuration and applies defaults. It does not
// resolve paths or validate; Load does both.
func Parse(data []byte) (*Experiment, error) {
	var exp Experiment
	if err := yaml.Unmarshal(data, &exp); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	exp.applyDefaults()
	return &exp, nil
}

func (e *Experiment) applyDefaults() {
	if e.Name == "" {
		e.Name = "experiment"
	}
	if e.Protein.Forcefield == "" {
		e.Protein.Forcefield = workspace.ProteinFFAmber.Name()
	}
	if e.Selection.NLigands == 0 {
		e.Selection.NLigands = 100
	}
	if e.Minimization.Steps == 0 {
		e.Minimization.Steps = gmx.DefaultMinimizationSteps
	}
	if e.Cores == 0 {
		e.Cores = runtime.NumCPU()
	}
}

// resolvePaths anchors every relative path in the configuration: data_dir and
// work_dir against base, the inputs against data_dir.
func (e *Experiment) resolvePaths(base string) {
	resolve := func(p, against string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(against, p)
	}

	e.DataDir = resolve(e.DataDir, base)
	if e.DataDir == "" {
		e.DataDir = base
	}
	e.WorkDir = resolve(e.WorkDir, base)

	e.Protein.PDB = resolve(e.Protein.PDB, e.DataDir)
	e.Ligands.SMI = resolve(e.Ligands.SMI, e.DataDir)
	e.Ligands.CrystalMol2 = resolve(e.Ligands.CrystalMol2, e.DataDir)
	e.Minimization.MDPDir = resolve(e.Minimization.MDPDir, e.DataDir)
	if e.Engine.Image != "" && filepath.Ext(e.Engine.Image) == ".sif" {
		e.Engine.Image = resolve(e.Engine.Image, e.DataDir)
	}

	if e.Ledger == "" && e.WorkDir != "" {
		e.Ledger = filepath.Join(e.WorkDir, "ligflow.db")
	}
}

// Validate checks the configuration for structural problems that would
// otherwise surface mid-run.
func (e *Experiment) Validate() error {
	if e.WorkDir == "" {
		return model.NewConfigurationError("work_dir must be set")
	}
	if e.Protein.PDB == "" {
		return model.NewConfigurationError("protein.pdb must be set")
	}
	if e.Protein.Name == "" {
		return model.NewConfigurationError("protein.name must be set")
	}
	if _, err := workspace.ParseProteinForcefield(e.Protein.Forcefield); err != nil {
		return err
	}
	if e.Ligands.SMI == "" {
		return model.NewConfigurationError("ligands.smi must be set")
	}
	if e.Ligands.CrystalMol2 == "" {
		return model.NewConfigurationError("ligands.crystal_mol2 must be set")
	}
	if e.Engine.Image == "" {
		return model.NewConfigurationError("engine.image must be set")
	}
	if e.Selection.NLigands <= 0 {
		return model.NewConfigurationError("selection.n_ligands must be positive, got %d", e.Selection.NLigands)
	}
	if e.Cores < 0 {
		return model.NewConfigurationError("cores must not be negative, got %d", e.Cores)
	}
	if e.Minimization.Enabled && e.Minimization.MDPDir == "" {
		return model.NewConfigurationError("minimization.mdp_dir must be set when minimization is enabled")
	}
	for i, edge := range e.Edges {
		if edge.Start == "" || edge.End == "" {
			return model.NewConfigurationError("edges[%d]: start and end must both be set", i)
		}
		if edge.Start == edge.End {
			return model.NewConfigurationError("edges[%d]: start and end name the same ligand %q", i, edge.Start)
		}
	}
	return nil
}

// ProteinForcefield returns the validated protein forcefield.
func (e *Experiment) ProteinForcefield() workspace.ProteinForcefield {
	ff, err := workspace.ParseProteinForcefield(e.Protein.Forcefield)
	if err != nil {
		// Validate rejects unknown names; reaching this means the caller
		// skipped validation.
		return workspace.ProteinFFAmber
	}
	return ff
}

// ScreeningConfig maps the screening stage settings onto the engine's config.
func (e *Experiment) ScreeningConfig() ligen.ScreeningConfig {
	return ligen.ScreeningConfig{
		NumParser:            e.Screening.ParserWorkers,
		NumWorkersUnfold:     e.Screening.UnfoldWorkers,
		NumWorkersDockNScore: e.Screening.DockWorkers,
		Cores:                e.Screening.Cores,
		ScoringFunctions:     e.Screening.Scoring,
	}
}

// DockingConfig maps the docking stage settings onto the engine's config.
func (e *Experiment) DockingConfig() ligen.DockingConfig {
	return ligen.DockingConfig{
		NumParser:            e.Docking.ParserWorkers,
		NumWorkersUnfold:     e.Docking.UnfoldWorkers,
		NumWorkersDockNScore: e.Docking.DockWorkers,
		Cores:                e.Docking.Cores,
		ScoringFunctions:     e.Docking.Scoring,
	}
}

// WorkspaceEdges converts the configured edge list into workspace edges.
func (e *Experiment) WorkspaceEdges() []workspace.Edge {
	edges := make([]workspace.Edge, 0, len(e.Edges))
	for _, spec := range e.Edges {
		edges = append(edges, workspace.Edge{StartLigand: spec.Start, EndLigand: spec.End})
	}
	return edges
}
