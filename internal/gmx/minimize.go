package gmx

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/me/ligflow/internal/toolexec"
	"github.com/me/ligflow/internal/workspace"
)

// DefaultMinimizationSteps is the default number of energy-minimization steps.
const DefaultMinimizationSteps = 100

// MinimizationParams configures one energy-minimization run.
type MinimizationParams struct {
	Steps int
}

// WithDefaults fills in unset parameters.
func (p MinimizationParams) WithDefaults() MinimizationParams {
	if p.Steps == 0 {
		p.Steps = DefaultMinimizationSteps
	}
	return p
}

// Context carries the shared state of the preparation steps: the GROMACS
// wrapper, the workspace with the topology files, the mdp template directory
// and the active protein forcefield.
type Context struct {
	GMX       *GMX
	Workdir   string
	MDPDir    string
	ProteinFF workspace.ProteinForcefield
	Logger    *slog.Logger
}

// topologyFor resolves the workdir-relative topology of a workload kind to an
// absolute path.
func (c *Context) topologyFor(kind workspace.Kind) string {
	return filepath.Join(c.Workdir, workspace.TopologyPath(kind, c.ProteinFF))
}

// topologyBackup is the backup file GROMACS leaves next to a topology it
// rewrote.
func (c *Context) topologyBackup(kind workspace.Kind) string {
	stem := workspace.TopologyStem(kind, c.ProteinFF)
	return filepath.Join(c.Workdir, "topology", fmt.Sprintf("#topol_%s.top.1#", stem))
}

// Editconf boxes both workloads of an edge: the merged ligand pair and the
// full protein structure. The protein box gets the atom-rename table applied
// before any downstream grompp sees it.
func (c *Context) Editconf(ctx context.Context, ligand, protein workspace.Workload) error {
	c.Logger.Info("running editconf step", "ligand", ligand.String(), "protein", protein.String())

	mergedPDB := filepath.Join(c.Workdir, "structure", "mergedA.pdb")
	fullPDB := filepath.Join(c.Workdir, "structure", "full.pdb")

	if err := c.GMX.Editconf(ctx, mergedPDB, ligand.CorrectedBoxGro()); err != nil {
		return err
	}
	if err := c.GMX.Editconf(ctx, fullPDB, protein.CorrectedBoxGro()); err != nil {
		return err
	}
	return ModifyGroInPlace(protein.CorrectedBoxGro())
}

// Solvate embeds the boxed structure in solvent.
func (c *Context) Solvate(ctx context.Context, w workspace.Workload) error {
	c.Logger.Info("running solvate step", "workload", w.String())

	topology := c.topologyFor(w.Kind)
	err := c.GMX.Execute(ctx, []any{
		"solvate",
		"-cp", toolexec.Path(w.CorrectedBoxGro()),
		"-cs", "spc216.gro",
		"-p", toolexec.Path(topology),
		"-o", toolexec.Path(w.SolvatedGro()),
	}, nil)
	if err != nil {
		return err
	}
	if err := workspace.RemoveIfExists(c.topologyBackup(w.Kind)); err != nil {
		return err
	}
	// The solvent group must be named SOL for genion's group selection.
	return workspace.ReplaceInPlace(w.SolvatedGro(), []workspace.Replacement{
		{Before: "HOH", After: "SOL"},
	})
}

// AddIons neutralizes the solvated system at physiological ion concentration
// and returns the rendered mdp file the minimization reuses.
func (c *Context) AddIons(ctx context.Context, w workspace.Workload, params MinimizationParams) (string, error) {
	c.Logger.Info("running add_ions step", "workload", w.String())

	topology := c.topologyFor(w.Kind)
	addIonsTpr := filepath.Join(w.Dir, "addIons.tpr")

	// Rendered into the workload directory: ligand and protein workloads run
	// concurrently and must not share any mutable path.
	generatedMDP := filepath.Join(w.Dir, "generated_em_l0.mdp")
	err := RenderMDP(filepath.Join(c.MDPDir, "em_l0.mdp"), generatedMDP, map[string]any{
		"nsteps": params.Steps,
	})
	if err != nil {
		return "", err
	}

	err = c.GMX.Execute(ctx, []any{
		"grompp",
		"-f", toolexec.Path(generatedMDP),
		"-c", toolexec.Path(w.SolvatedGro()),
		"-p", toolexec.Path(topology),
		"-o", toolexec.Path(addIonsTpr),
		"-maxwarn", 2,
	}, &toolexec.Options{Dir: w.Dir})
	if err != nil {
		return "", err
	}
	if err := workspace.RemoveIfExists(filepath.Join(w.Dir, "mdout.mdp")); err != nil {
		return "", err
	}

	err = c.GMX.Execute(ctx, []any{
		"genion",
		"-s", toolexec.Path(addIonsTpr),
		"-o", toolexec.Path(w.IonsGro()),
		"-p", toolexec.Path(topology),
		"-pname", c.ProteinFF.PositiveIon(),
		"-nname", c.ProteinFF.NegativeIon(),
		"-conc", "0.15",
		"-neutral",
	}, &toolexec.Options{Input: []byte("SOL\n")})
	if err != nil {
		return "", err
	}
	if err := workspace.RemoveIfExists(c.topologyBackup(w.Kind)); err != nil {
		return "", err
	}
	if err := workspace.RemoveIfExists(addIonsTpr); err != nil {
		return "", err
	}
	return generatedMDP, nil
}

// EnergyMinimize relaxes the neutralized system to a local energy minimum,
// producing EM.tpr and EMout.mdp in the workload directory.
func (c *Context) EnergyMinimize(ctx context.Context, w workspace.Workload, mdp string) error {
	c.Logger.Info("running energy_minimize step", "workload", w.String())

	topology := c.topologyFor(w.Kind)
	err := c.GMX.Execute(ctx, []any{
		"grompp",
		"-f", toolexec.Path(mdp),
		"-c", toolexec.Path(w.IonsGro()),
		"-p", toolexec.Path(topology),
		"-o", toolexec.Path(w.EMTpr()),
		"-po", toolexec.Path(w.EMOutMdp()),
		"-maxwarn", 2,
	}, &toolexec.Options{Dir: w.Dir})
	if err != nil {
		return err
	}
	return c.GMX.Execute(ctx, []any{"mdrun", "-v", "-deffnm", "EM"},
		&toolexec.Options{Dir: w.Dir})
}

// MinimizeWorkload runs the full solvate → add-ions → energy-minimize
// sequence for one workload.
func (c *Context) MinimizeWorkload(ctx context.Context, w workspace.Workload, params MinimizationParams) error {
	params = params.WithDefaults()
	if err := c.Solvate(ctx, w); err != nil {
		return err
	}
	mdp, err := c.AddIons(ctx, w, params)
	if err != nil {
		return err
	}
	return c.EnergyMinimize(ctx, w, mdp)
}
