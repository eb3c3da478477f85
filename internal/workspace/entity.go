// Package workspace maps chemistry entities (proteins, ligands, forcefields,
// ligand-pair edges, poses) to a deterministic directory and filename scheme
// under a single workspace root. Path computation is pure; directory creation
// is a separate, explicit operation.
package workspace

import (
	"fmt"

	"github.com/me/ligflow/pkg/model"
)

// Kind distinguishes the two subjects of a solvation/minimization workload.
type Kind int

const (
	KindLigand Kind = iota
	KindProtein
)

func (k Kind) String() string {
	switch k {
	case KindLigand:
		return "Ligand"
	case KindProtein:
		return "Protein"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ProteinForcefield identifies the parameter set used for the protein.
type ProteinForcefield int

const (
	ProteinFFAmber ProteinForcefield = iota
)

// Name returns the directory name used for this forcefield in the workspace
// layout. It is also the topology stem of protein workloads.
func (f ProteinForcefield) Name() string {
	switch f {
	case ProteinFFAmber:
		return "amber"
	default:
		return fmt.Sprintf("ProteinForcefield(%d)", int(f))
	}
}

// ParseProteinForcefield maps a configuration name to a protein forcefield.
func ParseProteinForcefield(name string) (ProteinForcefield, error) {
	switch name {
	case "amber":
		return ProteinFFAmber, nil
	default:
		return 0, model.NewConfigurationError("unknown protein forcefield %q", name)
	}
}

// PositiveIon returns the name of the positive ion used to neutralize a
// system prepared with this forcefield.
func (f ProteinForcefield) PositiveIon() string {
	return "NA"
}

// NegativeIon returns the name of the negative ion used to neutralize a
// system prepared with this forcefield.
func (f ProteinForcefield) NegativeIon() string {
	return "CL"
}

// LigandForcefield identifies the parameter set used for ligands. Tracked
// separately from the protein forcefield.
type LigandForcefield int

const (
	LigandFFGaff2 LigandForcefield = iota
)

// Name returns the canonical name of the ligand forcefield.
func (f LigandForcefield) Name() string {
	switch f {
	case LigandFFGaff2:
		return "gaff2"
	default:
		return fmt.Sprintf("LigandForcefield(%d)", int(f))
	}
}

// Edge is a designated pair of ligands used for a relative free-energy
// comparison. Direction matters: Edge{A, B} and Edge{B, A} are distinct
// entities with distinct directories.
type Edge struct {
	StartLigand string
	EndLigand   string
}

// Name returns the display name of the edge, "start-end".
func (e Edge) Name() string {
	return e.StartLigand + "-" + e.EndLigand
}

// DirName returns the edge's directory name, "edge_start_end".
func (e Edge) DirName() string {
	return fmt.Sprintf("edge_%s_%s", e.StartLigand, e.EndLigand)
}

// StartLigandName returns the prefixed name of the start ligand.
func (e Edge) StartLigandName() string {
	return "lig_" + e.StartLigand
}

// EndLigandName returns the prefixed name of the end ligand.
func (e Edge) EndLigandName() string {
	return "lig_" + e.EndLigand
}
