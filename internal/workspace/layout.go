package workspace

import (
	"fmt"
	"path/filepath"
)

// Layout computes canonical on-disk locations for chemistry entities under a
// workspace root. All methods are pure functions of (root, forcefield, entity);
// none of them touch the filesystem. Leaf filenames are dictated by the
// external tools that read them and must not be changed.
type Layout struct {
	root      string
	proteinFF ProteinForcefield
}

// NewLayout creates a Layout rooted at root. The root is made absolute so
// derived paths stay valid regardless of the process working directory.
func NewLayout(root string, proteinFF ProteinForcefield) (*Layout, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve workspace root %s: %w", root, err)
	}
	return &Layout{root: abs, proteinFF: proteinFF}, nil
}

// Root returns the absolute workspace root.
func (l *Layout) Root() string {
	return l.root
}

// ProteinFF returns the active protein forcefield.
func (l *Layout) ProteinFF() ProteinForcefield {
	return l.proteinFF
}

// ProteinDir is the directory holding everything derived from the target
// protein: its topology and structure plus all edge and ligand subtrees.
func (l *Layout) ProteinDir() string {
	return filepath.Join(l.root, "protein")
}

// ProteinTopologyDir holds the protein topology for the active forcefield.
func (l *Layout) ProteinTopologyDir() string {
	return filepath.Join(l.ProteinDir(), l.proteinFF.Name(), "topology")
}

// ProteinStructureDir holds the protein structure for the active forcefield.
func (l *Layout) ProteinStructureDir() string {
	return filepath.Join(l.ProteinDir(), l.proteinFF.Name(), "structure")
}

// EdgeDir is the per-edge directory for the active protein forcefield.
func (l *Layout) EdgeDir(e Edge) string {
	return filepath.Join(l.ProteinDir(), e.DirName(), l.proteinFF.Name())
}

// EdgeTopologyDir holds the merged topologies of an edge.
func (l *Layout) EdgeTopologyDir(e Edge) string {
	return filepath.Join(l.EdgeDir(e), "topology")
}

// EdgeStructureDir holds the merged structures of an edge.
func (l *Layout) EdgeStructureDir(e Edge) string {
	return filepath.Join(l.EdgeDir(e), "structure")
}

// EdgeMergedStructureGro is the merged ligand-pair structure of an edge.
func (l *Layout) EdgeMergedStructureGro(e Edge) string {
	return filepath.Join(l.EdgeStructureDir(e), "merged.gro")
}

// EdgeFullStructureGro is the full (protein + merged ligands) structure.
func (l *Layout) EdgeFullStructureGro(e Edge) string {
	return filepath.Join(l.EdgeStructureDir(e), "full.gro")
}

// EdgeTopologyLigandInWater is the ligand-in-water topology of an edge.
func (l *Layout) EdgeTopologyLigandInWater(e Edge) string {
	return filepath.Join(l.EdgeTopologyDir(e), "topol_ligandInWater.top")
}

// EdgeMergedTopologyItp is the merged ligand-pair include topology.
func (l *Layout) EdgeMergedTopologyItp(e Edge) string {
	return filepath.Join(l.EdgeTopologyDir(e), "merged.itp")
}

// LigandDir is the per-ligand directory for the active protein forcefield.
func (l *Layout) LigandDir(ligand string) string {
	return filepath.Join(l.ProteinDir(), "ligands", ligand, l.proteinFF.Name())
}

// LigandTopologyDir holds a ligand's topology files.
func (l *Layout) LigandTopologyDir(ligand string) string {
	return filepath.Join(l.LigandDir(ligand), "topology")
}

// LigandTopologyItp is a ligand's include topology.
func (l *Layout) LigandTopologyItp(ligand string) string {
	return filepath.Join(l.LigandTopologyDir(ligand), "ligand.itp")
}

// LigandPoseDir is the directory of one docked pose of a ligand.
func (l *Layout) LigandPoseDir(ligand string, pose int) string {
	return filepath.Join(l.LigandDir(ligand), "poses", fmt.Sprintf("%d", pose))
}

// LigandPoseStructureGro is the GRO structure of one pose.
func (l *Layout) LigandPoseStructureGro(ligand string, pose int) string {
	return filepath.Join(l.LigandPoseDir(ligand, pose), "ligand.gro")
}

// LigandPoseStructureMol2 is the MOL2 structure of one pose.
func (l *Layout) LigandPoseStructureMol2(ligand string, pose int) string {
	return filepath.Join(l.LigandPoseDir(ligand, pose), "ligand.mol2")
}

// topologyStems selects the topology stem for a workload kind: ligand
// workloads always solvate against the ligand-in-water topology; protein
// workloads use the active protein forcefield's canonical name.
var topologyStems = map[Kind]func(ProteinForcefield) string{
	KindLigand:  func(ProteinForcefield) string { return "ligandInWater" },
	KindProtein: func(ff ProteinForcefield) string { return ff.Name() },
}

// TopologyStem returns the topology name for the given workload kind.
func TopologyStem(k Kind, ff ProteinForcefield) string {
	return topologyStems[k](ff)
}

// TopologyPath returns the workdir-relative topology file path for the given
// workload kind, "topology/topol_<stem>.top".
func TopologyPath(k Kind, ff ProteinForcefield) string {
	return filepath.Join("topology", fmt.Sprintf("topol_%s.top", TopologyStem(k, ff)))
}

// Workload is the per-entity working set of a solvation/minimization run.
// Ligand and protein workloads get disjoint directories so they can run
// concurrently without sharing any mutable path.
type Workload struct {
	Kind Kind
	Dir  string
}

func (w Workload) String() string {
	return fmt.Sprintf("%s at `%s`", w.Kind, w.Dir)
}

// CorrectedBoxGro is the structure placed in the simulation box.
func (w Workload) CorrectedBoxGro() string {
	return filepath.Join(w.Dir, "correctBox.gro")
}

// SolvatedGro is the solvated structure.
func (w Workload) SolvatedGro() string {
	return filepath.Join(w.Dir, "solvated.gro")
}

// IonsGro is the structure after ion placement.
func (w Workload) IonsGro() string {
	return filepath.Join(w.Dir, "ions.gro")
}

// EMTpr is the portable run input of the energy minimization.
func (w Workload) EMTpr() string {
	return filepath.Join(w.Dir, "EM.tpr")
}

// EMOutMdp is the post-processed parameter file written by grompp.
func (w Workload) EMOutMdp() string {
	return filepath.Join(w.Dir, "EMout.mdp")
}
