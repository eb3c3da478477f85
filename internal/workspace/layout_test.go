package workspace

import (
	"path/filepath"
	"testing"
)

func TestLayout_Deterministic(t *testing.T) {
	l, err := NewLayout("/work/run1", ProteinFFAmber)
	if err != nil {
		t.Fatalf("NewLayout() error = %v", err)
	}

	e := Edge{StartLigand: "p38a_2aa", EndLigand: "p38a_2bb"}
	first := l.EdgeTopologyLigandInWater(e)
	second := l.EdgeTopologyLigandInWater(e)
	if first != second {
		t.Errorf("repeated calls differ: %q vs %q", first, second)
	}

	want := filepath.Join("/work/run1", "protein", "edge_p38a_2aa_p38a_2bb", "amber", "topology", "topol_ligandInWater.top")
	if first != want {
		t.Errorf("EdgeTopologyLigandInWater() = %q, want %q", first, want)
	}
}

func TestLayout_RootSensitivity(t *testing.T) {
	l1, err := NewLayout("/work/a", ProteinFFAmber)
	if err != nil {
		t.Fatalf("NewLayout() error = %v", err)
	}
	l2, err := NewLayout("/work/b", ProteinFFAmber)
	if err != nil {
		t.Fatalf("NewLayout() error = %v", err)
	}

	e := Edge{StartLigand: "x", EndLigand: "y"}
	if l1.EdgeDir(e) == l2.EdgeDir(e) {
		t.Errorf("distinct roots produced the same edge dir %q", l1.EdgeDir(e))
	}
	if l1.LigandDir("lig1") == l2.LigandDir("lig1") {
		t.Errorf("distinct roots produced the same ligand dir %q", l1.LigandDir("lig1"))
	}
}

func TestEdge_DirectionSensitiveIdentity(t *testing.T) {
	ab := Edge{StartLigand: "a", EndLigand: "b"}
	ba := Edge{StartLigand: "b", EndLigand: "a"}
	if ab == ba {
		t.Fatal("Edge{a,b} == Edge{b,a}; edges must keep their direction")
	}
	if ab.DirName() == ba.DirName() {
		t.Errorf("DirName() collision for reversed edges: %q", ab.DirName())
	}
	if ab.DirName() != "edge_a_b" {
		t.Errorf("DirName() = %q, want %q", ab.DirName(), "edge_a_b")
	}
	if ab.Name() != "a-b" {
		t.Errorf("Name() = %q, want %q", ab.Name(), "a-b")
	}
	if ab.StartLigandName() != "lig_a" || ab.EndLigandName() != "lig_b" {
		t.Errorf("ligand names = %q, %q", ab.StartLigandName(), ab.EndLigandName())
	}
}

func TestTopologyStem_Dispatch(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindLigand, "ligandInWater"},
		{KindProtein, "amber"},
	}
	for _, tt := range tests {
		if got := TopologyStem(tt.kind, ProteinFFAmber); got != tt.want {
			t.Errorf("TopologyStem(%v) = %q, want %q", tt.kind, got, tt.want)
		}
	}

	want := filepath.Join("topology", "topol_ligandInWater.top")
	if got := TopologyPath(KindLigand, ProteinFFAmber); got != want {
		t.Errorf("TopologyPath(KindLigand) = %q, want %q", got, want)
	}
}

func TestWorkload_FixedLeafNames(t *testing.T) {
	w := Workload{Kind: KindLigand, Dir: "/work/ligand"}
	tests := []struct {
		got  string
		leaf string
	}{
		{w.CorrectedBoxGro(), "correctBox.gro"},
		{w.SolvatedGro(), "solvated.gro"},
		{w.IonsGro(), "ions.gro"},
		{w.EMTpr(), "EM.tpr"},
		{w.EMOutMdp(), "EMout.mdp"},
	}
	for _, tt := range tests {
		if filepath.Base(tt.got) != tt.leaf {
			t.Errorf("leaf = %q, want %q", filepath.Base(tt.got), tt.leaf)
		}
		if filepath.Dir(tt.got) != "/work/ligand" {
			t.Errorf("dir = %q, want %q", filepath.Dir(tt.got), "/work/ligand")
		}
	}
}
