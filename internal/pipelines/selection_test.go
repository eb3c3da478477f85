package pipelines

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeScores(t *testing.T, dir string, rows []string) string {
	t.Helper()
	path := filepath.Join(dir, "scores.csv")
	content := "LIGAND_NAME,SCORE_PROTEIN_NAME,D22_SCORE\n" + strings.Join(rows, "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write scores: %v", err)
	}
	return path
}

func writeLibrary(t *testing.T, dir string, lines []string) string {
	t.Helper()
	path := filepath.Join(dir, "ligands.smi")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatalf("write library: %v", err)
	}
	return path
}

func readLigands(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read reduced library: %v", err)
	}
	var names []string
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		names = append(names, fields[len(fields)-1])
	}
	return names
}

func TestSelectTopScoringLigands_TopK(t *testing.T) {
	dir := t.TempDir()

	// 100 ligands with unique, increasing scores; lig99 scores best.
	var rows, library []string
	for i := 0; i < 100; i++ {
		name := fmt.Sprintf("lig%02d", i)
		rows = append(rows, fmt.Sprintf("%s,p38,%d.5", name, i))
		library = append(library, fmt.Sprintf("c1ccccc1C%d %s", i, name))
	}

	cfg := SelectionConfig{
		ScoresCSV: writeScores(t, dir, rows),
		InputSMI:  writeLibrary(t, dir, library),
		OutputSMI: filepath.Join(dir, "selected.smi"),
		NLigands:  42,
	}
	if err := SelectTopScoringLigands(cfg); err != nil {
		t.Fatalf("SelectTopScoringLigands() error = %v", err)
	}

	got := readLigands(t, cfg.OutputSMI)
	if len(got) != 42 {
		t.Fatalf("selected %d ligands, want exactly 42", len(got))
	}
	// The top 42 scores are lig58..lig99; the reduced library keeps input order.
	for i, name := range got {
		want := fmt.Sprintf("lig%02d", 58+i)
		if name != want {
			t.Errorf("selected[%d] = %s, want %s", i, name, want)
		}
	}
}

func TestSelectTopScoringLigands_TieBreakByInputOrder(t *testing.T) {
	dir := t.TempDir()

	rows := []string{
		"early,p38,5.0",
		"late,p38,5.0",
		"best,p38,9.0",
	}
	library := []string{
		"CCO early",
		"CCN late",
		"CCC best",
	}

	cfg := SelectionConfig{
		ScoresCSV: writeScores(t, dir, rows),
		InputSMI:  writeLibrary(t, dir, library),
		OutputSMI: filepath.Join(dir, "selected.smi"),
		NLigands:  2,
	}
	if err := SelectTopScoringLigands(cfg); err != nil {
		t.Fatalf("SelectTopScoringLigands() error = %v", err)
	}

	got := readLigands(t, cfg.OutputSMI)
	if len(got) != 2 {
		t.Fatalf("selected %d ligands, want 2", len(got))
	}
	// "best" wins outright; the 5.0 tie resolves to the earlier input row.
	for _, want := range []string{"early", "best"} {
		found := false
		for _, name := range got {
			if name == want {
				found = true
			}
		}
		if !found {
			t.Errorf("selected set %v missing %q", got, want)
		}
	}
	for _, name := range got {
		if name == "late" {
			t.Error("tie broke toward the later input row; must keep input order")
		}
	}
}

func TestSelectTopScoringLigands_FewerThanK(t *testing.T) {
	dir := t.TempDir()

	cfg := SelectionConfig{
		ScoresCSV: writeScores(t, dir, []string{"only,p38,1.0"}),
		InputSMI:  writeLibrary(t, dir, []string{"CCO only"}),
		OutputSMI: filepath.Join(dir, "selected.smi"),
		NLigands:  10,
	}
	if err := SelectTopScoringLigands(cfg); err != nil {
		t.Fatalf("SelectTopScoringLigands() error = %v", err)
	}
	if got := readLigands(t, cfg.OutputSMI); len(got) != 1 {
		t.Errorf("selected %d ligands, want 1", len(got))
	}
}
