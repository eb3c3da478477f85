package pipelines

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/me/ligflow/internal/graph"
	"github.com/me/ligflow/pkg/model"
)

// SelectionConfig holds the parameters of one ligand-selection pass.
type SelectionConfig struct {
	// ScoresCSV is the score table produced by screening. The first column
	// is the ligand name, the last column the score.
	ScoresCSV string
	// InputSMI is the expanded ligand library the screening ran over.
	InputSMI string
	// OutputSMI is the reduced library containing only the selected ligands.
	OutputSMI string
	// NLigands is how many top-scoring ligands to keep.
	NLigands int
}

// SubmittedSelection pairs a selection config with its task.
type SubmittedSelection struct {
	Config SelectionConfig
	Task   *graph.Task
}

// SubmitSelection records the ligand-selection stage, depending on the
// screening that produces its score table.
func SubmitSelection(job *graph.Job, config SelectionConfig, screening SubmittedScreening) (SubmittedSelection, error) {
	if config.NLigands <= 0 {
		return SubmittedSelection{}, model.NewConfigurationError(
			"selection: n_ligands must be positive, got %d", config.NLigands)
	}
	config.ScoresCSV = screening.Config.OutputPath

	task, err := job.Submit(graph.SubmitSpec{
		Name: "select-ligands",
		Deps: []*graph.Task{screening.Task},
		Run: func(ctx context.Context) error {
			return SelectTopScoringLigands(config)
		},
	})
	if err != nil {
		return SubmittedSelection{}, err
	}
	return SubmittedSelection{Config: config, Task: task}, nil
}

type scoredLigand struct {
	name  string
	score float64
}

// SelectTopScoringLigands reads the score table, keeps the NLigands
// best-scoring ligands and writes the reduced library. Ranking is by
// descending score; ties keep their input order, so repeated runs over the
// same table select the same set.
func SelectTopScoringLigands(config SelectionConfig) error {
	scored, err := readScores(config.ScoresCSV)
	if err != nil {
		return err
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})
	n := config.NLigands
	if n > len(scored) {
		n = len(scored)
	}
	keep := make(map[string]bool, n)
	for _, lig := range scored[:n] {
		keep[lig.name] = true
	}

	return writeReducedLibrary(config.InputSMI, config.OutputSMI, keep)
}

// readScores parses the screening score table: a preamble header line
// followed by one record per ligand, name first, score last.
func readScores(path string) ([]scoredLigand, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scores %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse scores %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("scores %s: empty table", path)
	}

	var scored []scoredLigand
	for i, record := range records[1:] {
		if len(record) < 2 {
			return nil, fmt.Errorf("scores %s: record %d has %d fields, want at least 2", path, i+2, len(record))
		}
		score, err := strconv.ParseFloat(strings.TrimSpace(record[len(record)-1]), 64)
		if err != nil {
			return nil, fmt.Errorf("scores %s: record %d: bad score: %w", path, i+2, err)
		}
		scored = append(scored, scoredLigand{name: strings.TrimSpace(record[0]), score: score})
	}
	return scored, nil
}

// writeReducedLibrary copies the library lines whose ligand name is in keep,
// preserving input order. Library lines are "SMILES name".
func writeReducedLibrary(inputSMI, outputSMI string, keep map[string]bool) error {
	in, err := os.Open(inputSMI)
	if err != nil {
		return fmt.Errorf("open library %s: %w", inputSMI, err)
	}
	defer in.Close()

	out, err := os.Create(outputSMI)
	if err != nil {
		return fmt.Errorf("create library %s: %w", outputSMI, err)
	}
	defer out.Close()

	w := bufio.NewWriter(out)
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := scanner.Text()
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		if keep[fields[len(fields)-1]] {
			fmt.Fprintln(w, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read library %s: %w", inputSMI, err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("write library %s: %w", outputSMI, err)
	}
	return nil
}
