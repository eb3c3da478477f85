// Package pipelines composes workspace layout, tool invocations and the
// screening/docking engine into job graphs, one submit function per stage.
// Submit functions only record tasks; nothing executes until a runner takes
// the job.
package pipelines

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/me/ligflow/internal/graph"
)

// CheckProtein validates the input protein structure before any downstream
// stage touches it: the file must exist, be non-empty and contain at least
// one ATOM record.
func CheckProtein(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open protein %s: %w", path, err)
	}
	defer f.Close()

	atoms := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "ATOM") || strings.HasPrefix(line, "HETATM") {
			atoms++
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read protein %s: %w", path, err)
	}
	if atoms == 0 {
		return fmt.Errorf("protein %s: no ATOM records found", path)
	}
	return nil
}

// SubmitCheckProtein records the protein validity check as the root task of
// the workflow.
func SubmitCheckProtein(job *graph.Job, pdbPath string) (*graph.Task, error) {
	return job.Submit(graph.SubmitSpec{
		Name: "check-protein",
		Run: func(ctx context.Context) error {
			return CheckProtein(pdbPath)
		},
	})
}
