package ligen

import (
	"context"
	"path/filepath"
)

// ExpansionConfig holds the parameters of one ligand-library expansion: the
// engine enumerates protonation states and stereoisomers of every ligand in
// the input library before screening.
type ExpansionConfig struct {
	// InputSMI is the raw ligand library.
	InputSMI string
	// OutputSMI is the expanded library the screening stage reads.
	OutputSMI string
}

// RunExpansion expands the ligand library inside the engine container.
func RunExpansion(ctx context.Context, tctx *TaskContext, config ExpansionConfig) error {
	c := tctx.NewContainer()
	input := c.MapInput(config.InputSMI)
	output := c.MapOutput(config.OutputSMI)

	return c.RunArgs(ctx, "ligen-expand", []any{"-i", input, "-o", output})
}

// ExpansionTaskName derives the task name of an expansion run from its output.
func ExpansionTaskName(config ExpansionConfig) string {
	return "expansion-" + filepath.Base(config.OutputSMI)
}
