// Package gmx wraps the GROMACS command-line tool and implements the
// per-entity solvation and energy-minimization preparation steps.
package gmx

import (
	"context"
	"log/slog"

	"github.com/me/ligflow/internal/toolexec"
)

// GMX wraps invocations of the GROMACS binary.
type GMX struct {
	tool *toolexec.Tool
}

// New creates a GMX wrapper. An empty path falls back to "gmx" on PATH.
func New(path string, logger *slog.Logger) *GMX {
	return &GMX{tool: toolexec.New(path, "gmx", logger)}
}

// Execute runs a GROMACS subcommand with the given arguments.
func (g *GMX) Execute(ctx context.Context, args []any, opts *toolexec.Options) error {
	return g.tool.Execute(ctx, args, opts)
}

// Editconf places the molecule in a rhombic dodecahedron box with 1.5 nm
// distance to the edges.
func (g *GMX) Editconf(ctx context.Context, input, output string) error {
	return g.Execute(ctx, []any{
		"editconf",
		"-f", toolexec.Path(input),
		"-o", toolexec.Path(output),
		"-bt", "dodecahedron",
		"-d", "1.5",
	}, nil)
}
