// Package cli implements the ligflow command line interface.
package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/me/ligflow/internal/logging"
)

var (
	flagLogLevel  string
	flagLogFormat string

	logger *slog.Logger
)

// NewRootCmd creates the root cobra command for the ligflow CLI.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "ligflow",
		Short: "ligflow — virtual screening and docking pipeline runner",
		Long: "ligflow expands a ligand library, screens it against a target protein,\n" +
			"docks the best-scoring ligands and optionally prepares the resulting\n" +
			"complexes for molecular dynamics.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger = logging.New(logging.Options{Level: flagLogLevel, Format: flagLogFormat})
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flagLogFormat, "log-format", "text", "Log format (text, json)")

	root.AddCommand(
		newRunCmd(),
		newDescribeCmd(),
		newStatusCmd(),
		newServeCmd(),
	)

	return root
}
