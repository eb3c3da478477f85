package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/me/ligflow/internal/config"
	"github.com/me/ligflow/internal/ligen"
	"github.com/me/ligflow/pkg/model"
)

func newDescribeCmd() *cobra.Command {
	var configPath string
	var stage string

	cmd := &cobra.Command{
		Use:   "describe",
		Short: "Print the engine pipeline description without running it",
		Long: "describe builds the declarative pipeline description that would be piped\n" +
			"to the screening/docking engine and prints it as JSON. Useful for\n" +
			"inspecting worker counts and container path mappings before a run.",
		RunE: func(cmd *cobra.Command, args []string) error {
			exp, err := config.Load(configPath)
			if err != nil {
				return err
			}
			return describeStage(cmd, exp, stage)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "experiment.yaml", "Experiment configuration file")
	cmd.Flags().StringVar(&stage, "stage", "screening", "Stage to describe (screening, docking)")

	return cmd
}

func describeStage(cmd *cobra.Command, exp *config.Experiment, stage string) error {
	engineDir := filepath.Join(exp.WorkDir, "ligen")
	c := ligen.NewContainer(exp.Engine.Image, logger)

	var encoded []byte
	switch stage {
	case "screening":
		cfg := exp.ScreeningConfig().WithDefaults()
		cfg.InputSMI = filepath.Join(engineDir, "ligands-expanded.smi")
		cfg.InputPDB = exp.Protein.PDB
		cfg.InputMol2 = exp.Ligands.CrystalMol2
		cfg.InputProteinName = exp.Protein.Name
		cfg.OutputPath = filepath.Join(engineDir, "scores.csv")

		d, err := ligen.ScreeningDescription(cfg, c)
		if err != nil {
			return err
		}
		encoded, err = d.Encode()
		if err != nil {
			return err
		}
	case "docking":
		cfg := exp.DockingConfig().WithDefaults()
		cfg.InputSMI = filepath.Join(engineDir, "ligands-selected.smi")
		cfg.InputPDB = exp.Protein.PDB
		cfg.InputMol2 = exp.Ligands.CrystalMol2
		cfg.InputProteinName = exp.Protein.Name
		cfg.OutputPath = filepath.Join(engineDir, "poses.csv")

		d, err := ligen.DockingDescription(cfg, c)
		if err != nil {
			return err
		}
		encoded, err = d.Encode()
		if err != nil {
			return err
		}
	default:
		return model.NewConfigurationError("unknown stage %q, want screening or docking", stage)
	}

	fmt.Fprintln(cmd.OutOrStdout(), string(encoded))
	return nil
}
