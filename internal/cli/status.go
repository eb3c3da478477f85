package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/me/ligflow/internal/store"
	"github.com/me/ligflow/pkg/model"
)

func newStatusCmd() *cobra.Command {
	var ledgerPath string

	cmd := &cobra.Command{
		Use:   "status [run_id]",
		Short: "Show recorded runs, or the tasks of one run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ledger, err := store.NewSQLiteStore(ledgerPath, logger)
			if err != nil {
				return err
			}
			defer ledger.Close()
			if err := ledger.Migrate(cmd.Context()); err != nil {
				return err
			}

			if len(args) == 1 {
				return showRun(cmd, ledger, args[0])
			}
			return listRuns(cmd, ledger)
		},
	}

	cmd.Flags().StringVar(&ledgerPath, "ledger", "ligflow.db", "Run ledger database path")

	return cmd
}

func listRuns(cmd *cobra.Command, ledger store.Store) error {
	runs, total, err := ledger.ListRuns(cmd.Context(), model.ListOptions{Limit: 50})
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}

	if total == 0 {
		fmt.Println("No recorded runs.")
		return nil
	}
	for _, run := range runs {
		line := fmt.Sprintf("%s  %-9s  %s  %s",
			run.ID, run.State, run.CreatedAt.Format(time.RFC3339), run.Name)
		fmt.Println(line)
	}
	if total > len(runs) {
		fmt.Printf("(%d of %d runs shown)\n", len(runs), total)
	}
	return nil
}

func showRun(cmd *cobra.Command, ledger store.Store, id string) error {
	run, err := ledger.GetRun(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("get run: %w", err)
	}
	if run == nil {
		return fmt.Errorf("run %s not found", id)
	}

	fmt.Printf("Run: %s\n", run.ID)
	fmt.Printf("  Name:  %s\n", run.Name)
	fmt.Printf("  State: %s\n", run.State)
	if run.CompletedAt != nil {
		fmt.Printf("  Took:  %s\n", run.CompletedAt.Sub(run.CreatedAt).Round(time.Second))
	}

	tasks, err := ledger.ListTasksByRun(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("list tasks: %w", err)
	}
	if len(tasks) == 0 {
		return nil
	}

	fmt.Println("  Tasks:")
	for _, task := range tasks {
		fmt.Printf("    %-10s %s", task.State, task.Name)
		if task.Reason != "" {
			fmt.Printf("  (%s)", task.Reason)
		}
		fmt.Println()
	}
	return nil
}
