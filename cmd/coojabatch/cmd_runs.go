package main

import (
	"encoding/json"
	"fmt"

	"github.com/contiki-tools/coojabatch/internal/store"
	"github.com/spf13/cobra"
)

func newRunsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded simulation runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			failedOnly, _ := cmd.Flags().GetBool("failed")
			jsonOut, _ := cmd.Flags().GetBool("json")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			results, err := store.Open(cfg.Results.DBPath)
			if err != nil {
				return fmt.Errorf("failed to open results store: %w", err)
			}
			defer results.Close()

			runs, err := results.ListRuns(cmd.Context(), failedOnly)
			if err != nil {
				return err
			}

			if jsonOut {
				json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]interface{}{
					"runs":  runs,
					"count": len(runs),
				})
				return nil
			}

			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded yet.")
				fmt.Fprintln(cmd.OutOrStdout(), "\nUse 'coojabatch run <scenario.csc>' to run a simulation.")
				return nil
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Recorded runs (%d):\n\n", len(runs))
			for i, r := range runs {
				status := "PASS"
				if !r.Passed {
					status = "FAIL"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d. [%s] %s\n", i+1, status, r.Scenario)
				fmt.Fprintf(cmd.OutOrStdout(), "   Trace:    %s\n", r.TraceDir)
				fmt.Fprintf(cmd.OutOrStdout(), "   Duration: %s\n", r.Duration)
				if r.SeedPolicy != "" {
					fmt.Fprintf(cmd.OutOrStdout(), "   Seed:     %s\n", r.SeedPolicy)
				}
				fmt.Fprintln(cmd.OutOrStdout())
			}
			return nil
		},
	}

	cmd.Flags().Bool("failed", false, "Show failed runs only")

	return cmd
}
