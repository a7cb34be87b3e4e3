package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/contiki-tools/coojabatch/internal/runner"
	"github.com/contiki-tools/coojabatch/internal/store"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [scenario...]",
		Short: "Run Cooja headlessly over generated scenarios",
		Long: `Run executes the external Cooja simulator over one or more scenario
files. Each run's logs are collected into a data-trace directory next to
the scenario (or under --output-dir), and the run passes when the
simulation script log contains the TEST OK marker. Failed runs keep their
trace directory with a -fail suffix.

Every run is recorded in the results database; see 'coojabatch runs'.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputDir, _ := cmd.Flags().GetString("output-dir")
			seedPolicy, _ := cmd.Flags().GetString("seed-policy")
			jsonOut, _ := cmd.Flags().GetBool("json")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			log := newLogger(cfg)

			if outputDir != "" {
				if err := os.MkdirAll(outputDir, 0755); err != nil {
					return fmt.Errorf("failed to create output directory: %w", err)
				}
			}

			r, err := runner.New(runner.Config{
				CoojaPath:   cfg.Simulator.CoojaPath,
				ContikiPath: cfg.Simulator.ContikiPath,
				OutputDir:   outputDir,
				Timeout:     cfg.Simulator.Timeout,
			}, log)
			if err != nil {
				return err
			}

			results, err := store.Open(cfg.Results.DBPath)
			if err != nil {
				return fmt.Errorf("failed to open results store: %w", err)
			}
			defer results.Close()

			// Cancel the running simulation on Ctrl+C or SIGTERM.
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			sigCh := make(chan os.Signal, 1)
			notifySignals(sigCh)
			go func() {
				<-sigCh
				cancel()
			}()

			var runs []store.Run
			for _, scenario := range args {
				started := time.Now()
				res, err := r.Run(ctx, scenario)
				if err != nil {
					return fmt.Errorf("failed to run simulation %q: %w", scenario, err)
				}

				run := store.Run{
					Scenario:   res.Scenario,
					TraceDir:   res.TraceDir,
					SeedPolicy: seedPolicy,
					StartedAt:  started,
					Duration:   res.Duration,
					ExitCode:   res.ExitCode,
					Passed:     res.Passed,
				}
				if _, err := results.RecordRun(ctx, run); err != nil {
					return err
				}
				runs = append(runs, run)

				if !res.Passed {
					return fmt.Errorf("simulation failed: %s (trace in %s)", res.Scenario, res.TraceDir)
				}
			}

			if jsonOut {
				json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]interface{}{
					"runs":   runs,
					"count":  len(runs),
					"passed": len(runs),
				})
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Done. %d simulation(s) passed.\n", len(runs))
			}
			return nil
		},
	}

	cmd.Flags().StringP("output-dir", "o", "", "Directory for data-trace output (default: current directory)")
	cmd.Flags().String("seed-policy", "", "Seed policy tag to record with each run (informational)")

	return cmd
}
