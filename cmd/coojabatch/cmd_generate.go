package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/contiki-tools/coojabatch/internal/csc"
	"github.com/contiki-tools/coojabatch/internal/logging"
	"github.com/contiki-tools/coojabatch/internal/topology"
	"github.com/spf13/cobra"
)

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate randomized topologies from a base scenario",
		Long: `Generate loads a base Cooja scenario, assigns random positions to every
mote except the first (the anchor), and writes one scenario file per
iteration and tx/rx success-ratio combination.

Every placed mote is within transmitting range of at least one mote placed
before it. With --min-distance, all motes additionally keep a minimum
separation. The default topology mode biases placement away from the
anchor to promote multi-hop chains; --topology spread places symmetrically.

Example:
  coojabatch generate -i base.csc -o out/exp.csc -c 10 --seed f \
    --tx-ratio 0.8 --tx-ratio 1.0 --rx-ratio 1.0`,
		RunE: func(cmd *cobra.Command, args []string) error {
			input, _ := cmd.Flags().GetString("input")
			output, _ := cmd.Flags().GetString("output")
			count, _ := cmd.Flags().GetInt("count")
			seedFlag, _ := cmd.Flags().GetString("seed")
			topoFlag, _ := cmd.Flags().GetString("topology")
			minDistance, _ := cmd.Flags().GetFloat64("min-distance")
			txRatios, _ := cmd.Flags().GetFloat64Slice("tx-ratio")
			rxRatios, _ := cmd.Flags().GetFloat64Slice("rx-ratio")
			maxAttempts, _ := cmd.Flags().GetInt("max-attempts")
			jsonOut, _ := cmd.Flags().GetBool("json")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			log := newLogger(cfg)

			policy, err := topology.ParseSeedPolicy(seedFlag)
			if err != nil {
				return err
			}

			// Reject bad ratio lists before any placement work.
			if err := topology.ValidateRatios("tx-ratio", txRatios); err != nil {
				return err
			}
			if err := topology.ValidateRatios("rx-ratio", rxRatios); err != nil {
				return err
			}
			txRatios = topology.RoundRatios(txRatios)
			rxRatios = topology.RoundRatios(rxRatios)

			scenario, err := csc.Load(input)
			if err != nil {
				return fmt.Errorf("failed to load scenario: %w", err)
			}

			// The range capability is selected once here: range-based
			// media expose their own range, everything else gets the
			// configured fallback.
			txRange, ok := scenario.TransmittingRange()
			if !ok {
				txRange = cfg.Generation.FallbackTxRange
			}

			if maxAttempts < 0 {
				maxAttempts = cfg.Generation.MaxAttempts
			}
			constraints := topology.Constraints{
				TransmittingRange: txRange,
				MinDistance:       minDistance,
				Mode:              topology.ParseMode(topoFlag),
				MaxAttempts:       maxAttempts,
			}
			if err := constraints.Validate(); err != nil {
				return err
			}

			moteCount := len(scenario.Nodes())
			log.Info("placement parameters",
				"tx_range", txRange,
				"max_multihop_range", constraints.MaxRange(moteCount),
				"motes", moteCount,
				"mode", constraints.Mode.String(),
				"seed_policy", policy.String())

			if dir := filepath.Dir(output); dir != "" && dir != "." {
				if err := os.MkdirAll(dir, 0755); err != nil {
					return fmt.Errorf("failed to create output directory: %w", err)
				}
			}

			trace := logging.NewTraceLogger(filepath.Dir(cfg.Results.DBPath), cfg.Logging.Level)
			defer trace.Close()

			gen := &topology.Generator{
				Scenario:    scenario,
				Output:      output,
				Count:       count,
				Policy:      policy,
				Constraints: constraints,
				TxRatios:    txRatios,
				RxRatios:    rxRatios,
				Log:         log,
				Trace:       trace,
			}
			artifacts, err := gen.Run()
			if err != nil {
				return err
			}

			if jsonOut {
				json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]interface{}{
					"artifacts": artifacts,
					"count":     len(artifacts),
				})
			} else {
				for _, a := range artifacts {
					fmt.Fprintf(cmd.OutOrStdout(), "Generated %s\n", a)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringP("input", "i", "", "Input scenario path (required)")
	cmd.Flags().StringP("output", "o", "", "Output path or prefix (required)")
	cmd.Flags().IntP("count", "c", 1, "Number of topologies to generate")
	cmd.Flags().String("seed", "r", "Seed policy: r (random), g (generated), or f (fixed)")
	cmd.Flags().String("topology", "", "Topology mode; 'spread' disables the multihop bias")
	cmd.Flags().Float64("min-distance", 0, "Minimum distance between motes (0 = disabled)")
	cmd.Flags().Float64Slice("tx-ratio", []float64{1.0}, "Transmission success ratio(s), rounded to 2 decimals")
	cmd.Flags().Float64Slice("rx-ratio", []float64{1.0}, "Reception success ratio(s), rounded to 2 decimals")
	cmd.Flags().Int("max-attempts", -1, "Placement attempts per mote before giving up (0 = unbounded, -1 = config default)")
	cmd.MarkFlagRequired("input")
	cmd.MarkFlagRequired("output")

	return cmd
}
