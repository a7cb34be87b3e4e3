package topology

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/contiki-tools/coojabatch/internal/logging"
)

// ScenarioHandle is the mutable scenario a batch drives. *csc.Scenario
// implements it; tests substitute a fake.
type ScenarioHandle interface {
	// Nodes returns the motes in scenario order, anchor first.
	Nodes() []Node
	// SetNodePosition moves the mote with the given ID.
	SetNodePosition(id int, x, y float64) error
	// SetSeed sets an explicit simulation seed.
	SetSeed(seed int64)
	// SetGeneratedSeed marks the scenario to generate its own seed on load.
	SetGeneratedSeed()
	// SetSuccessRatios overwrites the radio medium's tx/rx success ratios.
	SetSuccessRatios(tx, rx float64)
	// SaveTo serializes the current scenario state to path.
	SaveTo(path string) error
}

// Generator drives the full batch: per iteration it reseeds, places all
// motes, then emits one artifact per ratio combination.
type Generator struct {
	Scenario    ScenarioHandle
	Output      string
	Count       int
	Policy      SeedPolicy
	Constraints Constraints
	TxRatios    []float64
	RxRatios    []float64
	Log         *slog.Logger
	Trace       *logging.TraceLogger

	// Entropy seeds the random and generated policies. When nil, a
	// time-seeded generator is used.
	Entropy *rand.Rand
}

// Run validates the configuration and executes all iterations, returning the
// emitted artifact paths in order. Validation failures occur before any
// placement work; a save failure aborts the batch but leaves artifacts from
// earlier combinations in place.
func (g *Generator) Run() ([]string, error) {
	if g.Count < 1 {
		return nil, fmt.Errorf("iteration count must be >= 1, got %d", g.Count)
	}
	if err := ValidateRatios("tx-ratio", g.TxRatios); err != nil {
		return nil, err
	}
	if err := ValidateRatios("rx-ratio", g.RxRatios); err != nil {
		return nil, err
	}
	if err := g.Constraints.Validate(); err != nil {
		return nil, err
	}

	entropy := g.Entropy
	if entropy == nil {
		entropy = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	pairs := SweepRatios(g.TxRatios, g.RxRatios)
	namer := NewNamer(g.Output, g.Count, len(pairs))

	if g.Policy == PolicyGenerated {
		// Set once for the whole batch; the simulator reseeds itself.
		g.Scenario.SetGeneratedSeed()
	}

	artifacts := make([]string, 0, g.Count*len(pairs))
	for i := 0; i < g.Count; i++ {
		plan := g.Policy.Plan(i, entropy)
		if plan.Explicit {
			g.Scenario.SetSeed(plan.Seed)
		}

		placer := NewPlacer(rand.New(rand.NewSource(plan.Seed)), g.Log, g.Trace)
		placed, err := placer.Place(g.Scenario.Nodes(), g.Constraints)
		if err != nil {
			return artifacts, fmt.Errorf("iteration %d: %w", i+1, err)
		}
		// The anchor (index 0) never moves; write back the rest.
		for j := 1; j < len(placed); j++ {
			n := placed[j]
			if err := g.Scenario.SetNodePosition(n.ID, n.X, n.Y); err != nil {
				return artifacts, fmt.Errorf("iteration %d: %w", i+1, err)
			}
		}

		for _, pair := range pairs {
			g.Scenario.SetSuccessRatios(pair.TX, pair.RX)
			path := namer.Artifact(i+1, pair)
			if err := g.Scenario.SaveTo(path); err != nil {
				return artifacts, fmt.Errorf("iteration %d: saving %s: %w", i+1, path, err)
			}
			artifacts = append(artifacts, path)
			g.Log.Info("generated scenario", "path", path,
				"iteration", i+1, "tx", pair.TX, "rx", pair.RX)
		}
	}
	return artifacts, nil
}
