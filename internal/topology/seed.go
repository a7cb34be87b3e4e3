package topology

import (
	"fmt"
	"math/rand"
)

// SeedPolicy decides how the simulation seed and the placement generator are
// initialized for each generated scenario.
type SeedPolicy int

const (
	// PolicyRandom draws a fresh seed for every iteration. Runs are not
	// reproducible across invocations.
	PolicyRandom SeedPolicy = iota
	// PolicyGenerated leaves seeding to the simulator: the scenario is
	// marked once to auto-generate a new seed on every load.
	PolicyGenerated
	// PolicyFixed uses the iteration index as the seed, giving
	// reproducible, distinct topologies per iteration.
	PolicyFixed
)

// ParseSeedPolicy maps the --seed flag letter to a policy.
func ParseSeedPolicy(s string) (SeedPolicy, error) {
	switch s {
	case "r":
		return PolicyRandom, nil
	case "g":
		return PolicyGenerated, nil
	case "f":
		return PolicyFixed, nil
	default:
		return 0, fmt.Errorf("invalid seed policy %q (must be r, g, or f)", s)
	}
}

func (p SeedPolicy) String() string {
	switch p {
	case PolicyGenerated:
		return "generated"
	case PolicyFixed:
		return "fixed"
	default:
		return "random"
	}
}

// SeedPlan is the seeding action for one iteration. When Explicit is false
// the scenario keeps its auto-generate marker and Seed only drives placement.
type SeedPlan struct {
	Seed     int64
	Explicit bool
}

// Plan produces the seeding action for the given 0-based iteration.
// entropy supplies fresh seeds for the random and generated policies; the
// fixed policy ignores it.
func (p SeedPolicy) Plan(iteration int, entropy *rand.Rand) SeedPlan {
	switch p {
	case PolicyFixed:
		return SeedPlan{Seed: int64(iteration), Explicit: true}
	case PolicyGenerated:
		// The simulator seeds itself; placement still needs its own seed.
		return SeedPlan{Seed: entropy.Int63n(1 << 31), Explicit: false}
	default:
		return SeedPlan{Seed: entropy.Int63n(1 << 31), Explicit: true}
	}
}
