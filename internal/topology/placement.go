// Package topology generates randomized mote placements for Cooja scenarios.
// Placement uses rejection sampling: candidate coordinates are drawn inside a
// bounding window around the anchor mote and discarded until one is both
// reachable from an already-placed mote and far enough from all of them.
package topology

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"

	"github.com/contiki-tools/coojabatch/internal/logging"
)

// ErrPlacementInfeasible is returned when a mote cannot be placed within the
// configured attempt budget. The constraint set is likely too tight for the
// sampling window (e.g. min-distance close to the transmitting range).
var ErrPlacementInfeasible = errors.New("placement infeasible")

// Node is a single mote with its scenario identity and 2D position.
type Node struct {
	ID int
	X  float64
	Y  float64
}

// Mode selects the shape of the sampling window around the anchor.
type Mode int

const (
	// ModeMultihop biases growth away from the anchor in one general
	// direction, encouraging multi-hop chains over clustered meshes.
	ModeMultihop Mode = iota
	// ModeSpread samples symmetrically around the anchor with no
	// directional bias, favoring denser local meshes.
	ModeSpread
)

// ParseMode maps the --topology flag value to a Mode.
// "spread" disables the multihop bias; everything else keeps the default.
func ParseMode(s string) Mode {
	if s == "spread" {
		return ModeSpread
	}
	return ModeMultihop
}

func (m Mode) String() string {
	if m == ModeSpread {
		return "spread"
	}
	return "multihop"
}

// Constraints bundles the feasibility parameters for one placement pass.
type Constraints struct {
	// TransmittingRange is the maximum distance at which two motes are
	// considered directly connected.
	TransmittingRange float64

	// MinDistance is the minimum separation between any pair of motes.
	// Zero disables the separation check.
	MinDistance float64

	// Mode selects the sampling window shape.
	Mode Mode

	// MaxAttempts caps rejection sampling per mote. Zero means unbounded,
	// matching the original tool's behavior of spinning until a candidate
	// is accepted.
	MaxAttempts int
}

// Validate reports whether the constraint set can produce a topology at all.
// A min-distance at or above the transmitting range makes every candidate
// either unreachable or too close, so generation must not start.
func (c Constraints) Validate() error {
	if c.TransmittingRange <= 0 {
		return fmt.Errorf("transmitting range must be positive, got %g", c.TransmittingRange)
	}
	if c.MinDistance < 0 {
		return fmt.Errorf("min distance must be >= 0, got %g", c.MinDistance)
	}
	if c.MinDistance > 0 && c.MinDistance >= c.TransmittingRange {
		return fmt.Errorf("too large minimal distance: %g is not below the transmitting range %g",
			c.MinDistance, c.TransmittingRange)
	}
	return nil
}

// MaxRange returns the diameter of the sampling window for n motes:
// the transmitting range times the mote count.
func (c Constraints) MaxRange(n int) float64 {
	return c.TransmittingRange * float64(n)
}

// Placer assigns coordinates to motes. The random generator is explicit so
// callers control reproducibility: the same seed yields the same topology.
type Placer struct {
	rng   *rand.Rand
	log   *slog.Logger
	trace *logging.TraceLogger
}

// NewPlacer creates a placer drawing from rng and logging through log.
// trace may be nil; candidate rejections are then not recorded.
func NewPlacer(rng *rand.Rand, log *slog.Logger, trace *logging.TraceLogger) *Placer {
	return &Placer{rng: rng, log: log, trace: trace}
}

// Place assigns coordinates to every mote except the first, which stays at
// its original position and anchors the topology. The input slice is not
// modified; the placed topology is returned as a new slice in the same order.
//
// Every placed mote has at least one earlier-placed mote within transmitting
// range. If c.MinDistance > 0, every pair of motes is at least that far
// apart. Returns ErrPlacementInfeasible (wrapped) when an attempt budget is
// configured and exhausted.
func (p *Placer) Place(nodes []Node, c Constraints) ([]Node, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	placed := make([]Node, 0, len(nodes))
	if len(nodes) == 0 {
		return placed, nil
	}

	anchor := nodes[0]
	placed = append(placed, anchor)
	p.log.Info("anchor mote keeps its original position",
		"mote", anchor.ID, "x", anchor.X, "y", anchor.Y)

	maxRange := c.MaxRange(len(nodes))
	for _, n := range nodes[1:] {
		x, y, err := p.sample(n.ID, anchor, placed, c, maxRange)
		if err != nil {
			return nil, err
		}
		n.X, n.Y = x, y
		placed = append(placed, n)
		p.log.Debug("placed mote", "mote", n.ID, "x", n.X, "y", n.Y)
	}
	return placed, nil
}

// sample runs rejection sampling for one mote until a candidate satisfies
// both the connectivity and the separation constraint.
func (p *Placer) sample(id int, anchor Node, placed []Node, c Constraints, maxRange float64) (float64, float64, error) {
	for attempt := 0; ; attempt++ {
		if c.MaxAttempts > 0 && attempt >= c.MaxAttempts {
			return 0, 0, fmt.Errorf("mote %d: no valid position after %d attempts: %w",
				id, attempt, ErrPlacementInfeasible)
		}

		var x, y float64
		switch c.Mode {
		case ModeSpread:
			x = p.uniform(anchor.X-maxRange+1, anchor.X+maxRange-1)
			y = p.uniform(anchor.Y-maxRange+1, anchor.Y+maxRange-1)
		default:
			x = p.uniform(anchor.X-maxRange/2+1, anchor.X+maxRange/2-1)
			y = p.uniform(anchor.Y+1, anchor.Y+maxRange-1)
		}

		if !withinRange(placed, x, y, c.TransmittingRange) {
			p.trace.Log(map[string]any{
				"event": "reject", "reason": "unreachable",
				"mote": id, "x": x, "y": y,
			})
			continue
		}
		if c.MinDistance > 0 && !separated(placed, x, y, c.MinDistance) {
			p.trace.Log(map[string]any{
				"event": "reject", "reason": "too close",
				"mote": id, "x": x, "y": y,
			})
			continue
		}
		return x, y, nil
	}
}

func (p *Placer) uniform(lo, hi float64) float64 {
	return lo + p.rng.Float64()*(hi-lo)
}

// withinRange reports whether (x, y) is within transmitting range of at
// least one placed mote.
func withinRange(placed []Node, x, y, txRange float64) bool {
	for _, m := range placed {
		if distance(m, x, y) < txRange {
			return true
		}
	}
	return false
}

// separated reports whether (x, y) keeps at least minDist to every placed mote.
func separated(placed []Node, x, y, minDist float64) bool {
	for _, m := range placed {
		if distance(m, x, y) < minDist {
			return false
		}
	}
	return true
}

// distance returns the Euclidean distance between a mote and a candidate point.
func distance(m Node, x, y float64) float64 {
	dx := x - m.X
	dy := y - m.Y
	return math.Sqrt(dx*dx + dy*dy)
}
