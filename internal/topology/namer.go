package topology

import (
	"fmt"
	"strings"
)

// Namer derives deterministic artifact paths from the iteration index and
// ratio combination. Identical inputs always produce identical names, and no
// two (iteration, pair) combinations collide.
type Namer struct {
	base       string
	ext        string
	count      int
	multiRatio bool
}

// NewNamer builds a namer for a batch. output is the configured output path
// or prefix; count is the number of iterations; combos is the total number of
// ratio combinations in the sweep. The scenario extension is fixed, but a
// gzipped output path keeps its .csc.gz suffix.
func NewNamer(output string, count, combos int) Namer {
	ext := ".csc"
	base := output
	switch {
	case strings.HasSuffix(output, ".csc.gz"):
		ext = ".csc.gz"
		base = strings.TrimSuffix(output, ".csc.gz")
	case strings.HasSuffix(output, ".csc"):
		base = strings.TrimSuffix(output, ".csc")
	}
	return Namer{base: base, ext: ext, count: count, multiRatio: combos > 1}
}

// Artifact returns the output path for the given 1-based iteration and ratio
// pair. The ratio suffix appears only when the sweep has more than one
// combination; the zero-padded iteration suffix only when count > 1.
func (n Namer) Artifact(iteration int, pair RatioPair) string {
	name := n.base
	if n.multiRatio {
		name += fmt.Sprintf("-tx%.2f-rx%.2f", pair.TX, pair.RX)
	}
	if n.count > 1 {
		name += fmt.Sprintf("-%05d", iteration)
	}
	return name + n.ext
}
