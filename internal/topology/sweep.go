package topology

import (
	"fmt"
	"math"
)

// RatioPair is one tx/rx success-ratio combination of the sweep.
type RatioPair struct {
	TX float64
	RX float64
}

// RoundRatios returns the values rounded to two decimal places, the
// precision the scenario format carries for success ratios.
func RoundRatios(vals []float64) []float64 {
	out := make([]float64, len(vals))
	for i, v := range vals {
		out[i] = math.Round(v*100) / 100
	}
	return out
}

// ValidateRatios checks that every value lies in [0, 1]. name identifies the
// offending flag in the error message.
func ValidateRatios(name string, vals []float64) error {
	if len(vals) == 0 {
		return fmt.Errorf("%s: at least one value required", name)
	}
	for _, v := range vals {
		if v < 0.0 || v > 1.0 {
			return fmt.Errorf("%s must be between 0.0 and 1.0 (%g was given)", name, v)
		}
	}
	return nil
}

// SweepRatios returns the cross product of the two ratio lists in nested-loop
// order: tx outer, rx inner. Duplicates are kept; each entry produces its own
// artifact.
func SweepRatios(tx, rx []float64) []RatioPair {
	pairs := make([]RatioPair, 0, len(tx)*len(rx))
	for _, t := range tx {
		for _, r := range rx {
			pairs = append(pairs, RatioPair{TX: t, RX: r})
		}
	}
	return pairs
}
