package topology

import "testing"

func TestNamer_SingleIterationSingleRatio(t *testing.T) {
	n := NewNamer("out/sim.csc", 1, 1)
	got := n.Artifact(1, RatioPair{1.0, 1.0})
	if got != "out/sim.csc" {
		t.Errorf("Artifact = %q, want %q", got, "out/sim.csc")
	}
}

func TestNamer_RatioSuffix(t *testing.T) {
	n := NewNamer("sim.csc", 1, 2)
	got := n.Artifact(1, RatioPair{0.5, 1.0})
	want := "sim-tx0.50-rx1.00.csc"
	if got != want {
		t.Errorf("Artifact = %q, want %q", got, want)
	}
}

func TestNamer_IterationSuffix(t *testing.T) {
	n := NewNamer("sim.csc", 3, 1)
	got := n.Artifact(2, RatioPair{1.0, 1.0})
	want := "sim-00002.csc"
	if got != want {
		t.Errorf("Artifact = %q, want %q", got, want)
	}
}

func TestNamer_BothSuffixes(t *testing.T) {
	n := NewNamer("exp/run.csc", 2, 2)
	got := n.Artifact(1, RatioPair{0.9, 0.75})
	want := "exp/run-tx0.90-rx0.75-00001.csc"
	if got != want {
		t.Errorf("Artifact = %q, want %q", got, want)
	}
}

func TestNamer_Deterministic(t *testing.T) {
	n := NewNamer("sim.csc", 5, 4)
	a := n.Artifact(3, RatioPair{0.8, 0.6})
	b := n.Artifact(3, RatioPair{0.8, 0.6})
	if a != b {
		t.Errorf("same inputs named differently: %q vs %q", a, b)
	}
}

func TestNamer_NoCollisions(t *testing.T) {
	n := NewNamer("sim.csc", 3, 4)
	pairs := SweepRatios([]float64{0.5, 1.0}, []float64{0.5, 1.0})
	seen := map[string]bool{}
	for i := 1; i <= 3; i++ {
		for _, p := range pairs {
			name := n.Artifact(i, p)
			if seen[name] {
				t.Errorf("duplicate artifact name %q", name)
			}
			seen[name] = true
		}
	}
	if len(seen) != 12 {
		t.Errorf("distinct names = %d, want 12", len(seen))
	}
}

func TestNamer_ExtensionHandling(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   string
	}{
		{"bare prefix", "out/sim", "out/sim.csc"},
		{"csc", "out/sim.csc", "out/sim.csc"},
		{"gzipped", "out/sim.csc.gz", "out/sim.csc.gz"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := NewNamer(tt.output, 1, 1)
			if got := n.Artifact(1, RatioPair{1, 1}); got != tt.want {
				t.Errorf("Artifact = %q, want %q", got, tt.want)
			}
		})
	}
}
