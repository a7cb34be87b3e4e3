package topology

import (
	"math/rand"
	"testing"
)

func TestParseSeedPolicy(t *testing.T) {
	tests := []struct {
		input   string
		want    SeedPolicy
		wantErr bool
	}{
		{"r", PolicyRandom, false},
		{"g", PolicyGenerated, false},
		{"f", PolicyFixed, false},
		{"x", 0, true},
		{"", 0, true},
		{"random", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseSeedPolicy(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSeedPolicy(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseSeedPolicy(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestSeedPlan_Fixed(t *testing.T) {
	entropy := rand.New(rand.NewSource(1))
	for _, iteration := range []int{0, 1, 17} {
		plan := PolicyFixed.Plan(iteration, entropy)
		if !plan.Explicit {
			t.Errorf("iteration %d: fixed plan not explicit", iteration)
		}
		if plan.Seed != int64(iteration) {
			t.Errorf("iteration %d: seed = %d, want %d", iteration, plan.Seed, iteration)
		}
	}
}

func TestSeedPlan_Random(t *testing.T) {
	entropy := rand.New(rand.NewSource(1))
	seen := map[int64]bool{}
	for i := 0; i < 10; i++ {
		plan := PolicyRandom.Plan(i, entropy)
		if !plan.Explicit {
			t.Error("random plan not explicit")
		}
		if plan.Seed < 0 || plan.Seed >= 1<<31 {
			t.Errorf("seed %d out of [0, 2^31)", plan.Seed)
		}
		seen[plan.Seed] = true
	}
	if len(seen) < 2 {
		t.Error("random policy produced a single seed across 10 iterations")
	}
}

func TestSeedPlan_Generated(t *testing.T) {
	entropy := rand.New(rand.NewSource(1))
	plan := PolicyGenerated.Plan(0, entropy)
	if plan.Explicit {
		t.Error("generated plan should not set an explicit scenario seed")
	}
	if plan.Seed < 0 || plan.Seed >= 1<<31 {
		t.Errorf("placement seed %d out of [0, 2^31)", plan.Seed)
	}
}
