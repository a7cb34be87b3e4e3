package runner

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/contiki-tools/coojabatch/internal/logging"
)

func newTestRunner(t *testing.T) (*Runner, Config) {
	t.Helper()
	cooja := t.TempDir()
	contiki := t.TempDir()
	if err := os.WriteFile(filepath.Join(cooja, "build.gradle"), []byte("// gradle"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(contiki, "Makefile.include"), []byte("# make"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg := Config{
		CoojaPath:   cooja,
		ContikiPath: contiki,
		OutputDir:   t.TempDir(),
		WorkDir:     t.TempDir(),
	}
	r, err := New(cfg, logging.NewLogger("error", os.Stderr))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return r, cfg
}

func TestNew_MissingCooja(t *testing.T) {
	cfg := Config{
		CoojaPath:   t.TempDir(),
		ContikiPath: t.TempDir(),
	}
	if _, err := New(cfg, logging.NewLogger("error", os.Stderr)); err == nil {
		t.Error("New() expected error when build.gradle is missing")
	}
}

func TestNew_MissingContiki(t *testing.T) {
	cooja := t.TempDir()
	if err := os.WriteFile(filepath.Join(cooja, "build.gradle"), nil, 0644); err != nil {
		t.Fatal(err)
	}
	cfg := Config{
		CoojaPath:   cooja,
		ContikiPath: t.TempDir(),
	}
	if _, err := New(cfg, logging.NewLogger("error", os.Stderr)); err == nil {
		t.Error("New() expected error when Makefile.include is missing")
	}
}

func TestScanForMarker(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{
			name:  "pass marker",
			input: "1000\tstarting\n5000000\tTEST OK\n",
			want:  true,
		},
		{
			name:  "pass marker with surrounding noise",
			input: "boot\n12\tnode up\n99\tTEST OK\ntrailer\n",
			want:  true,
		},
		{
			name:  "no marker",
			input: "1000\tstarting\n5000000\tTEST FAILED\n",
			want:  false,
		},
		{
			name:  "marker text in wrong field",
			input: "TEST OK\t1000\n",
			want:  false,
		},
		{
			name:  "marker without tab separation",
			input: "1000 TEST OK\n",
			want:  false,
		},
		{
			name:  "marker with extra fields",
			input: "1000\tTEST OK\textra\n",
			want:  false,
		},
		{
			name:  "empty log",
			input: "",
			want:  false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ScanForMarker(strings.NewReader(tt.input)); got != tt.want {
				t.Errorf("ScanForMarker() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTraceDirNaming(t *testing.T) {
	r, cfg := newTestRunner(t)

	for _, scenario := range []string{"/sims/ring-00001.csc", "/sims/ring-00001.csc.gz"} {
		dir := r.traceDir(scenario)
		base := filepath.Base(dir)
		if !strings.HasPrefix(base, "ring-00001-dt-") {
			t.Errorf("traceDir(%q) = %q, want ring-00001-dt-<millis> base", scenario, base)
		}
		if filepath.Dir(dir) != cfg.OutputDir {
			t.Errorf("traceDir(%q) parent = %q, want %q", scenario, filepath.Dir(dir), cfg.OutputDir)
		}
	}
}

func TestAppendExecutionTime(t *testing.T) {
	path := filepath.Join(t.TempDir(), "COOJA.log")
	if err := os.WriteFile(path, []byte("simulation output\n"), 0644); err != nil {
		t.Fatal(err)
	}

	appendExecutionTime(path, 1500*time.Millisecond)

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(raw), "Simulation execution time: 1500000000 ns.") {
		t.Errorf("log missing execution time line, got:\n%s", raw)
	}
	if !strings.HasPrefix(string(raw), "simulation output") {
		t.Error("appendExecutionTime truncated existing content")
	}
}

func TestRun_MissingScenario(t *testing.T) {
	r, _ := newTestRunner(t)
	_, err := r.Run(context.Background(), filepath.Join(t.TempDir(), "nope.csc"))
	if err == nil {
		t.Fatal("Run() expected error for missing scenario")
	}
	if !strings.Contains(err.Error(), "cannot read simulation scenario") {
		t.Errorf("Run() error = %v, want scenario-read error", err)
	}
}
