// Command alifesim runs a headless artificial-life experiment and persists
// its metrics, following the teacher's main.go flag-variable style, stripped
// of its raylib game loop down to the -headless/-log/-perf path spec.md §6
// describes as the whole of this module's "front end".
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/alifesim/config"
	"github.com/pthm-cable/alifesim/metrics"
	"github.com/pthm-cable/alifesim/world"
)

var (
	configPath    = flag.String("config", "", "Path to a YAML config overriding the embedded defaults")
	steps         = flag.Uint64("steps", 1000, "Number of ticks to run")
	sampleEvery   = flag.Int("sample-every", 10, "Sample aggregate metrics every N ticks (plus always the final tick)")
	seedOverride  = flag.Int64("seed", -1, "Override config seed (-1 = use config's own seed)")
	snapshotSteps = flag.String("snapshots", "", "Comma-separated step indices to record full organism snapshots at")
	csvOut        = flag.String("csv", "", "Write per-sample metrics to this CSV path (empty = skip)")
	jsonOut       = flag.String("json", "", "Write the full RunSummary to this JSON path (empty = skip)")
	perfLog       = flag.Bool("perf", false, "Log wall-clock timing for the run")
	quiet         = flag.Bool("quiet", false, "Suppress the final population summary line")
)

// perfStats tracks wall-clock duration for the run's named phases, following
// the teacher's PerfStats sample/average idiom, reduced to single-shot
// timings since this CLI has no per-frame loop to sample.
type perfStats struct {
	durations map[string]time.Duration
	order     []string
}

func newPerfStats() *perfStats {
	return &perfStats{durations: make(map[string]time.Duration)}
}

func (p *perfStats) record(name string, d time.Duration) {
	if _, seen := p.durations[name]; !seen {
		p.order = append(p.order, name)
	}
	p.durations[name] = d
}

func (p *perfStats) log() {
	names := append([]string(nil), p.order...)
	sort.Slice(names, func(i, j int) bool {
		return p.durations[names[i]] > p.durations[names[j]]
	})
	for _, name := range names {
		slog.Info("perf", "phase", name, "duration", p.durations[name])
	}
}

func parseSnapshotSteps(s string) []uint64 {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]uint64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseUint(strings.TrimSpace(p), 10, 64)
		if err != nil {
			slog.Error("invalid -snapshots entry", "value", p, "error", err)
			os.Exit(1)
		}
		out = append(out, v)
	}
	return out
}

func main() {
	flag.Parse()
	perf := newPerfStats()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	if *seedOverride >= 0 {
		cfg.Seed = uint64(*seedOverride)
	}

	t0 := time.Now()
	w, err := world.NewRandomFounders(cfg)
	if err != nil {
		slog.Error("build world", "error", err)
		os.Exit(1)
	}
	perf.record("init", time.Since(t0))

	t0 = time.Now()
	summary, err := w.TryRunExperimentWithSnapshots(*steps, *sampleEvery, parseSnapshotSteps(*snapshotSteps))
	if err != nil {
		slog.Error("run experiment", "error", err)
		os.Exit(1)
	}
	perf.record("run", time.Since(t0))

	if *csvOut != "" {
		if err := writeCSV(*csvOut, summary.Samples); err != nil {
			slog.Error("write csv", "error", err)
			os.Exit(1)
		}
	}
	if *jsonOut != "" {
		if err := writeJSON(*jsonOut, summary); err != nil {
			slog.Error("write json", "error", err)
			os.Exit(1)
		}
	}

	if *perfLog {
		perf.log()
		for phase, d := range w.PhaseTimings() {
			slog.Info("perf_phase", "phase", phase, "avg_us", d.Microseconds())
		}
	}
	if !*quiet {
		fmt.Printf("steps=%d alive=%d births=%d samples=%d\n",
			summary.Steps, summary.FinalAliveCount, summary.TotalReproductionEvents, len(summary.Samples))
	}
}

func writeCSV(path string, samples []metrics.StepMetrics) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gocsv.Marshal(samples, f)
}

func writeJSON(path string, v interface{}) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
