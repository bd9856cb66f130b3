package bench

import (
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"math"
	"testing"

	log "github.com/sirupsen/logrus"

	"github.com/elektrokombinacija/roadnav/internal/config"
)

func quietWorld(t *testing.T) *config.File {
	t.Helper()
	p := config.DefaultGridParams()
	p.Vehicles = 4
	world, err := config.GenerateGrid(p)
	if err != nil {
		t.Fatalf("GenerateGrid: %v", err)
	}
	world.Simulation.Duration = 5
	world.Simulation.TimeStep = 0.1
	return world
}

func TestRunAndSummarize(t *testing.T) {
	world := quietWorld(t)
	logger := log.New()
	logger.SetOutput(io.Discard)
	cfg := world.SimulationConfig()
	cfg.Logger = logger

	results, err := Run(context.Background(), world, cfg, Seeds(10, 3))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(results))
	}
	for i, r := range results {
		if r.Seed != int64(10+i) {
			t.Errorf("result %d: Expected seed %d, got %d", i, 10+i, r.Seed)
		}
		if r.Ticks != 50 {
			t.Errorf("result %d: Expected 50 ticks, got %d", i, r.Ticks)
		}
		if r.Vehicles != 4 {
			t.Errorf("result %d: Expected 4 vehicles, got %d", i, r.Vehicles)
		}
	}

	s := Summarize(results)
	if s.Runs != 3 {
		t.Errorf("Expected 3 runs, got %d", s.Runs)
	}
	if s.DistanceTravelled.Mean <= 0 {
		t.Errorf("Expected vehicles to travel, got mean %v", s.DistanceTravelled.Mean)
	}
	if s.ThrottledShare.Mean < 0 || s.ThrottledShare.Mean > 1 {
		t.Errorf("Expected throttled share in [0, 1], got %v", s.ThrottledShare.Mean)
	}
}

func TestSummarizeStats(t *testing.T) {
	s := Summarize([]Result{{Arrivals: 1}, {Arrivals: 3}})
	if s.Arrivals.Mean != 2 {
		t.Errorf("Expected mean 2, got %v", s.Arrivals.Mean)
	}
	if math.Abs(s.Arrivals.StdDev-math.Sqrt2) > 1e-9 {
		t.Errorf("Expected sample stddev sqrt(2), got %v", s.Arrivals.StdDev)
	}

	if got := Summarize(nil); got.Runs != 0 || got.Arrivals != (Stat{}) {
		t.Errorf("Expected empty summary, got %+v", got)
	}
	if got := Summarize([]Result{{Arrivals: 5}}); got.Arrivals.StdDev != 0 {
		t.Errorf("Expected zero spread for one run, got %v", got.Arrivals.StdDev)
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, []Result{{Seed: 1, Arrivals: 2}, {Seed: 2}}); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("output is not CSV: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("Expected header plus 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "seed" || rows[1][0] != "1" || rows[1][5] != "2" {
		t.Errorf("unexpected rows: %v", rows[:2])
	}
}
