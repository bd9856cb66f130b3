// Package bench runs one world over many seeds and summarises the results.
package bench

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"runtime"
	"strconv"
	"time"

	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"

	"github.com/elektrokombinacija/roadnav/internal/config"
	"github.com/elektrokombinacija/roadnav/internal/sim"
)

// Result stores the outcome of a single seeded run.
type Result struct {
	Seed              int64
	RuntimeMs         float64
	Ticks             int
	Vehicles          int
	Arrivals          int
	RouteFallbacks    int
	LaneTransitions   int
	DistanceTravelled float64
	ThrottledTicks    int
	StoppedTicks      int
}

// Stat is the mean and sample standard deviation of one column.
type Stat struct {
	Mean, StdDev float64
}

// Summary aggregates results across seeds.
type Summary struct {
	Runs              int
	Arrivals          Stat
	LaneTransitions   Stat
	DistanceTravelled Stat
	ThrottledShare    Stat // Throttled vehicle-ticks per vehicle-tick
	RuntimeMs         Stat
}

// Run simulates world once per seed. cfg supplies everything but the seed.
func Run(ctx context.Context, world *config.File, cfg sim.SimulationConfig, seeds []int64) ([]Result, error) {
	results := make([]Result, 0, len(seeds))
	for _, seed := range seeds {
		cfg.Seed = seed
		s, err := world.Build(cfg)
		if err != nil {
			return results, fmt.Errorf("seed %d: %w", seed, err)
		}

		start := time.Now()
		m, err := s.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("seed %d: %w", seed, err)
		}
		r := Result{
			Seed:              seed,
			RuntimeMs:         float64(time.Since(start).Microseconds()) / 1000.0,
			Ticks:             m.Ticks,
			Vehicles:          len(s.Views()),
			Arrivals:          m.Arrivals,
			RouteFallbacks:    m.RouteFallbacks,
			LaneTransitions:   m.LaneTransitions,
			DistanceTravelled: m.DistanceTravelled,
			ThrottledTicks:    m.ThrottledTicks,
			StoppedTicks:      m.StoppedTicks,
		}
		results = append(results, r)

		if cfg.Logger != nil {
			cfg.Logger.WithFields(log.Fields{
				"seed":     seed,
				"arrivals": r.Arrivals,
				"ms":       fmt.Sprintf("%.1f", r.RuntimeMs),
			}).Debug("run finished")
		}
	}
	return results, nil
}

// Seeds returns n consecutive seeds starting at first.
func Seeds(first int64, n int) []int64 {
	return lo.Times(n, func(i int) int64 { return first + int64(i) })
}

// Summarize computes per-column statistics.
func Summarize(results []Result) Summary {
	column := func(f func(Result) float64) Stat {
		xs := lo.Map(results, func(r Result, _ int) float64 { return f(r) })
		if len(xs) == 0 {
			return Stat{}
		}
		mean, std := stat.MeanStdDev(xs, nil)
		if len(xs) == 1 {
			std = 0
		}
		return Stat{Mean: mean, StdDev: std}
	}

	return Summary{
		Runs:              len(results),
		Arrivals:          column(func(r Result) float64 { return float64(r.Arrivals) }),
		LaneTransitions:   column(func(r Result) float64 { return float64(r.LaneTransitions) }),
		DistanceTravelled: column(func(r Result) float64 { return r.DistanceTravelled }),
		ThrottledShare: column(func(r Result) float64 {
			if r.Ticks == 0 || r.Vehicles == 0 {
				return 0
			}
			return float64(r.ThrottledTicks) / float64(r.Ticks*r.Vehicles)
		}),
		RuntimeMs: column(func(r Result) float64 { return r.RuntimeMs }),
	}
}

// WriteCSV writes one row per result, preceded by a header.
func WriteCSV(w io.Writer, results []Result) error {
	writer := csv.NewWriter(w)

	header := []string{
		"seed", "go_version", "runtime_ms", "ticks", "vehicles", "arrivals", "route_fallbacks",
		"lane_transitions", "distance_travelled", "throttled_ticks", "stopped_ticks",
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, r := range results {
		row := []string{
			strconv.FormatInt(r.Seed, 10), runtime.Version(),
			fmt.Sprintf("%.3f", r.RuntimeMs),
			strconv.Itoa(r.Ticks), strconv.Itoa(r.Vehicles), strconv.Itoa(r.Arrivals),
			strconv.Itoa(r.RouteFallbacks), strconv.Itoa(r.LaneTransitions),
			fmt.Sprintf("%.3f", r.DistanceTravelled),
			strconv.Itoa(r.ThrottledTicks), strconv.Itoa(r.StoppedTicks),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}
