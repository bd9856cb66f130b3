package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	log "github.com/sirupsen/logrus"

	"github.com/elektrokombinacija/roadnav/internal/config"
)

type runOptions struct {
	duration    float64
	timeStep    float64
	seed        int64
	metrics     string
	durationSet bool
	timeStepSet bool
	seedSet     bool
}

func runSimulation(ctx context.Context, path string, opts runOptions) error {
	world, err := config.Load(path)
	if err != nil {
		return err
	}

	cfg := world.SimulationConfig()
	if opts.durationSet {
		cfg.Duration = opts.duration
	}
	if opts.timeStepSet {
		cfg.TimeStep = opts.timeStep
	}
	if opts.seedSet {
		cfg.Seed = opts.seed
	}
	cfg.Logger = log.StandardLogger()

	s, err := world.Build(cfg)
	if err != nil {
		return fmt.Errorf("building world: %w", err)
	}
	log.WithFields(log.Fields{
		"roads":    len(s.Graph().Roads()),
		"vehicles": len(s.Views()),
		"duration": cfg.Duration,
		"seed":     cfg.Seed,
	}).Info("simulation starting")

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	m, err := s.Run(ctx)
	if err != nil && ctx.Err() == nil {
		return err
	}
	if ctx.Err() != nil {
		log.Warn("interrupted")
	}

	log.WithFields(log.Fields{
		"ticks":       m.Ticks,
		"time":        fmt.Sprintf("%.2fs", m.SimulatedTime),
		"wall":        m.EndTime.Sub(m.StartTime),
		"arrivals":    m.Arrivals,
		"transitions": m.LaneTransitions,
		"distance":    fmt.Sprintf("%.1f", m.DistanceTravelled),
		"throttled":   m.ThrottledTicks,
		"stopped":     m.StoppedTicks,
	}).Info("simulation finished")

	if opts.metrics != "" {
		if err := s.ExportMetrics(opts.metrics); err != nil {
			return fmt.Errorf("writing metrics: %w", err)
		}
		log.WithField("path", opts.metrics).Info("metrics written")
	}
	return nil
}
