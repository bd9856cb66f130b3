package main

import (
	"context"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/elektrokombinacija/roadnav/internal/bench"
	"github.com/elektrokombinacija/roadnav/internal/config"
)

func generateCmd() *cobra.Command {
	p := config.DefaultGridParams()
	var out string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a random street grid world file",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			world, err := config.GenerateGrid(p)
			if err != nil {
				return err
			}
			data, err := world.Marshal()
			if err != nil {
				return err
			}
			if out == "" {
				_, err = os.Stdout.Write(data)
				return err
			}
			if err := os.WriteFile(out, data, 0644); err != nil {
				return err
			}
			log.WithFields(log.Fields{
				"path":     out,
				"roads":    len(world.Roads),
				"vehicles": len(world.Vehicles),
			}).Info("world written")
			return nil
		},
	}

	cmd.Flags().IntVar(&p.Width, "width", p.Width, "tiles per row")
	cmd.Flags().IntVar(&p.Height, "height", p.Height, "tiles per column")
	cmd.Flags().IntVar(&p.Vehicles, "vehicles", p.Vehicles, "vehicles to place")
	cmd.Flags().Float64Var(&p.RoundaboutRatio, "roundabouts", p.RoundaboutRatio, "share of crossings built as roundabouts")
	cmd.Flags().Float64Var(&p.TripRatio, "trips", p.TripRatio, "share of vehicles given a trip instead of roaming")
	cmd.Flags().Int64Var(&p.Seed, "seed", p.Seed, "random seed")
	cmd.Flags().StringVarP(&out, "output", "o", "", "output path (default stdout)")
	return cmd
}

func benchCmd() *cobra.Command {
	var (
		runs      int
		firstSeed int64
		csvPath   string
	)

	cmd := &cobra.Command{
		Use:   "bench [world.yaml]",
		Short: "Run a world over many seeds and summarise the metrics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			world, err := config.Load(args[0])
			if err != nil {
				return err
			}
			cfg := world.SimulationConfig()
			cfg.Logger = log.StandardLogger()
			cfg.ProgressEvery = 0

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			results, err := bench.Run(ctx, world, cfg, bench.Seeds(firstSeed, runs))
			if err != nil {
				return err
			}

			if csvPath != "" {
				f, err := os.Create(csvPath)
				if err != nil {
					return err
				}
				defer f.Close()
				if err := bench.WriteCSV(f, results); err != nil {
					return fmt.Errorf("writing %s: %w", csvPath, err)
				}
			}

			s := bench.Summarize(results)
			fmt.Println("\n=== BENCHMARK SUMMARY ===")
			fmt.Printf("%-20s %12s %12s\n", "Metric", "Mean", "StdDev")
			for _, row := range []struct {
				name string
				st   bench.Stat
			}{
				{"arrivals", s.Arrivals},
				{"lane transitions", s.LaneTransitions},
				{"distance", s.DistanceTravelled},
				{"throttled share", s.ThrottledShare},
				{"runtime ms", s.RuntimeMs},
			} {
				fmt.Printf("%-20s %12.3f %12.3f\n", row.name, row.st.Mean, row.st.StdDev)
			}
			fmt.Printf("%d runs\n", s.Runs)
			return nil
		},
	}

	cmd.Flags().IntVarP(&runs, "runs", "n", 10, "number of seeds to run")
	cmd.Flags().Int64Var(&firstSeed, "seed", 1, "first seed")
	cmd.Flags().StringVar(&csvPath, "csv", "", "write per-run results to this CSV file")
	return cmd
}
