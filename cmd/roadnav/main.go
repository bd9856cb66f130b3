// Command roadnav runs traffic simulations over road layouts.
package main

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:           "roadnav",
		Short:         "Vehicle navigation over connected road tiles",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
			if verbose {
				log.SetLevel(log.DebugLevel)
			}
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(routeCmd())
	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(generateCmd())
	rootCmd.AddCommand(benchCmd())

	if err := rootCmd.Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func runCmd() *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run [world.yaml]",
		Short: "Simulate every vehicle of a world file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.durationSet = cmd.Flags().Changed("duration")
			opts.timeStepSet = cmd.Flags().Changed("time-step")
			opts.seedSet = cmd.Flags().Changed("seed")
			return runSimulation(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().Float64VarP(&opts.duration, "duration", "d", 0, "simulated seconds (overrides the world file)")
	cmd.Flags().Float64Var(&opts.timeStep, "time-step", 0, "seconds per tick (overrides the world file)")
	cmd.Flags().Int64Var(&opts.seed, "seed", 0, "random seed (overrides the world file)")
	cmd.Flags().StringVarP(&opts.metrics, "metrics", "m", "", "write metrics JSON to this path")
	return cmd
}

func routeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "route [world.yaml] [from] [to]",
		Short: "Print the shortest route between two roads",
		Args:  cobra.ExactArgs(3),
		RunE: func(_ *cobra.Command, args []string) error {
			return runRoute(args[0], args[1], args[2])
		},
	}
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [world.yaml]",
		Short: "Build and validate a world without simulating it",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runValidate(args[0])
		},
	}
}
