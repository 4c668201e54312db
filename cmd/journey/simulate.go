package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/journey"
	"github.com/aretw0/journey/internal/presentation/report"
	"github.com/aretw0/journey/pkg/simulation"
	"github.com/spf13/cobra"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate <journey-id>",
	Short: "Run a Monte Carlo cohort through a journey",
	Long: `Simulates --cohort-size synthetic customers. Runs are reproducible:
the same journey, cohort size and seed always give the same result.
With --seeds, one cohort is simulated per seed in parallel.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cohort, _ := cmd.Flags().GetInt("cohort-size")
		seed, _ := cmd.Flags().GetInt64("seed")
		seeds, _ := cmd.Flags().GetInt64Slice("seeds")

		b, err := openBackend(cmd)
		if err != nil {
			return err
		}
		defer b.Close()

		p, err := printer(cmd)
		if err != nil {
			return err
		}

		if len(seeds) > 0 {
			results, err := b.Engine.SimulateBatch(cmd.Context(), args[0], cohort, seeds)
			if err != nil {
				return err
			}
			parts := make([]string, len(results))
			for i, r := range results {
				parts[i] = report.Simulation(r)
			}
			return p.Print(results, strings.Join(parts, "\n---\n\n"))
		}

		res, err := b.Engine.Simulate(cmd.Context(), args[0], cohort, seed)
		if err != nil {
			return err
		}
		return p.Print(res, report.Simulation(res))
	},
}

var compareCmd = &cobra.Command{
	Use:   "compare <before-id> <after-id>",
	Short: "Compare two journeys simulated with the same cohort and seed",
	Long: `Simulates both journeys with identical parameters and reports the change
in conversion, touchpoints, time and per-state reach. Typically used to
evaluate an edited copy of a journey against the original.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cohort, _ := cmd.Flags().GetInt("cohort-size")
		seed, _ := cmd.Flags().GetInt64("seed")

		b, err := openBackend(cmd)
		if err != nil {
			return err
		}
		defer b.Close()

		before, err := b.Engine.Simulate(cmd.Context(), args[0], cohort, seed)
		if err != nil {
			return fmt.Errorf("simulate %s: %w", args[0], err)
		}
		after, err := b.Engine.Simulate(cmd.Context(), args[1], cohort, seed)
		if err != nil {
			return fmt.Errorf("simulate %s: %w", args[1], err)
		}

		diff := simulation.Compare(before, after)
		p, err := printer(cmd)
		if err != nil {
			return err
		}
		return p.Print(diff, report.Diff(diff))
	},
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().Int("cohort-size", journey.DefaultCohortSize, "number of synthetic customers")
	cmd.Flags().Int64("seed", journey.DefaultSeed, "random seed")
}

func init() {
	addRunFlags(simulateCmd)
	simulateCmd.Flags().Int64Slice("seeds", nil, "run one cohort per seed (e.g. --seeds 1,2,3)")
	addRunFlags(compareCmd)

	rootCmd.AddCommand(simulateCmd, compareCmd)
}
