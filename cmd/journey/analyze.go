package main

import (
	"github.com/aretw0/journey/internal/cli"
	"github.com/aretw0/journey/internal/presentation/report"
	"github.com/aretw0/journey/pkg/analysis"
	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze-bottleneck <journey-id>",
	Short: "Find the stage with the largest relative drop",
	Long: `Compares consecutive states in declared order and reports the pair with
the largest relative drop, its funnel band and suggested interventions.

Without --data the flow implied by the transition probabilities is used.
--data takes a JSON object of observed counts or rates per state
(prefix with @ to read a file). --simulate analyzes a simulated cohort.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, _ := cmd.Flags().GetString("data")
		simulate, _ := cmd.Flags().GetBool("simulate")
		cohort, _ := cmd.Flags().GetInt("cohort-size")
		seed, _ := cmd.Flags().GetInt64("seed")

		var observed map[string]float64
		if data != "" {
			if err := cli.ParseJSONArg(data, &observed); err != nil {
				return err
			}
		}

		b, err := openBackend(cmd)
		if err != nil {
			return err
		}
		defer b.Close()

		if simulate {
			res, err := b.Engine.Simulate(cmd.Context(), args[0], cohort, seed)
			if err != nil {
				return err
			}
			observed = analysis.ObservedFlow(res)
		}

		r, err := b.Engine.AnalyzeBottleneck(cmd.Context(), args[0], observed)
		if err != nil {
			return err
		}
		p, err := printer(cmd)
		if err != nil {
			return err
		}
		return p.Print(r, report.Bottleneck(r))
	},
}

var touchpointCmd = &cobra.Command{
	Use:   "touchpoint-map <journey-id>",
	Short: "Group a journey's transitions by channel",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := openBackend(cmd)
		if err != nil {
			return err
		}
		defer b.Close()

		r, err := b.Engine.MapTouchpoints(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		p, err := printer(cmd)
		if err != nil {
			return err
		}
		return p.Print(r, report.Touchpoints(r))
	},
}

var channelsCmd = &cobra.Command{
	Use:   "channels",
	Short: "Count transitions per channel across all journeys",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := openBackend(cmd)
		if err != nil {
			return err
		}
		defer b.Close()

		usage, err := cli.ChannelUsage(cmd.Context(), b)
		if err != nil {
			return err
		}
		p, err := printer(cmd)
		if err != nil {
			return err
		}
		return p.Print(usage, report.Channels(usage))
	},
}

func init() {
	analyzeCmd.Flags().String("data", "", "observed per-state values as JSON")
	analyzeCmd.Flags().Bool("simulate", false, "analyze a simulated cohort instead")
	addRunFlags(analyzeCmd)
	analyzeCmd.MarkFlagsMutuallyExclusive("data", "simulate")

	rootCmd.AddCommand(analyzeCmd, touchpointCmd, channelsCmd)
}
