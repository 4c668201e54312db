package main

import (
	"fmt"

	"github.com/aretw0/journey/pkg/simulation"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph <journey-id>",
	Short: "Export the journey as a Mermaid diagram",
	Long: `Outputs a Mermaid flowchart (graph TD) of the journey. With --simulate,
states are annotated with their simulated reach and the bottleneck is highlighted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		simulate, _ := cmd.Flags().GetBool("simulate")
		cohort, _ := cmd.Flags().GetInt("cohort-size")
		seed, _ := cmd.Flags().GetInt64("seed")

		b, err := openBackend(cmd)
		if err != nil {
			return err
		}
		defer b.Close()

		var res *simulation.Result
		if simulate {
			if res, err = b.Engine.Simulate(cmd.Context(), args[0], cohort, seed); err != nil {
				return err
			}
		}

		out, err := b.Engine.Graph(cmd.Context(), args[0], res)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	graphCmd.Flags().Bool("simulate", false, "overlay a simulated funnel")
	addRunFlags(graphCmd)
	rootCmd.AddCommand(graphCmd)
}
