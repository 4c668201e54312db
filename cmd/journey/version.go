package main

import (
	"fmt"
	"os"

	"github.com/aretw0/journey"
	"github.com/aretw0/journey/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of journey",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		if f, ok := out.(*os.File); ok && tui.IsTerminal(f) {
			tui.PrintBanner(out)
		}
		fmt.Fprintf(out, "journey version %s\n", journey.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
