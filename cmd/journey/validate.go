package main

import (
	"fmt"
	"os"

	"github.com/aretw0/journey/internal/dto"
	"github.com/aretw0/journey/pkg/schema"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file>...",
	Short: "Check journey definition files",
	Long:  `Parses and validates each file, reporting every violation found rather than only the first.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		failed := 0
		for _, path := range args {
			if err := validateFile(path); err != nil {
				failed++
				fmt.Fprintf(cmd.OutOrStdout(), "✗ %s\n", path)
				if msgs := schema.Messages(err); len(msgs) > 0 {
					for _, m := range msgs {
						fmt.Fprintf(cmd.OutOrStdout(), "    - %s\n", m)
					}
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "    - %v\n", err)
				}
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ %s\n", path)
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d files invalid", failed, len(args))
		}
		return nil
	},
}

func validateFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	def, err := dto.Parse(data)
	if err != nil {
		return err
	}
	_, err = def.Build()
	return err
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
