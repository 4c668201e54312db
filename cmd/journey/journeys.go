package main

import (
	"fmt"
	"os"

	"github.com/aretw0/journey/internal/cli"
	"github.com/aretw0/journey/internal/dto"
	"github.com/aretw0/journey/internal/presentation/report"
	"github.com/spf13/cobra"
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create or replace a journey",
	Long: `Creates a journey from a YAML/JSON definition file, or from inline flags:

  journey create --name "Onboarding" \
    --states '["Awareness", "Consideration", "Conversion"]' \
    --transitions '[{"from_state": "Awareness", "to_state": "Consideration", "probability": 0.4, "channel": "paid_search"}]'

The first state is the entry and the last is the conversion goal.
Prefix a flag value with @ to read it from a file.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		def, err := definitionFromFlags(cmd)
		if err != nil {
			return err
		}

		b, err := openBackend(cmd)
		if err != nil {
			return err
		}
		defer b.Close()

		states, transitions := def.Specs()
		j, err := b.Engine.Create(cmd.Context(), def.Name, states, transitions)
		if err != nil {
			return err
		}

		p, err := printer(cmd)
		if err != nil {
			return err
		}
		return p.Print(j, report.Journey(j))
	},
}

func definitionFromFlags(cmd *cobra.Command) (*dto.Definition, error) {
	path, _ := cmd.Flags().GetString("file")
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return dto.Parse(data)
	}

	name, _ := cmd.Flags().GetString("name")
	statesArg, _ := cmd.Flags().GetString("states")
	transitionsArg, _ := cmd.Flags().GetString("transitions")
	if name == "" || statesArg == "" {
		return nil, fmt.Errorf("either --file or --name and --states are required")
	}

	raw := map[string]any{"name": name}
	var states, transitions []any
	if err := cli.ParseJSONArg(statesArg, &states); err != nil {
		return nil, fmt.Errorf("invalid --states: %w", err)
	}
	raw["states"] = states
	if transitionsArg != "" {
		if err := cli.ParseJSONArg(transitionsArg, &transitions); err != nil {
			return nil, fmt.Errorf("invalid --transitions: %w", err)
		}
		raw["transitions"] = transitions
	}
	return dto.Decode(raw)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored and catalogued journeys",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := openBackend(cmd)
		if err != nil {
			return err
		}
		defer b.Close()

		list, err := b.Engine.List(cmd.Context())
		if err != nil {
			return err
		}
		p, err := printer(cmd)
		if err != nil {
			return err
		}
		return p.Print(list, report.Summaries(list))
	},
}

var getCmd = &cobra.Command{
	Use:   "get <journey-id>",
	Short: "Show a journey definition",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := openBackend(cmd)
		if err != nil {
			return err
		}
		defer b.Close()

		j, err := b.Engine.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		p, err := printer(cmd)
		if err != nil {
			return err
		}
		return p.Print(j, report.Journey(j))
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <journey-id>",
	Short: "Delete a stored journey",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := openBackend(cmd)
		if err != nil {
			return err
		}
		defer b.Close()

		if err := b.Engine.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "deleted %s\n", args[0])
		return nil
	},
}

func init() {
	createCmd.Flags().String("file", "", "journey definition file (YAML or JSON)")
	createCmd.Flags().String("name", "", "journey name")
	createCmd.Flags().String("states", "", "JSON array of state names or {name, description, dwell_days} objects")
	createCmd.Flags().String("transitions", "", "JSON array of {from_state, to_state, probability, channel, trigger, content_brief}")
	createCmd.MarkFlagsMutuallyExclusive("file", "name")

	rootCmd.AddCommand(createCmd, listCmd, getCmd, deleteCmd)
}
