package main

import (
	"fmt"

	"github.com/aretw0/trestle/internal/cli"
	"github.com/aretw0/trestle/internal/presentation/graph"
	"github.com/aretw0/trestle/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Print the execution order of every phase",
	Long: `Resolves every phase against the parameter values given with --set or raw flags after
"--", and prints the order without running anything.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := cli.CreateEngine(settings, cli.EngineOptions{Lenient: true, Logger: logger})
		if err != nil {
			return err
		}
		sets, _ := cmd.Flags().GetStringArray("set")
		if err := cli.Bind(eng, sets, args); err != nil {
			return err
		}

		plans, err := eng.Plan()
		tui.NewPrinter(cmd.OutOrStdout(), cli.Profile(cmd.OutOrStdout())).Plan(plans)
		return err
	},
}

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the command graph visualization",
	Long:  `Outputs a Mermaid diagram (graph TD) of the registered commands grouped by phase.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := cli.CreateEngine(settings, cli.EngineOptions{Lenient: true, Logger: logger})
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(eng.Phases(), eng.Commands(), nil))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(graphCmd)
	planCmd.Flags().StringArray("set", nil, "Bind a parameter: name=value (repeatable)")
}
