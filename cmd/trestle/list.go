package main

import (
	"fmt"

	"github.com/aretw0/trestle/internal/cli"
	"github.com/aretw0/trestle/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the visible commands and the parameters",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := cli.CreateEngine(settings, cli.EngineOptions{Lenient: true, Logger: logger})
		if err != nil {
			return err
		}

		md := tui.Catalog(eng.Visible(), eng.Parameters())
		raw, _ := cmd.Flags().GetBool("raw")
		if raw {
			fmt.Fprint(cmd.OutOrStdout(), md)
			return nil
		}

		out := cmd.OutOrStdout()
		render, err := tui.NewRenderer(cli.IsTerminal(out), 100)
		if err != nil {
			return err
		}
		text, err := render(md)
		if err != nil {
			return err
		}
		fmt.Fprint(out, text)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().Bool("raw", false, "Print markdown instead of rendering it")
}
