package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/trestle"
	"github.com/aretw0/trestle/internal/cli"
	"github.com/aretw0/trestle/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of trestle",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		if cli.IsTerminal(out) && !settings.Quiet {
			tui.PrintBanner(out, cli.Profile(out))
		}
		fmt.Fprintf(out, "trestle version %s\n", strings.TrimSpace(trestle.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
