/*
Package trestle is a declarative command and parameter orchestration engine for CLI tools.

Callers register named parameters and commands. The engine validates every definition when it
is registered, resolves ordering constraints between commands, groups commands into phases,
runs repeatable command sequences (cycles) and binds typed parameter values from flags,
saved configuration and defaults.

# Concepts

  - Parameter: a typed, named value (text, number, integer, boolean, lists). It may have
    aliases (flag strings), a default, an allowed-values set, and be persistent or runtime-only.
  - Command: a named action with ordering constraints (goesBefore, goesAfter, nextCommands,
    requireBefore), required parameters and an optional trigger parameter. Parameters and
    related commands can be given by name or inline; inline definitions are registered on the fly.
  - Phase: an ordered bucket of commands (setup, main, teardown by default).
  - Cycle: a named loop over commands bounded by loop-start and loop-end markers.

# Usage

	eng, err := trestle.New()
	if err != nil {
		log.Fatal(err)
	}

	err = eng.AddCommand(domain.Command{
		Name:   "deploy",
		Action: deploy,
		RequiredParams: []domain.ParamRef{
			domain.InlineParam(domain.Parameter{Name: "target", Type: domain.ParamText, Aliases: []string{"--target"}}),
		},
		RequireBefore: domain.CommandNames("build"),
	})

	_ = eng.SetFlag("--target", "prod")
	report, err := eng.Run(ctx)

A command whose required predecessor failed or did not run is skipped and reported, never invoked.
*/
package trestle
