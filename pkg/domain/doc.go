/*
Package domain contains the core domain models of the Trestle engine.

It defines the definitions callers register (parameters, commands and cycles), the
references that let a definition embed another one inline, the error kinds raised by
registration, binding and resolution, and the outcomes produced by a run. The package is
kept free of I/O and persistence concerns.

# Key Entities

  - Parameter: a named, typed value with aliases, a default and persistence flags.
  - Command: a named action plus ordering and requirement constraints on other commands.
  - Cycle: a named, bounded sequence of commands that the orchestrator may repeat.
  - ParamRef / CommandRef: either a name or an inline definition; inline definitions are
    replaced by names during registration and never stored.
  - Report: the per-command outcomes of a run, including skips caused by failed predecessors.
*/
package domain
