// Package cycles implements the cycle manager: registration of named, repeatable command
// sequences bounded by loop-start and loop-end markers.
//
// Cycle definitions are first normalized (every member reduced to its command name) by a pure
// function, then compared against every registered cycle. An equivalent cycle makes the
// registration a no-op. Only then are inline members registered and the cycle stored.
// Execution of loops belongs to the orchestrator; this package only validates and stores structure.
package cycles
