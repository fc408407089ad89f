// Package commands implements the command registry and its registration pipeline.
//
// Add runs a fixed sequence of stages: name validation, action validation, duplicate check,
// reference validation, inline parameter normalization, inline command normalization, phase
// assignment and storage. Every stage is exported so it can be invoked and tested on its own.
// Before the first mutation, Check walks the whole definition tree (inline parameters and
// commands included) so that a failing registration leaves nothing behind.
package commands
