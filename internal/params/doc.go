// Package params implements the parameter registry.
//
// The registry owns parameter definitions and their bound values. Definitions are validated
// and canonicalized on registration (defaults and allowed values are coerced to the declared
// type). Values are bound explicitly (Set), from saved configuration (Load) or from defaults
// (ApplyDefaults), and the source of every binding is kept for introspection.
package params
