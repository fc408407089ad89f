// Package schema implements the closed set of parameter types and type-directed coercion.
//
// Every type can validate an already-coerced value and coerce a raw value (typically a
// command-line string) into its canonical Go representation:
//
//	text     -> string
//	number   -> float64
//	integer  -> int
//	boolean  -> bool
//	list     -> []any of text; "[number]", "[integer]", ... for lists of other scalars
//
// Scalar conversion is delegated to go-cty's convert package, so "3" coerces to a number,
// "true" to a boolean and 3 to the text "3", while "fast" is rejected as a number.
//
//	typ, _ := schema.ParseType("integer")
//	v, err := typ.Coerce("42") // 42, nil
//
// Schemas map field names to types and validate a set of bound values at once:
//
//	s := schema.Schema{"timeout": schema.Number(), "tags": schema.List(schema.Text())}
//	err := schema.ValidateFields(s, values, "timeout")
package schema
