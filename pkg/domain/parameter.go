package domain

import (
	"reflect"
	"strings"
)

// ParamType names one of the closed set of parameter types.
type ParamType string

const (
	ParamText    ParamType = "text"
	ParamNumber  ParamType = "number"
	ParamInteger ParamType = "integer"
	ParamBoolean ParamType = "boolean"
	// ParamList is a list of text values. Lists of other scalars use the "[number]" form.
	ParamList ParamType = "list"
)

// RegistrationPhase decides at which binding stage a parameter's default is applied.
type RegistrationPhase string

const (
	// RegisterBuffered parameters receive defaults only at final resolution.
	RegisterBuffered RegistrationPhase = "buffered"
	// RegisterImmediate parameters also receive defaults in the pre-parse stage.
	RegisterImmediate RegistrationPhase = "immediate"
)

// BindStage identifies a default-application pass.
type BindStage int

const (
	// BindImmediate is the pre-parse pass; it only touches immediate parameters.
	BindImmediate BindStage = iota
	// BindFinal is the run-level pass; it touches every registered parameter.
	BindFinal
)

func (s BindStage) String() string {
	if s == BindImmediate {
		return "immediate"
	}
	return "final"
}

// Parameter is the definition of a named parameter.
type Parameter struct {
	Name        string    `json:"name" yaml:"name" mapstructure:"name"`
	Type        ParamType `json:"type" yaml:"type" mapstructure:"type"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty" mapstructure:"description"`

	// Default must satisfy Type and, when set, AllowedValues.
	Default any `json:"default,omitempty" yaml:"default,omitempty" mapstructure:"default"`

	// Aliases are external flag strings (e.g. "--timeout", "-t"), unique across parameters.
	Aliases []string `json:"aliases,omitempty" yaml:"aliases,omitempty" mapstructure:"aliases"`

	Required      bool  `json:"required,omitempty" yaml:"required,omitempty" mapstructure:"required"`
	AllowedValues []any `json:"allowed_values,omitempty" yaml:"allowed_values,omitempty" mapstructure:"allowed_values"`

	// Persistent parameters are written to saved configuration. The zero value is runtime-only.
	Persistent bool `json:"persistent,omitempty" yaml:"persistent,omitempty" mapstructure:"persistent"`

	Registration RegistrationPhase `json:"registration,omitempty" yaml:"registration,omitempty" mapstructure:"registration"`
}

// Equal reports whether two definitions describe the same parameter.
func (p Parameter) Equal(other Parameter) bool {
	return reflect.DeepEqual(p, other)
}

// Truthy reports whether a bound value enables a trigger.
// Absent (nil), false, zero numbers, empty text, "false"/"0"/"no"/"off" and empty lists are falsy.
func Truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "", "false", "0", "no", "off":
			return false
		}
		return true
	case int:
		return x != 0
	case int64:
		return x != 0
	case float64:
		return x != 0
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len() > 0
	}
	return true
}
