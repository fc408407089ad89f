package dsl

import "github.com/aretw0/trestle/pkg/domain"

// ParamBuilder provides a fluent API for configuring a parameter.
type ParamBuilder struct {
	param domain.Parameter
}

// Param starts a standalone parameter definition, e.g. for inline use with CommandBuilder.Needs.
func Param(name string) *ParamBuilder {
	return &ParamBuilder{param: domain.Parameter{Name: name, Type: domain.ParamText}}
}

// Type sets the declared type, including list forms such as "[number]".
func (p *ParamBuilder) Type(t domain.ParamType) *ParamBuilder {
	p.param.Type = t
	return p
}

// Number marks the parameter as a number.
func (p *ParamBuilder) Number() *ParamBuilder { return p.Type(domain.ParamNumber) }

// Integer marks the parameter as an integer.
func (p *ParamBuilder) Integer() *ParamBuilder { return p.Type(domain.ParamInteger) }

// Bool marks the parameter as a boolean.
func (p *ParamBuilder) Bool() *ParamBuilder { return p.Type(domain.ParamBoolean) }

// List marks the parameter as a list of text values.
func (p *ParamBuilder) List() *ParamBuilder { return p.Type(domain.ParamList) }

// Describe sets the help text.
func (p *ParamBuilder) Describe(text string) *ParamBuilder {
	p.param.Description = text
	return p
}

// Default sets the default value, applied when the parameter is still unbound at resolution.
func (p *ParamBuilder) Default(v any) *ParamBuilder {
	p.param.Default = v
	return p
}

// Alias adds external flag strings.
func (p *ParamBuilder) Alias(flags ...string) *ParamBuilder {
	p.param.Aliases = append(p.param.Aliases, flags...)
	return p
}

// Required marks the parameter as mandatory for a run.
func (p *ParamBuilder) Required() *ParamBuilder {
	p.param.Required = true
	return p
}

// OneOf restricts the accepted values.
func (p *ParamBuilder) OneOf(values ...any) *ParamBuilder {
	p.param.AllowedValues = append(p.param.AllowedValues, values...)
	return p
}

// Persistent includes the parameter in saved configuration.
func (p *ParamBuilder) Persistent() *ParamBuilder {
	p.param.Persistent = true
	return p
}

// Immediate applies the default in the pre-parse stage as well.
func (p *ParamBuilder) Immediate() *ParamBuilder {
	p.param.Registration = domain.RegisterImmediate
	return p
}

// Build returns the underlying domain.Parameter.
func (p *ParamBuilder) Build() domain.Parameter {
	return p.param
}
