package domain

import "context"

// Action is the executable behavior of a command.
// args holds the bound values of the command's required parameters and trigger parameter.
type Action func(ctx context.Context, args map[string]any) error

// Constraint names one of the command-to-command relation families.
type Constraint string

const (
	ConstraintGoesBefore    Constraint = "goesBefore"
	ConstraintGoesAfter     Constraint = "goesAfter"
	ConstraintNextCommands  Constraint = "nextCommands"
	ConstraintRequireBefore Constraint = "requireBefore"
)

// Constraints lists every relation family in a fixed order.
var Constraints = []Constraint{
	ConstraintGoesBefore,
	ConstraintGoesAfter,
	ConstraintNextCommands,
	ConstraintRequireBefore,
}

// Command is the definition of a named command.
type Command struct {
	Name        string `json:"name" yaml:"name" mapstructure:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty" mapstructure:"description"`
	Action      Action `json:"-" yaml:"-" mapstructure:"-"`

	RequiredParams []ParamRef `json:"-" yaml:"-" mapstructure:"required_params"`
	// TriggerParam, when set, gates the command: it only runs when the parameter is truthy.
	TriggerParam *ParamRef `json:"-" yaml:"-" mapstructure:"trigger_param"`

	GoesBefore    []CommandRef `json:"-" yaml:"-" mapstructure:"goes_before"`
	GoesAfter     []CommandRef `json:"-" yaml:"-" mapstructure:"goes_after"`
	NextCommands  []CommandRef `json:"-" yaml:"-" mapstructure:"next_commands"`
	RequireBefore []CommandRef `json:"-" yaml:"-" mapstructure:"require_before"`

	// Phase defaults to the engine's default phase when empty.
	Phase  string `json:"phase,omitempty" yaml:"phase,omitempty" mapstructure:"phase"`
	Cycle  string `json:"cycle,omitempty" yaml:"cycle,omitempty" mapstructure:"cycle"`
	Hidden bool   `json:"hidden,omitempty" yaml:"hidden,omitempty" mapstructure:"hidden"`
}

// Refs returns the references held by one relation family.
func (c *Command) Refs(k Constraint) []CommandRef {
	switch k {
	case ConstraintGoesBefore:
		return c.GoesBefore
	case ConstraintGoesAfter:
		return c.GoesAfter
	case ConstraintNextCommands:
		return c.NextCommands
	case ConstraintRequireBefore:
		return c.RequireBefore
	}
	return nil
}

// SetRefs replaces the references of one relation family.
func (c *Command) SetRefs(k Constraint, refs []CommandRef) {
	switch k {
	case ConstraintGoesBefore:
		c.GoesBefore = refs
	case ConstraintGoesAfter:
		c.GoesAfter = refs
	case ConstraintNextCommands:
		c.NextCommands = refs
	case ConstraintRequireBefore:
		c.RequireBefore = refs
	}
}

// ParamNames returns the names of the required parameters followed by the trigger, if any.
func (c *Command) ParamNames() []string {
	names := make([]string, 0, len(c.RequiredParams)+1)
	for _, r := range c.RequiredParams {
		names = append(names, r.Key())
	}
	if c.TriggerParam != nil {
		names = append(names, c.TriggerParam.Key())
	}
	return names
}
