package manifest

import (
	"fmt"
	"reflect"

	"github.com/aretw0/trestle/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// Manifest is the decoded, not yet resolved, content of one definition file.
type Manifest struct {
	Include    []string           `mapstructure:"include"`
	Parameters []domain.Parameter `mapstructure:"parameters"`
	Commands   []CommandSpec      `mapstructure:"commands"`
	Cycles     []CycleSpec        `mapstructure:"cycles"`
}

// CommandSpec is a command as written in a manifest: actions are still names or exec specs.
type CommandSpec struct {
	Name        string    `mapstructure:"name"`
	Description string    `mapstructure:"description"`
	Action      string    `mapstructure:"action"`
	Exec        *ExecSpec `mapstructure:"exec"`

	RequiredParams []domain.ParamRef `mapstructure:"required_params"`
	TriggerParam   *domain.ParamRef  `mapstructure:"trigger_param"`

	GoesBefore    []CommandRef `mapstructure:"goes_before"`
	GoesAfter     []CommandRef `mapstructure:"goes_after"`
	NextCommands  []CommandRef `mapstructure:"next_commands"`
	RequireBefore []CommandRef `mapstructure:"require_before"`

	Phase  string `mapstructure:"phase"`
	Cycle  string `mapstructure:"cycle"`
	Hidden bool   `mapstructure:"hidden"`
}

// ExecSpec runs a local program. Program names an allow-listed program; Command and Args
// describe an ad-hoc one.
type ExecSpec struct {
	Program string   `mapstructure:"program"`
	Command string   `mapstructure:"command"`
	Args    []string `mapstructure:"args"`
}

// CommandRef is a command reference in a manifest: a name or an inline CommandSpec.
type CommandRef struct {
	Name   string
	Inline *CommandSpec
}

// CycleSpec is a cycle as written in a manifest.
type CycleSpec struct {
	Name          string       `mapstructure:"name"`
	Members       []CommandRef `mapstructure:"members"`
	LoopStart     string       `mapstructure:"loop_start"`
	LoopEnd       string       `mapstructure:"loop_end"`
	WhileParam    string       `mapstructure:"while"`
	MaxIterations int          `mapstructure:"max_iterations"`
}

// Parse decodes a manifest without resolving actions.
func Parse(data []byte, format Format) (*Manifest, error) {
	doc, err := raw(data, format)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := decode(doc, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

var (
	paramRefType   = reflect.TypeOf(domain.ParamRef{})
	commandRefType = reflect.TypeOf(CommandRef{})
)

func decode(input any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       refHook,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

// refHook turns a string into a name reference and a map into an inline definition.
func refHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to != paramRefType && to != commandRefType {
		return data, nil
	}

	switch from.Kind() {
	case reflect.String:
		name := data.(string)
		if to == paramRefType {
			return domain.ParamName(name), nil
		}
		return CommandRef{Name: name}, nil

	case reflect.Map:
		if to == paramRefType {
			var p domain.Parameter
			if err := decode(data, &p); err != nil {
				return nil, fmt.Errorf("failed to decode inline parameter: %w", err)
			}
			if p.Name == "" {
				return nil, fmt.Errorf("inline parameter missing name")
			}
			return domain.InlineParam(p), nil
		}
		var c CommandSpec
		if err := decode(data, &c); err != nil {
			return nil, fmt.Errorf("failed to decode inline command: %w", err)
		}
		if c.Name == "" {
			return nil, fmt.Errorf("inline command missing name")
		}
		return CommandRef{Inline: &c}, nil
	}
	return data, nil
}
