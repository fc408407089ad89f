package domain

// ParamRef points at a parameter either by name or with an inline definition.
// Registration replaces inline definitions by their name; stored commands only hold names.
type ParamRef struct {
	Name   string
	Inline *Parameter
}

// ParamName references an already registered parameter.
func ParamName(name string) ParamRef { return ParamRef{Name: name} }

// InlineParam embeds a parameter definition that is registered together with its command.
func InlineParam(p Parameter) ParamRef { return ParamRef{Inline: &p} }

// IsInline reports whether the reference still carries a definition.
func (r ParamRef) IsInline() bool { return r.Inline != nil }

// Key returns the parameter name the reference resolves to.
func (r ParamRef) Key() string {
	if r.Inline != nil {
		return r.Inline.Name
	}
	return r.Name
}

// CommandRef points at a command either by name or with an inline definition.
type CommandRef struct {
	Name   string
	Inline *Command
}

// CommandName references a command by name.
func CommandName(name string) CommandRef { return CommandRef{Name: name} }

// InlineCommand embeds a command definition that is registered through the same pipeline.
func InlineCommand(c Command) CommandRef { return CommandRef{Inline: &c} }

// IsInline reports whether the reference still carries a definition.
func (r CommandRef) IsInline() bool { return r.Inline != nil }

// Key returns the command name the reference resolves to.
func (r CommandRef) Key() string {
	if r.Inline != nil {
		return r.Inline.Name
	}
	return r.Name
}

// CommandNames builds name references.
func CommandNames(names ...string) []CommandRef {
	refs := make([]CommandRef, 0, len(names))
	for _, n := range names {
		refs = append(refs, CommandName(n))
	}
	return refs
}

// Keys returns the resolved names of refs, in order.
func Keys(refs []CommandRef) []string {
	out := make([]string, 0, len(refs))
	for _, r := range refs {
		out = append(out, r.Key())
	}
	return out
}
