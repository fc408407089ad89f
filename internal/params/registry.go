package params

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"slices"
	"sort"
	"strings"

	"github.com/aretw0/trestle/internal/logging"
	"github.com/aretw0/trestle/pkg/domain"
	"github.com/aretw0/trestle/pkg/schema"
)

const kindParameter = "parameter"

// Source records where a bound value came from.
type Source string

const (
	SourceExplicit Source = "explicit"
	SourceDefault  Source = "default"
	SourceStored   Source = "stored"
)

type entry struct {
	def domain.Parameter
	typ schema.Type
}

type binding struct {
	value  any
	source Source
}

// Registry owns parameter definitions and bound values.
// It is not safe for concurrent use; registration is expected to finish before execution.
type Registry struct {
	logger  *slog.Logger
	entries map[string]*entry
	order   []string
	aliases map[string]string
	values  map[string]binding
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the registry logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New creates an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		logger:  logging.NewNop(),
		entries: make(map[string]*entry),
		aliases: make(map[string]string),
		values:  make(map[string]binding),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Check validates definitions as one batch without registering them.
// Later definitions are checked against earlier ones, so two definitions of the batch
// colliding on a name or alias are reported just as a collision with the registry would be.
func (r *Registry) Check(defs ...domain.Parameter) error {
	pendingDefs := make(map[string]domain.Parameter)
	pendingAliases := make(map[string]string)

	for _, def := range defs {
		c, _, err := r.canonicalize(def)
		if err != nil {
			return err
		}

		prev, known := r.lookup(c.Name)
		if p, ok := pendingDefs[c.Name]; ok {
			prev, known = p, true
		}
		if known {
			if !prev.Equal(c) {
				return domain.NewValidationError(kindParameter, c.Name, "already registered with a different definition")
			}
			continue
		}

		for _, alias := range c.Aliases {
			owner, taken := r.aliases[alias]
			if !taken {
				owner, taken = pendingAliases[alias]
			}
			if taken {
				return domain.NewValidationError(kindParameter, c.Name, "alias %q already used by parameter %q", alias, owner)
			}
		}

		pendingDefs[c.Name] = c
		for _, alias := range c.Aliases {
			pendingAliases[alias] = c.Name
		}
	}
	return nil
}

// Add registers a definition. Registering an identical definition again is a no-op.
// Add never binds a value; defaults are bound by ApplyDefaults.
func (r *Registry) Add(def domain.Parameter) error {
	if err := r.Check(def); err != nil {
		return err
	}

	c, typ, err := r.canonicalize(def)
	if err != nil {
		return err
	}
	if _, exists := r.entries[c.Name]; exists {
		r.logger.Debug("parameter already registered", "parameter", c.Name)
		return nil
	}

	r.entries[c.Name] = &entry{def: c, typ: typ}
	r.order = append(r.order, c.Name)
	for _, alias := range c.Aliases {
		r.aliases[alias] = c.Name
	}
	r.logger.Debug("parameter registered", "parameter", c.Name, "type", typ.Name())
	return nil
}

// canonicalize validates a definition in isolation and returns it with its default and
// allowed values coerced to the declared type.
func (r *Registry) canonicalize(def domain.Parameter) (domain.Parameter, schema.Type, error) {
	def.Name = strings.TrimSpace(def.Name)
	if def.Name == "" {
		return def, nil, domain.NewValidationError(kindParameter, "", "parameter name cannot be empty")
	}
	if def.Type == "" {
		return def, nil, domain.NewValidationError(kindParameter, def.Name, "parameter type is required")
	}
	typ, err := schema.ParseType(string(def.Type))
	if err != nil {
		return def, nil, domain.NewValidationError(kindParameter, def.Name, "%v", err)
	}

	switch def.Registration {
	case "":
		def.Registration = domain.RegisterBuffered
	case domain.RegisterBuffered, domain.RegisterImmediate:
	default:
		return def, nil, domain.NewValidationError(kindParameter, def.Name, "unknown registration phase %q", def.Registration)
	}

	if len(def.Aliases) == 0 {
		def.Aliases = nil
	} else {
		aliases := make([]string, 0, len(def.Aliases))
		for _, alias := range def.Aliases {
			alias = strings.TrimSpace(alias)
			if alias == "" {
				return def, nil, domain.NewValidationError(kindParameter, def.Name, "alias cannot be empty")
			}
			if slices.Contains(aliases, alias) {
				return def, nil, domain.NewValidationError(kindParameter, def.Name, "alias %q listed twice", alias)
			}
			aliases = append(aliases, alias)
		}
		def.Aliases = aliases
	}

	if len(def.AllowedValues) == 0 {
		def.AllowedValues = nil
	} else {
		vals := make([]any, 0, len(def.AllowedValues))
		for _, v := range def.AllowedValues {
			c, err := typ.Coerce(v)
			if err != nil {
				return def, nil, domain.NewValidationError(kindParameter, def.Name, "allowed value %#v does not match type %s: %v", v, typ.Name(), err)
			}
			vals = append(vals, c)
		}
		def.AllowedValues = vals
	}

	if def.Default != nil {
		c, err := typ.Coerce(def.Default)
		if err != nil {
			return def, nil, domain.NewValidationError(kindParameter, def.Name, "default %#v does not match type %s: %v", def.Default, typ.Name(), err)
		}
		if !allowed(def.AllowedValues, c) {
			return def, nil, domain.NewValidationError(kindParameter, def.Name, "default %#v is not an allowed value", def.Default)
		}
		def.Default = c
	}

	return def, typ, nil
}

func (r *Registry) lookup(name string) (domain.Parameter, bool) {
	e, ok := r.entries[name]
	if !ok {
		return domain.Parameter{}, false
	}
	return e.def, true
}

// Lookup returns the canonical definition of a parameter.
func (r *Registry) Lookup(name string) (domain.Parameter, bool) {
	return r.lookup(name)
}

// Names returns the registered parameter names in registration order.
func (r *Registry) Names() []string {
	return slices.Clone(r.order)
}

// Definitions returns the canonical definitions in registration order.
func (r *Registry) Definitions() []domain.Parameter {
	out := make([]domain.Parameter, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.entries[name].def)
	}
	return out
}

// ResolveAlias returns the name of the parameter owning flag.
func (r *Registry) ResolveAlias(flag string) (string, error) {
	name, ok := r.aliases[strings.TrimSpace(flag)]
	if !ok {
		return "", &domain.NotFoundError{Kind: "alias", Name: flag}
	}
	return name, nil
}

// Set coerces raw to the parameter's type, checks it against the allowed values and binds it.
func (r *Registry) Set(name string, raw any) error {
	v, err := r.coerce(name, raw)
	if err != nil {
		return err
	}
	r.values[name] = binding{value: v, source: SourceExplicit}
	return nil
}

func (r *Registry) coerce(name string, raw any) (any, error) {
	e, ok := r.entries[name]
	if !ok {
		return nil, &domain.NotFoundError{Kind: kindParameter, Name: name}
	}
	v, err := e.typ.Coerce(raw)
	if err != nil {
		return nil, &domain.TypeError{Param: name, Type: e.typ.Name(), Value: raw, Err: err}
	}
	if !allowed(e.def.AllowedValues, v) {
		return nil, domain.NewValidationError(kindParameter, name, "value %#v is not one of %v", raw, e.def.AllowedValues)
	}
	return v, nil
}

// Value returns the bound value of a parameter.
func (r *Registry) Value(name string) (any, bool) {
	b, ok := r.values[name]
	return b.value, ok
}

// Source returns how a parameter was bound.
func (r *Registry) Source(name string) (Source, bool) {
	b, ok := r.values[name]
	return b.source, ok
}

// Bound reports whether a parameter has a value.
func (r *Registry) Bound(name string) bool {
	_, ok := r.values[name]
	return ok
}

// Truthy reports whether a parameter is bound to a truthy value.
func (r *Registry) Truthy(name string) bool {
	b, ok := r.values[name]
	return ok && domain.Truthy(b.value)
}

// Values returns a copy of every bound value.
func (r *Registry) Values() map[string]any {
	out := make(map[string]any, len(r.values))
	for name, b := range r.values {
		out[name] = b.value
	}
	return out
}

// ApplyDefaults binds the default of every unbound parameter the stage covers.
// BindImmediate only covers immediate parameters; BindFinal covers all of them.
// Calling it again binds nothing new. It returns the names bound by this call.
func (r *Registry) ApplyDefaults(stage domain.BindStage) []string {
	var bound []string
	for _, name := range r.order {
		e := r.entries[name]
		if e.def.Default == nil || r.Bound(name) {
			continue
		}
		if stage == domain.BindImmediate && e.def.Registration != domain.RegisterImmediate {
			continue
		}
		r.values[name] = binding{value: e.def.Default, source: SourceDefault}
		bound = append(bound, name)
	}
	if len(bound) > 0 {
		r.logger.Debug("defaults applied", "stage", stage.String(), "parameters", bound)
	}
	return bound
}

// MissingRequired returns the required parameters that are still unbound, in registration order.
func (r *Registry) MissingRequired() []string {
	s := schema.Schema{}
	var required []string
	for _, name := range r.order {
		if e := r.entries[name]; e.def.Required {
			s[name] = e.typ
			required = append(required, name)
		}
	}
	return schema.MissingKeys(schema.ValidateFields(s, r.Values(), required...))
}

// Persistable returns the bound values of persistent parameters only.
// Runtime-only parameters are never included, whatever their binding source.
func (r *Registry) Persistable() map[string]any {
	out := make(map[string]any)
	for _, name := range r.order {
		if !r.entries[name].def.Persistent {
			continue
		}
		if b, ok := r.values[name]; ok {
			out[name] = b.value
		}
	}
	return out
}

// Load binds saved values. Only known, persistent and still unbound parameters are bound;
// other keys are skipped. Values failing coercion are reported together.
func (r *Registry) Load(values map[string]any) error {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var errs []error
	for _, name := range keys {
		e, ok := r.entries[name]
		switch {
		case !ok:
			r.logger.Warn("ignoring saved value for unknown parameter", "parameter", name)
			continue
		case !e.def.Persistent:
			r.logger.Warn("ignoring saved value for runtime-only parameter", "parameter", name)
			continue
		case r.Bound(name):
			continue
		}

		v, err := r.coerce(name, values[name])
		if err != nil {
			errs = append(errs, fmt.Errorf("saved value: %w", err))
			continue
		}
		r.values[name] = binding{value: v, source: SourceStored}
	}
	return errors.Join(errs...)
}

func allowed(set []any, v any) bool {
	if len(set) == 0 {
		return true
	}
	for _, a := range set {
		if reflect.DeepEqual(a, v) {
			return true
		}
	}
	return false
}
