package domain

import "context"

// Binder gives actions access to parameter values during a run.
type Binder interface {
	Set(name string, raw any) error
	Value(name string) (any, bool)
}

type binderKey struct{}

// ContextWithBinder returns a context carrying b.
func ContextWithBinder(ctx context.Context, b Binder) context.Context {
	return context.WithValue(ctx, binderKey{}, b)
}

// BinderFromContext returns the binder carried by ctx, if any.
func BinderFromContext(ctx context.Context) (Binder, bool) {
	b, ok := ctx.Value(binderKey{}).(Binder)
	return b, ok
}
