/*
Package observability provides tools for monitoring Trestle runs.

Metrics records Prometheus counters and histograms from the engine's lifecycle hooks, and
Chain combines several LifecycleHooks values (for example metrics plus structured logging)
into one.

	metrics := observability.NewMetrics()
	hooks := observability.Chain(metrics.Hooks(), observability.LogHooks(logger))
	eng, _ := trestle.New(trestle.WithLifecycleHooks(hooks))
*/
package observability
