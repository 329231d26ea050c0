/*
Package observability turns canvas lifecycle hooks into Prometheus metrics and
structured log lines.

Both are plain domain.LifecycleHooks values and can be merged:

	hooks := observability.NewMetrics(prometheus.DefaultRegisterer).Hooks().
		Merge(observability.LogHooks(logger))
*/
package observability
