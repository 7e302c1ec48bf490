// Package metrics provides Prometheus metrics for the region pipeline and the change log engine.
//
// Every Metrics value owns its own registry so that tests and concurrent runs never collide
// on the global default registry. The serve command exposes the registry on /metrics; batch
// commands push it to a Pushgateway when metrics.push_url is set.
//
// All recording helpers accept a nil *Metrics, so components can run without metrics.
package metrics
