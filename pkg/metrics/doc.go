/*
Package metrics provides Prometheus metrics collection and exposition
for the tracker deployer.

It defines and registers every metric using the Prometheus client
library: lifecycle-state gauges over the environment population,
handler duration and failure counters, per-step timing within a
handler's workflow, and driver invocation outcomes. Metrics are
exposed via an HTTP endpoint for scraping by a Prometheus server.

# Metrics Catalog

deployer_environments_total{state}:
  - Type: Gauge
  - Description: Number of persisted environments by lifecycle state
  - Labels: state (created, provisioning, provisioned, configuring,
    configured, releasing, released, running, destroying, destroyed,
    failed)
  - Refreshed by Collector on a 15s tick, since it reflects the whole
    population rather than a single handler call.

deployer_handler_duration_seconds{handler}:
  - Type: Histogram
  - Description: Time taken to run a handler invocation
  - Labels: handler (create, provision, configure, release, run, test,
    destroy, purge)

deployer_handler_failures_total{handler, kind}:
  - Type: Counter
  - Description: Handler invocations that ended in Failed, by handler
    and deployerr.Kind

deployer_step_duration_seconds{handler, step}:
  - Type: Histogram
  - Description: Time taken by a single workflow step within a
    handler (e.g. "render", "driver-provision", "poll ssh reachability")

deployer_driver_invocations_total{tool, outcome}:
  - Type: Counter
  - Description: External driver invocations by tool (tofu,
    ansible-playbook, ssh, scp) and outcome (ok, error)

deployer_lock_wait_seconds:
  - Type: Histogram
  - Description: Time spent waiting to acquire an environment's
    advisory lock

# Usage

	import "github.com/cuemby/tracker-deployer/pkg/metrics"

	metrics.EnvironmentsTotal.WithLabelValues("running").Set(3)
	metrics.HandlerFailuresTotal.WithLabelValues("provision", "timeout").Inc()

	timer := metrics.NewTimer()
	// ... run a handler ...
	timer.ObserveDurationVec(metrics.HandlerDuration, "provision")

	http.Handle("/metrics", metrics.Handler())

# Reporter

Reporter wraps any progress.Reporter and observes
deployer_handler_duration_seconds, deployer_handler_failures_total,
and deployer_step_duration_seconds from the event stream before
forwarding each event unchanged, so handlers stay metrics-free and a
caller opts in by wrapping whatever reporter it was going to use
anyway.

# Collector

Collector wraps a pkg/store.Store and periodically re-lists every
record to refresh EnvironmentsTotal, since that gauge can't be updated
inline the way a handler updates its own duration/failure counters: it
has to reflect the count across every environment on disk, not just
the one a handler call is acting on.

# Health Endpoints

health.go separately exposes /health, /ready, and /live handlers built
around a small in-process component registry (RegisterComponent,
UpdateComponent), independent of the Prometheus registry. Readiness
requires the two critical components, "store" and "driver": the CLI
registers both at startup (data root usable, provisioner binary on
PATH) and pkg/driver refreshes "driver" after every subprocess run.
The CLI serves all of these plus /metrics on --monitor-addr for the
duration of a command.
*/
package metrics
