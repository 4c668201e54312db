/*
Package observability exposes Prometheus metrics for journey operations.

A Collector registers its metrics against an injected prometheus.Registerer and
reuses collectors that are already registered, so several engines can share a
registry. It satisfies simulation.Observer and is also called by the Engine
facade for every store and analysis operation.
*/
package observability
