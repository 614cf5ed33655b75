// Package core holds shared engine scaffolding: concurrency defaults,
// logger plumbing, and the telemetry hook fired at start/stop/retry
// boundaries. Configuration is passed explicitly via typed structs in each
// orchestration package; there are no ambient or global mutable defaults.
package core
