// Package exec runs sets of operations with bounded concurrency.
//
// Two aggregation modes are provided. RunAll fails fast: the first failure
// is returned immediately, scheduling stops and the shared context is
// cancelled so cooperative in-flight operations stop early. SettleAll waits
// for every operation and partitions the outcomes into a Settlement.
//
// At most MaxConcurrency operations are in flight at any time; a per-call
// weighted semaphore enforces the bound. A fault in one operation never
// aborts its siblings, only the fail-fast aggregation short-circuits.
package exec
