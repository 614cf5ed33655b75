// Package ropx is a concurrency-orchestration engine for fallible operations.
//
// Every unit of work produces a Result: Success carrying a value, Fail
// carrying an error, or Cancel when the work was abandoned. The subpackages
// compose such operations with predictable parallelism and failure semantics:
//
//   - invoke: runs an operation with a fault boundary (panic -> Failure)
//   - task:   handles for single units of concurrent work
//   - exec:   bounded-concurrency execution with fail-fast or settle modes
//   - race:   first-success racing and hedged execution
//   - retry:  retries with pluggable backoff and error classification
//   - stream: lazy, backpressured concurrent transformation of sequences
//
// Library functions never propagate faults from orchestrated work to the
// caller; failures surface as Result values or Settlements.
package ropx
