// Package retry repeatedly invokes a single operation until it succeeds,
// its attempt budget is exhausted, or its failure is classified as
// non-recoverable.
//
// Delay computation is delegated to a backoff source built on
// cenkalti/backoff; error classification is delegated to the Recoverable
// collaborator. Both are pluggable per call via Config.
package retry
