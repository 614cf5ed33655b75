// Package task provides handles for single units of concurrent work.
//
// A Handle is created by Go and transitions at most once: Running to
// Completed, or Running to Cancelled. Once a handle has transitioned,
// every wait observes the identical memoized result.
//
// Cancellation is advisory: Cancel signals the operation's context and
// resolves the handle, but native work that ignores the context may keep
// running in the background until it finishes on its own.
package task
