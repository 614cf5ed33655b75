// Package invoke executes fallible operations behind a fault boundary.
//
// Safe never propagates a fault to its caller: a panic raised inside the
// operation is recovered and converted to a Failure carrying a classified
// *ropx.PanicError. Every orchestration package in this module funnels
// user-supplied operations through it.
package invoke
