// Package stream applies a fallible transform across a possibly large
// input sequence with bounded concurrency.
//
// A Stream is lazy, finite and single-pass: results are produced only as
// the consumer pulls them, and a stream cannot be restarted. The worker
// pool never runs further ahead of the consumer than the configured bound
// plus buffer, which gives natural backpressure; in ordered mode a reorder
// buffer of the same size restores input order.
//
// What happens to a failing element is governed by the error policy:
// include it, skip it, substitute a default, or halt the whole sequence.
package stream
