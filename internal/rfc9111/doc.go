// Package rfc9111 implements the storability, freshness, and freshening
// decision logic of RFC 9111 as pure functions over value types. Nothing in
// this package performs I/O, holds a clock, or talks to storage; callers
// supply all time values and fetched records explicitly, so every decision
// here is a deterministic function of its inputs.
package rfc9111
