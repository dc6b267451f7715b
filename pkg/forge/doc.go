// Package forge provides the generation context: the concurrency-safe
// memoization layer that turns block requests into shared immutable cells.
//
// # Memoization
//
// A [Context] holds one entry per (block key, schema, view). The first
// request for an entry constructs the cell; every concurrent or later
// request for the same entry blocks on the in-flight construction and
// receives the same cell pointer. Construction runs exactly once per entry
// for the lifetime of the context, whether it succeeds or fails: failed
// entries are terminal and replay their error.
//
// # Cycle Detection
//
// Each construction carries its generation path. A block that, through any
// chain of child instantiations, requests an entry already on its own path
// fails with a RECURSION error naming the cycle. Independent goroutines
// requesting the same in-flight entry are not cycles; they simply wait.
//
// # Failure Containment
//
// A panicking generator is recovered and recorded as the entry's terminal
// INTERNAL_ERROR, so waiting goroutines unblock and the context stays
// usable for unrelated blocks.
package forge
