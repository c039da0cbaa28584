// Package capabilities reports external engine availability and derives
// per-file routing decisions from it.
//
// The daemon probes the local machine for the transcode and RAW-capable
// engines and serves the result as a single snapshot. The client fetches
// that snapshot and answers routing questions: a snapshot is replaced
// wholesale on every fetch, never patched, so a routing decision always
// reflects exactly one probe.
package capabilities
