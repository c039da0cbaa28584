// Package preflight verifies the runtime environment before the daemon or
// CLI relies on it: directory access, engine binaries, and daemon
// reachability.
package preflight
