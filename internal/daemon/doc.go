// Package daemon hosts the control service: capability snapshots, job
// bookkeeping, and queue views over HTTP, with a lock file enforcing a
// single instance per machine.
package daemon
