// Package queue persists proxy delivery jobs in SQLite.
//
// The store owns the job lifecycle (pending, running, completed, failed,
// cancelled) and enforces legal transitions. Terminal jobs are retained
// until an explicit queue reset; there is no automatic retry or cleanup, so
// failures stay inspectable.
package queue
