// Package api defines the control API's data transfer types and the job
// service behind the HTTP handlers. DTOs are read-only projections of
// stored state; clients hold only the last-fetched copy.
package api
