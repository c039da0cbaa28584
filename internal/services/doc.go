// Package services holds the error taxonomy shared by the control daemon,
// the job store, and the CLI. Errors are tagged with sentinel markers so
// callers can classify failures without parsing messages; backend-originated
// messages are always carried through verbatim.
package services
