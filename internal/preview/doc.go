// Package preview owns the monitor surface: which mode a source renders in
// and what the transport controls may do at any moment.
//
// Mode resolution is a pure function of the source's local-path
// availability, container, and codec. Everything stateful runs through an
// explicit finite-state machine (idle, source loaded, job running, job
// complete) with a single transition function, so control enablement is a
// table lookup rather than scattered conditionals. Transport controls are
// always present; only their enablement changes.
package preview
