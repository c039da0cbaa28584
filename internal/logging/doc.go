// Package logging builds the slog loggers used across mediaproxy.
//
// Two output formats are supported: a console handler that renders
// timestamp/level/component prefixes with key=value fields, and a JSON
// handler for machine consumption. Components attach themselves with the
// standardized component attribute so daemon output stays greppable.
package logging
