// Package format models media containers and codecs as closed enumerations
// with explicit unknown variants, so routing and preview decisions can be
// made exhaustively instead of by ad hoc string matching.
package format
