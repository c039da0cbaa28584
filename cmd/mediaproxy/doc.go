// Command mediaproxy is the control CLI for the proxy delivery daemon. It
// inspects engine capabilities, routes source files, and manages the
// delivery job queue over the daemon's HTTP control API.
package main
