// Package bootstrap is the composition root. It reads settings, configures
// logging and tracing, and builds services on first use so that commands
// only touch the providers they need.
package bootstrap
