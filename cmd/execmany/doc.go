// Package main hosts the execmany CLI entrypoint and command graph.
//
// The Cobra command tree runs execute-many operations against a mediapackage
// file, inspects and maintains the job store, scaffolds configuration and
// reports environment readiness. Configuration resolution and logger setup
// live in the shared command context so subcommands only deal with their own
// flags and output.
//
// Keep this package lean: new behaviour belongs in the internal packages and
// is surfaced here through dedicated commands or flags.
package main
