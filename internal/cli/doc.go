// Package cli implements the command-line interface for skate-protocols.
//
// The cli package provides the Cobra-based CLI with one subcommand per pipeline stage
// (fetch, judges, protocols, dataset) and a run command for all of them. It loads the
// layered configuration, builds the pipeline runner and reports a run summary as text
// or JSON.
package cli
