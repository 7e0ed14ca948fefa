// Package pipeline wires the stages of a run together: downloading competition pages
// and result documents, scraping judge rosters, parsing protocol documents and
// building the score dataset.
//
// Each stage reads what the previous one left in storage and skips work whose output
// already exists, so an interrupted run can simply be started again. Protocol
// documents are parsed by a bounded pool of workers; every worker returns its result
// into its own slot and a single reducer aggregates them after the pool drains.
package pipeline
