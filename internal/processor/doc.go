// Package processor coordinates one translation run: it loads the input
// spreadsheet, resolves the language selection, drives the batch
// orchestrator and writes the assembled artifact.
package processor
