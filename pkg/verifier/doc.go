// Package verifier runs the schema engine over a batch of experiment
// configurations and assembles a Report.
//
// The runner owns the batch contract around the engine: it loads the batch
// file, validates each document (sequentially or with bounded parallelism),
// keeps results in batch order, and feeds the logger, the metrics collector
// and the run history. A batch fails when any document has a violation, but
// every document is always checked.
package verifier
