// Package watch keeps batch files verified while they are being edited.
//
// A Session validates its targets once, then again whenever a target changes
// on disk (FileWatcher, debounced) and, optionally, on a cron schedule
// (Scheduler). The schedule catches drift that no batch edit reveals, such
// as an input directory being removed. Overlapping triggers for the same file
// share one validation.
package watch
