// Package document loads batches of bubu experiment configurations.
//
// A batch file holds an array of experiment configurations, either as JSON
// or as a YAML sequence. The loader only deals with structural problems: an
// unreadable file, malformed JSON/YAML, or a root that is not a sequence of
// objects. Those are reported as *InputError and abort the whole batch.
// Schema problems inside each experiment are left to package schema.
//
// Each loaded Document remembers its position in the batch and, when the
// parser can tell, the line it starts on, so reports can point at it.
package document
