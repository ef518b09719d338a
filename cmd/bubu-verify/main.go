// bubu-verify checks bubu pipeline experiment configurations before a run.
//
// A batch is a JSON or YAML file whose root is an array of experiment
// configurations. Each experiment is checked against the pipeline schema and
// every violation is reported.
//
// Usage:
//
//	# Verify a batch
//	bubu-verify validate experiments.json
//
//	# Machine readable output for CI
//	bubu-verify validate experiments.yaml --format junit > report.xml
//
//	# Re-verify on change and every night
//	bubu-verify watch configs/ --schedule "0 2 * * *"
//
//	# Inspect recorded runs
//	bubu-verify history list --limit 10
//
// Exit status is 0 when every experiment is valid, 1 when violations were
// found and 2 when the batch or the command itself could not be processed.
package main

import "os"

func main() {
	os.Exit(Execute())
}
