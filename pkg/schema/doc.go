// Package schema implements the validation engine for bubu pipeline
// configuration documents.
//
// A configuration document is a loosely typed tree (objects, arrays and
// primitives) as produced by a JSON or YAML decoder. The engine walks that
// tree against a declarative rule tree and returns every violation it finds
// in a single pass. It never mutates the document and never stops at the
// first failure.
//
// # Rule Tree
//
// Each section of the pipeline configuration is described by a Rule value:
//
//	Object("asv_inference",
//		Object("error_model",
//			Bool("randomize"),
//			Int("iterations").Between(1, 30),
//		),
//		Bool("dada_pool_samples"),
//	).Gated(StageDADA)
//
// A single walker interprets the tree, so adding a field is a data change.
// Rules may be gated on a pipeline stage: the stage flags are derived while
// walking settings.pipeline and decide whether the quality_control section
// and the DADA sections are applicable at all.
//
// # Violations
//
// Every failed rule yields exactly one Violation carrying the field path, the
// kind of failure, what was expected and what was found. Message renders the
// human readable line used by the command line tool:
//
//	v := schema.New()
//	for _, violation := range v.Validate(doc) {
//		fmt.Println(violation.Message())
//	}
//
// Violations keep the order in which sections are declared, and within a
// section the order in which fields are declared.
//
// # Filesystem Probes
//
// Path fields are first checked for shape (they must start with "/", "./",
// "../" or "~/"). Only well-shaped paths marked as inputs are probed on the
// filesystem; "~/" is expanded against the home directory before the probe.
// The probe is pluggable through WithProber for tests and sandboxes.
package schema
