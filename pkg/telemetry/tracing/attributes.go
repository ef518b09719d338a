package tracing

import "go.opentelemetry.io/otel/attribute"

// Span attribute keys.
const (
	AttrRunID      = attribute.Key("bubu.run_id")
	AttrSource     = attribute.Key("bubu.source")
	AttrFormat     = attribute.Key("bubu.format")
	AttrDocuments  = attribute.Key("bubu.documents")
	AttrFailed     = attribute.Key("bubu.failed_documents")
	AttrViolations = attribute.Key("bubu.violations")
	AttrExperiment = attribute.Key("bubu.experiment")
	AttrLine       = attribute.Key("bubu.line")
	AttrPassed     = attribute.Key("bubu.passed")
	AttrSections   = attribute.Key("bubu.failed_sections")
	AttrInputOp    = attribute.Key("bubu.input_op")
)

// RunAttributes describe a batch when its run starts.
func RunAttributes(runID, source, format string, documents int) []attribute.KeyValue {
	return []attribute.KeyValue{
		AttrRunID.String(runID),
		AttrSource.String(source),
		AttrFormat.String(format),
		AttrDocuments.Int(documents),
	}
}

// RunResultAttributes describe a finished run.
func RunResultAttributes(failed, violations int) []attribute.KeyValue {
	return []attribute.KeyValue{
		AttrPassed.Bool(failed == 0),
		AttrFailed.Int(failed),
		AttrViolations.Int(violations),
	}
}

// ExperimentAttributes identify one experiment within a batch.
func ExperimentAttributes(number, line int) []attribute.KeyValue {
	attrs := []attribute.KeyValue{AttrExperiment.Int(number)}
	if line > 0 {
		attrs = append(attrs, AttrLine.Int(line))
	}
	return attrs
}

// ExperimentResultAttributes describe a validated experiment. sections
// lists the top-level sections with violations, in report order.
func ExperimentResultAttributes(violations int, sections []string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		AttrPassed.Bool(violations == 0),
		AttrViolations.Int(violations),
	}
	if len(sections) > 0 {
		attrs = append(attrs, AttrSections.StringSlice(sections))
	}
	return attrs
}
