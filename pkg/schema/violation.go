package schema

import (
	"fmt"
	"strings"
)

// Kind categorizes a violation.
type Kind string

const (
	KindMissingSection Kind = "missing_section" // Required object or top-level section absent or not an object
	KindMissingField   Kind = "missing_field"   // Required scalar or array field absent
	KindType           Kind = "type"            // Field present with the wrong type
	KindShape          Kind = "shape"           // String that does not look like a Unix path
	KindRange          Kind = "range"           // Number outside its inclusive bounds
	KindNotFound       Kind = "not_found"       // Well-shaped input path missing on disk
)

// Violation is one failed rule for one field of a configuration document.
type Violation struct {
	// Path is the dotted/bracketed field path, e.g. "taxonomy_assignment[0].active".
	Path string `json:"path"`

	// Kind is the category of failure.
	Kind Kind `json:"kind"`

	// Expected describes what the rule wanted, e.g. "a boolean" or
	// "between 1 and 30 inclusive". Empty for missing fields and sections.
	Expected string `json:"expected,omitempty"`

	// Actual describes what was found: a type name for type violations,
	// the offending value for shape, range and existence violations.
	Actual string `json:"actual,omitempty"`
}

// Message renders the violation as a single human readable line.
func (v Violation) Message() string {
	switch v.Kind {
	case KindMissingSection:
		return fmt.Sprintf("Missing %q section.", v.Path)
	case KindMissingField:
		return fmt.Sprintf("Missing %q field.", v.Path)
	case KindNotFound:
		return fmt.Sprintf("%q path does not exist: %s", v.Path, v.Actual)
	default:
		return fmt.Sprintf("%q must be %s.", v.Path, v.Expected)
	}
}

// String implements fmt.Stringer.
func (v Violation) String() string {
	return v.Message()
}

// Section returns the top-level section the violation belongs to.
func (v Violation) Section() string {
	end := strings.IndexAny(v.Path, ".[")
	if end < 0 {
		return v.Path
	}
	return v.Path[:end]
}

// Violations is the ordered result of validating one document.
type Violations []Violation

// Valid reports whether no rule failed.
func (vs Violations) Valid() bool {
	return len(vs) == 0
}

// Messages renders every violation in order. The result is never nil.
func (vs Violations) Messages() []string {
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		out = append(out, v.Message())
	}
	return out
}

// ByKind returns all violations of the given kind.
func (vs Violations) ByKind(kind Kind) Violations {
	var result Violations
	for _, v := range vs {
		if v.Kind == kind {
			result = append(result, v)
		}
	}
	return result
}

// HasKind returns true if at least one violation has the given kind.
func (vs Violations) HasKind(kind Kind) bool {
	for _, v := range vs {
		if v.Kind == kind {
			return true
		}
	}
	return false
}

// InSection returns the violations whose path lies in the named top-level section.
func (vs Violations) InSection(section string) Violations {
	var result Violations
	for _, v := range vs {
		if v.Section() == section {
			result = append(result, v)
		}
	}
	return result
}
