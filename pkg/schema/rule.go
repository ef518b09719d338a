package schema

import "fmt"

// Type is the shape a rule expects a field to have.
type Type int

const (
	TypeObject Type = iota
	TypeBool
	TypeString
	TypeInt
	TypeNumber
	TypeArray
	TypePath
)

// Stage names a pipeline stage whose flag gates whole sections.
type Stage string

// Range is an inclusive numeric bound.
type Range struct {
	Min float64
	Max float64

	// Float renders the bounds with one decimal place ("0.0") instead of as
	// integers ("1").
	Float bool
}

// Contains reports whether f lies within the inclusive bounds.
func (r Range) Contains(f float64) bool {
	return f >= r.Min && f <= r.Max
}

// String renders the bound the way violation messages phrase it.
func (r Range) String() string {
	if r.Float {
		return fmt.Sprintf("between %.1f and %.1f inclusive", r.Min, r.Max)
	}
	return fmt.Sprintf("between %d and %d inclusive", int64(r.Min), int64(r.Max))
}

// PathRule refines a TypePath rule.
type PathRule struct {
	// Noun is "directory" or "file"; it only affects the message text.
	Noun string

	// MustExist enables the filesystem probe once the shape check passed.
	MustExist bool
}

// Rule declares how one field of a document is validated.
type Rule struct {
	Name     string
	Type     Type
	Optional bool

	// Fields are the children of a TypeObject rule, in report order.
	Fields []Rule

	// Elem validates each element of a TypeArray rule.
	Elem *Rule

	// Range bounds TypeInt and TypeNumber rules.
	Range *Range

	// Path refines TypePath rules.
	Path *PathRule

	// Gate skips the rule entirely unless the stage is enabled.
	Gate Stage

	// Flag stores a valid boolean value as the stage flag.
	Flag Stage

	// Expected overrides the generated type description.
	Expected string
}

// Object declares a required nested object.
func Object(name string, fields ...Rule) Rule {
	return Rule{Name: name, Type: TypeObject, Fields: fields}
}

// Bool declares a required boolean.
func Bool(name string) Rule {
	return Rule{Name: name, Type: TypeBool}
}

// String declares a required string.
func String(name string) Rule {
	return Rule{Name: name, Type: TypeString}
}

// Int declares a required integer of any magnitude.
func Int(name string) Rule {
	return Rule{Name: name, Type: TypeInt}
}

// Number declares a required non-NaN number.
func Number(name string) Rule {
	return Rule{Name: name, Type: TypeNumber}
}

// ArrayOf declares a required array whose elements follow elem.
func ArrayOf(name string, elem Rule) Rule {
	return Rule{Name: name, Type: TypeArray, Elem: &elem}
}

// DirPath declares a directory path. When mustExist is set the path is
// probed on the filesystem.
func DirPath(name string, mustExist bool) Rule {
	return Rule{Name: name, Type: TypePath, Path: &PathRule{Noun: "directory", MustExist: mustExist}}
}

// FilePath declares a file path. When mustExist is set the path is probed on
// the filesystem.
func FilePath(name string, mustExist bool) Rule {
	return Rule{Name: name, Type: TypePath, Path: &PathRule{Noun: "file", MustExist: mustExist}}
}

// Opt marks the rule as optional.
func (r Rule) Opt() Rule {
	r.Optional = true
	return r
}

// Between bounds a numeric rule to [min, max].
func (r Rule) Between(min, max float64) Rule {
	r.Range = &Range{Min: min, Max: max, Float: r.Type == TypeNumber}
	return r
}

// Gated makes the rule applicable only when stage is enabled.
func (r Rule) Gated(stage Stage) Rule {
	r.Gate = stage
	return r
}

// Sets makes a boolean rule drive the flag of stage.
func (r Rule) Sets(stage Stage) Rule {
	r.Flag = stage
	return r
}

// Expects overrides the type description used in violation messages.
func (r Rule) Expects(description string) Rule {
	r.Expected = description
	return r
}

// expected describes the type the rule wants.
func (r Rule) expected() string {
	if r.Expected != "" {
		return r.Expected
	}
	switch r.Type {
	case TypeObject:
		return "an object"
	case TypeBool:
		return "a boolean"
	case TypeString:
		return "a string"
	case TypeInt:
		return "an integer"
	case TypeNumber:
		return "a float"
	case TypeArray:
		if r.Elem != nil && r.Elem.Type == TypeString {
			return "an array of strings"
		}
		return "an array"
	case TypePath:
		noun := "directory"
		if r.Path != nil && r.Path.Noun != "" {
			noun = r.Path.Noun
		}
		return "a valid Unix " + noun + " path"
	default:
		return "a valid value"
	}
}
