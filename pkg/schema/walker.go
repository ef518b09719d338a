package schema

import (
	"fmt"
	"math"
	"strconv"
)

// walker carries the state of a single document validation.
type walker struct {
	out    Violations
	stages map[Stage]bool
	prober PathProber
	home   func() (string, error)
}

func newWalker(prober PathProber, home func() (string, error)) *walker {
	return &walker{
		stages: make(map[Stage]bool),
		prober: prober,
		home:   home,
	}
}

// enabled returns the stage flag. Stages that were never set default to true.
func (w *walker) enabled(stage Stage) bool {
	on, ok := w.stages[stage]
	if !ok {
		return true
	}
	return on
}

func (w *walker) add(path string, kind Kind, expected, actual string) {
	w.out = append(w.out, Violation{Path: path, Kind: kind, Expected: expected, Actual: actual})
}

// object validates the fields of obj in declaration order. Top-level fields
// are reported as sections when missing.
func (w *walker) object(prefix string, fields []Rule, obj Value, top bool) {
	for _, rule := range fields {
		if rule.Gate != "" && !w.enabled(rule.Gate) {
			continue
		}
		w.field(joinPath(prefix, rule.Name), rule, obj.Lookup(rule.Name), top)
	}
}

func (w *walker) field(path string, rule Rule, v Value, top bool) {
	if !v.Present() {
		if rule.Optional {
			return
		}
		if top || rule.Type == TypeObject {
			w.add(path, KindMissingSection, "", "")
		} else {
			w.add(path, KindMissingField, "", "")
		}
		return
	}

	switch rule.Type {
	case TypeObject:
		// A null or non-object section is reported as missing rather than
		// walked, so nothing below it can be checked.
		if _, ok := v.AsObject(); !ok {
			w.add(path, KindMissingSection, "", "")
			return
		}
		w.object(path, rule.Fields, v, false)

	case TypeArray:
		items, ok := v.AsArray()
		if !ok {
			if top && v.IsNull() {
				w.add(path, KindMissingSection, "", "")
				return
			}
			w.typeMismatch(path, rule, v)
			return
		}
		if rule.Elem == nil {
			return
		}
		for i, item := range items {
			w.field(fmt.Sprintf("%s[%d]", path, i), *rule.Elem, item, false)
		}

	case TypeBool:
		b, ok := v.AsBool()
		if !ok {
			w.typeMismatch(path, rule, v)
			return
		}
		if rule.Flag != "" {
			w.stages[rule.Flag] = b
		}

	case TypeString:
		if _, ok := v.AsString(); !ok {
			w.typeMismatch(path, rule, v)
		}

	case TypeInt:
		if !v.IsInteger() {
			w.typeMismatch(path, rule, v)
			return
		}
		w.checkRange(path, rule, v)

	case TypeNumber:
		f, ok := v.AsFloat()
		if !ok || math.IsNaN(f) {
			w.typeMismatch(path, rule, v)
			return
		}
		w.checkRange(path, rule, v)

	case TypePath:
		w.checkPath(path, rule, v)
	}
}

func (w *walker) typeMismatch(path string, rule Rule, v Value) {
	w.add(path, KindType, rule.expected(), v.TypeName())
}

func (w *walker) checkRange(path string, rule Rule, v Value) {
	if rule.Range == nil {
		return
	}
	f, _ := v.AsFloat()
	if !rule.Range.Contains(f) {
		w.add(path, KindRange, rule.Range.String(), strconv.FormatFloat(f, 'g', -1, 64))
	}
}

// checkPath runs the shape check and, only when it passed, the existence probe.
func (w *walker) checkPath(path string, rule Rule, v Value) {
	s, ok := v.AsString()
	if !ok {
		w.typeMismatch(path, rule, v)
		return
	}
	if !IsUnixPath(s) {
		w.add(path, KindShape, rule.expected(), s)
		return
	}
	if rule.Path == nil || !rule.Path.MustExist {
		return
	}
	if !w.exists(s) {
		w.add(path, KindNotFound, "", s)
	}
}

func (w *walker) exists(p string) bool {
	expanded, err := ExpandHome(p, w.home)
	if err != nil {
		return false
	}
	return w.prober.Exists(expanded)
}

func joinPath(prefix, name string) string {
	switch {
	case prefix == "":
		return name
	case name == "":
		return prefix
	default:
		return prefix + "." + name
	}
}
