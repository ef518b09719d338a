package schema

import "os"

// Validator validates configuration documents against a rule tree.
// A Validator holds no per-document state and is safe for concurrent use.
type Validator struct {
	schema Rule
	prober PathProber
	home   func() (string, error)
}

// Option configures a Validator.
type Option func(*Validator)

// WithSchema replaces the pipeline rule tree. The root rule must be a
// TypeObject whose fields are the top-level sections.
func WithSchema(root Rule) Option {
	return func(v *Validator) {
		v.schema = root
	}
}

// WithProber replaces the filesystem probe used for input paths.
func WithProber(p PathProber) Option {
	return func(v *Validator) {
		if p != nil {
			v.prober = p
		}
	}
}

// WithHomeDir replaces the home directory lookup used to expand "~/".
func WithHomeDir(home func() (string, error)) Option {
	return func(v *Validator) {
		if home != nil {
			v.home = home
		}
	}
}

// New creates a Validator for the bubu pipeline schema.
func New(opts ...Option) *Validator {
	v := &Validator{
		schema: PipelineSchema(),
		prober: StatProber{},
		home:   os.UserHomeDir,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate walks doc and returns every violation found, in section order.
// doc is a decoded document (map[string]any and friends) or a Value. A nil
// or non-object document reports every top-level section as missing.
func (v *Validator) Validate(doc any) Violations {
	w := newWalker(v.prober, v.home)
	w.object("", v.schema.Fields, ValueOf(doc), true)
	if w.out == nil {
		return Violations{}
	}
	return w.out
}

// Validate validates doc against the pipeline schema using the local
// filesystem and returns the rendered violation messages. An empty result
// means the document is valid.
func Validate(doc any) []string {
	return New().Validate(doc).Messages()
}
