package document

import (
	"errors"
	"fmt"
)

// Input error operations.
const (
	OpOpen  = "open"
	OpRead  = "read"
	OpParse = "parse"
	OpShape = "shape"
)

// ErrNotSequence is returned when the root of a batch is not an array.
var ErrNotSequence = errors.New("Experiments must appear inside an JSON Array (i.e [ ... ])")

// ErrNotObject is returned when an element of the batch is not an object.
var ErrNotObject = errors.New("experiment configuration must be an object")

// InputError is a structural problem with a batch file. It is fatal for the
// whole batch and is never folded into per-document violations.
type InputError struct {
	Op   string
	Path string
	Err  error
}

func (e *InputError) Error() string {
	switch e.Op {
	case OpOpen:
		return fmt.Sprintf("Configuration file does not exist: %s", e.Path)
	case OpRead:
		return fmt.Sprintf("Error reading the configuration file: %v", e.Err)
	case OpParse:
		return fmt.Sprintf("Error parsing the configuration file: %v", e.Err)
	default:
		return e.Err.Error()
	}
}

func (e *InputError) Unwrap() error {
	return e.Err
}

// IsInputError reports whether err is, or wraps, an *InputError.
func IsInputError(err error) bool {
	var inputErr *InputError
	return errors.As(err, &inputErr)
}
