package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is the serialization of a batch file.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Document is one experiment configuration from a batch.
type Document struct {
	// Index is the zero-based position in the batch.
	Index int

	// Line is the 1-based line the document starts on, or 0 when unknown.
	Line int

	// Value is the decoded configuration (map[string]any).
	Value any
}

// Batch is the parsed content of a batch file.
type Batch struct {
	Source    string
	Format    Format
	Documents []Document
}

// Len returns the number of documents in the batch.
func (b *Batch) Len() int {
	return len(b.Documents)
}

// LoadFile reads and parses the batch file at path.
func LoadFile(path string) (*Batch, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &InputError{Op: OpOpen, Path: path, Err: err}
		}
		return nil, &InputError{Op: OpRead, Path: path, Err: err}
	}
	if info.IsDir() {
		return nil, &InputError{Op: OpRead, Path: path, Err: fmt.Errorf("%s is a directory", path)}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &InputError{Op: OpRead, Path: path, Err: err}
	}

	return Parse(data, path, DetectFormat(path, data))
}

// DetectFormat picks the format from the file extension, falling back to
// sniffing the first non-blank byte.
func DetectFormat(path string, data []byte) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	}
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) > 0 && (trimmed[0] == '[' || trimmed[0] == '{') {
		return FormatJSON
	}
	return FormatYAML
}

// Parse decodes a batch from data. source is only used in errors and reports.
func Parse(data []byte, source string, format Format) (*Batch, error) {
	var (
		docs []Document
		err  error
	)
	switch format {
	case FormatJSON:
		docs, err = parseJSON(data)
	case FormatYAML:
		docs, err = parseYAML(data)
	default:
		return nil, &InputError{Op: OpParse, Path: source, Err: fmt.Errorf("unsupported format %q", format)}
	}
	if err != nil {
		var inputErr *InputError
		if errors.As(err, &inputErr) {
			inputErr.Path = source
			return nil, inputErr
		}
		return nil, &InputError{Op: OpParse, Path: source, Err: err}
	}

	return &Batch{Source: source, Format: format, Documents: docs}, nil
}

// parseJSON decodes a JSON array element by element so each document's
// starting line can be recorded. Numbers are kept as json.Number to preserve
// the integer/float distinction.
func parseJSON(data []byte) ([]Document, error) {
	if !json.Valid(data) {
		var v any
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		return nil, errors.New("invalid JSON")
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		return nil, &InputError{Op: OpShape, Err: ErrNotSequence}
	}

	var docs []Document
	for dec.More() {
		line := lineAt(data, int(dec.InputOffset()))
		var v any
		if err := dec.Decode(&v); err != nil {
			return nil, err
		}
		if _, ok := v.(map[string]any); !ok {
			return nil, &InputError{Op: OpShape, Err: fmt.Errorf("experiment %d (line %d): %w", len(docs)+1, line, ErrNotObject)}
		}
		docs = append(docs, Document{Index: len(docs), Line: line, Value: v})
	}
	return docs, nil
}

// lineAt returns the line of the first value byte at or after offset,
// skipping whitespace and the separating comma.
func lineAt(data []byte, offset int) int {
	for offset < len(data) {
		c := data[offset]
		if c != ' ' && c != '\t' && c != '\r' && c != '\n' && c != ',' {
			break
		}
		offset++
	}
	return bytes.Count(data[:offset], []byte("\n")) + 1
}

// parseYAML decodes a single YAML document whose root is a sequence.
func parseYAML(data []byte) ([]Document, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))

	var root yaml.Node
	if err := dec.Decode(&root); err != nil {
		if err == io.EOF {
			return nil, errors.New("empty document")
		}
		return nil, err
	}
	var extra yaml.Node
	if err := dec.Decode(&extra); err != io.EOF {
		if err == nil {
			return nil, errors.New("multiple YAML documents are not supported")
		}
		return nil, err
	}

	seq := &root
	if seq.Kind == yaml.DocumentNode && len(seq.Content) > 0 {
		seq = seq.Content[0]
	}
	if seq.Kind != yaml.SequenceNode {
		return nil, &InputError{Op: OpShape, Err: ErrNotSequence}
	}

	docs := make([]Document, 0, len(seq.Content))
	for i, item := range seq.Content {
		node := item
		if node.Kind == yaml.AliasNode && node.Alias != nil {
			node = node.Alias
		}
		if node.Kind != yaml.MappingNode {
			return nil, &InputError{Op: OpShape, Err: fmt.Errorf("experiment %d (line %d): %w", i+1, item.Line, ErrNotObject)}
		}
		var v any
		if err := item.Decode(&v); err != nil {
			return nil, fmt.Errorf("experiment %d (line %d): %w", i+1, item.Line, err)
		}
		docs = append(docs, Document{Index: i, Line: item.Line, Value: v})
	}
	return docs, nil
}
