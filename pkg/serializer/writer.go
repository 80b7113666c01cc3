package serializer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"reflect"
	"sort"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"
)

// Format represents the output format type
type Format string

const (
	// FormatJSON outputs data in JSON format
	FormatJSON Format = "json"
	// FormatYAML outputs data in YAML format
	FormatYAML Format = "yaml"
	// FormatTable outputs data in table format
	FormatTable Format = "table"
)

// defaultValueKey labels a bare scalar in table output.
const defaultValueKey = "value"

func (f Format) IsUnknown() bool {
	switch f {
	case FormatJSON, FormatYAML, FormatTable:
		return false
	default:
		return true
	}
}

// SupportedFormats returns the formats a Writer can produce, in the
// order they are documented in CLI usage text.
func SupportedFormats() []string {
	return []string{
		string(FormatJSON),
		string(FormatYAML),
		string(FormatTable),
	}
}

// Writer serializes values to a single output in one format. Close
// must be called to release the file handle when the Writer came from
// NewFileWriterOrStdout.
type Writer struct {
	format Format
	output io.Writer
	closer io.Closer
}

// newWriter is the single construction path. Unknown formats degrade
// to JSON instead of failing, so a typo on a CLI flag still produces
// usable output.
func newWriter(format Format, output io.Writer, closer io.Closer) *Writer {
	if format.IsUnknown() {
		slog.Warn("unknown format, defaulting to JSON", "format", format)
		format = FormatJSON
	}
	return &Writer{format: format, output: output, closer: closer}
}

// NewWriter creates a Writer for the given format and destination. A
// nil output means os.Stdout.
func NewWriter(format Format, output io.Writer) *Writer {
	if output == nil {
		output = os.Stdout
	}
	return newWriter(format, output, nil)
}

// NewStdoutWriter creates a Writer that prints to stdout.
func NewStdoutWriter(format Format) *Writer {
	return newWriter(format, os.Stdout, nil)
}

// NewFileWriterOrStdout creates a Writer backed by the file at path.
// An empty path, or a path that cannot be created, falls back to
// stdout. Callers should Close the returned Serializer either way.
func NewFileWriterOrStdout(format Format, path string) Serializer {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return NewStdoutWriter(format)
	}

	file, err := os.Create(trimmed)
	if err != nil {
		slog.Error("failed to create output file", "error", err, "path", trimmed)
		return NewStdoutWriter(format)
	}
	return newWriter(format, file, file)
}

// Close releases the underlying file, if any. Safe to call more than
// once and on stdout-backed writers.
func (w *Writer) Close() error {
	if w.closer != nil {
		err := w.closer.Close()
		w.closer = nil // Prevent double-close
		return err
	}
	return nil
}

// Serialize writes v in the configured format. The context is accepted
// to satisfy Serializer; writes complete synchronously.
func (w *Writer) Serialize(ctx context.Context, v any) error {
	switch w.format {
	case FormatJSON:
		return w.serializeJSON(v)
	case FormatYAML:
		return w.serializeYAML(v)
	case FormatTable:
		return w.serializeTable(v)
	default:
		return fmt.Errorf("unsupported format: %s", w.format)
	}
}

func (w *Writer) serializeJSON(v any) error {
	enc := json.NewEncoder(w.output)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to serialize to JSON: %w", err)
	}
	return nil
}

func (w *Writer) serializeYAML(v any) error {
	enc := yaml.NewEncoder(w.output)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to serialize to YAML: %w", err)
	}
	return nil
}

// serializeTable renders v as two aligned columns, one row per leaf
// field, with nested names joined by dots.
func (w *Writer) serializeTable(v any) error {
	fields := make(map[string]any)
	flatten(fields, reflect.ValueOf(v), "")
	if len(fields) == 0 {
		fmt.Fprintln(w.output, "<empty>")
		return nil
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	tw := tabwriter.NewWriter(w.output, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FIELD\tVALUE")
	fmt.Fprintln(tw, "-----\t-----")
	for _, name := range names {
		fmt.Fprintf(tw, "%s\t%v\n", name, fields[name])
	}
	return tw.Flush()
}

// flatten walks val and records every leaf under its dotted path.
// Pointers and interfaces are dereferenced first so a nil anywhere in
// the chain surfaces as a nil leaf rather than an empty subtree.
func flatten(out map[string]any, val reflect.Value, prefix string) {
	if !val.IsValid() {
		return
	}

	for val.Kind() == reflect.Pointer || val.Kind() == reflect.Interface {
		if val.IsNil() {
			if prefix != "" {
				out[prefix] = nil
			}
			return
		}
		val = val.Elem()
	}

	//nolint:exhaustive // We handle the common cases explicitly; all others go to default
	switch val.Kind() {
	case reflect.Struct:
		typ := val.Type()
		for i := 0; i < val.NumField(); i++ {
			field := typ.Field(i)
			if !field.IsExported() {
				continue
			}
			flatten(out, val.Field(i), fieldKey(prefix, field.Name))
		}
	case reflect.Map:
		iter := val.MapRange()
		for iter.Next() {
			name := fmt.Sprintf("%v", iter.Key().Interface())
			flatten(out, iter.Value(), fieldKey(prefix, name))
		}
	case reflect.Slice, reflect.Array:
		for i := 0; i < val.Len(); i++ {
			flatten(out, val.Index(i), fieldKey(prefix, fmt.Sprintf("[%d]", i)))
		}
	default:
		if prefix == "" {
			prefix = defaultValueKey
		}
		out[prefix] = val.Interface()
	}
}

func fieldKey(prefix, suffix string) string {
	if prefix == "" {
		return suffix
	}
	if suffix == "" {
		return prefix
	}
	return prefix + "." + suffix
}
