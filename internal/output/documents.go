package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"sigs.k8s.io/yaml"
)

// Document is a named output file.
type Document struct {
	// Path is the slash-separated location relative to the output directory.
	Path string

	// Value is JSON-encodable content.
	Value any
}

// EncodeJSON renders v as indented JSON with a trailing newline.
func EncodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodeYAML renders v as YAML through its JSON encoding.
func EncodeYAML(v any) ([]byte, error) {
	return yaml.Marshal(v)
}

// WriteDocuments prints docs to w. JSON output is a single object keyed by
// document path; YAML output is a multi-document stream.
func WriteDocuments(w io.Writer, docs []Document, format OutputFormat) error {
	switch format {
	case FormatJSON:
		obj := make(map[string]any, len(docs))
		for _, d := range docs {
			obj[d.Path] = d.Value
		}
		data, err := EncodeJSON(obj)
		if err != nil {
			return fmt.Errorf("encoding JSON: %w", err)
		}
		_, err = w.Write(data)
		return err
	case FormatYAML:
		for i, d := range docs {
			data, err := EncodeYAML(d.Value)
			if err != nil {
				return fmt.Errorf("encoding %s: %w", d.Path, err)
			}
			if i > 0 {
				if _, err := io.WriteString(w, "---\n"); err != nil {
					return err
				}
			}
			if _, err := fmt.Fprintf(w, "# %s\n%s", d.Path, data); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("format %q cannot be streamed", format)
	}
}

// WriteDir writes each document as JSON below dir and returns the written
// paths relative to dir.
func WriteDir(dir string, docs []Document) ([]string, error) {
	written := make([]string, 0, len(docs))
	for _, d := range docs {
		data, err := EncodeJSON(d.Value)
		if err != nil {
			return written, fmt.Errorf("encoding %s: %w", d.Path, err)
		}
		if err := WriteFile(dir, d.Path, data); err != nil {
			return written, err
		}
		written = append(written, d.Path)
	}
	return written, nil
}

// WriteFile writes data to the slash-separated rel below dir, creating parent
// directories.
func WriteFile(dir, rel string, data []byte) error {
	dest := filepath.Join(dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", rel, err)
	}
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", rel, err)
	}
	return nil
}
