package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v2"
)

// Output formats.
const (
	OutputTable = "table"
	OutputJSON  = "json"
	OutputYAML  = "yaml"
)

// ValidOutput reports whether format is a supported output format.
func ValidOutput(format string) bool {
	switch format {
	case OutputTable, OutputJSON, OutputYAML:
		return true
	}
	return false
}

// WriteData writes a JSON document as indented JSON or as YAML.
func WriteData(w io.Writer, format string, data []byte) error {
	switch format {
	case OutputJSON:
		var buf bytes.Buffer
		if err := json.Indent(&buf, data, "", "  "); err != nil {
			return fmt.Errorf("formatting json: %w", err)
		}
		buf.WriteByte('\n')
		_, err := buf.WriteTo(w)
		return err
	case OutputYAML:
		out, err := jsonToYAML(data)
		if err != nil {
			return err
		}
		_, err = w.Write(out)
		return err
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

// jsonToYAML keeps the key order of a top-level object. YAML is a superset
// of JSON, so the yaml decoder reads it directly.
func jsonToYAML(data []byte) ([]byte, error) {
	var doc interface{}
	if bytes.HasPrefix(bytes.TrimSpace(data), []byte("{")) {
		var m yaml.MapSlice
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("converting to yaml: %w", err)
		}
		doc = m
	} else if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("converting to yaml: %w", err)
	}
	out, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("converting to yaml: %w", err)
	}
	return out, nil
}
