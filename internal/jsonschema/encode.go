package jsonschema

import (
	"bytes"
	"fmt"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"gopkg.in/yaml.v3"
)

// Format selects the serialization of exported documents.
type Format uint8

const (
	FormatJSON Format = iota
	FormatYAML
)

// ParseFormat parses the --format / [schema] format value.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return 0, fmt.Errorf("unknown schema format %q (want json or yaml)", s)
}

// Ext is the file extension for the format.
func (f Format) Ext() string {
	if f == FormatYAML {
		return ".yaml"
	}
	return ".json"
}

// Marshal serializes doc. Object members are sorted so that output is
// stable across runs.
func Marshal(doc *Document, format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return nil, fmt.Errorf("encode %s schema: %w", doc.ContractName, err)
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		out, err := json.Marshal(doc, json.Deterministic(true), jsontext.WithIndent("  "))
		if err != nil {
			return nil, fmt.Errorf("encode %s schema: %w", doc.ContractName, err)
		}
		return append(out, '\n'), nil
	}
}

// FileName is the output file of a contract's document.
func FileName(doc *Document, format Format) string {
	return doc.ContractName + format.Ext()
}
