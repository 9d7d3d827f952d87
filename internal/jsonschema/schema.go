// Package jsonschema exports the wire format of a contract's messages as
// JSON Schema (draft-07) documents.
package jsonschema

import (
	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

// Draft is the meta-schema every root document declares.
const Draft = "http://json-schema.org/draft-07/schema#"

// Schema is a JSON Schema node. Only the keywords the exporter produces
// are modelled.
type Schema struct {
	Schema               string             `json:"$schema,omitempty" yaml:"$schema,omitempty"`
	Title                string             `json:"title,omitempty" yaml:"title,omitempty"`
	Description          string             `json:"description,omitempty" yaml:"description,omitempty"`
	Ref                  string             `json:"$ref,omitempty" yaml:"$ref,omitempty"`
	Type                 string             `json:"type,omitempty" yaml:"type,omitempty"`
	Format               string             `json:"format,omitempty" yaml:"format,omitempty"`
	Pattern              string             `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	ContentEncoding      string             `json:"contentEncoding,omitempty" yaml:"contentEncoding,omitempty"`
	Minimum              *float64           `json:"minimum,omitempty" yaml:"minimum,omitempty"`
	Maximum              *float64           `json:"maximum,omitempty" yaml:"maximum,omitempty"`
	Required             []string           `json:"required,omitempty" yaml:"required,omitempty"`
	Properties           map[string]*Schema `json:"properties,omitempty" yaml:"properties,omitempty"`
	AdditionalProperties *SchemaOrBool      `json:"additionalProperties,omitempty" yaml:"additionalProperties,omitempty"`
	Items                *Schema            `json:"items,omitempty" yaml:"items,omitempty"`
	OneOf                []*Schema          `json:"oneOf,omitempty" yaml:"oneOf,omitempty"`
	AnyOf                []*Schema          `json:"anyOf,omitempty" yaml:"anyOf,omitempty"`
	Definitions          map[string]*Schema `json:"definitions,omitempty" yaml:"definitions,omitempty"`
}

// SchemaOrBool is a schema or a boolean (used by additionalProperties).
type SchemaOrBool struct {
	Schema *Schema
	Bool   *bool
}

// MarshalJSONTo writes the boolean when set, otherwise the schema.
func (s SchemaOrBool) MarshalJSONTo(enc *jsontext.Encoder) error {
	if s.Bool != nil {
		return enc.WriteToken(jsontext.Bool(*s.Bool))
	}
	return json.MarshalEncode(enc, s.Schema)
}

// UnmarshalJSONFrom accepts either form.
func (s *SchemaOrBool) UnmarshalJSONFrom(dec *jsontext.Decoder) error {
	switch dec.PeekKind() {
	case 't', 'f':
		tok, err := dec.ReadToken()
		if err != nil {
			return err
		}
		b := tok.Bool()
		*s = SchemaOrBool{Bool: &b}
		return nil
	}
	s.Bool = nil
	s.Schema = new(Schema)
	return json.UnmarshalDecode(dec, s.Schema)
}

// MarshalYAML mirrors MarshalJSON for gopkg.in/yaml.v3.
func (s SchemaOrBool) MarshalYAML() (any, error) {
	if s.Bool != nil {
		return *s.Bool, nil
	}
	return s.Schema, nil
}

// Closed is `additionalProperties: false`.
func Closed() *SchemaOrBool {
	f := false
	return &SchemaOrBool{Bool: &f}
}

// Values is `additionalProperties: <schema>`.
func Values(s *Schema) *SchemaOrBool { return &SchemaOrBool{Schema: s} }

// RefTo points at a definition of the enclosing root document.
func RefTo(name string) *Schema { return &Schema{Ref: "#/definitions/" + name} }

func bound(v float64) *float64 { return &v }

// Document is the export of one contract: one root schema per message
// kind it accepts, plus the response schema of every query case.
type Document struct {
	ContractName string             `json:"contract_name" yaml:"contract_name"`
	Package      string             `json:"package,omitempty" yaml:"package,omitempty"`
	Instantiate  *Schema            `json:"instantiate,omitempty" yaml:"instantiate,omitempty"`
	Execute      *Schema            `json:"execute,omitempty" yaml:"execute,omitempty"`
	Query        *Schema            `json:"query,omitempty" yaml:"query,omitempty"`
	Sudo         *Schema            `json:"sudo,omitempty" yaml:"sudo,omitempty"`
	Migrate      *Schema            `json:"migrate,omitempty" yaml:"migrate,omitempty"`
	Responses    map[string]*Schema `json:"responses,omitempty" yaml:"responses,omitempty"`
}
