package infra

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/invopop/jsonschema"
	"gopkg.in/yaml.v3"

	"github.com/fpt/go-promptlab/pkg/message"
)

// ScenarioFile is the import/export document. Run state is never part of it.
type ScenarioFile struct {
	Scenarios *[]ScenarioRecord `json:"scenarios" yaml:"scenarios" toml:"scenarios" jsonschema:"required"`
}

// ScenarioRecord is one exported scenario
type ScenarioRecord struct {
	ID          RecordID          `json:"id,omitempty" yaml:"id,omitempty" toml:"id,omitempty"`
	Description string            `json:"description" yaml:"description" toml:"description"`
	Model       string            `json:"model" yaml:"model" toml:"model"`
	Temperature *float64          `json:"temperature,omitempty" yaml:"temperature,omitempty" toml:"temperature,omitempty" jsonschema:"minimum=0,maximum=2"`
	Messages    []message.Message `json:"messages" yaml:"messages" toml:"messages"`
}

// RecordID accepts string or numeric ids on import and always exports a string
type RecordID string

func numberToID(n json.Number) RecordID {
	if i, err := n.Int64(); err == nil {
		return RecordID(strconv.FormatInt(i, 10))
	}
	if f, err := n.Float64(); err == nil {
		return RecordID(strconv.FormatFloat(f, 'f', -1, 64))
	}
	return RecordID(n.String())
}

func (id *RecordID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = RecordID(s)
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var n json.Number
	if err := dec.Decode(&n); err != nil {
		return fmt.Errorf("invalid scenario id %s", string(data))
	}
	*id = numberToID(n)
	return nil
}

func (id *RecordID) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("invalid scenario id at line %d", node.Line)
	}
	if node.Tag == "!!null" {
		*id = ""
		return nil
	}
	*id = RecordID(node.Value)
	return nil
}

// UnmarshalTOML implements toml.Unmarshaler
func (id *RecordID) UnmarshalTOML(v any) error {
	switch value := v.(type) {
	case string:
		*id = RecordID(value)
	case int64:
		*id = RecordID(strconv.FormatInt(value, 10))
	case float64:
		*id = RecordID(strconv.FormatFloat(value, 'f', -1, 64))
	default:
		return fmt.Errorf("invalid scenario id %v", v)
	}
	return nil
}

// JSONSchema describes RecordID as a string or a number
func (RecordID) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		OneOf: []*jsonschema.Schema{
			{Type: "string"},
			{Type: "number"},
		},
	}
}

// ScenarioFileSchema returns the JSON Schema of the import/export document
func ScenarioFileSchema() ([]byte, error) {
	r := &jsonschema.Reflector{
		DoNotReference: true,
	}
	schema := r.Reflect(&ScenarioFile{})
	schema.Title = "promptlab scenario file"
	return json.MarshalIndent(schema, "", "  ")
}
