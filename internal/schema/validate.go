package schema

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

func compile(schemaJSON json.RawMessage) (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	if err := c.AddResource("schema.json", bytes.NewReader(schemaJSON)); err != nil {
		return nil, fmt.Errorf("schema resource: %w", err)
	}
	s, err := c.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return s, nil
}

// Compile checks that schemaJSON is a usable JSON schema. Callers gate on
// this before sending the schema anywhere.
func Compile(schemaJSON json.RawMessage) error {
	if len(schemaJSON) == 0 {
		return fmt.Errorf("empty schema")
	}
	_, err := compile(schemaJSON)
	return err
}

// Validate checks raw against schemaJSON. An empty schema validates
// everything.
func Validate(schemaJSON json.RawMessage, raw json.RawMessage) error {
	if len(schemaJSON) == 0 {
		return nil
	}
	if len(raw) == 0 {
		return fmt.Errorf("empty json")
	}

	s, err := compile(schemaJSON)
	if err != nil {
		return err
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("parse json: %w", err)
	}
	return s.Validate(doc)
}
