package provider

import (
	"fmt"
)

// Schema is a minimal JSON-schema "object" description of tool arguments.
// It is what providers publish in their catalogs and what model backends
// receive as function parameter definitions.
type Schema struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties,omitempty"`
	Required   []string            `json:"required,omitempty"`
}

// Property describes a single argument field.
type Property struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

// SchemaError reports tool arguments that fail the catalog schema. It is
// surfaced to the model unchanged so it can retry with corrected arguments.
type SchemaError struct {
	Tool   string
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("tool %s: argument %q %s", e.Tool, e.Field, e.Reason)
}

// Object is a convenience constructor for the common object schema shape.
func Object(properties map[string]Property, required ...string) Schema {
	return Schema{Type: "object", Properties: properties, Required: required}
}

// JSONMap renders the schema as the generic map shape model SDKs expect.
func (s Schema) JSONMap() map[string]interface{} {
	props := make(map[string]interface{}, len(s.Properties))
	for name, p := range s.Properties {
		prop := map[string]interface{}{"type": p.Type}
		if p.Description != "" {
			prop["description"] = p.Description
		}
		props[name] = prop
	}
	m := map[string]interface{}{
		"type":       s.Type,
		"properties": props,
	}
	if len(s.Required) > 0 {
		m["required"] = s.Required
	}
	return m
}

// Validate checks args against the schema: required fields present, no
// unknown fields, and JSON types matching the declared ones.
func (s Schema) Validate(tool string, args map[string]interface{}) error {
	for _, name := range s.Required {
		if _, ok := args[name]; !ok {
			return &SchemaError{Tool: tool, Field: name, Reason: "is required"}
		}
	}

	for name, value := range args {
		prop, ok := s.Properties[name]
		if !ok {
			return &SchemaError{Tool: tool, Field: name, Reason: "is not accepted by this tool"}
		}
		if value == nil {
			continue
		}
		if reason := checkType(prop.Type, value); reason != "" {
			return &SchemaError{Tool: tool, Field: name, Reason: reason}
		}
	}
	return nil
}

// checkType compares a decoded JSON value with a schema type name. JSON
// numbers always decode as float64, so "integer" additionally requires a
// whole value.
func checkType(schemaType string, value interface{}) string {
	switch schemaType {
	case "string":
		if _, ok := value.(string); !ok {
			return fmt.Sprintf("must be a string, got %T", value)
		}
	case "number":
		if !isNumber(value) {
			return fmt.Sprintf("must be a number, got %T", value)
		}
	case "integer":
		f, ok := asFloat(value)
		if !ok || f != float64(int64(f)) {
			return fmt.Sprintf("must be an integer, got %v", value)
		}
	case "boolean":
		if _, ok := value.(bool); !ok {
			return fmt.Sprintf("must be a boolean, got %T", value)
		}
	case "array":
		if _, ok := value.([]interface{}); !ok {
			return fmt.Sprintf("must be an array, got %T", value)
		}
	case "object":
		if _, ok := value.(map[string]interface{}); !ok {
			return fmt.Sprintf("must be an object, got %T", value)
		}
	}
	return ""
}

func isNumber(value interface{}) bool {
	_, ok := asFloat(value)
	return ok
}

func asFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}
