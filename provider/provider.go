// Package provider defines the contract every tool provider implements:
// a static catalog of schema-described tools plus an execution entry point.
package provider

import (
	"context"
)

// ToolDescriptor describes one callable tool. Catalogs are snapshotted once
// per session and treated as immutable afterwards.
type ToolDescriptor struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	InputSchema Schema `json:"input_schema"`
}

// Provider exposes a catalog of named tools and executes them on demand.
// Providers holding resources (API clients, files) also implement io.Closer.
type Provider interface {
	// Name is the configuration-assigned provider identity.
	Name() string

	// ListTools enumerates the provider's tools. Stable for its lifetime.
	ListTools() []ToolDescriptor

	// Call executes a tool. Arguments have already been validated against
	// the tool's input schema by the session layer.
	Call(ctx context.Context, name string, args map[string]interface{}) (interface{}, error)
}
