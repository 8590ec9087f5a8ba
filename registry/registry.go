// Package registry owns the active provider sessions and the merged tool
// namespace, and routes tool calls to the provider that declared them.
package registry

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/niloybiswas/toolhost/log"
	"github.com/niloybiswas/toolhost/provider"
)

// DuplicateToolError reports two providers declaring the same tool name.
// This is a configuration error and fatal at startup.
type DuplicateToolError struct {
	Tool   string
	First  string
	Second string
}

func (e *DuplicateToolError) Error() string {
	return fmt.Sprintf("tool %q declared by both %s and %s", e.Tool, e.First, e.Second)
}

// UnknownToolError reports a call to a tool no provider declared.
type UnknownToolError struct {
	Tool string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("no provider owns tool %q", e.Tool)
}

// Session is one open provider connection. It exclusively owns the
// provider handle and holds the catalog snapshot taken at start; the
// catalog is never re-queried during the session's lifetime.
type Session struct {
	provider provider.Provider
	catalog  []provider.ToolDescriptor
	byName   map[string]provider.ToolDescriptor
}

// Identity returns the provider's configuration-assigned name.
func (s *Session) Identity() string { return s.provider.Name() }

// Catalog returns the session's tool catalog snapshot.
func (s *Session) Catalog() []provider.ToolDescriptor { return s.catalog }

// Call validates arguments against the catalog snapshot, then executes the
// tool. Schema violations come back as *provider.SchemaError untouched.
func (s *Session) Call(ctx context.Context, name string, args map[string]interface{}) (interface{}, error) {
	descriptor, ok := s.byName[name]
	if !ok {
		return nil, &UnknownToolError{Tool: name}
	}
	if args == nil {
		args = map[string]interface{}{}
	}
	if err := descriptor.InputSchema.Validate(name, args); err != nil {
		return nil, err
	}
	return s.provider.Call(ctx, name, args)
}

func (s *Session) close() error {
	if closer, ok := s.provider.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// Registry merges provider catalogs into one flat namespace and tracks
// which session owns each tool name.
type Registry struct {
	mu       sync.Mutex
	sessions []*Session
	owners   map[string]*Session
	closed   bool
}

// Start opens a session per provider, snapshots each catalog, and merges
// the namespaces. A tool name declared twice aborts startup before any
// session accepts traffic.
func Start(ctx context.Context, providers []provider.Provider) (*Registry, error) {
	r := &Registry{owners: make(map[string]*Session)}

	for _, p := range providers {
		catalog := p.ListTools()
		session := &Session{
			provider: p,
			catalog:  catalog,
			byName:   make(map[string]provider.ToolDescriptor, len(catalog)),
		}

		for _, descriptor := range catalog {
			if owner, exists := r.owners[descriptor.Name]; exists {
				return nil, &DuplicateToolError{
					Tool:   descriptor.Name,
					First:  owner.Identity(),
					Second: p.Name(),
				}
			}
			r.owners[descriptor.Name] = session
			session.byName[descriptor.Name] = descriptor
		}

		r.sessions = append(r.sessions, session)
		log.Infof(ctx, "Connected provider %s: %d tools", p.Name(), len(catalog))
	}

	return r, nil
}

// Resolve returns the session owning a tool name.
func (r *Registry) Resolve(name string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.owners[name]
	if !ok {
		return nil, &UnknownToolError{Tool: name}
	}
	return session, nil
}

// Catalog returns the merged tool namespace in provider registration order.
func (r *Registry) Catalog() []provider.ToolDescriptor {
	r.mu.Lock()
	defer r.mu.Unlock()

	var merged []provider.ToolDescriptor
	for _, session := range r.sessions {
		merged = append(merged, session.catalog...)
	}
	return merged
}

// Shutdown closes every session. Safe to call more than once.
func (r *Registry) Shutdown(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}
	r.closed = true

	for _, session := range r.sessions {
		if err := session.close(); err != nil {
			log.Warnf(ctx, "Failed to close provider %s: %v", session.Identity(), err)
		}
	}
	log.Infof(ctx, "Registry shut down (%d sessions)", len(r.sessions))
}
