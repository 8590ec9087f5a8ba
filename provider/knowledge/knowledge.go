// Package knowledge is a file-backed question/answer lookup. The whole base
// lives in memory; the backing file is only touched through this provider.
package knowledge

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/niloybiswas/toolhost/log"
	"github.com/niloybiswas/toolhost/provider"
)

// Entry is one question/answer record.
type Entry struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Provider serves lookups over the loaded entries and appends new ones.
type Provider struct {
	mu      sync.RWMutex
	path    string
	entries []Entry
}

// New loads the knowledge base from path. A missing file is an empty base,
// not an error; a malformed file is.
func New(ctx context.Context, path string) (*Provider, error) {
	p := &Provider{path: path}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		log.Infof(ctx, "Knowledge base %s not found, starting empty", path)
		return p, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read knowledge base: %w", err)
	}

	if err := json.Unmarshal(data, &p.entries); err != nil {
		return nil, fmt.Errorf("knowledge base %s is malformed: %w", path, err)
	}
	log.Infof(ctx, "Loaded %d knowledge entries from %s", len(p.entries), path)
	return p, nil
}

// Name implements provider.Provider.
func (p *Provider) Name() string { return "knowledge" }

// ListTools implements provider.Provider.
func (p *Provider) ListTools() []provider.ToolDescriptor {
	return []provider.ToolDescriptor{
		{
			Name:        "search_knowledge",
			Description: "Search the knowledge base. Matches the query case-insensitively against questions and answers.",
			InputSchema: provider.Object(map[string]provider.Property{
				"query": {Type: "string", Description: "Text to look for"},
			}, "query"),
		},
		{
			Name:        "add_knowledge",
			Description: "Add a question/answer pair to the knowledge base.",
			InputSchema: provider.Object(map[string]provider.Property{
				"question": {Type: "string", Description: "The question"},
				"answer":   {Type: "string", Description: "The answer"},
			}, "question", "answer"),
		},
		{
			Name:        "get_knowledge_base",
			Description: "Return every entry of the knowledge base.",
			InputSchema: provider.Object(nil),
		},
	}
}

// Call implements provider.Provider.
func (p *Provider) Call(ctx context.Context, name string, args map[string]interface{}) (interface{}, error) {
	switch name {
	case "search_knowledge":
		query, _ := args["query"].(string)
		return p.Search(query), nil
	case "add_knowledge":
		question, _ := args["question"].(string)
		answer, _ := args["answer"].(string)
		if err := p.Add(ctx, question, answer); err != nil {
			return nil, err
		}
		return map[string]interface{}{"status": "added", "entries": p.Len()}, nil
	case "get_knowledge_base":
		return p.All(), nil
	}
	return nil, fmt.Errorf("knowledge provider has no tool %q", name)
}

// Search returns all entries containing the query in question or answer,
// case-insensitively, preserving original order. No match is an empty slice.
func (p *Provider) Search(query string) []Entry {
	p.mu.RLock()
	defer p.mu.RUnlock()

	needle := strings.ToLower(query)
	matches := []Entry{}
	for _, entry := range p.entries {
		if strings.Contains(strings.ToLower(entry.Question), needle) ||
			strings.Contains(strings.ToLower(entry.Answer), needle) {
			matches = append(matches, entry)
		}
	}
	return matches
}

// Add appends an entry and persists the updated base before returning.
func (p *Provider) Add(ctx context.Context, question, answer string) error {
	if question == "" || answer == "" {
		return fmt.Errorf("question and answer are both required")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.entries = append(p.entries, Entry{Question: question, Answer: answer})
	if err := p.persist(); err != nil {
		// Roll back the in-memory append so memory and file stay in step.
		p.entries = p.entries[:len(p.entries)-1]
		return fmt.Errorf("failed to persist knowledge base: %w", err)
	}

	log.Debugf(ctx, "Knowledge base grew to %d entries", len(p.entries))
	return nil
}

// All returns a copy of every entry in original order.
func (p *Provider) All() []Entry {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]Entry{}, p.entries...)
}

// Len returns the number of entries.
func (p *Provider) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.entries)
}

// persist writes the entries to a temp file and renames it into place, so a
// crash mid-write never truncates the base. Callers hold the write lock.
func (p *Provider) persist() error {
	data, err := json.MarshalIndent(p.entries, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(p.path), ".knowledge-*.json")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), p.path)
}
