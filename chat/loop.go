// Package chat drives the turn-taking cycle between the user, the
// reasoning model, and tool execution.
package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/niloybiswas/toolhost/chatmodel"
	"github.com/niloybiswas/toolhost/config"
	"github.com/niloybiswas/toolhost/log"
	"github.com/niloybiswas/toolhost/provider"
	"github.com/niloybiswas/toolhost/registry"
)

// Lower temperature keeps tool calling consistent.
const temperature = 0.1

const systemPromptTemplate = `You are a helpful assistant with access to tools for weather lookups, spreadsheets, personal expense tracking, and a knowledge base.

Rules:
1. When the user asks about weather, spreadsheets, expenses, or stored knowledge, use the matching tool. You have full access to these tools.
2. Use the tool results to answer; do not invent data you could look up.
3. If a tool reports an error, either correct your arguments and retry, or explain the problem to the user.

Today is %s.`

// Loop holds one client session's conversation state.
type Loop struct {
	model      chatmodel.Model
	dispatcher *registry.Dispatcher
	catalog    []provider.ToolDescriptor
	history    []chatmodel.Message
	maxRounds  int
	maxHistory int

	// now is swappable for tests.
	now func() time.Time
}

// New creates a conversation loop over the merged catalog.
func New(model chatmodel.Model, dispatcher *registry.Dispatcher, catalog []provider.ToolDescriptor, cfg config.ChatConfig) *Loop {
	return &Loop{
		model:      model,
		dispatcher: dispatcher,
		catalog:    catalog,
		maxRounds:  cfg.MaxToolRounds,
		maxHistory: cfg.MaxHistory,
		now:        time.Now,
	}
}

// Run processes one user turn: it hands the input and the tool catalog to
// the model, executes any tool calls it requests, feeds the results back,
// and repeats until the model produces a final textual reply.
func (l *Loop) Run(ctx context.Context, userInput string) (string, error) {
	turnStart := len(l.history)
	l.history = append(l.history, chatmodel.Message{Role: chatmodel.RoleUser, Content: userInput})

	system := fmt.Sprintf(systemPromptTemplate, l.now().Format("2006-01-02"))

	for round := 0; round < l.maxRounds; round++ {
		resp, err := l.model.Complete(ctx, chatmodel.Request{
			System:      system,
			Messages:    l.history,
			Tools:       l.catalog,
			Temperature: temperature,
		})
		if err != nil {
			// Roll back the whole turn so a transient model error does not
			// leave dangling tool calls in the history.
			l.history = l.history[:turnStart]
			return "", fmt.Errorf("model request failed: %w", err)
		}

		if len(resp.ToolCalls) == 0 {
			l.history = append(l.history, chatmodel.Message{Role: chatmodel.RoleAssistant, Content: resp.Content})
			l.trim()
			return resp.Content, nil
		}

		l.history = append(l.history, chatmodel.Message{
			Role:      chatmodel.RoleAssistant,
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		})

		calls := make([]registry.Call, 0, len(resp.ToolCalls))
		for _, tc := range resp.ToolCalls {
			log.Infof(ctx, "Executing tool %s", tc.Name)
			calls = append(calls, registry.Call{
				ID:        tc.ID,
				Name:      tc.Name,
				Arguments: scrubArguments(tc.Arguments),
			})
		}

		for _, result := range l.dispatcher.InvokeAll(ctx, calls) {
			l.history = append(l.history, chatmodel.Message{
				Role:       chatmodel.RoleTool,
				Content:    renderResult(result),
				ToolCallID: result.Call.ID,
				ToolName:   result.Call.Name,
			})
		}
	}

	l.trim()
	return "", fmt.Errorf("aborting turn: model requested tools for %d rounds without answering", l.maxRounds)
}

// Clear discards the conversation history.
func (l *Loop) Clear() {
	l.history = nil
}

// History returns the retained conversation messages.
func (l *Loop) History() []chatmodel.Message {
	return l.history
}

// RenderCatalog formats the merged tool namespace for the 'tools' command.
func (l *Loop) RenderCatalog() string {
	var b strings.Builder
	for _, tool := range l.catalog {
		params := make([]string, 0, len(tool.InputSchema.Properties))
		required := make(map[string]bool, len(tool.InputSchema.Required))
		for _, name := range tool.InputSchema.Required {
			required[name] = true
		}
		for name, prop := range tool.InputSchema.Properties {
			marker := ""
			if required[name] {
				marker = "*"
			}
			params = append(params, fmt.Sprintf("%s: %s%s", name, prop.Type, marker))
		}
		fmt.Fprintf(&b, "%s(%s) - %s\n", tool.Name, strings.Join(params, ", "), tool.Description)
	}
	return b.String()
}

// trim caps the history at maxHistory messages, dropping the oldest. Leading
// tool results are dropped too; a tool message without its assistant call is
// rejected by the model APIs.
func (l *Loop) trim() {
	if l.maxHistory <= 0 || len(l.history) <= l.maxHistory {
		return
	}
	trimmed := l.history[len(l.history)-l.maxHistory:]
	for len(trimmed) > 0 && trimmed[0].Role == chatmodel.RoleTool {
		trimmed = trimmed[1:]
	}
	l.history = trimmed
}

// scrubArguments removes nil and empty-string values the model tends to
// send for optional parameters it decided not to use.
func scrubArguments(args map[string]interface{}) map[string]interface{} {
	scrubbed := make(map[string]interface{}, len(args))
	for key, value := range args {
		if value == nil || value == "" {
			continue
		}
		scrubbed[key] = value
	}
	return scrubbed
}

// renderResult turns a dispatch outcome into text the model can read.
// Failures become tool results too; the model decides how to react.
func renderResult(result registry.Result) string {
	if result.Err != nil {
		return fmt.Sprintf("Tool call failed: %v", result.Err)
	}
	switch v := result.Value.(type) {
	case string:
		return v
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(encoded)
	}
}
