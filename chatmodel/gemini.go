package chatmodel

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"github.com/google/uuid"
	"google.golang.org/api/option"

	"github.com/niloybiswas/toolhost/config"
	"github.com/niloybiswas/toolhost/provider"
)

// GeminiModel is the Gemini backend using the official SDK's function
// calling. Gemini does not assign tool-call ids, so we synthesize them.
type GeminiModel struct {
	client *genai.Client
	model  string
}

// NewGemini creates the Gemini backend.
func NewGemini(ctx context.Context, cfg config.GeminiConfig) (*GeminiModel, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiModel{client: client, model: cfg.Model}, nil
}

// Name implements Model.
func (m *GeminiModel) Name() string { return "gemini/" + m.model }

// Close releases the underlying client.
func (m *GeminiModel) Close() error {
	return m.client.Close()
}

// Complete implements Model.
func (m *GeminiModel) Complete(ctx context.Context, req Request) (*Response, error) {
	model := m.client.GenerativeModel(m.model)
	if req.System != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.System)}}
	}
	if req.Temperature > 0 {
		model.SetTemperature(float32(req.Temperature))
	}
	if len(req.Tools) > 0 {
		model.Tools = []*genai.Tool{{FunctionDeclarations: declarations(req.Tools)}}
	}

	if len(req.Messages) == 0 {
		return nil, fmt.Errorf("no messages to send")
	}

	session := model.StartChat()
	for _, msg := range req.Messages[:len(req.Messages)-1] {
		session.History = append(session.History, content(msg))
	}

	last := req.Messages[len(req.Messages)-1]
	resp, err := session.SendMessage(ctx, content(last).Parts...)
	if err != nil {
		return nil, fmt.Errorf("gemini completion failed: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("gemini returned no candidates")
	}

	out := &Response{}
	for _, part := range resp.Candidates[0].Content.Parts {
		switch p := part.(type) {
		case genai.Text:
			out.Content += string(p)
		case genai.FunctionCall:
			out.ToolCalls = append(out.ToolCalls, ToolCall{
				ID:        uuid.New().String(),
				Name:      p.Name,
				Arguments: p.Args,
			})
		}
	}
	return out, nil
}

// content converts a neutral message into a Gemini content entry.
func content(msg Message) *genai.Content {
	switch msg.Role {
	case RoleAssistant:
		parts := []genai.Part{}
		if msg.Content != "" {
			parts = append(parts, genai.Text(msg.Content))
		}
		for _, call := range msg.ToolCalls {
			parts = append(parts, genai.FunctionCall{Name: call.Name, Args: call.Arguments})
		}
		return &genai.Content{Role: "model", Parts: parts}
	case RoleTool:
		return &genai.Content{
			Role: "function",
			Parts: []genai.Part{genai.FunctionResponse{
				Name:     msg.ToolName,
				Response: map[string]interface{}{"content": msg.Content},
			}},
		}
	default:
		return &genai.Content{Role: "user", Parts: []genai.Part{genai.Text(msg.Content)}}
	}
}

// declarations converts catalog descriptors into Gemini function
// declarations.
func declarations(tools []provider.ToolDescriptor) []*genai.FunctionDeclaration {
	decls := make([]*genai.FunctionDeclaration, 0, len(tools))
	for _, tool := range tools {
		decls = append(decls, &genai.FunctionDeclaration{
			Name:        tool.Name,
			Description: tool.Description,
			Parameters:  schemaToGenai(tool.InputSchema),
		})
	}
	return decls
}

func schemaToGenai(schema provider.Schema) *genai.Schema {
	out := &genai.Schema{
		Type:       genai.TypeObject,
		Properties: map[string]*genai.Schema{},
		Required:   schema.Required,
	}
	for name, prop := range schema.Properties {
		out.Properties[name] = &genai.Schema{
			Type:        genaiType(prop.Type),
			Description: prop.Description,
		}
	}
	return out
}

func genaiType(jsonType string) genai.Type {
	switch jsonType {
	case "number":
		return genai.TypeNumber
	case "integer":
		return genai.TypeInteger
	case "boolean":
		return genai.TypeBoolean
	case "array":
		return genai.TypeArray
	case "object":
		return genai.TypeObject
	default:
		return genai.TypeString
	}
}
