package gemini

import (
	"testing"

	"github.com/aria-assistant/aria/pkg/types"
	"google.golang.org/genai"
)

func TestConvertMessageRoles(t *testing.T) {
	got, err := convertMessage(types.Message{Role: "assistant", Content: "hi"})
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if got.Role != "model" {
		t.Fatalf("expected model role, got %s", got.Role)
	}

	got, err = convertMessage(types.Message{Role: "user", Content: "hello"})
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if got.Role != "user" || got.Parts[0].Text != "hello" {
		t.Fatalf("unexpected content: %+v", got)
	}
}

func TestConvertMessageBadToolArgs(t *testing.T) {
	_, err := convertMessage(types.Message{
		Role:      "assistant",
		ToolCalls: []types.ToolCall{{Name: "x", Arguments: "{not json"}},
	})
	if err == nil {
		t.Fatal("expected error for malformed arguments")
	}
}

func TestConvertSchema(t *testing.T) {
	schema := types.JSONSchema{
		"type": "object",
		"properties": map[string]any{
			"action": map[string]any{
				"type": "string",
				"enum": []any{"play", "pause"},
			},
		},
		"required": []any{"action"},
	}
	s := convertSchema(schema)
	if s.Type != genai.TypeObject {
		t.Fatalf("expected object type, got %v", s.Type)
	}
	action, ok := s.Properties["action"]
	if !ok || action.Type != genai.TypeString {
		t.Fatalf("unexpected action schema: %+v", s.Properties)
	}
	if len(action.Enum) != 2 {
		t.Fatalf("enum not converted: %+v", action.Enum)
	}
	if len(s.Required) != 1 || s.Required[0] != "action" {
		t.Fatalf("required not converted: %+v", s.Required)
	}
}

func TestConvertResponseToolCall(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{
				Content: &genai.Content{
					Parts: []*genai.Part{
						{FunctionCall: &genai.FunctionCall{Name: "control_spotify", Args: map[string]any{"action": "pause"}}},
					},
				},
			},
		},
	}
	got, err := convertResponse(resp, "gemini-2.0-flash")
	if err != nil {
		t.Fatalf("convert response: %v", err)
	}
	if len(got.ToolCalls) != 1 || got.ToolCalls[0].Name != "control_spotify" {
		t.Fatalf("unexpected tool calls: %+v", got.ToolCalls)
	}
	if got.ToolCalls[0].Arguments != `{"action":"pause"}` {
		t.Fatalf("arguments not marshalled: %s", got.ToolCalls[0].Arguments)
	}
}

func TestConvertResponseEmpty(t *testing.T) {
	if _, err := convertResponse(&genai.GenerateContentResponse{}, "m"); err == nil {
		t.Fatal("expected error for empty response")
	}
}
