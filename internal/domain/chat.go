package domain

import "encoding/json"

// ChatMessage is the provider-agnostic chat message shape used by the
// usecase and LLM integration. Tool fields follow the OpenAI chat
// completions wire format so a message can round-trip through a tool loop.
type ChatMessage struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// ToolCall is a single tool invocation requested by the model.
type ToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function FunctionCall `json:"function"`
}

// FunctionCall carries the called function name and its raw JSON arguments.
type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ToolDefinition describes a callable function offered to the model.
type ToolDefinition struct {
	Type     string             `json:"type"`
	Function FunctionDefinition `json:"function"`
}

// FunctionDefinition is the function half of a ToolDefinition.
type FunctionDefinition struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
}

// RunSettings bundles the generation parameters and tools for an execution.
type RunSettings struct {
	Tools       []ToolDefinition
	MaxTokens   int
	Temperature float64
}

// ChatResult is the assistant reply for one model call. ToolCalls is
// non-empty when the model requests tool execution instead of (or alongside)
// final text.
type ChatResult struct {
	Content   string
	ToolCalls []ToolCall
}
