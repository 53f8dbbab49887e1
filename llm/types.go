package llm

import (
	"encoding/json"
	"strings"
)

// Role identifies who produced a message in a conversation.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is the fundamental unit of conversation.
type Message struct {
	Role       Role       `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// SystemMessage creates a system Message.
func SystemMessage(text string) Message {
	return Message{Role: RoleSystem, Content: text}
}

// UserMessage creates a user Message.
func UserMessage(text string) Message {
	return Message{Role: RoleUser, Content: text}
}

// AssistantMessage creates an assistant Message.
func AssistantMessage(text string) Message {
	return Message{Role: RoleAssistant, Content: text}
}

// ToolResultMessage creates a tool result Message for a given call.
func ToolResultMessage(toolCallID, content string, isError bool) Message {
	if isError {
		content = "ERROR: " + content
	}
	return Message{Role: RoleTool, Content: content, ToolCallID: toolCallID}
}

// ToolCall is a model-initiated tool invocation extracted from a response.
type ToolCall struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// ToolDefinition describes a tool for the model (serializable metadata only).
type ToolDefinition struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Parameters  map[string]interface{} `json:"parameters"`
}

// Response format types.
const (
	ResponseFormatText       = "text"
	ResponseFormatJSONSchema = "json_schema"
)

// ResponseFormat specifies the desired output format of a completion.
type ResponseFormat struct {
	Type   string          `json:"type"`
	Schema json.RawMessage `json:"schema,omitempty"`
	Strict bool            `json:"strict,omitempty"`
}

// FinishReason describes why generation stopped.
type FinishReason struct {
	Reason string `json:"reason"` // "stop", "length", "tool_calls", "error", "other"
	Raw    string `json:"raw,omitempty"`
}

// Usage tracks token consumption for a single completion.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// Add returns a new Usage that is the sum of u and other.
func (u Usage) Add(other Usage) Usage {
	return Usage{
		InputTokens:  u.InputTokens + other.InputTokens,
		OutputTokens: u.OutputTokens + other.OutputTokens,
		TotalTokens:  u.TotalTokens + other.TotalTokens,
	}
}

// ModelOutput is the two-variant result of a structured-output completion.
// Exactly one variant is populated, decided by the provider boundary when the
// response is built: Structured holds a payload the provider already parsed
// (or that the adapter extracted from a schema-constrained reply), Raw holds
// text the caller must parse itself.
type ModelOutput struct {
	Structured json.RawMessage `json:"structured,omitempty"`
	Raw        string          `json:"raw,omitempty"`
}

// StructuredOutput creates a ModelOutput carrying a pre-parsed payload.
func StructuredOutput(payload json.RawMessage) ModelOutput {
	return ModelOutput{Structured: payload}
}

// RawOutput creates a ModelOutput carrying unparsed text.
func RawOutput(text string) ModelOutput {
	return ModelOutput{Raw: text}
}

// JSON returns the bytes a caller should parse: the structured payload when
// present, otherwise the raw text.
func (o ModelOutput) JSON() []byte {
	if o.Structured != nil {
		return o.Structured
	}
	return []byte(o.Raw)
}

// Request is the input type for Client.Complete.
type Request struct {
	Model          string           `json:"model"`
	Messages       []Message        `json:"messages"`
	Provider       string           `json:"provider,omitempty"`
	ToolDefs       []ToolDefinition `json:"tools,omitempty"`
	ResponseFormat *ResponseFormat  `json:"response_format,omitempty"`
	Temperature    *float64         `json:"temperature,omitempty"`
	MaxTokens      *int             `json:"max_tokens,omitempty"`
}

// Response is the output of Client.Complete.
type Response struct {
	ID           string       `json:"id"`
	Model        string       `json:"model"`
	Provider     string       `json:"provider"`
	Message      Message      `json:"message"`
	Output       ModelOutput  `json:"output"`
	FinishReason FinishReason `json:"finish_reason"`
	Usage        Usage        `json:"usage"`
}

// Text returns the assistant message text.
func (r Response) Text() string {
	return r.Message.Content
}

// HasToolCalls reports whether the response requested tool execution.
func (r Response) HasToolCalls() bool {
	return len(r.Message.ToolCalls) > 0
}

// TrimFences strips a surrounding markdown code fence from text, if present.
// Models asked for JSON frequently wrap it in ```json blocks.
func TrimFences(text string) string {
	t := strings.TrimSpace(text)
	if !strings.HasPrefix(t, "```") {
		return t
	}
	t = strings.TrimPrefix(t, "```")
	if idx := strings.Index(t, "\n"); idx >= 0 {
		// Drop the language tag line.
		t = t[idx+1:]
	}
	t = strings.TrimSuffix(strings.TrimSpace(t), "```")
	return strings.TrimSpace(t)
}
