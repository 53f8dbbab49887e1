package llm

import (
	"context"
	"fmt"
	"os"
	"sync"
)

// ChatAgent is a stateful conversation wrapper around a Backend. It keeps the
// message history and cumulative token counters across steps, so callers can
// compute per-task token deltas by reading the totals before and after a run.
//
// ChatAgent is safe for concurrent use, though a conversation is inherently
// sequential.
type ChatAgent struct {
	mu sync.Mutex

	backend       *Backend
	systemMessage string
	history       []Message

	totalInputTokens  int
	totalOutputTokens int
}

// NewChatAgent creates a ChatAgent with the given system message.
func NewChatAgent(backend *Backend, systemMessage string) *ChatAgent {
	return &ChatAgent{
		backend:       backend,
		systemMessage: systemMessage,
	}
}

// SystemMessage returns the current system message.
func (a *ChatAgent) SystemMessage() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.systemMessage
}

// AppendToSystemMessage adds text to the end of the system message. Used to
// fold a saved summary from a previous run into the agent's standing context.
func (a *ChatAgent) AppendToSystemMessage(text string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.systemMessage += text
}

// Reset clears the conversation history. Token totals are preserved; they
// account for everything the agent has ever consumed.
func (a *ChatAgent) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.history = nil
}

// History returns a copy of the conversation so far, excluding the system
// message.
func (a *ChatAgent) History() []Message {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]Message, len(a.history))
	copy(out, a.history)
	return out
}

// TotalInputTokens returns the cumulative prompt tokens consumed.
func (a *ChatAgent) TotalInputTokens() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.totalInputTokens
}

// TotalOutputTokens returns the cumulative completion tokens consumed.
func (a *ChatAgent) TotalOutputTokens() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.totalOutputTokens
}

// Step sends the user input together with the accumulated history and returns
// the model's response. The input and the assistant reply are appended to the
// history only when the call succeeds, so a failed step leaves the
// conversation unchanged and safe to retry.
func (a *ChatAgent) Step(ctx context.Context, input string, format *ResponseFormat) (*Response, error) {
	a.mu.Lock()
	messages := make([]Message, 0, len(a.history)+2)
	if a.systemMessage != "" {
		messages = append(messages, SystemMessage(a.systemMessage))
	}
	messages = append(messages, a.history...)
	userMsg := UserMessage(input)
	messages = append(messages, userMsg)
	req := Request{
		Model:          a.backend.Model,
		Provider:       string(a.backend.Platform),
		Messages:       messages,
		ResponseFormat: format,
	}
	a.mu.Unlock()

	resp, err := a.backend.Client.Complete(ctx, req)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	a.history = append(a.history, userMsg, resp.Message)
	a.totalInputTokens += resp.Usage.InputTokens
	a.totalOutputTokens += resp.Usage.OutputTokens
	a.mu.Unlock()

	return resp, nil
}

// LoadSummary reads a summary file saved by a previous run and appends its
// contents to the system message. A missing file is not an error; a fresh
// run simply has no summary to restore.
func (a *ChatAgent) LoadSummary(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read summary %s: %w", path, err)
	}
	if len(data) == 0 {
		return nil
	}
	a.AppendToSystemMessage("\n\nSummary of previous session:\n" + string(data))
	return nil
}

// Summarize asks the model to condense the conversation so far and writes the
// result to path. The summarization exchange itself is not recorded in the
// history.
func (a *ChatAgent) Summarize(ctx context.Context, prompt, path string) error {
	a.mu.Lock()
	messages := make([]Message, 0, len(a.history)+2)
	if a.systemMessage != "" {
		messages = append(messages, SystemMessage(a.systemMessage))
	}
	messages = append(messages, a.history...)
	messages = append(messages, UserMessage(prompt))
	req := Request{
		Model:    a.backend.Model,
		Provider: string(a.backend.Platform),
		Messages: messages,
	}
	a.mu.Unlock()

	resp, err := a.backend.Client.Complete(ctx, req)
	if err != nil {
		return err
	}

	a.mu.Lock()
	a.totalInputTokens += resp.Usage.InputTokens
	a.totalOutputTokens += resp.Usage.OutputTokens
	a.mu.Unlock()

	if err := os.WriteFile(path, []byte(resp.Text()), 0o644); err != nil {
		return fmt.Errorf("write summary %s: %w", path, err)
	}
	return nil
}
