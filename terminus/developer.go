package terminus

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/camel-ai/terminus/llm"
	"github.com/camel-ai/terminus/terminal"
)

// DeveloperAgent drives a task through model tool calls instead of the
// batched command protocol: the terminal is exposed as an execute_command
// tool, and the loop runs until the model answers without requesting tools.
type DeveloperAgent struct {
	cfg      DeveloperConfig
	backend  *llm.Backend
	registry *ToolRegistry
	system   string
	emitter  *EventEmitter
	log      *zap.Logger

	history []llm.Message
	markers []TimestampedMarker
	usage   llm.Usage
}

// Events returns the agent's event channel.
func (d *DeveloperAgent) Events() <-chan TaskEvent {
	return d.emitter.Events()
}

// Close closes the event channel.
func (d *DeveloperAgent) Close() {
	d.emitter.Close()
}

// Tools returns the names of the registered tools.
func (d *DeveloperAgent) Tools() []string {
	return d.registry.Names()
}

// PerformTask runs the tool-calling loop for one instruction. Each tool call
// is recorded as a timeline marker; token counts cover this task only.
func (d *DeveloperAgent) PerformTask(ctx context.Context, instruction string, sess terminal.Session) (*AgentResult, error) {
	d.history = nil
	d.markers = nil
	initialUsage := d.usage

	d.emitter.Emit(EventTaskStart, map[string]interface{}{"instruction": instruction})
	d.history = append(d.history, llm.UserMessage(instruction+"\n"))

	for turn := 0; turn < d.cfg.MaxToolTurns; turn++ {
		resp, err := d.step(ctx)
		if err != nil {
			d.emitter.Emit(EventError, map[string]interface{}{"error": err.Error()})
			return nil, err
		}

		if !resp.HasToolCalls() {
			d.emitter.Emit(EventTaskComplete, map[string]interface{}{"turn": turn})
			return d.buildResult(initialUsage, FailureModeNone), nil
		}

		for _, call := range resp.Message.ToolCalls {
			d.history = append(d.history, d.runTool(ctx, call, sess))
		}
	}

	d.emitter.Emit(EventBudgetExhausted, map[string]interface{}{"max_tool_turns": d.cfg.MaxToolTurns})
	d.log.Warn("tool turn budget exhausted", zap.Int("max_tool_turns", d.cfg.MaxToolTurns))
	return d.buildResult(initialUsage, FailureModeBudgetExhausted), nil
}

func (d *DeveloperAgent) step(ctx context.Context) (*llm.Response, error) {
	messages := make([]llm.Message, 0, len(d.history)+1)
	messages = append(messages, llm.SystemMessage(d.system))
	messages = append(messages, d.history...)

	resp, err := llm.Retry(ctx, llm.DefaultRetryPolicy(), func(ctx context.Context) (*llm.Response, error) {
		return d.backend.Client.Complete(ctx, llm.Request{
			Model:    d.backend.Model,
			Provider: string(d.backend.Platform),
			Messages: messages,
			ToolDefs: d.registry.Definitions(),
		})
	})
	if err != nil {
		return nil, err
	}

	d.history = append(d.history, resp.Message)
	d.usage = d.usage.Add(resp.Usage)
	return resp, nil
}

// runTool executes one tool call, records a timeline marker for it, and
// returns the tool result message to feed back to the model.
func (d *DeveloperAgent) runTool(ctx context.Context, call llm.ToolCall, sess terminal.Session) llm.Message {
	d.recordMarker(sess, markerForCall(call))

	tool := d.registry.Get(call.Name)
	if tool == nil {
		d.log.Warn("model requested unknown tool", zap.String("tool", call.Name))
		return llm.ToolResultMessage(call.ID, fmt.Sprintf("unknown tool %q", call.Name), true)
	}

	output, err := tool.Executor(ctx, call.Arguments, sess)
	if err != nil {
		d.log.Warn("tool execution failed", zap.String("tool", call.Name), zap.Error(err))
		return llm.ToolResultMessage(call.ID, err.Error(), true)
	}

	output = TruncatePane(output, d.cfg.ToolOutputMaxChars, 0)
	return llm.ToolResultMessage(call.ID, output, false)
}

// markerForCall renders the marker text recorded for a tool call: the tool
// name plus the command argument when one is present.
func markerForCall(call llm.ToolCall) string {
	command := ""
	if args, err := ParseToolArguments(call.Arguments); err == nil {
		command, _ = GetStringArg(args, "command")
	}
	return fmt.Sprintf("Called tool: %s with args: %s", call.Name, command)
}

func (d *DeveloperAgent) recordMarker(sess terminal.Session, text string) {
	marker := TimestampedMarker{
		Timestamp: sess.AsciinemaTimestamp(),
		Text:      text,
	}
	d.markers = append(d.markers, marker)
	d.emitter.Emit(EventMarker, map[string]interface{}{"timestamp": marker.Timestamp})
}

func (d *DeveloperAgent) buildResult(initial llm.Usage, mode FailureMode) *AgentResult {
	result := &AgentResult{
		TotalInputTokens:   d.usage.InputTokens - initial.InputTokens,
		TotalOutputTokens:  d.usage.OutputTokens - initial.OutputTokens,
		FailureMode:        mode,
		TimestampedMarkers: d.markers,
	}
	d.emitter.Emit(EventTaskEnd, map[string]interface{}{
		"failure_mode":  string(mode),
		"input_tokens":  result.TotalInputTokens,
		"output_tokens": result.TotalOutputTokens,
	})
	return result
}
