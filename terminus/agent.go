package terminus

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/camel-ai/terminus/llm"
	"github.com/camel-ai/terminus/terminal"
)

// Config holds the tunables of a command-batch agent.
type Config struct {
	// TaskID labels emitted events. Defaults to "terminus".
	TaskID string

	// MaxEpisodes bounds the episode loop. Defaults to 50.
	MaxEpisodes int

	// SummaryPath is where a cross-run summary is loaded from and saved to.
	// Empty disables summaries.
	SummaryPath string

	// PaneMaxChars and PaneMaxLines bound terminal text embedded in
	// prompts. Zero disables the respective limit.
	PaneMaxChars int
	PaneMaxLines int

	// RepeatWindow is how many trailing command batches the repeat check
	// inspects. Zero disables the check.
	RepeatWindow int

	// Attempts is the total model-call attempt budget per episode,
	// including the first try. Defaults to 3.
	Attempts int

	// Logger receives diagnostic logs. Defaults to a no-op logger.
	Logger *zap.Logger
}

func (c *Config) applyDefaults() {
	if c.TaskID == "" {
		c.TaskID = "terminus"
	}
	if c.MaxEpisodes <= 0 {
		c.MaxEpisodes = 50
	}
	if c.PaneMaxChars == 0 {
		c.PaneMaxChars = 20000
	}
	if c.PaneMaxLines == 0 {
		c.PaneMaxLines = 256
	}
	if c.RepeatWindow == 0 {
		c.RepeatWindow = 6
	}
	if c.Attempts <= 0 {
		c.Attempts = 3
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
}

// Agent drives a terminal session through the batched command protocol.
// One agent runs one task at a time; the episode loop is strictly
// sequential.
type Agent struct {
	cfg     Config
	chat    *llm.ChatAgent
	emitter *EventEmitter
	log     *zap.Logger

	markers   []TimestampedMarker
	batchSigs []string
}

// New creates an Agent on the given backend. A summary saved by a previous
// run is folded into the system message when the configured path exists;
// a missing or unreadable summary is logged and ignored.
func New(backend *llm.Backend, cfg Config) *Agent {
	cfg.applyDefaults()

	chat := llm.NewChatAgent(backend, SystemMessage)
	if cfg.SummaryPath != "" {
		if err := chat.LoadSummary(cfg.SummaryPath); err != nil {
			cfg.Logger.Warn("failed to load summary",
				zap.String("path", cfg.SummaryPath), zap.Error(err))
		}
	}

	return &Agent{
		cfg:     cfg,
		chat:    chat,
		emitter: NewEventEmitter(cfg.TaskID, 256),
		log:     cfg.Logger,
	}
}

// Events returns the agent's event channel.
func (a *Agent) Events() <-chan TaskEvent {
	return a.emitter.Events()
}

// Close closes the event channel.
func (a *Agent) Close() {
	a.emitter.Close()
}

// PerformTask runs the episode loop for one instruction against a live
// session. It is synchronous and always returns a result once the loop ends;
// an error is returned only when the model call fails past its attempt
// budget or the session itself breaks. Token counts in the result are
// deltas isolated to this task. When loggingDir is non-empty, each episode
// writes its prompt, raw response, and a debug record under
// loggingDir/episode-N/.
func (a *Agent) PerformTask(ctx context.Context, instruction string, sess terminal.Session, loggingDir string) (*AgentResult, error) {
	a.chat.Reset()
	a.markers = nil
	a.batchSigs = nil

	initialInput := a.chat.TotalInputTokens()
	initialOutput := a.chat.TotalOutputTokens()

	a.emitter.Emit(EventTaskStart, map[string]interface{}{"instruction": instruction})
	a.log.Info("task started", zap.String("instruction", instruction))

	pane := TruncatePane(sess.CapturePane(), a.cfg.PaneMaxChars, a.cfg.PaneMaxLines)
	prompt := BuildInitialPrompt(instruction, pane)

	failureMode, err := a.runEpisodes(ctx, prompt, sess, loggingDir)
	if err != nil {
		a.emitter.Emit(EventError, map[string]interface{}{"error": err.Error()})
		return nil, err
	}

	// Summary generation is a non-critical tail step: failures are logged
	// and swallowed, never propagated.
	a.bestEffort("summary generation", func() error {
		if a.cfg.SummaryPath == "" {
			return nil
		}
		if err := os.MkdirAll(filepath.Dir(a.cfg.SummaryPath), 0o755); err != nil {
			return err
		}
		summaryPrompt := "Summarize the terminal task execution for: " + instruction
		if err := a.chat.Summarize(ctx, summaryPrompt, a.cfg.SummaryPath); err != nil {
			return err
		}
		a.emitter.Emit(EventSummarySaved, map[string]interface{}{"path": a.cfg.SummaryPath})
		return nil
	})

	result := &AgentResult{
		TotalInputTokens:   a.chat.TotalInputTokens() - initialInput,
		TotalOutputTokens:  a.chat.TotalOutputTokens() - initialOutput,
		FailureMode:        failureMode,
		TimestampedMarkers: a.markers,
	}

	a.emitter.Emit(EventTaskEnd, map[string]interface{}{
		"failure_mode":  string(failureMode),
		"input_tokens":  result.TotalInputTokens,
		"output_tokens": result.TotalOutputTokens,
	})
	a.log.Info("task finished",
		zap.String("failure_mode", string(failureMode)),
		zap.Int("input_tokens", result.TotalInputTokens),
		zap.Int("output_tokens", result.TotalOutputTokens))

	return result, nil
}

func (a *Agent) runEpisodes(ctx context.Context, prompt string, sess terminal.Session, loggingDir string) (FailureMode, error) {
	for episode := 0; episode < a.cfg.MaxEpisodes; episode++ {
		a.emitter.Emit(EventEpisodeStart, map[string]interface{}{"episode": episode})

		paths, err := setupEpisodeLogging(loggingDir, episode)
		if err != nil {
			return FailureModeNone, err
		}

		batch, err := a.stepModel(ctx, prompt, paths)
		if err != nil {
			return FailureModeNone, err
		}

		a.recordMarker(sess, mustMarshal(batch))
		a.emitter.Emit(EventModelResponse, map[string]interface{}{
			"episode":          episode,
			"commands":         len(batch.Commands),
			"is_task_complete": batch.IsTaskComplete,
		})

		timedOut, output, err := ExecuteBatch(ctx, batch.Commands, sess)
		if err != nil {
			return FailureModeNone, err
		}
		if timedOut {
			a.emitter.Emit(EventCommandTimeout, map[string]interface{}{"episode": episode})
			a.log.Warn("command batch timed out", zap.Int("episode", episode))
		}

		a.writeDebugRecord(paths.debugPath, episode, batch, timedOut)

		if batch.IsTaskComplete {
			a.emitter.Emit(EventTaskComplete, map[string]interface{}{"episode": episode})
			return FailureModeNone, nil
		}

		output = TruncatePane(output, a.cfg.PaneMaxChars, a.cfg.PaneMaxLines)
		prompt = BuildContinuationPrompt(output)

		if a.cfg.RepeatWindow > 0 {
			a.batchSigs = append(a.batchSigs, batchSignature(batch.Commands))
			if DetectRepeatedBatch(a.batchSigs, a.cfg.RepeatWindow) {
				a.emitter.Emit(EventRepeatedBatch, map[string]interface{}{"episode": episode})
				a.log.Warn("repeated command batch detected", zap.Int("episode", episode))
				prompt += "\n\nWARNING: You have sent the same commands repeatedly without progress. Re-examine the terminal state and try a different approach."
			}
		}
	}

	a.emitter.Emit(EventBudgetExhausted, map[string]interface{}{"max_episodes": a.cfg.MaxEpisodes})
	a.log.Warn("episode budget exhausted", zap.Int("max_episodes", a.cfg.MaxEpisodes))
	return FailureModeBudgetExhausted, nil
}

// stepModel calls the model and parses the reply, retrying inside the
// episode's attempt budget. Parse failures and transport errors are retried;
// context-length and output-length errors surface immediately.
func (a *Agent) stepModel(ctx context.Context, prompt string, paths episodePaths) (*CommandBatchResponse, error) {
	policy := llm.DefaultRetryPolicy()
	policy.MaxRetries = a.cfg.Attempts - 1
	policy.OnRetry = func(err error, attempt int, delay time.Duration) {
		a.emitter.Emit(EventModelRetry, map[string]interface{}{
			"attempt": attempt,
			"error":   err.Error(),
		})
		a.log.Warn("model call failed, retrying",
			zap.Int("attempt", attempt), zap.Duration("delay", delay), zap.Error(err))
	}

	return llm.Retry(ctx, policy, func(ctx context.Context) (*CommandBatchResponse, error) {
		if paths.promptPath != "" {
			if err := os.WriteFile(paths.promptPath, []byte(prompt), 0o644); err != nil {
				a.log.Warn("failed to write prompt log", zap.Error(err))
			}
		}

		resp, err := a.chat.Step(ctx, prompt, ResponseFormat())
		if err != nil {
			return nil, err
		}

		if paths.responsePath != "" {
			if err := os.WriteFile(paths.responsePath, resp.Output.JSON(), 0o644); err != nil {
				a.log.Warn("failed to write response log", zap.Error(err))
			}
		}

		return ParseCommandBatch(resp.Output)
	})
}

func (a *Agent) recordMarker(sess terminal.Session, text string) {
	marker := TimestampedMarker{
		Timestamp: sess.AsciinemaTimestamp(),
		Text:      text,
	}
	a.markers = append(a.markers, marker)
	a.emitter.Emit(EventMarker, map[string]interface{}{"timestamp": marker.Timestamp})
}

// bestEffort runs a non-critical step, logging and swallowing any failure.
func (a *Agent) bestEffort(name string, fn func() error) {
	if err := fn(); err != nil {
		a.emitter.Emit(EventWarning, map[string]interface{}{"step": name, "error": err.Error()})
		a.log.Warn("non-critical step failed", zap.String("step", name), zap.Error(err))
	}
}

type episodePaths struct {
	debugPath    string
	promptPath   string
	responsePath string
}

func setupEpisodeLogging(loggingDir string, episode int) (episodePaths, error) {
	if loggingDir == "" {
		return episodePaths{}, nil
	}
	dir := filepath.Join(loggingDir, fmt.Sprintf("episode-%d", episode))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return episodePaths{}, fmt.Errorf("create episode logging dir: %w", err)
	}
	return episodePaths{
		debugPath:    filepath.Join(dir, "debug.json"),
		promptPath:   filepath.Join(dir, "prompt.txt"),
		responsePath: filepath.Join(dir, "response.json"),
	}, nil
}

func (a *Agent) writeDebugRecord(path string, episode int, batch *CommandBatchResponse, timedOut bool) {
	if path == "" {
		return
	}
	record := map[string]interface{}{
		"episode":          episode,
		"commands":         len(batch.Commands),
		"is_task_complete": batch.IsTaskComplete,
		"timed_out":        timedOut,
		"state_analysis":   batch.StateAnalysis,
		"explanation":      batch.Explanation,
	}
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		a.log.Warn("failed to write debug record", zap.Error(err))
	}
}

func mustMarshal(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%+v", v)
	}
	return string(data)
}
