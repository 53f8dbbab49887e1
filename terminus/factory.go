package terminus

import (
	"fmt"
	"runtime"
	"time"

	"go.uber.org/zap"

	"github.com/camel-ai/terminus/llm"
)

// DeveloperConfig holds the tunables of a tool-calling developer agent. The
// working directory is explicit configuration; nothing is read from ambient
// environment variables.
type DeveloperConfig struct {
	// TaskID labels emitted events. Defaults to "developer".
	TaskID string

	// WorkingDir is where the agent's notes and scratch files live, and
	// what the system message names as the working directory. Required.
	WorkingDir string

	// InContainer switches the system message to describe a containerized
	// environment.
	InContainer bool

	// DefaultCommandTimeout bounds execute_command calls that do not name
	// their own timeout. Defaults to 60s.
	DefaultCommandTimeout time.Duration

	// MaxToolTurns bounds the tool-calling loop. Defaults to 50.
	MaxToolTurns int

	// ToolOutputMaxChars bounds tool output fed back to the model.
	// Defaults to 20000.
	ToolOutputMaxChars int

	// MessageHandler receives send_message_to_user calls. Defaults to
	// logging them.
	MessageHandler MessageHandler

	// Logger receives diagnostic logs. Defaults to a no-op logger.
	Logger *zap.Logger
}

func (c *DeveloperConfig) applyDefaults() {
	if c.TaskID == "" {
		c.TaskID = "developer"
	}
	if c.DefaultCommandTimeout <= 0 {
		c.DefaultCommandTimeout = 60 * time.Second
	}
	if c.MaxToolTurns <= 0 {
		c.MaxToolTurns = 50
	}
	if c.ToolOutputMaxChars == 0 {
		c.ToolOutputMaxChars = 20000
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	if c.MessageHandler == nil {
		log := c.Logger
		c.MessageHandler = func(title, description, attachment string) {
			log.Info("agent message",
				zap.String("title", title),
				zap.String("description", description),
				zap.String("attachment", attachment))
		}
	}
}

// developerSystemMessage builds the standing instruction for the developer
// agent, describing its role and operating environment.
func developerSystemMessage(cfg DeveloperConfig) string {
	systemInfo := fmt.Sprintf("%s (%s)", runtime.GOOS, runtime.GOARCH)
	envNote := "You are running on the host system."
	fileNote := "You can access files from any place in the file system."
	if cfg.InContainer {
		systemInfo = "Linux (Container)"
		envNote = "You are running inside a container. All commands execute within the containerized environment."
		fileNote = "Create files directly in the working directory using simple paths like './filename' or 'filename'."
	}

	return fmt.Sprintf(`<role>
You are a Lead Software Engineer, a master-level coding assistant with a
powerful terminal. Your role is to solve technical tasks by writing and
executing code, installing necessary libraries, interacting with the operating
system, and deploying applications.
</role>

<operating_environment>
- **System**: %s
- **Working Directory**: %q. %s
- **Current Date**: %s.
- **IMPORTANT**: When working with files, use paths relative to the working directory above.
</operating_environment>

<instructions>
- When you complete your task, provide a clear summary of what you accomplished.
- Focus on creating files in the correct location as specified by the task.
</instructions>

<capabilities>
- **Code Execution**: You can write and execute code in any language to solve tasks.
- **Terminal Control**: You have access to the terminal and can run command-line tools,
  manage files, and interact with the OS. Install missing tools with package managers
  like pip3, uv, or apt-get.
- **File Operations**: %s
- **Verification**: Test and verify your solutions by executing them.
</capabilities>

<approach>
- Take action to solve problems. Don't just suggest solutions, implement them.
- Use the terminal effectively to execute commands and manage files.
- Verify your solutions by testing them.
</approach>`,
		systemInfo, cfg.WorkingDir, envNote,
		time.Now().Format("2006-01-02"), fileNote)
}

// NewDeveloperAgent assembles a tool-calling agent: terminal control, note
// taking, and a one-way message channel to the user.
func NewDeveloperAgent(backend *llm.Backend, cfg DeveloperConfig) (*DeveloperAgent, error) {
	cfg.applyDefaults()
	if cfg.WorkingDir == "" {
		return nil, fmt.Errorf("developer agent requires a working directory")
	}

	registry := NewToolRegistry()
	RegisterTerminalToolkit(registry, cfg.DefaultCommandTimeout)
	RegisterNoteToolkit(registry, cfg.WorkingDir)
	RegisterMessageToolkit(registry, cfg.MessageHandler)

	return &DeveloperAgent{
		cfg:      cfg,
		backend:  backend,
		registry: registry,
		system:   developerSystemMessage(cfg),
		emitter:  NewEventEmitter(cfg.TaskID, 256),
		log:      cfg.Logger,
	}, nil
}
