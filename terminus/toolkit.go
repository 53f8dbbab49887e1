package terminus

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/camel-ai/terminus/llm"
	"github.com/camel-ai/terminus/terminal"
)

// MessageHandler receives one-way status messages an agent sends to the
// user.
type MessageHandler func(title, description, attachment string)

// RegisterTerminalToolkit adds the execute_command tool, which runs
// keystrokes in the agent's terminal session and returns the resulting pane
// contents.
func RegisterTerminalToolkit(reg *ToolRegistry, defaultTimeout time.Duration) {
	reg.Register(RegisteredTool{
		Definition: llm.ToolDefinition{
			Name: "execute_command",
			Description: "Execute a shell command in the terminal and return the resulting " +
				"terminal contents. Commands run in the session's working directory.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"command": map[string]interface{}{
						"type":        "string",
						"description": "The shell command to execute.",
					},
					"timeout_sec": map[string]interface{}{
						"type":        "number",
						"description": "Seconds to wait for the command to complete.",
					},
				},
				"required": []string{"command"},
			},
		},
		Executor: func(ctx context.Context, arguments json.RawMessage, sess terminal.Session) (string, error) {
			args, err := ParseToolArguments(arguments)
			if err != nil {
				return "", err
			}
			command, ok := GetStringArg(args, "command")
			if !ok || command == "" {
				return "", fmt.Errorf("execute_command: missing required argument 'command'")
			}

			timeout := defaultTimeout
			if sec, ok := GetFloatArg(args, "timeout_sec"); ok && sec > 0 {
				timeout = time.Duration(sec * float64(time.Second))
			}

			cmd := Command{Keystrokes: command, IsBlocking: true, TimeoutSec: timeout.Seconds()}
			// A timeout is reported through the diagnostic output rather
			// than treated as an error; the model decides what to do next.
			_, output, err := ExecuteBatch(ctx, []Command{cmd}, sess)
			if err != nil {
				return "", err
			}
			return output, nil
		},
	})
}

// RegisterNoteToolkit adds note-taking tools backed by markdown files under
// workingDir/notes. Notes persist across tool calls within a task and give
// the agent scratch space for intermediate findings.
func RegisterNoteToolkit(reg *ToolRegistry, workingDir string) {
	notesDir := filepath.Join(workingDir, "notes")

	notePath := func(name string) (string, error) {
		name = strings.TrimSpace(name)
		if name == "" || strings.ContainsAny(name, "/\\") {
			return "", fmt.Errorf("invalid note name %q", name)
		}
		if !strings.HasSuffix(name, ".md") {
			name += ".md"
		}
		return filepath.Join(notesDir, name), nil
	}

	reg.Register(RegisteredTool{
		Definition: llm.ToolDefinition{
			Name:        "create_note",
			Description: "Create or overwrite a named note with the given content.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"name":    map[string]interface{}{"type": "string", "description": "Note name."},
					"content": map[string]interface{}{"type": "string", "description": "Note content."},
				},
				"required": []string{"name", "content"},
			},
		},
		Executor: func(ctx context.Context, arguments json.RawMessage, sess terminal.Session) (string, error) {
			args, err := ParseToolArguments(arguments)
			if err != nil {
				return "", err
			}
			name, _ := GetStringArg(args, "name")
			content, _ := GetStringArg(args, "content")
			path, err := notePath(name)
			if err != nil {
				return "", err
			}
			if err := os.MkdirAll(notesDir, 0o755); err != nil {
				return "", err
			}
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				return "", err
			}
			return fmt.Sprintf("Note %q saved.", name), nil
		},
	})

	reg.Register(RegisteredTool{
		Definition: llm.ToolDefinition{
			Name:        "append_note",
			Description: "Append content to a named note, creating it if needed.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"name":    map[string]interface{}{"type": "string", "description": "Note name."},
					"content": map[string]interface{}{"type": "string", "description": "Content to append."},
				},
				"required": []string{"name", "content"},
			},
		},
		Executor: func(ctx context.Context, arguments json.RawMessage, sess terminal.Session) (string, error) {
			args, err := ParseToolArguments(arguments)
			if err != nil {
				return "", err
			}
			name, _ := GetStringArg(args, "name")
			content, _ := GetStringArg(args, "content")
			path, err := notePath(name)
			if err != nil {
				return "", err
			}
			if err := os.MkdirAll(notesDir, 0o755); err != nil {
				return "", err
			}
			f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
			if err != nil {
				return "", err
			}
			defer f.Close()
			if _, err := f.WriteString(content); err != nil {
				return "", err
			}
			return fmt.Sprintf("Appended to note %q.", name), nil
		},
	})

	reg.Register(RegisteredTool{
		Definition: llm.ToolDefinition{
			Name:        "read_note",
			Description: "Read the content of a named note.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"name": map[string]interface{}{"type": "string", "description": "Note name."},
				},
				"required": []string{"name"},
			},
		},
		Executor: func(ctx context.Context, arguments json.RawMessage, sess terminal.Session) (string, error) {
			args, err := ParseToolArguments(arguments)
			if err != nil {
				return "", err
			}
			name, _ := GetStringArg(args, "name")
			path, err := notePath(name)
			if err != nil {
				return "", err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return "", fmt.Errorf("read note %q: %w", name, err)
			}
			return string(data), nil
		},
	})

	reg.Register(RegisteredTool{
		Definition: llm.ToolDefinition{
			Name:        "list_notes",
			Description: "List the names of all saved notes.",
			Parameters: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		Executor: func(ctx context.Context, arguments json.RawMessage, sess terminal.Session) (string, error) {
			entries, err := os.ReadDir(notesDir)
			if err != nil {
				if os.IsNotExist(err) {
					return "No notes saved.", nil
				}
				return "", err
			}
			var names []string
			for _, e := range entries {
				if !e.IsDir() && strings.HasSuffix(e.Name(), ".md") {
					names = append(names, e.Name())
				}
			}
			if len(names) == 0 {
				return "No notes saved.", nil
			}
			sort.Strings(names)
			return strings.Join(names, "\n"), nil
		},
	})
}

// RegisterMessageToolkit adds the send_message_to_user tool, a one-way
// status channel from the agent to the user.
func RegisterMessageToolkit(reg *ToolRegistry, handler MessageHandler) {
	reg.Register(RegisteredTool{
		Definition: llm.ToolDefinition{
			Name: "send_message_to_user",
			Description: "Send a tidy one-way message to the user: a short title, a " +
				"one-sentence description, and an optional attachment (file path or URL). " +
				"Use it to announce what you are about to do, report results, or give " +
				"status updates during long-running work. It does not return a reply.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"message_title": map[string]interface{}{
						"type":        "string",
						"description": "The title of the message.",
					},
					"message_description": map[string]interface{}{
						"type":        "string",
						"description": "The short description.",
					},
					"message_attachment": map[string]interface{}{
						"type":        "string",
						"description": "Optional attachment: a file path or a URL.",
					},
				},
				"required": []string{"message_title", "message_description"},
			},
		},
		Executor: func(ctx context.Context, arguments json.RawMessage, sess terminal.Session) (string, error) {
			args, err := ParseToolArguments(arguments)
			if err != nil {
				return "", err
			}
			title, _ := GetStringArg(args, "message_title")
			description, _ := GetStringArg(args, "message_description")
			attachment, _ := GetStringArg(args, "message_attachment")
			if handler != nil {
				handler(title, description, attachment)
			}
			return fmt.Sprintf("Message successfully sent to user: '%s %s %s'",
				title, description, attachment), nil
		},
	})
}
