package terminus

import (
	"fmt"
	"strings"
)

// SystemMessage is the standing instruction given to the command-batch agent.
const SystemMessage = `You are a helpful AI assistant that helps users complete terminal tasks by generating appropriate shell commands.

You will be given:
1. A task instruction describing what needs to be accomplished
2. The current state of the terminal

Your job is to:
1. Analyze the current terminal state
2. Determine what commands need to be executed to complete or progress toward the task
3. Provide those commands in the specified JSON format

Important guidelines:
- Use simple, reliable commands when possible
- Be careful with file operations and permissions
- When in doubt about command blocking, prefer non-blocking execution
- Check command results before marking task as complete
- Break complex tasks into smaller steps

Respond ONLY in valid JSON format matching the CommandBatchResponse schema.`

// BuildInitialPrompt assembles the first episode's prompt: the instruction,
// the current pane, and the response schema the model must follow.
func BuildInitialPrompt(instruction, pane string) string {
	return fmt.Sprintf(`Task: %s

Current terminal state:
%s

Please analyze the current state and provide the next commands to execute in JSON format according to this schema:
%s`, instruction, pane, CommandBatchSchemaJSON())
}

// BuildContinuationPrompt assembles every subsequent episode's prompt from
// the executor's returned terminal text.
func BuildContinuationPrompt(terminalOutput string) string {
	return fmt.Sprintf("Current terminal state:\n%s\n\nPlease continue with the task.", terminalOutput)
}

// TruncatePane bounds terminal text before it is embedded in a prompt,
// keeping the head and tail. Pathological output (a runaway command dumping
// megabytes) would otherwise blow the model's context window.
func TruncatePane(pane string, maxChars, maxLines int) string {
	if maxChars > 0 && len(pane) > maxChars {
		half := maxChars / 2
		removed := len(pane) - maxChars
		pane = pane[:half] +
			fmt.Sprintf("\n\n[WARNING: Terminal output was truncated. %d characters were removed from the middle. "+
				"Re-run a more targeted command if you need the full output.]\n\n", removed) +
			pane[len(pane)-half:]
	}

	if maxLines > 0 {
		lines := strings.Split(pane, "\n")
		if len(lines) > maxLines {
			headCount := maxLines / 2
			tailCount := maxLines - headCount
			omitted := len(lines) - headCount - tailCount
			pane = strings.Join(lines[:headCount], "\n") +
				fmt.Sprintf("\n[... %d lines omitted ...]\n", omitted) +
				strings.Join(lines[len(lines)-tailCount:], "\n")
		}
	}

	return pane
}
