package terminus

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildInitialPrompt(t *testing.T) {
	prompt := BuildInitialPrompt("compile the project", "make: command not found")

	assert.Contains(t, prompt, "Task: compile the project")
	assert.Contains(t, prompt, "Current terminal state:\nmake: command not found")
	assert.Contains(t, prompt, `"CommandBatchResponse"`)
	assert.Contains(t, prompt, "according to this schema")
}

func TestBuildContinuationPrompt(t *testing.T) {
	prompt := BuildContinuationPrompt("gcc: no input files")

	assert.Equal(t, "Current terminal state:\ngcc: no input files\n\nPlease continue with the task.", prompt)
}

func TestTruncatePaneUnderLimits(t *testing.T) {
	pane := "short output"
	assert.Equal(t, pane, TruncatePane(pane, 1000, 100))
}

func TestTruncatePaneCharLimit(t *testing.T) {
	pane := strings.Repeat("x", 500) + "MIDDLE" + strings.Repeat("y", 500)
	got := TruncatePane(pane, 100, 0)

	assert.Less(t, len(got), len(pane))
	assert.Contains(t, got, "truncated")
	assert.True(t, strings.HasPrefix(got, "xxxx"), "head must survive")
	assert.True(t, strings.HasSuffix(got, "yyyy"), "tail must survive")
	assert.NotContains(t, got, "MIDDLE")
}

func TestTruncatePaneLineLimit(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 100; i++ {
		sb.WriteString("line\n")
	}
	got := TruncatePane(sb.String(), 0, 10)

	assert.Contains(t, got, "lines omitted")
	assert.Less(t, len(strings.Split(got, "\n")), 20)
}

func TestTruncatePaneZeroDisables(t *testing.T) {
	pane := strings.Repeat("z", 100000)
	assert.Equal(t, pane, TruncatePane(pane, 0, 0))
}
