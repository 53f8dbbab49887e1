package terminus

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func callTool(t *testing.T, reg *ToolRegistry, name, args string, sess *fakeSession) (string, error) {
	t.Helper()
	tool := reg.Get(name)
	require.NotNil(t, tool, "tool %s not registered", name)
	if sess == nil {
		sess = &fakeSession{}
	}
	return tool.Executor(context.Background(), json.RawMessage(args), sess)
}

func TestTerminalToolkitExecutesCommand(t *testing.T) {
	reg := NewToolRegistry()
	RegisterTerminalToolkit(reg, 30*time.Second)

	sess := &fakeSession{pane: "output here"}
	out, err := callTool(t, reg, "execute_command", `{"command": "ls"}`, sess)
	require.NoError(t, err)
	assert.Equal(t, "output here", out)

	require.Len(t, sess.sent, 1)
	assert.Equal(t, "ls\nEnter", sess.sent[0].keys)
	assert.True(t, sess.sent[0].block)
	assert.Equal(t, 30*time.Second, sess.sent[0].timeout)
}

func TestTerminalToolkitCustomTimeout(t *testing.T) {
	reg := NewToolRegistry()
	RegisterTerminalToolkit(reg, 30*time.Second)

	sess := &fakeSession{}
	_, err := callTool(t, reg, "execute_command", `{"command": "sleep 1", "timeout_sec": 5}`, sess)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, sess.sent[0].timeout)
}

func TestTerminalToolkitMissingCommand(t *testing.T) {
	reg := NewToolRegistry()
	RegisterTerminalToolkit(reg, 30*time.Second)

	_, err := callTool(t, reg, "execute_command", `{}`, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "command")
}

func TestTerminalToolkitReportsTimeoutAsOutput(t *testing.T) {
	reg := NewToolRegistry()
	RegisterTerminalToolkit(reg, 30*time.Second)

	sess := &fakeSession{pane: "stuck", timeoutOn: 1}
	out, err := callTool(t, reg, "execute_command", `{"command": "sleep 999"}`, sess)
	require.NoError(t, err)
	assert.Contains(t, out, "timed out")
	assert.Contains(t, out, "stuck")
}

func TestNoteToolkitRoundTrip(t *testing.T) {
	reg := NewToolRegistry()
	RegisterNoteToolkit(reg, t.TempDir())

	out, err := callTool(t, reg, "create_note", `{"name": "findings", "content": "first"}`, nil)
	require.NoError(t, err)
	assert.Contains(t, out, "findings")

	_, err = callTool(t, reg, "append_note", `{"name": "findings", "content": "\nsecond"}`, nil)
	require.NoError(t, err)

	out, err = callTool(t, reg, "read_note", `{"name": "findings"}`, nil)
	require.NoError(t, err)
	assert.Equal(t, "first\nsecond", out)
}

func TestNoteToolkitAppendCreates(t *testing.T) {
	reg := NewToolRegistry()
	RegisterNoteToolkit(reg, t.TempDir())

	_, err := callTool(t, reg, "append_note", `{"name": "fresh", "content": "hello"}`, nil)
	require.NoError(t, err)

	out, err := callTool(t, reg, "read_note", `{"name": "fresh"}`, nil)
	require.NoError(t, err)
	assert.Equal(t, "hello", out)
}

func TestNoteToolkitListNotes(t *testing.T) {
	reg := NewToolRegistry()
	RegisterNoteToolkit(reg, t.TempDir())

	out, err := callTool(t, reg, "list_notes", `{}`, nil)
	require.NoError(t, err)
	assert.Equal(t, "No notes saved.", out)

	_, err = callTool(t, reg, "create_note", `{"name": "beta", "content": "b"}`, nil)
	require.NoError(t, err)
	_, err = callTool(t, reg, "create_note", `{"name": "alpha", "content": "a"}`, nil)
	require.NoError(t, err)

	out, err = callTool(t, reg, "list_notes", `{}`, nil)
	require.NoError(t, err)
	assert.Equal(t, "alpha.md\nbeta.md", out)
}

func TestNoteToolkitRejectsPathTraversal(t *testing.T) {
	reg := NewToolRegistry()
	RegisterNoteToolkit(reg, t.TempDir())

	for _, name := range []string{"../escape", "a/b", `a\b`, "", "  "} {
		_, err := callTool(t, reg, "create_note",
			`{"name": `+quote(name)+`, "content": "x"}`, nil)
		assert.Error(t, err, "name %q should be rejected", name)
	}
}

func TestNoteToolkitReadMissing(t *testing.T) {
	reg := NewToolRegistry()
	RegisterNoteToolkit(reg, t.TempDir())

	_, err := callTool(t, reg, "read_note", `{"name": "nothing"}`, nil)
	require.Error(t, err)
}

func TestMessageToolkitInvokesHandler(t *testing.T) {
	reg := NewToolRegistry()
	var gotTitle, gotDesc, gotAttach string
	RegisterMessageToolkit(reg, func(title, description, attachment string) {
		gotTitle, gotDesc, gotAttach = title, description, attachment
	})

	out, err := callTool(t, reg, "send_message_to_user",
		`{"message_title": "Build done", "message_description": "All tests green.", "message_attachment": "report.txt"}`, nil)
	require.NoError(t, err)

	assert.Equal(t, "Build done", gotTitle)
	assert.Equal(t, "All tests green.", gotDesc)
	assert.Equal(t, "report.txt", gotAttach)
	assert.Equal(t, "Message successfully sent to user: 'Build done All tests green. report.txt'", out)
}
