package terminus

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camel-ai/terminus/llm"
)

const validBatchJSON = `{
	"state_analysis": "empty prompt",
	"explanation": "list the directory",
	"commands": [
		{"keystrokes": "ls -la\n", "is_blocking": true, "timeout_sec": 10}
	],
	"is_task_complete": false
}`

func TestParseCommandBatchValid(t *testing.T) {
	batch, err := ParseCommandBatch(llm.RawOutput(validBatchJSON))
	require.NoError(t, err)

	assert.Equal(t, "empty prompt", batch.StateAnalysis)
	assert.Equal(t, "list the directory", batch.Explanation)
	require.Len(t, batch.Commands, 1)
	assert.Equal(t, "ls -la\n", batch.Commands[0].Keystrokes)
	assert.True(t, batch.Commands[0].IsBlocking)
	assert.Equal(t, 10.0, batch.Commands[0].TimeoutSec)
	assert.False(t, batch.IsTaskComplete)
}

func TestParseCommandBatchStructuredOutput(t *testing.T) {
	batch, err := ParseCommandBatch(llm.StructuredOutput(json.RawMessage(validBatchJSON)))
	require.NoError(t, err)
	assert.Len(t, batch.Commands, 1)
}

func TestParseCommandBatchFencedJSON(t *testing.T) {
	fenced := "```json\n" + validBatchJSON + "\n```"
	batch, err := ParseCommandBatch(llm.RawOutput(fenced))
	require.NoError(t, err)
	assert.Len(t, batch.Commands, 1)
}

func TestParseCommandBatchNotJSON(t *testing.T) {
	_, err := ParseCommandBatch(llm.RawOutput("I'll run ls for you!"))
	require.Error(t, err)

	var pe *llm.ParseError
	assert.True(t, errors.As(err, &pe), "expected *llm.ParseError, got %T", err)
}

func TestParseCommandBatchRejectsUnknownField(t *testing.T) {
	bad := `{
		"state_analysis": "x",
		"explanation": "y",
		"commands": [],
		"is_task_complete": false,
		"confidence": 0.9
	}`
	_, err := ParseCommandBatch(llm.RawOutput(bad))
	require.Error(t, err)

	var pe *llm.ParseError
	assert.True(t, errors.As(err, &pe))
}

func TestParseCommandBatchRejectsUnknownCommandField(t *testing.T) {
	bad := `{
		"state_analysis": "x",
		"explanation": "y",
		"commands": [
			{"keystrokes": "ls\n", "is_blocking": true, "timeout_sec": 5, "retries": 3}
		],
		"is_task_complete": false
	}`
	_, err := ParseCommandBatch(llm.RawOutput(bad))
	require.Error(t, err)
}

func TestParseCommandBatchRejectsMissingField(t *testing.T) {
	bad := `{
		"state_analysis": "x",
		"commands": [],
		"is_task_complete": false
	}`
	_, err := ParseCommandBatch(llm.RawOutput(bad))
	require.Error(t, err)

	var pe *llm.ParseError
	require.True(t, errors.As(err, &pe))
	assert.Contains(t, pe.Error(), "explanation")
}

func TestParseCommandBatchRejectsWrongType(t *testing.T) {
	bad := `{
		"state_analysis": "x",
		"explanation": "y",
		"commands": [
			{"keystrokes": "ls\n", "is_blocking": "yes", "timeout_sec": 5}
		],
		"is_task_complete": false
	}`
	_, err := ParseCommandBatch(llm.RawOutput(bad))
	require.Error(t, err)
}

func TestParseCommandBatchRejectsNonPositiveTimeout(t *testing.T) {
	// A zero timeout would disable the send deadline and let a blocking
	// command hang forever, so it is rejected along with negatives.
	for _, timeout := range []string{"-1", "0"} {
		bad := `{
			"state_analysis": "x",
			"explanation": "y",
			"commands": [
				{"keystrokes": "ls\n", "is_blocking": true, "timeout_sec": ` + timeout + `}
			],
			"is_task_complete": false
		}`
		_, err := ParseCommandBatch(llm.RawOutput(bad))
		require.Error(t, err, "timeout_sec %s must be rejected", timeout)

		var pe *llm.ParseError
		assert.True(t, errors.As(err, &pe))
	}
}

func TestParseCommandBatchRoundTrip(t *testing.T) {
	batch, err := ParseCommandBatch(llm.RawOutput(validBatchJSON))
	require.NoError(t, err)

	data, err := json.Marshal(batch)
	require.NoError(t, err)

	again, err := ParseCommandBatch(llm.RawOutput(string(data)))
	require.NoError(t, err)
	assert.Equal(t, batch, again)
}

func TestParseCommandBatchEmptyCommandsAllowed(t *testing.T) {
	// A batch may carry zero commands (e.g. pure completion declaration).
	doc := `{
		"state_analysis": "task finished",
		"explanation": "nothing left to run",
		"commands": [],
		"is_task_complete": true
	}`
	batch, err := ParseCommandBatch(llm.RawOutput(doc))
	require.NoError(t, err)
	assert.Empty(t, batch.Commands)
	assert.True(t, batch.IsTaskComplete)
}

func TestCommandBatchSchemaIsValidJSON(t *testing.T) {
	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(CommandBatchSchemaJSON()), &doc))
	assert.Equal(t, false, doc["additionalProperties"])
}

func TestResponseFormatCarriesSchema(t *testing.T) {
	format := ResponseFormat()
	require.NotNil(t, format)
	assert.Equal(t, llm.ResponseFormatJSONSchema, format.Type)
	assert.NotEmpty(t, format.Schema)
}
