package terminus

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/camel-ai/terminus/llm"
)

// Command is a single terminal interaction produced by the model.
type Command struct {
	// Keystrokes to execute in the terminal. Multiplexer-style escape
	// sequences (e.g. C-c for ctrl-c) are sent as their own commands.
	Keystrokes string `json:"keystrokes"`

	// IsBlocking requests waiting for terminal output after the keystrokes
	// are sent. The executor suppresses it for forms that never signal
	// completion (heredocs, backgrounded commands).
	IsBlocking bool `json:"is_blocking"`

	// TimeoutSec is the expected number of seconds to wait for the command.
	// Must be strictly positive: a zero timeout would disable the send
	// deadline and let a blocking command hang forever.
	TimeoutSec float64 `json:"timeout_sec" validate:"gt=0"`
}

// CommandBatchResponse is the model's answer for one episode: an analysis of
// the terminal, an ordered batch of commands, and a completion flag. The
// schema is closed; undeclared fields are rejected.
type CommandBatchResponse struct {
	StateAnalysis  string    `json:"state_analysis"`
	Explanation    string    `json:"explanation"`
	Commands       []Command `json:"commands" validate:"dive"`
	IsTaskComplete bool      `json:"is_task_complete"`
}

// commandBatchSchemaJSON is the closed JSON Schema for CommandBatchResponse.
// It is embedded in the initial prompt and enforced on every model reply.
const commandBatchSchemaJSON = `{
  "$defs": {
    "Command": {
      "additionalProperties": false,
      "properties": {
        "keystrokes": {
          "description": "Keystrokes to execute in the terminal. Use tmux-style escape sequences for modifier keys (e.g. C-c for ctrl-c). Modifier keys must be sent as their own commands otherwise the characters will be interpreted literally.",
          "title": "Keystrokes",
          "type": "string"
        },
        "is_blocking": {
          "description": "Whether to wait for and return the terminal output after executing these keystrokes. DO NOT block on modifier keys or inside interactive programs (e.g. vim or less). Only block when the command is executed in the command line, is not interactive, and you expect the output to be returned with no intervention. When in doubt, wait instead of blocking.",
          "title": "Is Blocking",
          "type": "boolean"
        },
        "timeout_sec": {
          "description": "The number of expected seconds to wait for the command to complete.",
          "exclusiveMinimum": 0,
          "title": "Timeout Sec",
          "type": "number"
        }
      },
      "required": ["keystrokes", "is_blocking", "timeout_sec"],
      "title": "Command",
      "type": "object"
    }
  },
  "additionalProperties": false,
  "properties": {
    "state_analysis": {
      "description": "Description of the current state of the terminal",
      "title": "State Analysis",
      "type": "string"
    },
    "explanation": {
      "description": "Brief explanation of what these commands will do",
      "title": "Explanation",
      "type": "string"
    },
    "commands": {
      "description": "List of shell interactions to execute in the Docker container",
      "items": {"$ref": "#/$defs/Command"},
      "title": "Commands",
      "type": "array"
    },
    "is_task_complete": {
      "description": "Whether the task is complete following the execution of these commands. Make sure to check that the command you last executed worked before saying you're done.",
      "title": "Is Task Complete",
      "type": "boolean"
    }
  },
  "required": ["state_analysis", "explanation", "commands", "is_task_complete"],
  "title": "CommandBatchResponse",
  "type": "object"
}`

// schemaPrinter formats schema validation error messages.
var schemaPrinter = message.NewPrinter(language.English)

// commandBatchSchema is the compiled schema, built once at package init.
var commandBatchSchema *jsonschema.Schema

func init() {
	commandBatchSchema = mustCompileSchema(commandBatchSchemaJSON, "command_batch.schema.json")
}

func mustCompileSchema(raw string, name string) *jsonschema.Schema {
	var schemaDoc any
	if err := json.Unmarshal([]byte(raw), &schemaDoc); err != nil {
		panic(fmt.Sprintf("failed to parse embedded %s: %v", name, err))
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, schemaDoc); err != nil {
		panic(fmt.Sprintf("failed to add %s resource: %v", name, err))
	}

	sch, err := compiler.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("failed to compile %s: %v", name, err))
	}
	return sch
}

// CommandBatchSchemaJSON returns the schema text embedded in prompts.
func CommandBatchSchemaJSON() string {
	return commandBatchSchemaJSON
}

// ResponseFormat returns the completion response format that requests a
// schema-constrained reply.
func ResponseFormat() *llm.ResponseFormat {
	return &llm.ResponseFormat{
		Type:   llm.ResponseFormatJSONSchema,
		Schema: json.RawMessage(commandBatchSchemaJSON),
	}
}

var structValidate = validator.New(validator.WithRequiredStructEnabled())

// ParseCommandBatch decodes and validates a model reply. Every failure
// (non-JSON text, schema violation, undeclared field, bad field value) is
// reported as a *llm.ParseError so the caller's retry policy treats it
// uniformly.
func ParseCommandBatch(output llm.ModelOutput) (*CommandBatchResponse, error) {
	raw := output.JSON()
	if output.Structured == nil {
		raw = []byte(llm.TrimFences(output.Raw))
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, llm.NewParseError(fmt.Sprintf("response is not valid JSON: %v", err), err)
	}

	if err := commandBatchSchema.Validate(doc); err != nil {
		return nil, llm.NewParseError(describeSchemaError(err), err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	var batch CommandBatchResponse
	if err := dec.Decode(&batch); err != nil {
		return nil, llm.NewParseError(fmt.Sprintf("response does not decode into a command batch: %v", err), err)
	}

	if err := structValidate.Struct(&batch); err != nil {
		return nil, llm.NewParseError(fmt.Sprintf("command batch failed validation: %v", err), err)
	}

	return &batch, nil
}

func describeSchemaError(err error) string {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return fmt.Sprintf("response violates schema: %v", err)
	}
	var errs []string
	collectSchemaErrors(ve, &errs)
	return "response violates schema: " + strings.Join(errs, "; ")
}

func collectSchemaErrors(ve *jsonschema.ValidationError, errs *[]string) {
	if len(ve.Causes) == 0 {
		loc := "/"
		if len(ve.InstanceLocation) > 0 {
			loc = "/" + strings.Join(ve.InstanceLocation, "/")
		}
		*errs = append(*errs, fmt.Sprintf("%s: %s", loc, ve.ErrorKind.LocalizedString(schemaPrinter)))
		return
	}
	for _, c := range ve.Causes {
		collectSchemaErrors(c, errs)
	}
}
