// Package terminus implements a terminal-automation agent: given a
// natural-language instruction and a live terminal session, it drives the
// shell to completion through a batched command protocol.
//
// Each episode the agent asks the model for a CommandBatchResponse: an
// analysis of the terminal state, an ordered batch of keystrokes, and a
// completion flag. The reply is validated against a closed JSON schema and
// the batch played into the session with per-command timeouts; the resulting
// terminal contents become the next prompt. The loop ends when the model
// declares the task complete or the episode budget runs out.
//
// The package also ships a tool-calling DeveloperAgent variant that exposes
// the terminal as a tool instead of a structured protocol, for models that
// drive tasks through function calls.
package terminus
