// Package llm provides a provider-agnostic chat model client that wraps the
// gollm library (github.com/teilomillet/gollm) behind a small request/response
// interface suited to synchronous agent loops.
//
// # Architecture
//
// The package is organized in four layers:
//
//   - Provider adapters: the ProviderAdapter interface and the GollmAdapter
//     implementation that translates to gollm's native API.
//   - Utilities: retry with exponential backoff and typed error
//     classification (IsRetryable).
//   - Core client: Client with provider routing and middleware.
//   - Conversation layer: ChatAgent, a stateful multi-turn wrapper holding
//     history and cumulative token counters.
//
// # Quick Start
//
//	backend, _ := llm.NewBackend(llm.PlatformOpenAI, "")
//	agent := llm.NewChatAgent(backend, "You are a helpful assistant.")
//
//	resp, err := agent.Step(ctx, "List the files in /tmp", nil)
//	fmt.Println(resp.Text())
//
// # Structured Output
//
// A request may carry a ResponseFormat asking for schema-conformant JSON.
// The adapter decides once, when the response is built, whether the provider
// returned a pre-parsed structured payload or raw text that the caller must
// parse; the decision is exposed as the two-variant ModelOutput type.
package llm
