package llm

// Platform identifies a model provider platform.
type Platform string

const (
	PlatformOpenAI    Platform = "openai"
	PlatformAnthropic Platform = "anthropic"
)

// ModelInfo describes a known model in the catalog.
type ModelInfo struct {
	ID            string   `json:"id"`
	Platform      Platform `json:"platform"`
	DisplayName   string   `json:"display_name"`
	ContextWindow int      `json:"context_window"`
	MaxOutput     int      `json:"max_output"`
	Aliases       []string `json:"aliases,omitempty"`
}

// Models is the built-in model catalog.
var Models = []ModelInfo{
	{
		ID: "gpt-4.1", Platform: PlatformOpenAI, DisplayName: "GPT-4.1",
		ContextWindow: 1047576, MaxOutput: 32768,
		Aliases: []string{"gpt4.1"},
	},
	{
		ID: "gpt-4o", Platform: PlatformOpenAI, DisplayName: "GPT-4o",
		ContextWindow: 128000, MaxOutput: 16384,
		Aliases: []string{"gpt4o"},
	},
	{
		ID: "gpt-4o-mini", Platform: PlatformOpenAI, DisplayName: "GPT-4o Mini",
		ContextWindow: 128000, MaxOutput: 16384,
		Aliases: []string{"gpt4o-mini"},
	},
	{
		ID: "claude-sonnet-4-5", Platform: PlatformAnthropic, DisplayName: "Claude Sonnet 4.5",
		ContextWindow: 200000, MaxOutput: 16384,
		Aliases: []string{"sonnet", "claude-sonnet"},
	},
	{
		ID: "claude-haiku-4-5", Platform: PlatformAnthropic, DisplayName: "Claude Haiku 4.5",
		ContextWindow: 200000, MaxOutput: 16384,
		Aliases: []string{"haiku", "claude-haiku"},
	},
}

// GetModelInfo returns the catalog entry for a model ID or alias, or nil if
// unknown.
func GetModelInfo(modelID string) *ModelInfo {
	for i := range Models {
		m := &Models[i]
		if m.ID == modelID {
			return m
		}
		for _, alias := range m.Aliases {
			if alias == modelID {
				return m
			}
		}
	}
	return nil
}

// ListModels returns all catalog entries for a platform, or all entries when
// platform is empty.
func ListModels(platform Platform) []ModelInfo {
	if platform == "" {
		out := make([]ModelInfo, len(Models))
		copy(out, Models)
		return out
	}
	var out []ModelInfo
	for _, m := range Models {
		if m.Platform == platform {
			out = append(out, m)
		}
	}
	return out
}

// DefaultModel returns the default model ID for a platform.
func DefaultModel(platform Platform) string {
	switch platform {
	case PlatformAnthropic:
		return "claude-sonnet-4-5"
	default:
		return "gpt-4o-mini"
	}
}

// Backend pairs a Client with a resolved platform and model. It is the unit
// handed to a ChatAgent, mirroring a model-factory result.
type Backend struct {
	Client   *Client
	Platform Platform
	Model    string
}

// BackendOption configures NewBackend.
type BackendOption func(*backendConfig)

type backendConfig struct {
	apiKey      string
	maxTokens   int
	temperature *float64
}

// WithBackendAPIKey sets the API key instead of reading it from the
// environment.
func WithBackendAPIKey(key string) BackendOption {
	return func(c *backendConfig) { c.apiKey = key }
}

// WithBackendMaxTokens sets the completion token cap.
func WithBackendMaxTokens(n int) BackendOption {
	return func(c *backendConfig) { c.maxTokens = n }
}

// WithBackendTemperature sets the sampling temperature.
func WithBackendTemperature(t float64) BackendOption {
	return func(c *backendConfig) { c.temperature = &t }
}

// NewBackend creates a model backend for the given platform. An empty model
// selects the platform default. The gollm adapter reads the API key from the
// conventional environment variable when none is supplied.
func NewBackend(platform Platform, model string, opts ...BackendOption) (*Backend, error) {
	cfg := &backendConfig{maxTokens: 4096}
	for _, opt := range opts {
		opt(cfg)
	}

	if model == "" {
		model = DefaultModel(platform)
	}
	if info := GetModelInfo(model); info != nil {
		model = info.ID
	}

	adapterOpts := []GollmAdapterOption{WithModel(model), WithMaxTokens(cfg.maxTokens)}
	if cfg.temperature != nil {
		adapterOpts = append(adapterOpts, WithTemperature(*cfg.temperature))
	}

	adapter, err := NewGollmAdapter(string(platform), cfg.apiKey, adapterOpts...)
	if err != nil {
		return nil, err
	}

	client := NewClient(WithProvider(string(platform), adapter))
	return &Backend{Client: client, Platform: platform, Model: model}, nil
}

// NewBackendFromClient wraps an existing client, typically for tests.
func NewBackendFromClient(client *Client, platform Platform, model string) *Backend {
	return &Backend{Client: client, Platform: platform, Model: model}
}
