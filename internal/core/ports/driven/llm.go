package driven

import "context"

// LLMService provides language model classification.
//
// Implementations may include:
//   - Groq (OpenAI-compatible cloud API)
//   - OpenAI (GPT-4o family)
//   - Ollama (local models)
//
// Adapters map failures to the domain error kinds: invalid credentials
// to domain.ErrLLMAuth, exceeded deadlines to domain.ErrLLMTimeout, and
// transport or server failures to domain.ErrLLMUnavailable.
type LLMService interface {
	// Classify sends the composed prompt and returns the raw completion.
	// The call is synchronous and carries the caller's deadline.
	Classify(ctx context.Context, messages []ChatMessage, opts GenerateOptions) (*Completion, error)

	// ModelName returns the name of the LLM model being used.
	ModelName() string

	// Ping validates the service is reachable and the credentials are
	// accepted, by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// ChatMessage is a single role-tagged message block in a structured
// prompt.
type ChatMessage struct {
	// Role is one of "system" or "user".
	Role string

	// Content is the message text.
	Content string
}

// Message roles.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// GenerateOptions configures text generation behaviour.
type GenerateOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic-leaning).
	Temperature float64
}

// Completion is the generated text plus completion metadata.
type Completion struct {
	// Text is the raw model output.
	Text string

	// PromptTokens and CompletionTokens are the token counts reported
	// by the service. Informational; not used by the core logic.
	PromptTokens     int
	CompletionTokens int
}
