package flags

import (
	"time"

	"github.com/spf13/pflag"

	"github.com/stratboard/stratboard/pkg/ai"
)

// AIFlags contains flags for the assistant's completion endpoint.
type AIFlags struct {
	Endpoint          string
	Model             string
	CompletionTimeout time.Duration
}

func NewAIFlags() *AIFlags {
	return &AIFlags{
		Model:             "gpt-3.5-turbo",
		CompletionTimeout: time.Minute,
	}
}

func (f *AIFlags) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&f.Endpoint, "ai-endpoint", f.Endpoint, "URL for an OpenAI-compatible endpoint. Set OPENAI_API_KEY to specify an API key.")
	fs.StringVar(&f.Model, "ai-model", f.Model, "The AI model used by the assistant")
	fs.DurationVar(&f.CompletionTimeout, "ai-completion-timeout", f.CompletionTimeout, "Upper bound on a single completion request")
}

func (f *AIFlags) GetLLMClient() *ai.LLMClient {
	return ai.NewLLMClient(f.Endpoint, f.Model)
}
