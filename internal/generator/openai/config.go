package openai

// Config holds configuration for the OpenAI content generator.
type Config struct {
	APIKey      string  `env:"OPENAI_API_KEY"`
	Model       string  `env:"GENERATOR_MODEL" envDefault:"gpt-4o-mini"`
	Temperature float64 `env:"GENERATOR_TEMPERATURE" envDefault:"0.7"`
	MaxTokens   int     `env:"GENERATOR_MAX_TOKENS" envDefault:"4096"`
}
