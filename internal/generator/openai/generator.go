// Package openai generates educational content through the OpenAI chat API.
package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/lumenlearn/semcache/internal/domain"
)

// Generator produces educational content using an OpenAI chat model.
type Generator struct {
	client      openai.Client
	model       string
	temperature float64
	maxTokens   int
}

// NewGenerator creates a new OpenAI content generator.
func NewGenerator(config Config) (*Generator, error) {
	if config.APIKey == "" {
		return nil, errors.New("OpenAI API key is required")
	}
	if config.Model == "" {
		config.Model = "gpt-4o-mini"
	}

	return &Generator{
		client:      openai.NewClient(option.WithAPIKey(config.APIKey)),
		model:       config.Model,
		temperature: config.Temperature,
		maxTokens:   config.MaxTokens,
	}, nil
}

// Generate produces educational content for the given request.
func (g *Generator) Generate(ctx context.Context, req *domain.GenerationRequest) (*domain.GenerationResult, error) {
	if req == nil || strings.TrimSpace(req.Topic) == "" {
		return nil, errors.New("topic is required")
	}

	//nolint:exhaustruct // OpenAI SDK struct has many optional fields
	resp, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt(req)),
			openai.UserMessage(userPrompt(req)),
		},
		Model:       openai.ChatModel(g.model),
		Temperature: openai.Float(g.temperature),
		MaxTokens:   openai.Int(int64(g.maxTokens)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create completion: %w", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return nil, errors.New("no content returned")
	}

	return &domain.GenerationResult{
		Content: resp.Choices[0].Message.Content,
		Metadata: map[string]string{
			"generator": g.Name(),
			"model":     resp.Model,
		},
	}, nil
}

// Name returns the generator identifier.
func (g *Generator) Name() string {
	return "openai"
}

func systemPrompt(req *domain.GenerationRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are an expert educational content creator specializing in %s.\n", orDefault(req.Subject, "General"))
	b.WriteString("Create student-friendly educational content that is:\n")
	fmt.Fprintf(&b, "- Clear and engaging for %s level learners\n", orDefault(req.Difficulty, "Intermediate"))
	b.WriteString("- Well-structured with bullet points and explanations\n")
	b.WriteString("- Includes real-world examples and analogies\n")
	b.WriteString("- Uses simple language while maintaining accuracy\n")
	b.WriteString("- Organized for easy studying and note-taking\n\n")
	fmt.Fprintf(&b, "Content Type: %s\n", orDefault(req.ContentType, "Lesson"))
	fmt.Fprintf(&b, "Subject Area: %s\n", orDefault(req.Subject, "General"))
	fmt.Fprintf(&b, "Difficulty Level: %s\n", orDefault(req.Difficulty, "Intermediate"))
	if len(req.LearningObjectives) > 0 {
		fmt.Fprintf(&b, "Focus on these learning objectives: %s\n", strings.Join(req.LearningObjectives, ", "))
	}
	return b.String()
}

func userPrompt(req *domain.GenerationRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create comprehensive, student-friendly study notes about: %s\n\n", req.Topic)
	b.WriteString("Structure the content as:\n")
	b.WriteString("1. **Overview** - Brief introduction and why this topic matters\n")
	b.WriteString("2. **Key Concepts** - Main ideas broken down into digestible pieces\n")
	b.WriteString("3. **Detailed Explanations** - Step-by-step explanations with examples\n")
	b.WriteString("4. **Real-World Applications** - How this applies in practice\n")
	b.WriteString("5. **Study Tips** - How to remember and apply this knowledge\n")
	b.WriteString("6. **Summary** - Key takeaways for review\n\n")
	fmt.Fprintf(&b, "Use bullet points, clear headings, and student-friendly language for %s level.\n",
		orDefault(req.Difficulty, "Intermediate"))
	b.WriteString("Include mnemonics or memory aids where helpful.\n")
	return b.String()
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
