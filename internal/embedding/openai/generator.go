// Package openai generates text embeddings through the OpenAI API.
package openai

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	// Embedding dimensions for different OpenAI models.
	embeddingDimensionStandard = 1536 // Ada v2 and Small v3
	embeddingDimensionLarge    = 3072 // Large v3
)

// Generator generates embeddings using OpenAI. Vectors are L2-normalized so
// inner-product search is equivalent to cosine similarity.
type Generator struct {
	client openai.Client
	model  string
}

// NewGenerator creates a new OpenAI embedding generator.
func NewGenerator(config Config) (*Generator, error) {
	if config.APIKey == "" {
		return nil, errors.New("OpenAI API key is required")
	}

	if config.Model == "" {
		config.Model = string(openai.EmbeddingModelTextEmbeddingAda002)
	}

	return &Generator{
		client: openai.NewClient(option.WithAPIKey(config.APIKey)),
		model:  config.Model,
	}, nil
}

// Generate creates a vector embedding from text.
func (g *Generator) Generate(ctx context.Context, text string) ([]float64, error) {
	if text == "" {
		return nil, errors.New("text cannot be empty")
	}

	vectors, err := g.GenerateBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// GenerateBatch creates vector embeddings for multiple texts in one request.
func (g *Generator) GenerateBatch(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, errors.New("texts cannot be empty")
	}
	for _, text := range texts {
		if text == "" {
			return nil, errors.New("text cannot be empty")
		}
	}

	//nolint:exhaustruct // OpenAI SDK struct has many optional fields
	resp, err := g.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: texts,
		},
		Model: openai.EmbeddingModel(g.model),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create embeddings: %w", err)
	}

	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Data))
	}

	vectors := make([][]float64, len(resp.Data))
	for i, data := range resp.Data {
		vectors[i] = normalize(data.Embedding)
	}
	return vectors, nil
}

// Name returns the generator identifier.
func (g *Generator) Name() string {
	return "openai"
}

// Dimension returns the vector dimension.
func (g *Generator) Dimension() int {
	switch g.model {
	case string(openai.EmbeddingModelTextEmbeddingAda002),
		string(openai.EmbeddingModelTextEmbedding3Small):
		return embeddingDimensionStandard
	case string(openai.EmbeddingModelTextEmbedding3Large):
		return embeddingDimensionLarge
	default:
		return embeddingDimensionStandard
	}
}

func normalize(vector []float64) []float64 {
	var sum float64
	for _, v := range vector {
		sum += v * v
	}
	if sum == 0 {
		return vector
	}
	norm := math.Sqrt(sum)
	normalized := make([]float64, len(vector))
	for i, v := range vector {
		normalized[i] = v / norm
	}
	return normalized
}
