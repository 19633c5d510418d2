// Package static provides a testing generator that produces deterministic
// content without external API calls, for development and tests.
package static

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/lumenlearn/semcache/internal/domain"
	"github.com/lumenlearn/semcache/internal/observability"
)

const generatorName = "static"

// Generator implements the domain.Generator interface with deterministic
// output. Identical requests always produce identical content, which makes
// cache and dedup behavior reproducible.
type Generator struct{}

// NewGenerator creates a new static generator.
// No configuration is required as this generator operates entirely in-memory.
func NewGenerator() *Generator {
	return &Generator{}
}

// Generate produces deterministic content for the given request.
func (g *Generator) Generate(ctx context.Context, req *domain.GenerationRequest) (*domain.GenerationResult, error) {
	if req == nil {
		return nil, errors.New("request cannot be nil")
	}
	if strings.TrimSpace(req.Topic) == "" {
		return nil, errors.New("topic is required")
	}

	logger := observability.FromContext(ctx)
	logger.Debug("generating static content")

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", req.Topic)
	fmt.Fprintf(&b, "## Overview\n\nAn introduction to %s", req.Topic)
	if req.Subject != "" {
		fmt.Fprintf(&b, " in %s", req.Subject)
	}
	b.WriteString(".\n\n")
	if len(req.LearningObjectives) > 0 {
		b.WriteString("## Learning Objectives\n\n")
		for _, objective := range req.LearningObjectives {
			fmt.Fprintf(&b, "- %s\n", objective)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "## Key Concepts\n\nCore ideas behind %s, explained", req.Topic)
	if req.Difficulty != "" {
		fmt.Fprintf(&b, " at %s level", req.Difficulty)
	}
	b.WriteString(".\n\n## Summary\n\nReview the key concepts above.\n")

	return &domain.GenerationResult{
		Content: b.String(),
		Metadata: map[string]string{
			"generator": generatorName,
		},
	}, nil
}

// Name returns the generator identifier.
func (g *Generator) Name() string {
	return generatorName
}
