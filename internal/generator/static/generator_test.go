package static

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lumenlearn/semcache/internal/domain"
)

func TestGenerator_Generate(t *testing.T) {
	g := NewGenerator()
	ctx := context.Background()

	t.Run("nil request", func(t *testing.T) {
		_, err := g.Generate(ctx, nil)
		require.Error(t, err)
	})

	t.Run("empty topic", func(t *testing.T) {
		_, err := g.Generate(ctx, &domain.GenerationRequest{Topic: "   "})
		require.Error(t, err)
	})

	t.Run("deterministic output", func(t *testing.T) {
		req := &domain.GenerationRequest{
			Topic:              "Photosynthesis",
			Difficulty:         "Beginner",
			Subject:            "Biology",
			LearningObjectives: []string{"Explain light reactions"},
		}

		first, err := g.Generate(ctx, req)
		require.NoError(t, err)
		second, err := g.Generate(ctx, req)
		require.NoError(t, err)

		require.Equal(t, first.Content, second.Content)
		require.Contains(t, first.Content, "Photosynthesis")
		require.Contains(t, first.Content, "Explain light reactions")
		require.Equal(t, "static", first.Metadata["generator"])
	})
}
