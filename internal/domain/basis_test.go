package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildBasis(t *testing.T) {
	t.Run("topic only", func(t *testing.T) {
		basis := BuildBasis(&GenerationRequest{Topic: "  Photosynthesis  Basics "})
		require.Equal(t, "photosynthesis basics", basis)
	})

	t.Run("includes learning objectives", func(t *testing.T) {
		basis := BuildBasis(&GenerationRequest{
			Topic:              "Photosynthesis",
			LearningObjectives: []string{"Explain light reactions", "  "},
		})
		require.Equal(t, "photosynthesis explain light reactions", basis)
	})

	t.Run("excludes difficulty and subject", func(t *testing.T) {
		a := BuildBasis(&GenerationRequest{Topic: "Cells", Difficulty: "Beginner", Subject: "Biology"})
		b := BuildBasis(&GenerationRequest{Topic: "Cells", Difficulty: "Advanced", Subject: "Chemistry"})
		require.Equal(t, a, b)
	})
}

func TestBuildQuery(t *testing.T) {
	t.Run("joins all fields", func(t *testing.T) {
		query := BuildQuery(&GenerationRequest{
			Topic:              "Cells",
			Difficulty:         "Beginner",
			Subject:            "Biology",
			ContentType:        "Lesson",
			LearningObjectives: []string{"Name the organelles"},
		})
		require.Equal(t, "Cells Beginner Biology Lesson Name the organelles", query)
	})

	t.Run("skips empty fields", func(t *testing.T) {
		query := BuildQuery(&GenerationRequest{Topic: "Cells"})
		require.Equal(t, "Cells", query)
	})
}
