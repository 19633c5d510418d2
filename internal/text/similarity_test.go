package text_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lumenlearn/semcache/internal/text"
)

func TestSimilarity_IdenticalAfterNormalization(t *testing.T) {
	require.InDelta(t, 1.0, text.Similarity("Photosynthesis Basics", "photosynthesis   basics"), 1e-9)
	require.InDelta(t, 1.0, text.Similarity("", ""), 1e-9)
}

func TestSimilarity_DisjointVocabulary(t *testing.T) {
	require.InDelta(t, 0.0, text.Similarity("quantum entanglement", "french revolution"), 1e-9)
}

func TestSimilarity_Symmetric(t *testing.T) {
	a := "photosynthesis in green plants"
	b := "how plants make food through photosynthesis"

	require.InDelta(t, text.Similarity(a, b), text.Similarity(b, a), 1e-9)
}

func TestSimilarity_PartialOverlapBetweenExtremes(t *testing.T) {
	sim := text.Similarity("photosynthesis in plants", "photosynthesis in algae")

	require.Greater(t, sim, 0.0)
	require.Less(t, sim, 1.0)
}

func TestSimilarity_EmptyAgainstNonEmpty(t *testing.T) {
	require.InDelta(t, 0.0, text.Similarity("", "photosynthesis"), 1e-9)
}

func TestTokenJaccard(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical token sets", "plants make food", "plants make food", 1.0},
		{"disjoint token sets", "calculus limits", "roman empire", 0.0},
		{"half overlap", "photosynthesis plants", "photosynthesis algae", 1.0 / 3.0},
		{"empty side", "", "photosynthesis", 0.0},
		{"stop words only", "the and of", "the and of", 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.InDelta(t, tt.want, text.TokenJaccard(tt.a, tt.b), 1e-9)
		})
	}
}

func TestTokenJaccard_Symmetric(t *testing.T) {
	a := "stacks queues and linked lists"
	b := "linked lists in memory"

	require.InDelta(t, text.TokenJaccard(a, b), text.TokenJaccard(b, a), 1e-9)
}
