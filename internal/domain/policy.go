package domain

// Policy holds the similarity thresholds and blend weights for cache
// decisions. The defaults are the observed production policy; they are
// exposed as configuration rather than hard-coded so they can be tuned
// without a release.
type Policy struct {
	// RequestThreshold applies to topics with at least MinMeaningfulTokens
	// meaningful tokens. Reuse requires a score strictly above it.
	RequestThreshold float64

	// ShortTopicThreshold applies to short or ambiguous topics, which need a
	// near-exact match to avoid false reuse.
	ShortTopicThreshold float64

	// ScanRelaxation is subtracted from the active threshold when no vector
	// signal is available and lexical-only scoring runs over a store scan.
	ScanRelaxation float64

	// ContentDedupThreshold is the minimum text similarity for content-level
	// dedup of freshly generated artifacts. Stricter than request-level
	// reuse since it compares finished artifacts, not paraphrased requests.
	ContentDedupThreshold float64

	// MinMeaningfulTokens is the meaningful-token count at which the relaxed
	// RequestThreshold applies instead of ShortTopicThreshold.
	MinMeaningfulTokens int

	// CandidateK is the number of nearest neighbors retrieved per lookup.
	CandidateK int

	// ScanLimit caps the store scan used when the index is unavailable.
	ScanLimit int

	// Blend weights when a vector score is available for a candidate.
	TextWeight    float64
	JaccardWeight float64
	VectorWeight  float64

	// Blend weights when only lexical signals exist.
	LexicalTextWeight    float64
	LexicalJaccardWeight float64
}

// DefaultPolicy returns the standard cache policy.
func DefaultPolicy() Policy {
	return Policy{
		RequestThreshold:      0.88,
		ShortTopicThreshold:   0.97,
		ScanRelaxation:        0.05,
		ContentDedupThreshold: 0.93,
		MinMeaningfulTokens:   3,
		CandidateK:            10,
		ScanLimit:             500,
		TextWeight:            0.55,
		JaccardWeight:         0.25,
		VectorWeight:          0.20,
		LexicalTextWeight:     0.75,
		LexicalJaccardWeight:  0.25,
	}
}
