package text

import "math"

// Number of documents in the pairwise TF-IDF "corpus". IDF is smoothed the
// same way sklearn's TfidfVectorizer smooths it: ln((1+n)/(1+df)) + 1.
const pairCorpusSize = 2

// Similarity computes a TF-IDF-weighted cosine similarity between two raw
// strings. It is symmetric, returns 1.0 when the strings normalize
// identically, and 0.0 when their vocabularies are disjoint.
func Similarity(a, b string) float64 {
	if Normalize(a) == Normalize(b) {
		return 1.0
	}

	tokensA := Tokens(a)
	tokensB := Tokens(b)
	if len(tokensA) == 0 || len(tokensB) == 0 {
		return 0.0
	}

	tfA := termCounts(tokensA)
	tfB := termCounts(tokensB)

	var dot, normA, normB float64
	for term, ca := range tfA {
		idf := smoothedIDF(documentFrequency(term, tfA, tfB))
		wa := float64(ca) * idf
		normA += wa * wa
		if cb, ok := tfB[term]; ok {
			dot += wa * float64(cb) * idf
		}
	}
	for term, cb := range tfB {
		idf := smoothedIDF(documentFrequency(term, tfA, tfB))
		wb := float64(cb) * idf
		normB += wb * wb
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}
	return clamp01(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}

// TokenJaccard computes |A ∩ B| / |A ∪ B| over normalized, stop-word-filtered
// token sets. Returns 0.0 if either token set is empty.
func TokenJaccard(a, b string) float64 {
	setA := tokenSet(Tokens(a))
	setB := tokenSet(Tokens(b))
	if len(setA) == 0 || len(setB) == 0 {
		return 0.0
	}

	intersection := 0
	for tok := range setA {
		if setB[tok] {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

func termCounts(tokens []string) map[string]int {
	counts := make(map[string]int, len(tokens))
	for _, tok := range tokens {
		counts[tok]++
	}
	return counts
}

func tokenSet(tokens []string) map[string]bool {
	set := make(map[string]bool, len(tokens))
	for _, tok := range tokens {
		set[tok] = true
	}
	return set
}

func documentFrequency(term string, tfA, tfB map[string]int) int {
	df := 0
	if _, ok := tfA[term]; ok {
		df++
	}
	if _, ok := tfB[term]; ok {
		df++
	}
	return df
}

func smoothedIDF(df int) float64 {
	return math.Log(float64(1+pairCorpusSize)/float64(1+df)) + 1
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
