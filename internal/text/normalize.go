// Package text provides canonicalization, hashing, and lightweight lexical
// similarity helpers used by the content cache. All comparisons in the cache
// operate on the canonical form produced by Normalize, so that incidental
// differences in casing, whitespace, or punctuation spacing never defeat
// exact-match short circuits.
package text

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
)

var (
	whitespaceRe  = regexp.MustCompile(`\s+`)
	punctSpaceRe  = regexp.MustCompile(`\s*([,;:.!?])\s*`)
	tokenSplitRe  = regexp.MustCompile(`[^a-z0-9]+`)
	zeroWidthRepl = strings.NewReplacer("\u200b", "", "\ufeff", "")
)

// Normalize canonicalizes text for hashing and lexical comparison:
// lower-case, trimmed, internal whitespace collapsed to single spaces,
// zero-width/BOM characters removed, and punctuation spacing normalized to a
// single trailing space. Idempotent: Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	t := zeroWidthRepl.Replace(s)
	t = strings.ToLower(strings.TrimSpace(t))
	t = whitespaceRe.ReplaceAllString(t, " ")
	t = punctSpaceRe.ReplaceAllString(t, "$1 ")
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(t, " "))
}

// Hash returns the SHA-256 hex digest of the normalized text. Two texts that
// normalize identically hash identically, which makes the digest usable as a
// zero-false-positive duplicate key.
func Hash(s string) string {
	sum := sha256.Sum256([]byte(Normalize(s)))
	return hex.EncodeToString(sum[:])
}

// Tokens splits normalized text into lower-case alphanumeric tokens with
// stop words removed.
func Tokens(s string) []string {
	parts := tokenSplitRe.Split(Normalize(s), -1)
	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" || stopWords[p] {
			continue
		}
		tokens = append(tokens, p)
	}
	return tokens
}

// MeaningfulTokens counts tokens that carry enough signal to key a cache
// entry: non-stop-word tokens of three or more characters.
func MeaningfulTokens(s string) int {
	n := 0
	for _, tok := range Tokens(s) {
		if len(tok) >= 3 {
			n++
		}
	}
	return n
}
