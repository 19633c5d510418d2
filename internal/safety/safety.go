// Package safety implements the content-safety filter consumed by the cache
// orchestrator: banned-pattern moderation, PII detection, and PII redaction.
// Redaction runs on every content return path, including cached artifacts,
// so historical content is covered by current masking rules.
package safety

import (
	"regexp"
	"sort"
	"strings"
)

// Verdict is the outcome of a moderation check.
type Verdict struct {
	Safe   bool   `json:"safe"`
	Reason string `json:"reason,omitempty"`
}

// Patterns are kept conservative to avoid excessive false positives.
var (
	bannedPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:how to (?:make|build|create))\s+(?:a\s+)?(?:bomb|weapon|explosive)\b`),
		regexp.MustCompile(`(?i)\b(?:hate|violence|explicit)\b`),
		regexp.MustCompile(`(?i)\b(?:drugs|alcohol|gambling)\b`),
		regexp.MustCompile(`(?i)\b(?:suicide|self-harm)\b`),
	}

	emailRe = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	phoneRe = regexp.MustCompile(`\b\+?\d{1,3}[-.\s]?\(?\d{2,4}\)?[-.\s]?\d{3,4}[-.\s]?\d{3,4}\b`)
	ssnRe   = regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`)
	ibanRe  = regexp.MustCompile(`\b[A-Z]{2}\d{2}[A-Z0-9]{11,30}\b`)
	cardRe  = regexp.MustCompile(`\b(?:\d[ -]?){13,19}\b`)

	nonDigitRe = regexp.MustCompile(`[^\d]`)
)

// Filter implements the domain.ContentSafety capability.
type Filter struct{}

// NewFilter creates a content-safety filter.
func NewFilter() *Filter {
	return &Filter{}
}

// Check moderates text for educational use. Unsafe text yields a verdict with
// the first matched category as the reason.
func (f *Filter) Check(textContent string) Verdict {
	for _, pattern := range bannedPatterns {
		if pattern.MatchString(textContent) {
			return Verdict{
				Safe:   false,
				Reason: "request contains inappropriate or unsafe material",
			}
		}
	}
	return Verdict{Safe: true}
}

// DetectPII returns detected PII grouped by type. Types: email, phone, ssn,
// credit_card, iban.
func (f *Filter) DetectPII(textContent string) map[string][]string {
	if textContent == "" {
		return map[string][]string{}
	}

	found := map[string][]string{}
	addMatches := func(kind string, matches []string) {
		if len(matches) > 0 {
			found[kind] = append(found[kind], matches...)
		}
	}

	addMatches("email", emailRe.FindAllString(textContent, -1))
	addMatches("ssn", ssnRe.FindAllString(textContent, -1))
	addMatches("iban", ibanRe.FindAllString(textContent, -1))

	// Credit cards: 13-19 digit sequences validated with Luhn before they
	// count, so course codes and page numbers do not trip detection.
	for _, m := range cardRe.FindAllString(textContent, -1) {
		if luhnValid(nonDigitRe.ReplaceAllString(m, "")) {
			found["credit_card"] = append(found["credit_card"], m)
		}
	}

	for _, m := range phoneRe.FindAllString(textContent, -1) {
		digits := nonDigitRe.ReplaceAllString(m, "")
		if len(digits) >= 7 && !luhnValid(digits) {
			found["phone"] = append(found["phone"], m)
		}
	}

	return found
}

// Redact replaces detected PII with type-specific masks:
// email -> [REDACTED:EMAIL], phone -> [REDACTED:PHONE], ssn -> ***-**-****,
// credit card -> **** **** **** <last4>, iban -> [REDACTED:IBAN].
func (f *Filter) Redact(textContent string) string {
	if textContent == "" {
		return textContent
	}

	out := emailRe.ReplaceAllString(textContent, "[REDACTED:EMAIL]")
	out = ssnRe.ReplaceAllString(out, "***-**-****")
	out = ibanRe.ReplaceAllString(out, "[REDACTED:IBAN]")

	out = cardRe.ReplaceAllStringFunc(out, func(raw string) string {
		digits := nonDigitRe.ReplaceAllString(raw, "")
		if !luhnValid(digits) {
			return raw
		}
		return "**** **** **** " + digits[len(digits)-4:]
	})

	out = phoneRe.ReplaceAllStringFunc(out, func(raw string) string {
		digits := nonDigitRe.ReplaceAllString(raw, "")
		if len(digits) < 7 {
			return raw
		}
		return "[REDACTED:PHONE]"
	})

	return out
}

// luhnValid validates a digit string with the Luhn checksum (credit cards).
func luhnValid(digits string) bool {
	if len(digits) < 13 || len(digits) > 19 {
		return false
	}

	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		c := digits[i]
		if c < '0' || c > '9' {
			return false
		}
		d := int(c - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

// Describe summarizes detected PII types for rejection messages.
func Describe(pii map[string][]string) string {
	if len(pii) == 0 {
		return ""
	}
	kinds := make([]string, 0, len(pii))
	for kind := range pii {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return "request contains personal or sensitive information (" + strings.Join(kinds, ", ") + ")"
}
