package domain

import (
	"strings"

	"github.com/lumenlearn/semcache/internal/text"
)

// BuildBasis derives the canonical similarity key for a request: topic plus
// learning objectives only. Difficulty, subject, and content type are
// deliberately excluded so two requests for the same topic at different
// difficulty levels do not automatically cache-collide, while two phrasings
// of the same ask do.
func BuildBasis(req *GenerationRequest) string {
	parts := make([]string, 0, 1+len(req.LearningObjectives))
	parts = append(parts, req.Topic)
	for _, obj := range req.LearningObjectives {
		if strings.TrimSpace(obj) != "" {
			parts = append(parts, obj)
		}
	}
	return text.Normalize(strings.Join(parts, " "))
}

// BuildQuery builds the full query string over all request fields. Used for
// moderation and logging, not as the cache key, to avoid fragmenting the
// cache on incidental parameter differences.
func BuildQuery(req *GenerationRequest) string {
	parts := []string{req.Topic, req.Difficulty, req.Subject, req.ContentType}
	parts = append(parts, req.LearningObjectives...)

	nonEmpty := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.TrimSpace(strings.Join(nonEmpty, " "))
}
