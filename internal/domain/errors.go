package domain

import "errors"

// ErrArtifactNotFound indicates no artifact matched a store lookup.
var ErrArtifactNotFound = errors.New("artifact not found")

// ErrIndexUnavailable indicates the vector index or embedding backend is
// not configured. Lookups degrade to lexical-only scoring instead; only
// admin index operations surface it.
var ErrIndexUnavailable = errors.New("vector index unavailable")

// UnsafeRequestError is returned when content safety rejects a request.
// It is a rejection of the ask, not a system failure.
type UnsafeRequestError struct {
	Reason string
}

func (e *UnsafeRequestError) Error() string {
	return "request rejected: " + e.Reason
}

// IsUnsafeRequest reports whether err is a safety rejection.
func IsUnsafeRequest(err error) bool {
	var unsafeErr *UnsafeRequestError
	return errors.As(err, &unsafeErr)
}
