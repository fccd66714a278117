package id

import (
	"strings"

	"github.com/google/uuid"
)

// Generator produces fresh note identifiers.
type Generator func() string

// New returns a random (version 4) UUID string.
func New() string {
	return uuid.NewString()
}

// IsUUID checks if a string parses as a UUID. Canonical, braced, urn and
// bare 32 hex digit forms are all accepted.
func IsUUID(s string) bool {
	_, err := uuid.Parse(strings.TrimSpace(s))
	return err == nil
}

// Predicate decides whether a link stem names a note identifier.
type Predicate func(stem string) bool

// DefaultMinLen is the stem length above which a stem counts as
// identifier-like even when it is not a UUID.
const DefaultMinLen = 8

// IdentifierLike returns the predicate used by the auditor: a stem is an
// identifier when it is a UUID or longer than minLen characters. Not every
// internal link uses strict UUID syntax, so this is an approximation.
func IdentifierLike(minLen int) Predicate {
	if minLen < 0 {
		minLen = DefaultMinLen
	}
	return func(stem string) bool {
		return IsUUID(stem) || len(stem) > minLen
	}
}

// StripSuffix removes suffix from s when present.
func StripSuffix(s, suffix string) string {
	if suffix == "" {
		return s
	}
	return strings.TrimSuffix(s, suffix)
}
