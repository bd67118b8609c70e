// Package security holds the request-hygiene layer: query validation at the
// HTTP boundary and audit logging of query outcomes.
package security

import (
	"fmt"
	"regexp"
)

const MaxQueryLength = 2000

// injectionPatterns flags obvious attempts to override the assistant's
// instructions before the query ever reaches the model.
var injectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)ignore\s+(all\s+)?previous\s+instructions`),
	regexp.MustCompile(`(?i)disregard\s+(all\s+)?previous\s+instructions`),
	regexp.MustCompile(`(?i)forget\s+(all\s+)?previous\s+instructions`),
	regexp.MustCompile(`(?i)override\s+(all\s+)?previous\s+instructions`),
	regexp.MustCompile(`(?i)new\s+context\s*:`),
	regexp.MustCompile(`(?i)change\s+context\s*:`),
	regexp.MustCompile(`(?i)instead\s+of\s+the\s+above`),
	regexp.MustCompile(`(?i)you\s+are\s+now\s+a`),
	regexp.MustCompile(`(?i)reveal\s+your\s+system\s+prompt`),
}

// QueryValidator screens user queries. An empty query is allowed: the
// conversation layer forwards it as-is.
type QueryValidator struct{}

func NewQueryValidator() *QueryValidator {
	return &QueryValidator{}
}

// ValidationResult contains validation outcome
type ValidationResult struct {
	Valid   bool
	Message string
}

// Validate checks length and injection patterns.
func (v *QueryValidator) Validate(query string) ValidationResult {
	if len(query) > MaxQueryLength {
		return ValidationResult{
			Valid:   false,
			Message: fmt.Sprintf("query too long: %d chars (max %d)", len(query), MaxQueryLength),
		}
	}
	for _, pattern := range injectionPatterns {
		if pattern.MatchString(query) {
			return ValidationResult{
				Valid:   false,
				Message: "query contains a disallowed instruction pattern",
			}
		}
	}
	return ValidationResult{Valid: true, Message: "ok"}
}
