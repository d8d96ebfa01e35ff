// Package filter derives the visible subset of the catalog from the two
// filter inputs: a subject selector and a free-text query.
//
// Matching is a case-insensitive substring test on title or description.
// There is no tokenizing, ranking or caching; order is preserved from the
// input slice.
package filter

import (
	"strings"

	"github.com/dalemusser/kinderhub/internal/domain/models"
)

// Criteria holds the filter inputs.
type Criteria struct {
	Subject models.SubjectSelector
	Query   string
}

// All is the identity filter.
var All = Criteria{Subject: models.SelectAll}

// Apply returns, in order, the resources that pass c. The result is a new
// slice; items is not modified.
func Apply(items []models.Resource, c Criteria) []models.Resource {
	q := strings.ToLower(c.Query)
	out := make([]models.Resource, 0, len(items))
	for _, r := range items {
		if matches(r, c.Subject, q) {
			out = append(out, r)
		}
	}
	return out
}

// Matches reports whether a single resource passes c.
func Matches(r models.Resource, c Criteria) bool {
	return matches(r, c.Subject, strings.ToLower(c.Query))
}

func matches(r models.Resource, sel models.SubjectSelector, lowerQuery string) bool {
	if sel == "" {
		sel = models.SelectAll
	}
	if !sel.Admits(r.Subject) {
		return false
	}
	if lowerQuery == "" {
		return true
	}
	return strings.Contains(strings.ToLower(r.Title), lowerQuery) ||
		strings.Contains(strings.ToLower(r.Description), lowerQuery)
}
