// internal/app/features/resources/types.go
package resources

import (
	"github.com/dalemusser/kinderhub/internal/domain/models"
)

// User-facing messages.
const (
	msgLoadFailed   = "Failed to load resources. Please try again."
	msgCreated      = "Resource added successfully!"
	msgCreateFailed = "Failed to add resource. Please try again."
	msgUpdateFailed = "Failed to save resource. Please try again."
	msgDeleteFailed = "Failed to delete resource. Please try again."
	msgLikeFailed   = "Failed to like resource. Please try again."
	msgNotFound     = "Resource not found."
	msgBadID        = "Invalid resource id."
	msgBadForm      = "Invalid form data."
	msgBadSubject   = "Subject filter is invalid."
)

// card is one resource as shown in the grid. Badge is empty for a subject
// outside the known set, so clients can flag it instead of guessing a colour.
type card struct {
	ID          string              `json:"id"`
	Title       string              `json:"title"`
	Subject     models.Subject      `json:"subject"`
	Badge       string              `json:"badge,omitempty"`
	Type        models.ResourceType `json:"type"`
	URL         string              `json:"url"`
	Description string              `json:"description"`
	Tags        []string            `json:"tags"`
	Likes       int                 `json:"likes"`
}

func toCard(r models.Resource) card {
	badge, _ := r.Subject.Badge()
	tags := r.Tags
	if tags == nil {
		tags = []string{}
	}
	return card{
		ID:          r.ID.Hex(),
		Title:       r.Title,
		Subject:     r.Subject,
		Badge:       badge,
		Type:        r.Type,
		URL:         r.URL,
		Description: r.Description,
		Tags:        tags,
		Likes:       r.Likes,
	}
}

func toCards(rs []models.Resource) []card {
	out := make([]card, 0, len(rs))
	for _, r := range rs {
		out = append(out, toCard(r))
	}
	return out
}

// listResponse is the body of GET /resources.
type listResponse struct {
	Admin    bool                     `json:"admin"`
	Query    string                   `json:"q"`
	Subject  models.SubjectSelector   `json:"subject"`
	Subjects []models.SubjectSelector `json:"subjects"`
	Items    []card                   `json:"items"`
	Total    int                      `json:"total"`
	Loaded   bool                     `json:"loaded"`
	Error    string                   `json:"error,omitempty"`
}

// writeResponse is the body of a successful create/edit/like.
type writeResponse struct {
	Message  string `json:"message,omitempty"`
	Resource *card  `json:"resource,omitempty"`
	Likes    *int   `json:"likes,omitempty"`
}
