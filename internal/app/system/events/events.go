// Package events publishes catalog change notifications so other services
// (search indexers, newsletters, ...) can follow writes without polling the
// store. Publishing is best-effort: callers log failures and carry on.
package events

import (
	"context"
	"time"

	"github.com/dalemusser/kinderhub/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Kind is the routing key of a change event.
type Kind string

const (
	ResourceCreated Kind = "resource.created"
	ResourceUpdated Kind = "resource.updated"
	ResourceDeleted Kind = "resource.deleted"
	ResourceLiked   Kind = "resource.liked"
)

// Event is the JSON body published for each successful write.
type Event struct {
	ID         string         `json:"event_id"`
	Kind       Kind           `json:"kind"`
	ResourceID string         `json:"resource_id"`
	Title      string         `json:"title,omitempty"`
	Subject    models.Subject `json:"subject,omitempty"`
	Likes      *int           `json:"likes,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// NewEvent stamps a fresh event id and time.
func NewEvent(kind Kind, id primitive.ObjectID) Event {
	return Event{
		ID:         uuid.NewString(),
		Kind:       kind,
		ResourceID: id.Hex(),
		OccurredAt: time.Now().UTC(),
	}
}

// WithResource copies the descriptive fields of r onto e.
func (e Event) WithResource(r models.Resource) Event {
	e.Title = r.Title
	e.Subject = r.Subject
	return e
}

// Publisher delivers change events.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Nop discards every event. It is used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }
