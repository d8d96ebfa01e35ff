package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Resource is a single catalog entry: an external learning resource
// (worksheet, video, game, ...) that educators open through its URL.
type Resource struct {
	ID    primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title string             `bson:"title" json:"title"`

	Subject Subject      `bson:"subject" json:"subject"`
	Type    ResourceType `bson:"type" json:"type"`

	URL         string   `bson:"url" json:"url"`
	Description string   `bson:"description" json:"description"`
	Tags        []string `bson:"tags" json:"tags"`
	Likes       int      `bson:"likes" json:"likes"`

	// Stamped by the store on create/update; never sent to clients.
	CreatedAt time.Time  `bson:"created_at" json:"-"`
	UpdatedAt *time.Time `bson:"updated_at,omitempty" json:"-"`
}

// ResourceInput is the data supplied when creating a Resource.
type ResourceInput struct {
	Title       string
	Subject     Subject
	Type        ResourceType
	URL         string
	Description string
	Tags        []string
	Likes       int
}

// Resource builds the in-memory record for a freshly created entry.
// Likes never go below zero.
func (in ResourceInput) Resource(id primitive.ObjectID) Resource {
	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}
	return Resource{
		ID:          id,
		Title:       in.Title,
		Subject:     in.Subject,
		Type:        in.Type,
		URL:         in.URL,
		Description: in.Description,
		Tags:        append([]string{}, tags...),
		Likes:       max(in.Likes, 0),
	}
}

// ResourcePatch names the fields an update overwrites. Nil fields are
// left untouched.
type ResourcePatch struct {
	Title       *string
	Subject     *Subject
	Type        *ResourceType
	URL         *string
	Description *string
	Tags        []string // nil means unchanged; empty means cleared
	Likes       *int
}

// FullPatch turns a complete edit form into a patch that overwrites every
// user-editable field. Likes are not part of the edit form.
func FullPatch(in ResourceInput) ResourcePatch {
	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}
	return ResourcePatch{
		Title:       &in.Title,
		Subject:     &in.Subject,
		Type:        &in.Type,
		URL:         &in.URL,
		Description: &in.Description,
		Tags:        tags,
	}
}

// IsEmpty reports whether the patch changes nothing.
func (p ResourcePatch) IsEmpty() bool {
	return p.Title == nil && p.Subject == nil && p.Type == nil &&
		p.URL == nil && p.Description == nil && p.Tags == nil && p.Likes == nil
}

// Merge returns old with every field named in p overwritten.
func Merge(old Resource, p ResourcePatch) Resource {
	out := old
	if p.Title != nil {
		out.Title = *p.Title
	}
	if p.Subject != nil {
		out.Subject = *p.Subject
	}
	if p.Type != nil {
		out.Type = *p.Type
	}
	if p.URL != nil {
		out.URL = *p.URL
	}
	if p.Description != nil {
		out.Description = *p.Description
	}
	if p.Tags != nil {
		out.Tags = append([]string{}, p.Tags...)
	}
	if p.Likes != nil {
		out.Likes = max(*p.Likes, 0)
	}
	return out
}
