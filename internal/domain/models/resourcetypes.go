// internal/domain/models/resourcetypes.go
package models

import (
	"errors"
	"fmt"
)

// ResourceType is the kind of material a resource links to.
//
// These values are stored in the database as-is and shown verbatim on the
// cards, so they double as display labels.
type ResourceType string

const (
	ResourceTypeWorksheet ResourceType = "Worksheet"
	ResourceTypeVideo     ResourceType = "Video"
	ResourceTypeGame      ResourceType = "Game"
	ResourceTypeActivity  ResourceType = "Activity"
	ResourceTypeArticle   ResourceType = "Article"
)

// ResourceTypes is the full set of allowed resource types.
//
// This slice is the single source of truth for validation and for the
// type select menu.
var ResourceTypes = []ResourceType{
	ResourceTypeWorksheet,
	ResourceTypeVideo,
	ResourceTypeGame,
	ResourceTypeActivity,
	ResourceTypeArticle,
}

// DefaultResourceType preselects the type menu on the create form.
const DefaultResourceType = ResourceTypeWorksheet

var ErrUnknownResourceType = errors.New("unknown resource type")

// ParseResourceType maps a submitted value onto the closed type set.
func ParseResourceType(s string) (ResourceType, error) {
	switch ResourceType(s) {
	case ResourceTypeWorksheet, ResourceTypeVideo, ResourceTypeGame, ResourceTypeActivity, ResourceTypeArticle:
		return ResourceType(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownResourceType, s)
}
