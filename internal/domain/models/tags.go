package models

import "strings"

// ParseTags splits a comma-separated tag field. Blank entries are dropped;
// order and duplicates are kept as typed.
func ParseTags(raw string) []string {
	tags := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		if t := strings.TrimSpace(part); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
