// Package docs carries the built-in documentation served by conduct docs.
package docs

import (
	"fmt"
	"strings"
)

// Topic is one embedded article, addressed by its slug.
type Topic struct {
	Name    string
	Title   string
	Summary string
	Content string
}

// All returns the topics in display order.
func All() []Topic {
	return topics
}

// Get resolves a slug to its topic. Unknown slugs list what is available.
func Get(name string) (Topic, error) {
	for _, t := range topics {
		if t.Name == name {
			return t, nil
		}
	}
	names := make([]string, len(topics))
	for i, t := range topics {
		names[i] = t.Name
	}
	return Topic{}, fmt.Errorf("no topic %q (available: %s)", name, strings.Join(names, ", "))
}
