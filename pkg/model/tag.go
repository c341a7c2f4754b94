package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TagSeparator joins the components of a tag
const TagSeparator = "__"

// Tag identifies a committed version: categories__name__version
type Tag struct {
	Categories []string
	Name       string
	Version    int
}

func (t Tag) String() string {
	parts := append(append([]string{}, t.Categories...), t.Name, strconv.Itoa(t.Version))
	return strings.Join(parts, TagSeparator)
}

// ParseTag splits a tag into its components
func ParseTag(tag string) (Tag, error) {
	parts := strings.Split(tag, TagSeparator)
	if len(parts) < 3 {
		return Tag{}, fmt.Errorf("invalid tag %q: expected categories%sname%sversion", tag, TagSeparator, TagSeparator)
	}
	version, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil || version < 1 {
		return Tag{}, fmt.Errorf("invalid tag %q: version must be a positive integer", tag)
	}
	for _, part := range parts[:len(parts)-1] {
		if part == "" {
			return Tag{}, fmt.Errorf("invalid tag %q: empty component", tag)
		}
	}
	return Tag{
		Categories: parts[:len(parts)-2],
		Name:       parts[len(parts)-2],
		Version:    version,
	}, nil
}

// TagEntry records a committed version in the tag registry
type TagEntry struct {
	Path      string    `yaml:"path"`
	Message   string    `yaml:"message,omitempty"`
	Timestamp time.Time `yaml:"timestamp"`
}

// Tags is the tag registry
type Tags map[string]TagEntry
