package model

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v2"
)

// ManifestSpec describes the content of a version and where it is stored
type ManifestSpec struct {
	Store  string `yaml:"store"`
	Files  string `yaml:"files,omitempty"`
	Size   string `yaml:"size,omitempty"`
	Amount int    `yaml:"amount,omitempty"`
}

// EntitySpec describes one versioned entity
type EntitySpec struct {
	Categories []string     `yaml:"categories"`
	Name       string       `yaml:"name"`
	Version    int          `yaml:"version"`
	Manifest   ManifestSpec `yaml:"manifest"`
}

// Spec file, as in:
//
//	dataset:
//	  categories: [vision, cats]
//	  name: cats-v
//	  version: 3
//	  manifest:
//	    store: s3h://mybucket
type Spec struct {
	Entity string
	EntitySpec
}

// UnmarshalSpec decodes a spec file for some entity type
func UnmarshalSpec(entity string, data []byte) (Spec, error) {
	var doc map[string]EntitySpec
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Spec{}, err
	}
	s, ok := doc[entity]
	if !ok {
		return Spec{}, fmt.Errorf("spec file has no %q section", entity)
	}
	spec := Spec{Entity: entity, EntitySpec: s}
	return spec, spec.Validate()
}

// MarshalSpec encodes a spec file
func MarshalSpec(spec Spec) ([]byte, error) {
	return yaml.Marshal(map[string]EntitySpec{spec.Entity: spec.EntitySpec})
}

// Validate the spec
func (s Spec) Validate() error {
	if len(s.Categories) == 0 {
		return errors.New("spec must declare at least one category")
	}
	for _, c := range s.Categories {
		if c == "" || strings.Contains(c, TagSeparator) {
			return fmt.Errorf("invalid category %q", c)
		}
	}
	if s.Name == "" || strings.Contains(s.Name, TagSeparator) {
		return fmt.Errorf("invalid spec name %q", s.Name)
	}
	if s.Version < 1 {
		return fmt.Errorf("spec version must be a positive integer, got %d", s.Version)
	}
	if s.Manifest.Store == "" {
		return errors.New("spec must declare a storage backend in manifest.store")
	}
	return nil
}

// Tag of the version described by this spec
func (s Spec) Tag() string {
	return Tag{Categories: s.Categories, Name: s.Name, Version: s.Version}.String()
}
