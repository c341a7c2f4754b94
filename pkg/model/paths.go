package model

import (
	"fmt"
	"path/filepath"
)

const (
	// RepoDirName is the name of the directory holding datagit local state at the root of a repository
	RepoDirName = ".datagit"

	// ConfigFile is the name of the configuration file in the repository directory
	ConfigFile = "config.yaml"

	// ManifestFile is the name of manifest files
	ManifestFile = "MANIFEST.yaml"

	// FullIndexFile is the name of the file recording all content staged for a spec
	FullIndexFile = "INDEX.yaml"

	// ReadmeFile is a metadata companion copied along with the spec file
	ReadmeFile = "README.md"

	// SpecSuffix is the extension of spec files
	SpecSuffix = ".spec"

	// TagsFile is the name of the tag registry in the metadata directory
	TagsFile = "TAGS.yaml"

	indexDir    = "index"
	hashfsDir   = "hashfs"
	objectsDir  = "objects"
	cacheDir    = "cache"
	metadataDir = "metadata"
)

// Entity types
const (
	Dataset = "dataset"
	Labels  = "labels"
	Model   = "model"
)

// ValidateEntity checks an entity type
func ValidateEntity(entity string) error {
	switch entity {
	case Dataset, Labels, Model:
		return nil
	default:
		return fmt.Errorf("unknown entity type %q: expected one of %s, %s or %s", entity, Dataset, Labels, Model)
	}
}

// Layout locates the local state for one entity type, in a repository rooted at Root.
//
//	<root>/.datagit/<entity>/index/hashfs                     staging block store
//	<root>/.datagit/<entity>/index/metadata/<spec>/           staged manifest fragment, full index, spec file
//	<root>/.datagit/<entity>/objects                          committed block store
//	<root>/.datagit/<entity>/cache                            hard-link source for workspaces
//	<root>/.datagit/<entity>/metadata/<categories>/<name>/    committed manifest, spec file, README.md
//	<root>/<entity>/<name>/                                   workspace
type Layout struct {
	Root   string
	Entity string
}

// NewLayout builds the layout of an entity type in a repository
func NewLayout(root, entity string) (Layout, error) {
	if err := ValidateEntity(entity); err != nil {
		return Layout{}, err
	}
	return Layout{Root: root, Entity: entity}, nil
}

// RepoDir is the directory holding all local state
func (l Layout) RepoDir() string {
	return filepath.Join(l.Root, RepoDirName)
}

// ConfigPath is the location of the repository configuration file
func (l Layout) ConfigPath() string {
	return filepath.Join(l.RepoDir(), ConfigFile)
}

// EntityDir holds the local state of the entity type
func (l Layout) EntityDir() string {
	return filepath.Join(l.RepoDir(), l.Entity)
}

// IndexDir is the staging area
func (l Layout) IndexDir() string {
	return filepath.Join(l.EntityDir(), indexDir)
}

// IndexHashFS is the staging block store
func (l Layout) IndexHashFS() string {
	return filepath.Join(l.IndexDir(), hashfsDir)
}

// IndexMetadataDir holds staged metadata for a spec
func (l Layout) IndexMetadataDir(spec string) string {
	return filepath.Join(l.IndexDir(), metadataDir, spec)
}

// IndexManifest is the manifest fragment for a spec, folded into the committed manifest on commit
func (l Layout) IndexManifest(spec string) string {
	return filepath.Join(l.IndexMetadataDir(spec), ManifestFile)
}

// FullIndex records all content staged for a spec
func (l Layout) FullIndex(spec string) string {
	return filepath.Join(l.IndexMetadataDir(spec), FullIndexFile)
}

// ObjectsDir is the committed block store
func (l Layout) ObjectsDir() string {
	return filepath.Join(l.EntityDir(), objectsDir)
}

// CacheDir is the hard-link source for workspaces
func (l Layout) CacheDir() string {
	return filepath.Join(l.EntityDir(), cacheDir)
}

// MetadataDir is the root of committed metadata
func (l Layout) MetadataDir() string {
	return filepath.Join(l.EntityDir(), metadataDir)
}

// MetadataPath is the metadata directory of a spec, given its categories and name
func (l Layout) MetadataPath(categories []string, name string) string {
	return filepath.Join(append([]string{l.MetadataDir()}, append(categories, name)...)...)
}

// TagsPath is the location of the tag registry
func (l Layout) TagsPath() string {
	return filepath.Join(l.MetadataDir(), TagsFile)
}

// WorkspaceDir is where the files of a spec are added from and checked out to
func (l Layout) WorkspaceDir(name string) string {
	return filepath.Join(l.Root, l.Entity, name)
}

// SpecFileName returns the spec file name for a spec
func SpecFileName(name string) string {
	return name + SpecSuffix
}
