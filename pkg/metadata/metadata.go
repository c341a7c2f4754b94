// Package metadata keeps committed versions on the local file system.
//
// Each spec has a metadata directory holding the manifest of its latest version, its spec file and README,
// plus a snapshot of these files for every committed version:
//
//	<metadata>/<categories>/<name>/MANIFEST.yaml
//	<metadata>/<categories>/<name>/<name>.spec
//	<metadata>/<categories>/<name>/README.md
//	<metadata>/<categories>/<name>/<version>/...
//	<metadata>/TAGS.yaml
//
// The tag registry maps every tag to the snapshot of its version.
package metadata

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/docker/go-units"
	"github.com/oneconcern/datagit/pkg/core/status"
	"github.com/oneconcern/datagit/pkg/index"
	"github.com/oneconcern/datagit/pkg/manifest"
	"github.com/oneconcern/datagit/pkg/model"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	"gopkg.in/yaml.v2"
)

// Metadata is the store of committed versions for an entity type
type Metadata struct {
	layout model.Layout
	fs     afero.Fs
	now    func() time.Time
	l      *zap.Logger
}

// Version is a resolved committed version
type Version struct {
	Tag      string
	Spec     model.Spec
	Manifest *manifest.Manifest
	// Dir holds the snapshot of the version: manifest, spec file and README
	Dir string
}

// New metadata store
func New(layout model.Layout, opts ...Option) *Metadata {
	m := &Metadata{
		layout: layout,
		fs:     afero.NewOsFs(),
		now:    time.Now,
		l:      zap.NewNop(),
	}
	for _, apply := range opts {
		apply(m)
	}
	return m
}

// Tags returns the tag registry
func (m *Metadata) Tags() (model.Tags, error) {
	data, err := afero.ReadFile(m.fs, m.layout.TagsPath())
	if err != nil {
		if os.IsNotExist(err) {
			return model.Tags{}, nil
		}
		return nil, status.ErrLocalIO.Wrap(err)
	}
	tags := model.Tags{}
	if err = yaml.Unmarshal(data, &tags); err != nil {
		return nil, status.ErrConfiguration.Detailf("tag registry %s", m.layout.TagsPath()).Wrap(err)
	}
	return tags, nil
}

func (m *Metadata) saveTags(tags model.Tags) error {
	data, err := yaml.Marshal(tags)
	if err != nil {
		return err
	}
	tmp := m.layout.TagsPath() + ".new"
	if err = afero.WriteFile(m.fs, tmp, data, 0644); err != nil {
		return err
	}
	return m.fs.Rename(tmp, m.layout.TagsPath())
}

// Resolve a tag into its committed version
func (m *Metadata) Resolve(tag string) (Version, error) {
	tags, err := m.Tags()
	if err != nil {
		return Version{}, err
	}
	entry, ok := tags[tag]
	if !ok {
		return Version{}, status.ErrConfiguration.Detailf("unknown tag %q", tag)
	}
	t, err := model.ParseTag(tag)
	if err != nil {
		return Version{}, status.ErrConfiguration.Wrap(err)
	}

	dir := filepath.Join(m.layout.MetadataDir(), entry.Path)
	data, err := afero.ReadFile(m.fs, filepath.Join(dir, model.SpecFileName(t.Name)))
	if err != nil {
		return Version{}, status.ErrConfiguration.Detailf("spec file of %s", tag).Wrap(err)
	}
	spec, err := model.UnmarshalSpec(m.layout.Entity, data)
	if err != nil {
		return Version{}, status.ErrConfiguration.Detailf("spec file of %s", tag).Wrap(err)
	}
	mf, err := manifest.Load(m.fs, filepath.Join(dir, model.ManifestFile))
	if err != nil {
		return Version{}, status.ErrConfiguration.Detailf("manifest of %s", tag).Wrap(err)
	}
	return Version{Tag: tag, Spec: spec, Manifest: mf, Dir: dir}, nil
}

// Latest resolves the committed version of a spec with the highest version number
func (m *Metadata) Latest(name string) (Version, error) {
	tags, err := m.Tags()
	if err != nil {
		return Version{}, err
	}
	var (
		latest  string
		version int
	)
	for tag := range tags {
		t, err := model.ParseTag(tag)
		if err != nil || t.Name != name {
			continue
		}
		if t.Version > version {
			latest, version = tag, t.Version
		}
	}
	if latest == "" {
		return Version{}, status.ErrConfiguration.Detailf("spec %q has no committed version", name)
	}
	return m.Resolve(latest)
}

// Commit is a version ready to be recorded
type Commit struct {
	Tag      string
	Spec     model.Spec
	Manifest *manifest.Manifest
	Stats    manifest.Stats

	index  *index.Index
	readme []byte
}

// Prepare a commit from a staging index.
//
// The new manifest is the latest committed manifest of the spec, without the files deleted from
// the workspace, updated with the staged files. Sizes of contents are given by sizeOf.
func (m *Metadata) Prepare(idx *index.Index, sizeOf manifest.Sizer) (*Commit, error) {
	changed, err := idx.HasChanges()
	if err != nil {
		return nil, status.ErrLocalIO.Wrap(err)
	}
	if !changed {
		return nil, status.ErrNothingToCommit.Detailf("spec %s", idx.Spec())
	}

	staged := m.layout.IndexMetadataDir(idx.Spec())
	data, err := afero.ReadFile(m.fs, filepath.Join(staged, model.SpecFileName(idx.Spec())))
	if err != nil {
		return nil, status.ErrConfiguration.Detailf("staged spec file for %s", idx.Spec()).Wrap(err)
	}
	spec, err := model.UnmarshalSpec(m.layout.Entity, data)
	if err != nil {
		return nil, status.ErrConfiguration.Detailf("spec file %s", model.SpecFileName(idx.Spec())).Wrap(err)
	}
	if spec.Name != idx.Spec() {
		return nil, status.ErrConfiguration.Detailf("spec file %s declares name %q", model.SpecFileName(idx.Spec()), spec.Name)
	}

	tag := spec.Tag()
	tags, err := m.Tags()
	if err != nil {
		return nil, err
	}
	if _, exists := tags[tag]; exists {
		return nil, status.ErrConsistency.Detailf("tag %s already exists: increment the version in the spec file", tag)
	}

	head := filepath.Join(m.layout.MetadataPath(spec.Categories, spec.Name), model.ManifestFile)
	previous, err := manifest.Load(m.fs, head)
	if err != nil {
		return nil, status.ErrConfiguration.Detailf("manifest %s", head).Wrap(err)
	}
	fragment, err := idx.Fragment()
	if err != nil {
		return nil, status.ErrLocalIO.Wrap(err)
	}
	full, err := idx.Full()
	if err != nil {
		return nil, status.ErrLocalIO.Wrap(err)
	}

	next := manifest.FromMap(previous.Map())
	for _, pth := range full.Paths(index.Deleted) {
		next.RemovePath(pth)
	}
	next.Merge(fragment)

	stats, err := manifest.Diff(previous, next, sizeOf)
	if err != nil {
		return nil, status.ErrLocalIO.Wrap(err)
	}

	spec.Manifest.Files = model.ManifestFile
	spec.Manifest.Size = units.HumanSize(float64(stats.TotalSize))
	spec.Manifest.Amount = stats.TotalFiles

	readme, err := afero.ReadFile(m.fs, filepath.Join(staged, model.ReadmeFile))
	if err != nil && !os.IsNotExist(err) {
		return nil, status.ErrLocalIO.Wrap(err)
	}

	return &Commit{
		Tag:      tag,
		Spec:     spec,
		Manifest: next,
		Stats:    stats,
		index:    idx,
		readme:   readme,
	}, nil
}

// Save a prepared commit: the manifest, spec file and README become the latest version of the spec,
// a snapshot of the version is taken and the tag is registered. The staging index is then marked as committed.
func (m *Metadata) Save(c *Commit, message string) error {
	tags, err := m.Tags()
	if err != nil {
		return err
	}
	if _, exists := tags[c.Tag]; exists {
		return status.ErrConsistency.Detailf("tag %s already exists", c.Tag)
	}

	dir := m.layout.MetadataPath(c.Spec.Categories, c.Spec.Name)
	snapshot := filepath.Join(dir, strconv.Itoa(c.Spec.Version))
	for _, target := range []string{snapshot, dir} {
		if err = m.write(target, c); err != nil {
			return status.ErrLocalIO.Detailf("writing metadata for %s", c.Tag).Wrap(err)
		}
	}

	rel, err := filepath.Rel(m.layout.MetadataDir(), snapshot)
	if err != nil {
		return status.ErrLocalIO.Wrap(err)
	}
	tags[c.Tag] = model.TagEntry{Path: filepath.ToSlash(rel), Message: message, Timestamp: m.now().UTC()}
	if err = m.saveTags(tags); err != nil {
		return status.ErrLocalIO.Detailf("registering tag %s", c.Tag).Wrap(err)
	}

	if err = c.index.Committed(); err != nil {
		return status.ErrLocalIO.Wrap(err)
	}

	m.l.Info("version committed",
		zap.String("tag", c.Tag),
		zap.Int("files", c.Stats.TotalFiles),
		zap.Int("added", c.Stats.Added),
		zap.Int("deleted", c.Stats.Deleted),
		zap.Int("updated", c.Stats.Updated),
	)
	return nil
}

func (m *Metadata) write(dir string, c *Commit) error {
	if err := m.fs.MkdirAll(dir, 0755); err != nil {
		return err
	}
	if err := c.Manifest.Save(m.fs, filepath.Join(dir, model.ManifestFile)); err != nil {
		return err
	}
	data, err := model.MarshalSpec(c.Spec)
	if err != nil {
		return err
	}
	if err = afero.WriteFile(m.fs, filepath.Join(dir, model.SpecFileName(c.Spec.Name)), data, 0644); err != nil {
		return err
	}
	readme := filepath.Join(dir, model.ReadmeFile)
	if c.readme == nil {
		if err = m.fs.Remove(readme); err != nil && !os.IsNotExist(err) {
			return err
		}
		return nil
	}
	return afero.WriteFile(m.fs, readme, c.readme, 0644)
}
