// Package manifest maps content keys to the workspace paths realized by that content.
//
// A manifest is serialized as YAML, one entry per key with the sorted list of its paths:
//
//	zdj7WjdojNAZN53Wf29rPssZamfbC6MVerzcGwd9tNciMpsQh:
//	- images/cat.png
//	- images/kitten.png
package manifest

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v2"
)

type pathSet map[string]struct{}

// Manifest is a mapping of content key to a set of relative paths.
//
// A path belongs to at most one key. Keys left with no path are dropped.
type Manifest struct {
	entries map[string]pathSet
	files   map[string]string
}

// New empty manifest
func New() *Manifest {
	return &Manifest{
		entries: make(map[string]pathSet),
		files:   make(map[string]string),
	}
}

// FromMap builds a manifest from a key to paths mapping
func FromMap(m map[string][]string) *Manifest {
	res := New()
	for key, paths := range m {
		for _, p := range paths {
			res.Add(key, p)
		}
	}
	return res
}

// Load a manifest file. A missing file yields an empty manifest.
func Load(fs afero.Fs, pth string) (*Manifest, error) {
	data, err := afero.ReadFile(fs, pth)
	if err != nil {
		if os.IsNotExist(err) {
			return New(), nil
		}
		return nil, err
	}
	var raw map[string][]string
	if err = yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return FromMap(raw), nil
}

// Save the manifest to a file. The file is replaced atomically.
func (m *Manifest) Save(fs afero.Fs, pth string) error {
	data, err := yaml.Marshal(m.Map())
	if err != nil {
		return err
	}
	if err = fs.MkdirAll(filepath.Dir(pth), 0755); err != nil {
		return err
	}
	tmp := pth + ".new"
	if err = afero.WriteFile(fs, tmp, data, 0644); err != nil {
		return err
	}
	return fs.Rename(tmp, pth)
}

// Map returns a copy of the manifest as a key to sorted paths mapping
func (m *Manifest) Map() map[string][]string {
	res := make(map[string][]string, len(m.entries))
	for key := range m.entries {
		res[key] = m.Paths(key)
	}
	return res
}

// Add a path realized by some key. A path previously realized by another key is moved.
func (m *Manifest) Add(key, pth string) {
	if previous, ok := m.files[pth]; ok {
		if previous == key {
			return
		}
		m.Remove(previous, pth)
	}
	set, ok := m.entries[key]
	if !ok {
		set = make(pathSet)
		m.entries[key] = set
	}
	set[pth] = struct{}{}
	m.files[pth] = key
}

// Remove a path from a key. It returns false if the key did not realize this path.
func (m *Manifest) Remove(key, pth string) bool {
	set, ok := m.entries[key]
	if !ok {
		return false
	}
	if _, ok = set[pth]; !ok {
		return false
	}
	delete(set, pth)
	delete(m.files, pth)
	if len(set) == 0 {
		delete(m.entries, key)
	}
	return true
}

// RemovePath removes a path whatever key realizes it, and returns that key
func (m *Manifest) RemovePath(pth string) (string, bool) {
	key, ok := m.files[pth]
	if !ok {
		return "", false
	}
	m.Remove(key, pth)
	return key, true
}

// Merge all entries of another manifest into this one
func (m *Manifest) Merge(other *Manifest) {
	for key, set := range other.entries {
		for pth := range set {
			m.Add(key, pth)
		}
	}
}

// Search the key realizing a path
func (m *Manifest) Search(pth string) (string, bool) {
	key, ok := m.files[pth]
	return key, ok
}

// Has tells if a key is in the manifest
func (m *Manifest) Has(key string) bool {
	_, ok := m.entries[key]
	return ok
}

// Keys in lexicographic order
func (m *Manifest) Keys() []string {
	keys := make([]string, 0, len(m.entries))
	for key := range m.entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Paths realized by a key, in lexicographic order
func (m *Manifest) Paths(key string) []string {
	set := m.entries[key]
	paths := make([]string, 0, len(set))
	for pth := range set {
		paths = append(paths, pth)
	}
	sort.Strings(paths)
	return paths
}

// Files returns the path to key mapping
func (m *Manifest) Files() map[string]string {
	res := make(map[string]string, len(m.files))
	for pth, key := range m.files {
		res[pth] = key
	}
	return res
}

// Len is the number of keys
func (m *Manifest) Len() int {
	return len(m.entries)
}

// FileCount is the number of paths
func (m *Manifest) FileCount() int {
	return len(m.files)
}

// Subset returns a new manifest restricted to some keys
func (m *Manifest) Subset(keys []string) *Manifest {
	res := New()
	for _, key := range keys {
		for pth := range m.entries[key] {
			res.Add(key, pth)
		}
	}
	return res
}
