package index

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v2"
)

// Status of a file in the full index
type Status string

const (
	// Added file, not committed yet
	Added Status = "a"
	// Untouched file, already committed
	Untouched Status = "u"
	// Changed file, with content different from the committed one
	Changed Status = "c"
	// Deleted file, to be removed from the manifest on commit
	Deleted Status = "d"
)

// Entry of the full index, describing the last staged state of a workspace file
type Entry struct {
	Hash   string `yaml:"hash"`
	MTime  int64  `yaml:"mtime"`
	Size   int64  `yaml:"size"`
	Status Status `yaml:"status"`
}

// FullIndex maps workspace-relative paths to their last staged state
type FullIndex map[string]Entry

// LoadFullIndex reads a full index file. A missing file yields an empty index.
func LoadFullIndex(fs afero.Fs, pth string) (FullIndex, error) {
	data, err := afero.ReadFile(fs, pth)
	if err != nil {
		if os.IsNotExist(err) {
			return FullIndex{}, nil
		}
		return nil, err
	}
	idx := FullIndex{}
	if err = yaml.Unmarshal(data, &idx); err != nil {
		return nil, err
	}
	return idx, nil
}

// Save the full index
func (f FullIndex) Save(fs afero.Fs, pth string) error {
	data, err := yaml.Marshal(f)
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

// Paths with some status, in lexicographic order
func (f FullIndex) Paths(status Status) []string {
	var paths []string
	for pth, entry := range f {
		if entry.Status == status {
			paths = append(paths, pth)
		}
	}
	sort.Strings(paths)
	return paths
}

// Committed marks all entries as untouched and forgets deleted ones
func (f FullIndex) Committed() {
	for pth, entry := range f {
		if entry.Status == Deleted {
			delete(f, pth)
			continue
		}
		entry.Status = Untouched
		f[pth] = entry
	}
}
