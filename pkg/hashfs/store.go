package hashfs

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/docker/go-units"
	lru "github.com/hashicorp/golang-lru"
	"github.com/oneconcern/datagit/pkg/hashfs/status"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

const (
	// DefaultBlockSize is the default size of a chunk (256 KB)
	DefaultBlockSize = 256 * units.KiB

	// DefaultLevels is the default number of sharding levels
	DefaultLevels = 2

	// MaxLevels is the maximum number of sharding levels
	MaxLevels = 4

	// DefaultLinksCacheSize is the default number of decoded link objects kept in memory
	DefaultLinksCacheSize = 4096

	logDir       = "log"
	logName      = "store.log"
	linksLogName = "links.log"
	tmpDir       = ".tmp"

	dirPerm  = 0755
	filePerm = 0644
)

// Store is a content-addressed block store on a local file system
type Store struct {
	root           string
	fs             afero.Fs
	levels         int
	blockSize      int
	scheme         Scheme
	links          *lru.Cache
	linksCacheSize int
	l              *zap.Logger
}

func defaultStore(root string) *Store {
	return &Store{
		root:           root,
		fs:             afero.NewOsFs(),
		levels:         DefaultLevels,
		blockSize:      DefaultBlockSize,
		scheme:         cidScheme{},
		linksCacheSize: DefaultLinksCacheSize,
		l:              zap.NewNop(),
	}
}

// New creates a block store rooted at some directory. The directory is created if needed.
func New(root string, opts ...Option) (*Store, error) {
	s := defaultStore(root)
	for _, apply := range opts {
		apply(s)
	}

	if s.levels < 0 || s.levels > MaxLevels {
		return nil, fmt.Errorf("sharding levels must be between 0 and %d, got %d", MaxLevels, s.levels)
	}
	if s.blockSize <= 0 {
		return nil, fmt.Errorf("block size must be positive, got %d", s.blockSize)
	}

	var err error
	s.links, err = lru.New(s.linksCacheSize)
	if err != nil {
		return nil, err
	}

	if err = s.fs.MkdirAll(filepath.Join(s.root, tmpDir), dirPerm); err != nil {
		return nil, status.ErrWrite.Detailf("initializing %s", s.root).Wrap(err)
	}
	return s, nil
}

// Root directory of this store
func (s *Store) Root() string { return s.root }

// Scheme used to compute keys in this store
func (s *Store) Scheme() Scheme { return s.scheme }

// BlockSize used to split files
func (s *Store) BlockSize() int { return s.blockSize }

func (s *Store) String() string {
	return "hashfs@" + s.root
}

// Path returns the location of a key, relative to the root of the store
func (s *Store) Path(key string) string {
	parts := make([]string, 0, s.levels+1)
	body := key
	if pl := s.scheme.PrefixLen(); len(body) > pl {
		body = body[pl:]
	}
	for i := 0; i < s.levels && len(body) >= 2*(i+1); i++ {
		parts = append(parts, body[2*i:2*i+2])
	}
	parts = append(parts, key)
	return filepath.Join(parts...)
}

// RealPath returns the full location of a key on the file system
func (s *Store) RealPath(key string) string {
	return filepath.Join(s.root, s.Path(key))
}

// Exists tells if a key is present in the store. It does not read the object.
func (s *Store) Exists(key string) bool {
	fi, err := s.fs.Stat(s.RealPath(key))
	if err != nil {
		return false
	}
	return fi.Mode().IsRegular()
}

// Put writes data under a key, unless the key is already present.
//
// It returns true when the object has been written.
func (s *Store) Put(key string, data []byte) (bool, error) {
	return s.PutStream(key, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

// PutStream writes an object produced by some writer function under a key, unless the key is already present.
//
// The object is first written in a temporary file, then moved in place. Concurrent readers
// never observe a truncated object.
func (s *Store) PutStream(key string, fill func(io.Writer) error) (bool, error) {
	if s.Exists(key) {
		return false, nil
	}

	target := s.RealPath(key)
	if err := s.fs.MkdirAll(filepath.Dir(target), dirPerm); err != nil {
		return false, status.ErrWrite.Detailf("key %s", key).Wrap(err)
	}

	tmp, err := afero.TempFile(s.fs, filepath.Join(s.root, tmpDir), "put-")
	if err != nil {
		return false, status.ErrWrite.Detailf("key %s", key).Wrap(err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = s.fs.Remove(tmpName)
	}()

	if err = fill(tmp); err != nil {
		_ = tmp.Close()
		return false, status.ErrWrite.Detailf("key %s", key).Wrap(err)
	}
	if err = tmp.Close(); err != nil {
		return false, status.ErrWrite.Detailf("key %s", key).Wrap(err)
	}
	if err = s.fs.Rename(tmpName, target); err != nil {
		return false, status.ErrWrite.Detailf("key %s", key).Wrap(err)
	}

	s.l.Debug("hashfs object written", zap.String("key", key))
	return true, nil
}

// Get the content of an object
func (s *Store) Get(key string) ([]byte, error) {
	data, err := afero.ReadFile(s.fs, s.RealPath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, status.ErrNotFound.Detailf("key %s", key)
		}
		return nil, err
	}
	return data, nil
}

// Open an object for reading
func (s *Store) Open(key string) (afero.File, error) {
	f, err := s.fs.Open(s.RealPath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, status.ErrNotFound.Detailf("key %s", key)
		}
		return nil, err
	}
	return f, nil
}

// Remove an object from the store. Removing a missing object is not an error.
func (s *Store) Remove(key string) error {
	if err := s.fs.Remove(s.RealPath(key)); err != nil && !os.IsNotExist(err) {
		return err
	}
	s.links.Remove(key)
	return nil
}

// Links returns the decoded link object stored under key
func (s *Store) Links(key string) (Links, error) {
	if cached, ok := s.links.Get(key); ok {
		return cached.(Links), nil
	}

	data, err := s.Get(key)
	if err != nil {
		return Links{}, err
	}
	links, err := UnmarshalLinks(data)
	if err != nil {
		return Links{}, status.ErrCorruptedLink.Detailf("key %s", key).Wrap(err)
	}

	s.links.Add(key, links)
	return links, nil
}

// Keys lists all objects in the store, in no particular order
func (s *Store) Keys() ([]string, error) {
	var keys []string
	exists, err := afero.DirExists(s.fs, s.root)
	if err != nil || !exists {
		return nil, err
	}

	err = afero.Walk(s.fs, s.root, func(pth string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(s.root, pth)
		if err != nil {
			return err
		}
		if info.IsDir() {
			if rel == logDir || rel == tmpDir {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(info.Name(), ".") {
			return nil
		}
		keys = append(keys, info.Name())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}
