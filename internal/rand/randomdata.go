// Package rand produces random test data: names, buffers and workspace files.
package rand

import (
	"bytes"
	"math/rand"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/afero"
)

var (
	onceSource sync.Once
	rgen       *rand.Rand
	randMutex  sync.Mutex

	// adds "a" to pad over 256 locations (0-9 U a-z makes up to 252 only and we want to cover the range of uint8)
	letters = bytes.Repeat([]byte("abcdefghijklmnopqrstuvwxyz0123456789a"), 7)
)

func seed() {
	rgen = rand.New(rand.NewSource(time.Now().UnixNano())) // #nosec
}

// Bytes returns a random slice of bytes
func Bytes(n int) []byte {
	onceSource.Do(seed)
	buf := make([]byte, n)
	randMutex.Lock()
	_, _ = rgen.Read(buf)
	randMutex.Unlock()
	return buf
}

// LetterString returns a random string picked in the [0-9]|[a-z] range
func LetterString(n int) string {
	buf := Bytes(n)
	for i, b := range buf {
		buf[i] = letters[b]
	}
	return string(buf)
}

// Seeded returns reproducible content of size n for some seed
func Seeded(n int, seed int64) []byte {
	buf := make([]byte, n)
	_, _ = rand.New(rand.NewSource(seed)).Read(buf) // #nosec
	return buf
}

// WriteFiles creates files with random content in a directory, with the given relative names and sizes.
//
// It returns the content written for each name.
func WriteFiles(fs afero.Fs, dir string, sizes map[string]int) (map[string][]byte, error) {
	written := make(map[string][]byte, len(sizes))
	for name, size := range sizes {
		pth := filepath.Join(dir, name)
		if err := fs.MkdirAll(filepath.Dir(pth), 0755); err != nil {
			return nil, err
		}
		data := Bytes(size)
		if err := afero.WriteFile(fs, pth, data, 0644); err != nil {
			return nil, err
		}
		written[name] = data
	}
	return written, nil
}
