package hashfs

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

const testBlockSize = 1024

func testData(size int, seed int64) []byte {
	data := make([]byte, size)
	_, _ = rand.New(rand.NewSource(seed)).Read(data)
	return data
}

func memStore(t testing.TB, opts ...Option) (*Store, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	s, err := New("/objects", append([]Option{Fs(fs), BlockSize(testBlockSize)}, opts...)...)
	require.NoError(t, err)
	return s, fs
}

func reassembled(t testing.TB, s *Store, key string) []byte {
	t.Helper()
	var buf bytes.Buffer
	_, err := s.Reassemble(key, &buf)
	require.NoError(t, err)
	return buf.Bytes()
}
