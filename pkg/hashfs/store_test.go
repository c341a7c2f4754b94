package hashfs

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/oneconcern/datagit/pkg/errors"
	"github.com/oneconcern/datagit/pkg/hashfs/status"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_Path(t *testing.T) {
	blake, _ := memStore(t, WithScheme(MustScheme(SchemeBlake)))
	key := strings.Repeat("ab", 2) + strings.Repeat("0", blakeKeyLen-4)
	assert.Equal(t, filepath.Join("ab", "ab", key), blake.Path(key))

	flat, _ := memStore(t, Levels(0))
	assert.Equal(t, "somekey", flat.Path("somekey"))

	cids, _ := memStore(t)
	assert.Equal(t, filepath.Join("m9", "9F", "zdj7Wm99FQsJ7a4udnx36ZQNTy7h4Pao3XmRSfjo4sAbt9g74"),
		cids.Path("zdj7Wm99FQsJ7a4udnx36ZQNTy7h4Pao3XmRSfjo4sAbt9g74"))
	assert.Equal(t, filepath.Join("/objects", "m9", "9F", "zdj7Wm99FQsJ7a4udnx36ZQNTy7h4Pao3XmRSfjo4sAbt9g74"),
		cids.RealPath("zdj7Wm99FQsJ7a4udnx36ZQNTy7h4Pao3XmRSfjo4sAbt9g74"))
}

func TestStore_Options(t *testing.T) {
	_, err := New("/x", Fs(afero.NewMemMapFs()), Levels(MaxLevels+1))
	assert.Error(t, err)

	_, err = New("/x", Fs(afero.NewMemMapFs()), BlockSize(0))
	assert.Error(t, err)
}

func TestStore_PutGet(t *testing.T) {
	s, _ := memStore(t)

	written, err := s.Put("k1", []byte("sixteentons"))
	require.NoError(t, err)
	assert.True(t, written)
	assert.True(t, s.Exists("k1"))

	written, err = s.Put("k1", []byte("sixteentons"))
	require.NoError(t, err)
	assert.False(t, written)

	data, err := s.Get("k1")
	require.NoError(t, err)
	assert.Equal(t, "sixteentons", string(data))

	_, err = s.Get("k2")
	require.Error(t, err)
	assert.True(t, errors.Is(err, status.ErrNotFound))
	assert.False(t, s.Exists("k2"))

	keys, err := s.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"k1"}, keys)

	require.NoError(t, s.Remove("k1"))
	require.NoError(t, s.Remove("k1"))
	assert.False(t, s.Exists("k1"))
}

func TestStore_RoundTrip(t *testing.T) {
	for _, size := range []int{0, 1, testBlockSize - 1, testBlockSize, testBlockSize + 1, 10 * testBlockSize} {
		s, _ := memStore(t)
		original := testData(size, 7)

		res, err := s.PutReader(bytes.NewReader(original))
		require.NoError(t, err, "size %d", size)
		assert.EqualValues(t, size, res.Size)
		assert.EqualValues(t, size, res.Links.Size())
		assert.Equal(t, (size+testBlockSize-1)/testBlockSize, len(res.Links.Links), "size %d", size)

		for i, link := range res.Links.Links {
			if i < len(res.Links.Links)-1 {
				assert.EqualValues(t, testBlockSize, link.Size)
			}
			assert.True(t, s.Exists(link.Hash))
		}
		assert.True(t, s.Exists(res.Key))

		assert.Equal(t, original, reassembled(t, s, res.Key), "size %d", size)
	}
}

func TestStore_EmptyFile(t *testing.T) {
	s, _ := memStore(t)

	res, err := s.PutReader(bytes.NewReader(nil))
	require.NoError(t, err)
	assert.Empty(t, res.Links.Links)
	assert.Equal(t, []string{res.Key}, res.Written)

	links, err := s.Links(res.Key)
	require.NoError(t, err)
	assert.Empty(t, links.Links)
	assert.Empty(t, reassembled(t, s, res.Key))
}

func TestStore_Dedup(t *testing.T) {
	s, fs := memStore(t)
	content := testData(3*testBlockSize+12, 3)
	require.NoError(t, afero.WriteFile(fs, "/ws/a.bin", content, 0644))
	require.NoError(t, afero.WriteFile(fs, "/ws/other/b.bin", content, 0644))

	first, err := s.PutFile(fs, "/ws/a.bin")
	require.NoError(t, err)
	assert.Len(t, first.Written, 5)

	second, err := s.PutFile(fs, "/ws/other/b.bin")
	require.NoError(t, err)
	assert.Equal(t, first.Key, second.Key)
	assert.Empty(t, second.Written)

	logged, err := s.Log()
	require.NoError(t, err)
	assert.Equal(t, first.Written, logged)

	_, err = s.PutFile(fs, "/ws/missing.bin")
	require.Error(t, err)
	assert.True(t, errors.Is(err, status.ErrRead))
}

func TestStore_SharedChunks(t *testing.T) {
	s, _ := memStore(t)
	block := testData(testBlockSize, 1)

	a, err := s.PutReader(bytes.NewReader(append(append([]byte{}, block...), testData(10, 2)...)))
	require.NoError(t, err)
	b, err := s.PutReader(bytes.NewReader(append(append([]byte{}, block...), testData(20, 4)...)))
	require.NoError(t, err)

	assert.NotEqual(t, a.Key, b.Key)
	assert.Equal(t, a.Links.Links[0].Hash, b.Links.Links[0].Hash)
	assert.Len(t, b.Written, 2)
}

func TestStore_Missing(t *testing.T) {
	s, _ := memStore(t)
	res, err := s.PutReader(bytes.NewReader(testData(2*testBlockSize, 9)))
	require.NoError(t, err)

	missing, err := s.Missing(res.Key)
	require.NoError(t, err)
	assert.Empty(t, missing)

	require.NoError(t, s.Remove(res.Links.Links[1].Hash))
	missing, err = s.Missing(res.Key)
	require.NoError(t, err)
	assert.Equal(t, []string{res.Links.Links[1].Hash}, missing)

	var buf bytes.Buffer
	_, err = s.Reassemble(res.Key, &buf)
	assert.True(t, errors.Is(err, status.ErrNotFound))
}

func TestStore_Log(t *testing.T) {
	s, _ := memStore(t)

	keys, err := s.Log()
	require.NoError(t, err)
	assert.Empty(t, keys)

	require.NoError(t, s.AppendLog("a", "b"))
	require.NoError(t, s.AppendLog("b", "c"))
	keys, err = s.Log()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, keys)

	require.NoError(t, s.RewriteLog([]string{"b"}))
	keys, err = s.Log()
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, keys)

	require.NoError(t, s.ResetLog())
	require.NoError(t, s.ResetLog())
	keys, err = s.Log()
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestStore_Fsck(t *testing.T) {
	s, fs := memStore(t)
	res, err := s.PutReader(bytes.NewReader(testData(2*testBlockSize, 5)))
	require.NoError(t, err)

	corrupted, err := s.Fsck()
	require.NoError(t, err)
	assert.Empty(t, corrupted)

	victim := res.Links.Links[0].Hash
	require.NoError(t, afero.WriteFile(fs, s.RealPath(victim), []byte("bit rot"), 0644))

	corrupted, err = s.Fsck()
	require.NoError(t, err)
	assert.Equal(t, []string{victim}, corrupted)
}

func TestStore_MergeInto(t *testing.T) {
	td := t.TempDir()
	fs := afero.NewOsFs()

	index, err := New(filepath.Join(td, "index"), Fs(fs), BlockSize(testBlockSize))
	require.NoError(t, err)
	objects, err := New(filepath.Join(td, "objects"), Fs(fs), BlockSize(testBlockSize))
	require.NoError(t, err)

	shared := testData(2*testBlockSize, 11)
	committed, err := objects.PutReader(bytes.NewReader(shared))
	require.NoError(t, err)
	require.NoError(t, objects.ResetLog())

	staged1, err := index.PutReader(bytes.NewReader(shared))
	require.NoError(t, err)
	staged2, err := index.PutReader(bytes.NewReader(testData(3*testBlockSize, 13)))
	require.NoError(t, err)
	assert.Equal(t, committed.Key, staged1.Key)

	require.NoError(t, index.MergeInto(objects))

	for _, res := range []PutResult{staged1, staged2} {
		assert.True(t, objects.Exists(res.Key))
		for _, link := range res.Links.Links {
			assert.True(t, objects.Exists(link.Hash))
		}
	}
	assert.Equal(t, shared, reassembled(t, objects, staged1.Key))
	assert.Equal(t, testData(3*testBlockSize, 13), reassembled(t, objects, staged2.Key))

	remaining, err := index.Keys()
	require.NoError(t, err)
	assert.Empty(t, remaining)

	indexLog, err := index.Log()
	require.NoError(t, err)
	assert.Empty(t, indexLog)

	objectsLog, err := objects.Log()
	require.NoError(t, err)
	assert.ElementsMatch(t, append(staged1.Written, staged2.Written...), objectsLog)

	objectsLinks, err := objects.LoggedLinks()
	require.NoError(t, err)
	assert.Equal(t, map[string]struct{}{staged1.Key: {}, staged2.Key: {}}, objectsLinks)
	indexLinks, err := index.LoggedLinks()
	require.NoError(t, err)
	assert.Empty(t, indexLinks)

	other, err := New(filepath.Join(td, "other"), Fs(fs), Levels(1))
	require.NoError(t, err)
	assert.True(t, errors.Is(index.MergeInto(other), status.ErrMerge))
}

func TestStore_LoggedLinks(t *testing.T) {
	s, _ := memStore(t)

	res, err := s.PutReader(bytes.NewReader(testData(3*testBlockSize, 7)))
	require.NoError(t, err)

	// a chunk whose content is a valid link object
	lookalike, err := MarshalLinks(Links{Links: []Link{{Hash: res.Links.Links[0].Hash, Size: 1}}})
	require.NoError(t, err)
	other, err := s.PutReader(bytes.NewReader(lookalike))
	require.NoError(t, err)
	require.Len(t, other.Links.Links, 1)
	lookalikeKey := other.Links.Links[0].Hash

	links, err := s.LoggedLinks()
	require.NoError(t, err)
	assert.Contains(t, links, res.Key)
	assert.Contains(t, links, other.Key)
	assert.NotContains(t, links, lookalikeKey)
	for _, chunk := range res.Links.Keys() {
		assert.NotContains(t, links, chunk)
	}

	// storing the same file again logs nothing
	again, err := s.PutReader(bytes.NewReader(testData(3*testBlockSize, 7)))
	require.NoError(t, err)
	assert.Empty(t, again.Written)

	require.NoError(t, s.RewriteLog([]string{res.Links.Links[0].Hash, res.Key, lookalikeKey}))
	links, err = s.LoggedLinks()
	require.NoError(t, err)
	assert.Equal(t, map[string]struct{}{res.Key: {}}, links)

	require.NoError(t, s.RewriteLog([]string{lookalikeKey}))
	links, err = s.LoggedLinks()
	require.NoError(t, err)
	assert.Empty(t, links)

	require.NoError(t, s.ResetLog())
	links, err = s.LoggedLinks()
	require.NoError(t, err)
	assert.Empty(t, links)
}
