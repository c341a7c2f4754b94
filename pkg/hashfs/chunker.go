package hashfs

import (
	"io"

	"github.com/oneconcern/datagit/pkg/hashfs/status"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// PutResult holds the result of splitting a file into the store
type PutResult struct {
	Key     string   // the key of the link object, which identifies the file
	Links   Links    // the chunks of the file
	Size    int64    // bytes read from the source
	Written []string // keys newly written in the store by this operation, chunks first
}

// PutFile splits a file into chunks, then stores the chunks and the link object of this file.
func (s *Store) PutFile(fs afero.Fs, pth string) (PutResult, error) {
	f, err := fs.Open(pth)
	if err != nil {
		return PutResult{}, status.ErrRead.Detailf("path %s", pth).Wrap(err)
	}
	defer f.Close()

	res, err := s.PutReader(f)
	if err != nil {
		return PutResult{}, err
	}
	s.l.Debug("hashfs file stored",
		zap.String("path", pth),
		zap.String("key", res.Key),
		zap.Int("chunks", len(res.Links.Links)),
		zap.Int("written", len(res.Written)),
	)
	return res, nil
}

// PutReader splits a stream into chunks of the configured block size, then stores the chunks
// and the link object. Objects already present are not written again.
//
// Keys of newly written objects are appended to the log of the store, and the key of a newly
// written link object to the log of link objects.
//
// An empty stream yields a link object with no children.
func (s *Store) PutReader(src io.Reader) (PutResult, error) {
	var res PutResult
	res.Links.Links = []Link{}
	buf := make([]byte, s.blockSize)

	for {
		n, err := io.ReadFull(src, buf)
		if n > 0 {
			chunk := buf[:n]
			key, e := s.scheme.Sum(chunk)
			if e != nil {
				return PutResult{}, e
			}
			written, e := s.Put(key, chunk)
			if e != nil {
				return PutResult{}, e
			}
			if written {
				res.Written = append(res.Written, key)
			}
			res.Links.Links = append(res.Links.Links, Link{Hash: key, Size: int64(n)})
			res.Size += int64(n)
		}

		if err == io.EOF || err == io.ErrUnexpectedEOF {
			break
		}
		if err != nil {
			return PutResult{}, status.ErrRead.Wrap(err)
		}
	}

	content, err := MarshalLinks(res.Links)
	if err != nil {
		return PutResult{}, err
	}
	res.Key, err = s.scheme.Sum(content)
	if err != nil {
		return PutResult{}, err
	}
	linkWritten, err := s.Put(res.Key, content)
	if err != nil {
		return PutResult{}, err
	}
	if linkWritten {
		res.Written = append(res.Written, res.Key)
	}
	s.links.Add(res.Key, res.Links)

	if len(res.Written) > 0 {
		if err = s.AppendLog(res.Written...); err != nil {
			return PutResult{}, err
		}
	}
	if linkWritten {
		if err = s.AppendLinksLog(res.Key); err != nil {
			return PutResult{}, err
		}
	}
	return res, nil
}
