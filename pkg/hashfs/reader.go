package hashfs

import (
	"io"

	"github.com/oneconcern/datagit/pkg/hashfs/status"
)

// Reassemble writes the content of the file identified by a link object key,
// by concatenating its chunks in order.
func (s *Store) Reassemble(key string, w io.Writer) (int64, error) {
	links, err := s.Links(key)
	if err != nil {
		return 0, err
	}

	var total int64
	for _, link := range links.Links {
		n, err := s.copyChunk(link, w)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func (s *Store) copyChunk(link Link, w io.Writer) (int64, error) {
	f, err := s.Open(link.Hash)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	n, err := io.Copy(w, f)
	if err != nil {
		return n, err
	}
	if n != link.Size {
		return n, status.ErrCorruptedObject.Detailf("chunk %s has size %d, expected %d", link.Hash, n, link.Size)
	}
	return n, nil
}

// Missing returns the keys of chunks referenced by a link object which are not present in the store
func (s *Store) Missing(key string) ([]string, error) {
	links, err := s.Links(key)
	if err != nil {
		return nil, err
	}
	var missing []string
	for _, link := range links.Links {
		if !s.Exists(link.Hash) {
			missing = append(missing, link.Hash)
		}
	}
	return missing, nil
}
