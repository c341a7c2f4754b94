package hashfs

import (
	"github.com/oneconcern/datagit/pkg/hashfs/status"
	"go.uber.org/zap"
)

// Fsck verifies that every object in the store hashes to its key.
//
// It returns the keys of corrupted objects.
func (s *Store) Fsck() ([]string, error) {
	keys, err := s.Keys()
	if err != nil {
		return nil, err
	}

	var corrupted []string
	for _, key := range keys {
		data, err := s.Get(key)
		if err != nil {
			return corrupted, err
		}
		actual, err := s.scheme.Sum(data)
		if err != nil {
			return corrupted, err
		}
		if actual != key {
			s.l.Warn("hashfs corrupted object",
				zap.String("key", key),
				zap.String("actual", actual),
				zap.Error(status.ErrCorruptedObject),
			)
			corrupted = append(corrupted, key)
		}
	}
	return corrupted, nil
}
