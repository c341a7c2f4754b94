package manifest

// Stats summarize the changes between two versions of a manifest
type Stats struct {
	Added       int
	Deleted     int
	Updated     int
	AddedSize   int64
	DeletedSize int64
	TotalFiles  int
	TotalSize   int64
}

// Sizer returns the size of the content identified by a key
type Sizer func(key string) (int64, error)

// Diff computes change statistics from a previous version to the next one, path by path.
//
// A path present in both versions with a different key counts as updated.
func Diff(previous, next *Manifest, sizeOf Sizer) (Stats, error) {
	var stats Stats
	sizes := make(map[string]int64)
	size := func(key string) (int64, error) {
		if s, ok := sizes[key]; ok {
			return s, nil
		}
		s, err := sizeOf(key)
		if err != nil {
			return 0, err
		}
		sizes[key] = s
		return s, nil
	}

	for pth, key := range next.files {
		s, err := size(key)
		if err != nil {
			return Stats{}, err
		}
		stats.TotalFiles++
		stats.TotalSize += s

		previousKey, existed := previous.files[pth]
		switch {
		case !existed:
			stats.Added++
			stats.AddedSize += s
		case previousKey != key:
			stats.Updated++
		}
	}

	for pth, key := range previous.files {
		if _, ok := next.files[pth]; ok {
			continue
		}
		s, err := size(key)
		if err != nil {
			return Stats{}, err
		}
		stats.Deleted++
		stats.DeletedSize += s
	}
	return stats, nil
}
