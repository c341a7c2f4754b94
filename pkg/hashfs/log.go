package hashfs

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/oneconcern/datagit/pkg/hashfs/status"
	"github.com/spf13/afero"
)

// LogPath is the location of the append-only log of this store
func (s *Store) LogPath() string {
	return filepath.Join(s.root, logDir, logName)
}

// LinksLogPath is the location of the log of link objects, a subset of the keys of the main log
func (s *Store) LinksLogPath() string {
	return filepath.Join(s.root, logDir, linksLogName)
}

// AppendLog records keys in the append-only log
func (s *Store) AppendLog(keys ...string) error {
	return s.appendLines(s.LogPath(), keys)
}

// AppendLinksLog records keys of link objects. These keys must also be recorded in the main log.
func (s *Store) AppendLinksLog(keys ...string) error {
	return s.appendLines(s.LinksLogPath(), keys)
}

func (s *Store) appendLines(pth string, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.fs.MkdirAll(filepath.Dir(pth), dirPerm); err != nil {
		return status.ErrWrite.Detailf("log %s", pth).Wrap(err)
	}
	f, err := s.fs.OpenFile(pth, os.O_APPEND|os.O_CREATE|os.O_WRONLY, filePerm)
	if err != nil {
		return status.ErrWrite.Detailf("log %s", pth).Wrap(err)
	}

	if _, err = f.Write([]byte(strings.Join(keys, "\n") + "\n")); err != nil {
		_ = f.Close()
		return status.ErrWrite.Detailf("log %s", pth).Wrap(err)
	}
	return f.Close()
}

// Log returns the keys recorded in the log, without duplicates, in the order they were first recorded
func (s *Store) Log() ([]string, error) {
	return s.readLines(s.LogPath())
}

// LoggedLinks returns the set of logged keys which identify link objects
func (s *Store) LoggedLinks() (map[string]struct{}, error) {
	keys, err := s.readLines(s.LinksLogPath())
	if err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		set[key] = struct{}{}
	}
	return set, nil
}

func (s *Store) readLines(pth string) ([]string, error) {
	f, err := s.fs.Open(pth)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var keys []string
	seen := make(map[string]struct{})
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		key := strings.TrimSpace(scanner.Text())
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	return keys, scanner.Err()
}

// ResetLog clears the log
func (s *Store) ResetLog() error {
	for _, pth := range []string{s.LinksLogPath(), s.LogPath()} {
		if err := s.fs.Remove(pth); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

// RewriteLog atomically replaces the content of the log with some keys.
// Link objects not among these keys are forgotten.
func (s *Store) RewriteLog(keys []string) error {
	if len(keys) == 0 {
		return s.ResetLog()
	}
	links, err := s.LoggedLinks()
	if err != nil {
		return status.ErrWrite.Detailf("log %s", s.LinksLogPath()).Wrap(err)
	}
	var keptLinks []string
	for _, key := range keys {
		if _, ok := links[key]; ok {
			keptLinks = append(keptLinks, key)
		}
	}

	if err = s.writeLines(s.LogPath(), keys); err != nil {
		return err
	}
	if len(keptLinks) == 0 {
		if err = s.fs.Remove(s.LinksLogPath()); err != nil && !os.IsNotExist(err) {
			return err
		}
		return nil
	}
	return s.writeLines(s.LinksLogPath(), keptLinks)
}

func (s *Store) writeLines(pth string, keys []string) error {
	if err := s.fs.MkdirAll(filepath.Dir(pth), dirPerm); err != nil {
		return status.ErrWrite.Detailf("log %s", pth).Wrap(err)
	}
	tmp := pth + ".new"
	if err := afero.WriteFile(s.fs, tmp, []byte(strings.Join(keys, "\n")+"\n"), filePerm); err != nil {
		return status.ErrWrite.Detailf("log %s", pth).Wrap(err)
	}
	return s.fs.Rename(tmp, pth)
}
