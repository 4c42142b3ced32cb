// Package settings persists application settings as a YAML key-value file.
//
// Writes hold an exclusive file lock and replace the file atomically, so the
// store can be shared between processes.
package settings

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/gofrs/flock"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/nuln/doctree"
)

// KeyRTPFolder holds the location of the RTP folder.
const KeyRTPFolder = "rtp_folder_uri"

// FileStore is a settings file.
type FileStore struct {
	path string
	lock *flock.Flock
}

// Open returns the store kept at path. The file is created on first write.
func Open(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, errors.WithMessage(err, "failed to create settings directory")
	}
	return &FileStore{
		path: path,
		lock: flock.New(path + ".lock"),
	}, nil
}

// Get returns the value stored under key.
func (s *FileStore) Get(key string) (string, bool, error) {
	if err := s.lock.RLock(); err != nil {
		return "", false, errors.WithMessage(err, "failed to lock settings")
	}
	defer func() { _ = s.lock.Unlock() }()

	values, err := s.read()
	if err != nil {
		return "", false, err
	}
	v, ok := values[key]
	return v, ok, nil
}

// Keys returns the stored keys in sorted order.
func (s *FileStore) Keys() ([]string, error) {
	if err := s.lock.RLock(); err != nil {
		return nil, errors.WithMessage(err, "failed to lock settings")
	}
	defer func() { _ = s.lock.Unlock() }()

	values, err := s.read()
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Set stores value under key.
func (s *FileStore) Set(key, value string) error {
	if err := s.lock.Lock(); err != nil {
		return errors.WithMessage(err, "failed to lock settings")
	}
	defer func() { _ = s.lock.Unlock() }()

	values, err := s.read()
	if err != nil {
		return err
	}
	values[key] = value

	data, err := yaml.Marshal(values)
	if err != nil {
		return errors.WithMessage(err, "failed to encode settings")
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*")
	if err != nil {
		return errors.WithMessage(err, "failed to write settings")
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return errors.WithMessage(err, "failed to write settings")
	}
	if err := tmp.Close(); err != nil {
		return errors.WithMessage(err, "failed to write settings")
	}
	return errors.WithMessage(os.Rename(tmp.Name(), s.path), "failed to replace settings")
}

// StoreRTPFolderLocation implements doctree.Settings.
func (s *FileStore) StoreRTPFolderLocation(loc doctree.Location) error {
	return s.Set(KeyRTPFolder, loc.String())
}

// RTPFolderLocation returns the published RTP folder location, if any.
func (s *FileStore) RTPFolderLocation() (doctree.Location, bool, error) {
	v, ok, err := s.Get(KeyRTPFolder)
	if err != nil || !ok {
		return doctree.Location{}, false, err
	}
	loc, err := doctree.ParseLocation(v)
	if err != nil {
		return doctree.Location{}, false, err
	}
	return loc, true, nil
}

func (s *FileStore) read() (map[string]string, error) {
	values := make(map[string]string)

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return values, nil
	}
	if err != nil {
		return nil, errors.WithMessage(err, "failed to read settings")
	}

	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, errors.WithMessagef(err, "failed to parse settings %s", s.path)
	}
	if values == nil {
		values = make(map[string]string)
	}
	return values, nil
}

var _ doctree.Settings = (*FileStore)(nil)
