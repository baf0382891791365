package buildinfo

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/arif891/layx-sub000/internal/afs"
	"github.com/goccy/go-json"
)

const (
	BUILD_KEY           = "build"
	IMAGE_OPTIMIZED_KEY = "imageOptimized"
)

var (
	ErrInvalidInfo = errors.New("invalid build info")
)

// Info is the persisted flag record, example: {"build": true, "imageOptimized": true}.
type Info map[string]bool

func (i Info) Built() bool {
	return i[BUILD_KEY]
}

func (i Info) ImageOptimized() bool {
	return i[IMAGE_OPTIMIZED_KEY]
}

// Store reads and merges the build info file. There is no locking: two processes merging at the same
// time can lose an update.
type Store struct {
	fls  afs.Filesystem
	path string
}

func NewStore(fls afs.Filesystem, path string) *Store {
	return &Store{fls: fls, path: path}
}

func (s *Store) Path() string {
	return s.path
}

// Read returns the stored info. If the file does not exist $found is false and the error is nil:
// the project has never been built, this is not the same as {"build": false}.
func (s *Store) Read() (info Info, found bool, _ error) {
	content, err := afs.ReadFile(s.fls, s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Info{}, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %s: %w", s.path, err)
	}

	info = Info{}
	if err := json.Unmarshal(content, &info); err != nil {
		return nil, false, fmt.Errorf("%w: %s: %s", ErrInvalidInfo, s.path, err.Error())
	}

	return info, true, nil
}

// Merge overlays $update on the stored info and writes the result, keys absent from $update are kept.
func (s *Store) Merge(update Info) (Info, error) {
	info, _, err := s.Read()
	if err != nil {
		return nil, err
	}

	for k, v := range update {
		info[k] = v
	}

	content, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return nil, err
	}

	if err := afs.WriteFile(s.fls, s.path, content); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", s.path, err)
	}
	return info, nil
}
