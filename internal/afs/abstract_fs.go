package afs

import (
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
)

// Filesystem is a billy.Filesystem rooted at the project directory, all paths passed to its methods
// are relative to the project root.
type Filesystem interface {
	billy.Filesystem
	Absolute(path string) (string, error)
}

type File = billy.File

type absoluteCapableFilesystem struct {
	billy.Filesystem
	absolute func(path string) (string, error)
}

func AddAbsoluteFeature(fls billy.Filesystem, absolute func(path string) (string, error)) Filesystem {
	return &absoluteCapableFilesystem{
		Filesystem: fls,
		absolute:   absolute,
	}
}

func (fls *absoluteCapableFilesystem) Absolute(path string) (string, error) {
	return fls.absolute(path)
}

// OS returns a filesystem backed by the OS filesystem and rooted at $root.
func OS(root string) (Filesystem, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	return AddAbsoluteFeature(osfs.New(absRoot), func(path string) (string, error) {
		if filepath.IsAbs(path) {
			return path, nil
		}
		return filepath.Join(absRoot, filepath.FromSlash(path)), nil
	}), nil
}

// Memory returns an in-memory filesystem, its absolute paths start with '/'.
func Memory() Filesystem {
	return AddAbsoluteFeature(memfs.New(), func(path string) (string, error) {
		return filepath.Join("/", path), nil
	})
}
