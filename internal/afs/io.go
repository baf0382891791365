package afs

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path"
	"slices"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-git/go-billy/v5/util"
	"github.com/maruel/natural"
)

const (
	DEFAULT_DIR_PERM  = 0o755
	DEFAULT_FILE_PERM = 0o644
)

func ReadFile(fls Filesystem, pth string) ([]byte, error) {
	f, err := fls.Open(pth)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return io.ReadAll(f)
}

// WriteFile writes $content to $pth, the parent directories are created if necessary.
func WriteFile(fls Filesystem, pth string, content []byte) error {
	dir := path.Dir(pth)
	if dir != "." && dir != "/" {
		if err := fls.MkdirAll(dir, DEFAULT_DIR_PERM); err != nil {
			return err
		}
	}

	f, err := fls.OpenFile(pth, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, DEFAULT_FILE_PERM)
	if err != nil {
		return err
	}

	_, err = f.Write(content)
	if err1 := f.Close(); err1 != nil && err == nil {
		err = err1
	}
	return err
}

func CopyFile(fls Filesystem, src, dst string) error {
	content, err := ReadFile(fls, src)
	if err != nil {
		return err
	}
	return WriteFile(fls, dst, content)
}

// Move renames $src to $dst, the parent directories of $dst are created if necessary.
func Move(fls Filesystem, src, dst string) error {
	dir := path.Dir(dst)
	if dir != "." && dir != "/" {
		if err := fls.MkdirAll(dir, DEFAULT_DIR_PERM); err != nil {
			return err
		}
	}
	return fls.Rename(src, dst)
}

func Exists(fls Filesystem, pth string) (bool, error) {
	_, err := fls.Stat(pth)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

func RemoveAll(fls Filesystem, pth string) error {
	return util.RemoveAll(fls, pth)
}

type ListOptions struct {
	Extensions []string              //example: ".css", an empty list matches all files.
	Exclude    []string              //doublestar patterns matched against paths relative to the root, excluded directories are not walked.
	Skip       func(pth string) bool //optional, skipped directories are not walked.
}

func (o ListOptions) isExcluded(pth string, isDir bool) bool {
	if o.Skip != nil && o.Skip(pth) {
		return true
	}
	for _, pattern := range o.Exclude {
		if ok, err := doublestar.Match(pattern, pth); err == nil && ok {
			return true
		}
		if isDir {
			if ok, err := doublestar.Match(pattern, pth+"/"); err == nil && ok {
				return true
			}
		}
	}
	return false
}

func (o ListOptions) hasExtension(pth string) bool {
	return len(o.Extensions) == 0 || slices.Contains(o.Extensions, path.Ext(pth))
}

// ListFiles recursively lists the regular files in $dir, the result is sorted in natural order.
// A missing $dir is not an error.
func ListFiles(fls Filesystem, dir string, opts ListOptions) ([]string, error) {
	dir = path.Clean(dir)

	exists, err := Exists(fls, dir)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}

	var files []string
	if err := listFiles(fls, dir, opts, &files); err != nil {
		return nil, err
	}

	sort.Slice(files, func(i, j int) bool {
		return natural.Less(files[i], files[j])
	})
	return files, nil
}

func listFiles(fls Filesystem, dir string, opts ListOptions, files *[]string) error {
	entries, err := fls.ReadDir(dir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		pth := path.Join(dir, entry.Name())

		if opts.isExcluded(pth, entry.IsDir()) {
			continue
		}

		if entry.IsDir() {
			if err := listFiles(fls, pth, opts, files); err != nil {
				return err
			}
			continue
		}

		if entry.Mode().IsRegular() && opts.hasExtension(pth) {
			*files = append(*files, pth)
		}
	}
	return nil
}
