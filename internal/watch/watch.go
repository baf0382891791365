// Package watch rebuilds a project when its HTML files change, so that the synthesized layout rules follow
// the markup.
package watch

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/arif891/layx-sub000/internal/afs"
	"github.com/arif891/layx-sub000/internal/project/layout"
	"github.com/arif891/layx-sub000/internal/utils"
	"github.com/bep/debounce"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

const (
	DEFAULT_DEBOUNCE_DELAY = 300 * time.Millisecond
	HTML_EXTENSION         = ".html"
)

type Watcher struct {
	fls     afs.Filesystem
	reg     *layout.Registry
	exclude []string
	rebuild func(ctx context.Context) error
	delay   time.Duration
	logger  zerolog.Logger
}

type WatcherParams struct {
	Filesystem afs.Filesystem //OS filesystem
	Registry   *layout.Registry
	Exclude    []string
	Rebuild    func(ctx context.Context) error
	Delay      time.Duration //defaults to DEFAULT_DEBOUNCE_DELAY
	Logger     zerolog.Logger
}

func NewWatcher(params WatcherParams) *Watcher {
	delay := params.Delay
	if delay <= 0 {
		delay = DEFAULT_DEBOUNCE_DELAY
	}

	return &Watcher{
		fls:     params.Filesystem,
		reg:     params.Registry,
		exclude: params.Exclude,
		rebuild: params.Rebuild,
		delay:   delay,
		logger:  params.Logger,
	}
}

// Run watches the directories containing HTML files until $ctx is done. Bursts of events are debounced into
// a single rebuild, a failing rebuild is logged and the watch continues.
func (w *Watcher) Run(ctx context.Context) error {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsWatcher.Close()

	dirs, err := w.htmlDirs()
	if err != nil {
		return err
	}

	for _, dir := range dirs {
		absDir, err := w.fls.Absolute(dir)
		if err != nil {
			return err
		}
		if err := fsWatcher.Add(absDir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}
	w.logger.Info().Msgf("watching %d director(ies) for HTML changes", len(dirs))

	trigger := make(chan struct{}, 1)
	debounced := debounce.New(w.delay)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fsWatcher.Events:
			if !ok {
				return nil
			}

			if event.Has(fsnotify.Create) && filepath.Ext(event.Name) == "" {
				//possibly a new directory
				rel := w.relativePath(event.Name)
				if info, err := w.fls.Lstat(rel); err == nil && info.IsDir() && !w.reg.IsOutputPath(rel) {
					if err := fsWatcher.Add(event.Name); err != nil {
						w.logger.Warn().Err(err).Msgf("failed to watch %s", rel)
					}
				}
			}

			if !IsRelevantEvent(event) {
				continue
			}

			w.logger.Debug().Msgf("%s: %s", event.Op, event.Name)
			debounced(func() {
				select {
				case trigger <- struct{}{}:
				default:
				}
			})
		case <-trigger:
			w.runRebuild(ctx)
		case err, ok := <-fsWatcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error().Err(err).Msg("watcher error")
		}
	}
}

func (w *Watcher) runRebuild(ctx context.Context) {
	defer func() {
		if v := recover(); v != nil {
			w.logger.Error().Err(utils.ConvertPanicValueToError(v)).Msg("rebuild panicked")
		}
	}()

	w.logger.Info().Msg("HTML changed, rebuilding")
	if err := w.rebuild(ctx); err != nil {
		w.logger.Error().Err(err).Msg("rebuild failed")
	}
}

// htmlDirs returns the directories containing at least one HTML file, the root included.
func (w *Watcher) htmlDirs() ([]string, error) {
	files, err := afs.ListFiles(w.fls, ".", afs.ListOptions{
		Extensions: []string{HTML_EXTENSION},
		Exclude:    w.exclude,
		Skip:       w.reg.IsOutputPath,
	})
	if err != nil {
		return nil, err
	}

	dirs := []string{"."}
	seen := map[string]struct{}{".": {}}
	for _, file := range files {
		dir := path.Dir(file)
		if _, ok := seen[dir]; !ok {
			seen[dir] = struct{}{}
			dirs = append(dirs, dir)
		}
	}
	return dirs, nil
}

func (w *Watcher) relativePath(absPath string) string {
	root, err := w.fls.Absolute(".")
	if err != nil {
		return absPath
	}
	rel, err := filepath.Rel(root, absPath)
	if err != nil {
		return absPath
	}
	return filepath.ToSlash(rel)
}

// IsRelevantEvent reports whether $event may change the HTML corpus.
func IsRelevantEvent(event fsnotify.Event) bool {
	if !strings.HasSuffix(event.Name, HTML_EXTENSION) {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
}
