// Package restore copies the pre-build snapshots back over the live source tree.
package restore

import (
	"context"
	"fmt"

	"github.com/arif891/layx-sub000/internal/afs"
	"github.com/arif891/layx-sub000/internal/project/layout"
	"github.com/rs/zerolog"
)

type Restorer struct {
	fls    afs.Filesystem
	reg    *layout.Registry
	logger zerolog.Logger
}

func NewRestorer(fls afs.Filesystem, reg *layout.Registry, logger zerolog.Logger) *Restorer {
	return &Restorer{fls: fls, reg: reg, logger: logger}
}

// RestoreFiles restores the base files and the page files of every kind from their snapshots and returns the
// restored live paths. A missing base snapshot is an error. The live path of a page snapshot is computed by
// removing the snapshot tree prefix.
func (r *Restorer) RestoreFiles(ctx context.Context) (restored []string, _ error) {
	return r.restore(ctx, true)
}

// RestoreSnapshotted restores every file that has a snapshot, missing base snapshots are skipped. Files are
// always snapshotted before being overwritten, so it undoes a partially applied build.
func (r *Restorer) RestoreSnapshotted(ctx context.Context) (restored []string, _ error) {
	return r.restore(ctx, false)
}

func (r *Restorer) restore(ctx context.Context, requireBase bool) (restored []string, _ error) {
	for _, kind := range layout.KINDS {
		if err := ctx.Err(); err != nil {
			return restored, err
		}

		basePath := r.reg.BaseFile(kind)
		baseSnapshot := r.reg.BaseSnapshot(kind)

		hasSnapshot := true
		if !requireBase {
			exists, err := afs.Exists(r.fls, baseSnapshot)
			if err != nil {
				return restored, err
			}
			hasSnapshot = exists
		}

		if hasSnapshot {
			if err := afs.CopyFile(r.fls, baseSnapshot, basePath); err != nil {
				return restored, fmt.Errorf("failed to restore %s: %w", basePath, err)
			}
			restored = append(restored, basePath)
		}

		snapshots, err := afs.ListFiles(r.fls, r.reg.SnapshotPath(r.reg.PagesDir(kind)), afs.ListOptions{
			Extensions: []string{kind.Extension()},
		})
		if err != nil {
			return restored, fmt.Errorf("failed to list %s page snapshots: %w", kind, err)
		}

		for _, snapshot := range snapshots {
			livePath := r.reg.LivePath(snapshot)
			if err := afs.CopyFile(r.fls, snapshot, livePath); err != nil {
				return restored, fmt.Errorf("failed to restore %s: %w", livePath, err)
			}
			r.logger.Debug().Msgf("restored %s", livePath)
			restored = append(restored, livePath)
		}
	}

	r.logger.Info().Msgf("restored %d file(s)", len(restored))
	return restored, nil
}
