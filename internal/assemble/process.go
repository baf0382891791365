package assemble

import (
	"context"
	"fmt"

	"github.com/arif891/layx-sub000/internal/afs"
	"github.com/arif891/layx-sub000/internal/project/layout"
)

// ProcessBase snapshots the base file of $kind, then overwrites it with its assembled and minified content.
// A missing base file is an error.
func (a *Assembler) ProcessBase(ctx context.Context, kind layout.Kind, optimize bool) error {
	basePath := a.reg.BaseFile(kind)

	if err := afs.CopyFile(a.fls, basePath, a.reg.BaseSnapshot(kind)); err != nil {
		return fmt.Errorf("failed to snapshot base file %s: %w", basePath, err)
	}

	if err := a.processFile(ctx, Params{Path: basePath, Kind: kind, Optimize: optimize}); err != nil {
		return err
	}

	a.logger.Info().Msgf("processed %s", basePath)
	return nil
}

// ProcessPages processes every page file of $kind like ProcessBase but in page mode: imports already inlined
// in the base file are skipped. The live page files are overwritten, they are only recoverable from their
// snapshot. The processed paths are returned in natural order.
func (a *Assembler) ProcessPages(ctx context.Context, kind layout.Kind, optimize bool) ([]string, error) {
	pages, err := afs.ListFiles(a.fls, a.reg.PagesDir(kind), afs.ListOptions{
		Extensions: []string{kind.Extension()},
		Exclude:    a.exclude,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s page files: %w", kind, err)
	}

	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		//the snapshot must be written before the live file is overwritten.
		if err := afs.CopyFile(a.fls, page, a.reg.SnapshotPath(page)); err != nil {
			return nil, fmt.Errorf("failed to snapshot page file %s: %w", page, err)
		}

		if err := a.processFile(ctx, Params{Path: page, Kind: kind, Optimize: optimize, PageFile: true}); err != nil {
			return nil, err
		}
		a.logger.Debug().Msgf("processed page file %s", page)
	}

	if len(pages) > 0 {
		a.logger.Info().Msgf("processed %d %s page file(s)", len(pages), kind)
	}
	return pages, nil
}

func (a *Assembler) processFile(ctx context.Context, params Params) error {
	text, err := a.Assemble(ctx, params)
	if err != nil {
		return err
	}

	minified := a.minify(params.Kind, text, params.Path)

	if err := afs.WriteFile(a.fls, params.Path, []byte(minified)); err != nil {
		return fmt.Errorf("failed to write %s: %w", params.Path, err)
	}
	return nil
}
