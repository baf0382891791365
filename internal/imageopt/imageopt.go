// Package imageopt converts the raster images of a project to WebP. The originals are moved to a backup
// directory so that the conversion is never applied twice to the same file.
package imageopt

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/arif891/layx-sub000/internal/afs"
	"github.com/arif891/layx-sub000/internal/project/layout"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
)

const (
	RASTER_IMAGE_PATTERN = "**/*.{png,jpg,jpeg,PNG,JPG,JPEG}"
	WEBP_EXTENSION       = ".webp"
)

type ImageOptimizer interface {
	Optimize(ctx context.Context) (Report, error)
}

// An Encoder writes the WebP version of the image $src to $dst, both paths are absolute.
type Encoder interface {
	Encode(ctx context.Context, src, dst string) error
}

type Report struct {
	Converted   int
	Failed      int
	BytesBefore int64
	BytesAfter  int64
}

func (r Report) String() string {
	return fmt.Sprintf("%d image(s) converted, %d failed, %s -> %s",
		r.Converted, r.Failed, humanize.Bytes(uint64(r.BytesBefore)), humanize.Bytes(uint64(r.BytesAfter)))
}

type Optimizer struct {
	fls     afs.Filesystem
	reg     *layout.Registry
	encoder Encoder
	logger  zerolog.Logger
}

func NewOptimizer(fls afs.Filesystem, reg *layout.Registry, encoder Encoder, logger zerolog.Logger) *Optimizer {
	return &Optimizer{
		fls:     fls,
		reg:     reg,
		encoder: encoder,
		logger:  logger,
	}
}

// Optimize converts every raster image of the images directory, the backup directory excluded. A failing
// conversion is logged and counted in the report, it does not stop the others.
func (o *Optimizer) Optimize(ctx context.Context) (Report, error) {
	var report Report

	imagesDir := o.reg.Directories.Images
	files, err := afs.ListFiles(o.fls, imagesDir, afs.ListOptions{
		Exclude: []string{o.reg.Directories.ImagesBackup},
	})
	if err != nil {
		return report, fmt.Errorf("failed to list images: %w", err)
	}

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		rel := strings.TrimPrefix(file, imagesDir+"/")
		if ok, _ := doublestar.Match(RASTER_IMAGE_PATTERN, rel); !ok {
			continue
		}

		if err := o.optimizeImage(ctx, file, rel, &report); err != nil {
			report.Failed++
			o.logger.Error().Err(err).Msgf("failed to convert %s", file)
			continue
		}
		report.Converted++
	}

	o.logger.Info().Msg(report.String())
	return report, nil
}

func (o *Optimizer) optimizeImage(ctx context.Context, file, rel string, report *Report) error {
	webpPath := strings.TrimSuffix(file, path.Ext(file)) + WEBP_EXTENSION

	src, err := o.fls.Absolute(file)
	if err != nil {
		return err
	}
	dst, err := o.fls.Absolute(webpPath)
	if err != nil {
		return err
	}

	before, err := o.fls.Stat(file)
	if err != nil {
		return err
	}

	if err := o.encoder.Encode(ctx, src, dst); err != nil {
		return err
	}

	after, err := o.fls.Stat(webpPath)
	if err != nil {
		return fmt.Errorf("encoder did not write %s: %w", webpPath, err)
	}

	if err := afs.Move(o.fls, file, path.Join(o.reg.Directories.ImagesBackup, rel)); err != nil {
		return fmt.Errorf("failed to back up %s: %w", file, err)
	}

	report.BytesBefore += before.Size()
	report.BytesAfter += after.Size()
	o.logger.Debug().Msgf("converted %s (%s -> %s)", file, humanize.Bytes(uint64(before.Size())), humanize.Bytes(uint64(after.Size())))
	return nil
}
