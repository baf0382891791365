// Package bundle bundles the processed JS files with esbuild.
package bundle

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/arif891/layx-sub000/internal/afs"
	"github.com/arif891/layx-sub000/internal/config"
	"github.com/arif891/layx-sub000/internal/project/layout"
	"github.com/evanw/esbuild/pkg/api"
	"github.com/rs/zerolog"
)

const (
	BASE_ENTRY_NAME = "layx"
	PAGES_ENTRY_DIR = "pages"
	JS_EXTENSION    = ".js"
	GZIP_EXTENSION  = ".gz"
)

var (
	ErrBundlingFailed = errors.New("bundling failed")

	ES_TARGETS = map[string]api.Target{
		"es2015": api.ES2015,
		"es2016": api.ES2016,
		"es2017": api.ES2017,
		"es2018": api.ES2018,
		"es2019": api.ES2019,
		"es2020": api.ES2020,
		"es2021": api.ES2021,
		"es2022": api.ES2022,
		"esnext": api.ESNext,
	}
)

type EntryPoint struct {
	InputPath  string //path relative to the project root
	OutputName string //output path relative to the output directory, without extension
}

type Request struct {
	EntryPoints []EntryPoint
	OutDir      string //relative to the project root
}

type Bundler interface {
	Bundle(ctx context.Context, req Request) error
}

// NewRequest returns the request bundling the base JS file and the JS page files.
func NewRequest(reg *layout.Registry, pages []string) Request {
	req := Request{
		EntryPoints: []EntryPoint{{InputPath: reg.Files.LayxJs, OutputName: BASE_ENTRY_NAME}},
		OutDir:      reg.Directories.JsBundle,
	}

	pagesDir := reg.PagesDir(layout.JS)
	for _, page := range pages {
		rel := strings.TrimPrefix(strings.TrimPrefix(page, pagesDir), "/")
		rel = strings.TrimSuffix(rel, path.Ext(rel))

		req.EntryPoints = append(req.EntryPoints, EntryPoint{
			InputPath:  page,
			OutputName: path.Join(PAGES_ENTRY_DIR, rel),
		})
	}
	return req
}

// Esbuild is a Bundler writing ES modules with code splitting. esbuild reads and writes the disk directly,
// the filesystem should be an OS filesystem.
type Esbuild struct {
	fls      afs.Filesystem
	options  config.Bundler
	compress bool
	logger   zerolog.Logger
}

func NewEsbuild(fls afs.Filesystem, options config.Bundler, compress bool, logger zerolog.Logger) *Esbuild {
	return &Esbuild{
		fls:      fls,
		options:  options,
		compress: compress,
		logger:   logger,
	}
}

func (b *Esbuild) Bundle(ctx context.Context, req Request) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	root, err := b.fls.Absolute(".")
	if err != nil {
		return err
	}

	result := api.Build(b.buildOptions(root, req))

	for _, warning := range result.Warnings {
		b.logger.Warn().Msg(formatMessage(warning))
	}

	if len(result.Errors) > 0 {
		var errs []error
		for _, msg := range result.Errors {
			errs = append(errs, errors.New(formatMessage(msg)))
		}
		return fmt.Errorf("%w: %w", ErrBundlingFailed, errors.Join(errs...))
	}

	b.logger.Info().Msgf("bundled %d entry point(s) into %s", len(req.EntryPoints), req.OutDir)

	if !b.compress {
		return nil
	}
	return CompressOutputs(b.fls, req.OutDir, b.logger)
}

func (b *Esbuild) buildOptions(root string, req Request) api.BuildOptions {
	var entryPoints []api.EntryPoint
	for _, entry := range req.EntryPoints {
		entryPoints = append(entryPoints, api.EntryPoint{
			InputPath:  "./" + entry.InputPath,
			OutputPath: entry.OutputName,
		})
	}

	options := api.BuildOptions{
		EntryPointsAdvanced: entryPoints,
		Outdir:              req.OutDir,
		AbsWorkingDir:       root,
		Bundle:              true,
		Splitting:           b.options.Splitting,
		Format:              api.FormatESModule,
		TreeShaking:         api.TreeShakingTrue,
		MinifyWhitespace:    b.options.Minify,
		MinifyIdentifiers:   b.options.Minify,
		MinifySyntax:        b.options.Minify,
		Target:              ES_TARGETS[b.options.Target],
		External:            b.options.External,
		Write:               true,
		LogLevel:            api.LogLevelSilent,
	}

	if b.options.Sourcemap {
		options.Sourcemap = api.SourceMapLinked
	}
	if b.options.DropConsole {
		options.Drop = api.DropConsole
	}
	return options
}

func formatMessage(msg api.Message) string {
	if msg.Location == nil {
		return msg.Text
	}
	return fmt.Sprintf("%s:%d:%d: %s", msg.Location.File, msg.Location.Line, msg.Location.Column, msg.Text)
}
