// Package build sequences the build and unbuild operations of a project. The build info file is the only
// durable state, there is no lock: two concurrent invocations can corrupt the project.
package build

import (
	"context"
	"errors"
	"fmt"

	"github.com/arif891/layx-sub000/internal/afs"
	"github.com/arif891/layx-sub000/internal/assemble"
	"github.com/arif891/layx-sub000/internal/buildinfo"
	"github.com/arif891/layx-sub000/internal/bundle"
	"github.com/arif891/layx-sub000/internal/config"
	"github.com/arif891/layx-sub000/internal/htmltoggle"
	"github.com/arif891/layx-sub000/internal/imageopt"
	"github.com/arif891/layx-sub000/internal/minify"
	"github.com/arif891/layx-sub000/internal/project/layout"
	"github.com/arif891/layx-sub000/internal/restore"
	"github.com/rs/zerolog"
)

var (
	ErrNoImageOptimizer = errors.New("no image optimizer")
)

type Pipeline struct {
	fls      afs.Filesystem
	project  *config.Project
	reg      *layout.Registry
	store    *buildinfo.Store
	bundler  bundle.Bundler          //optional
	images   imageopt.ImageOptimizer //optional
	minifier *minify.Minifier
	logger   zerolog.Logger
}

type PipelineParams struct {
	Filesystem     afs.Filesystem
	Project        *config.Project
	Bundler        bundle.Bundler
	ImageOptimizer imageopt.ImageOptimizer
	Logger         zerolog.Logger
}

func NewPipeline(params PipelineParams) *Pipeline {
	reg := params.Project.Registry

	return &Pipeline{
		fls:      params.Filesystem,
		project:  params.Project,
		reg:      reg,
		store:    buildinfo.NewStore(params.Filesystem, reg.Files.BuildInfo),
		bundler:  params.Bundler,
		images:   params.ImageOptimizer,
		minifier: minify.New(),
		logger:   params.Logger,
	}
}

// Result describes a completed transition.
type Result struct {
	Transition Transition
	Steps      []Step
	Images     *imageopt.Report //nil if images were not optimized
}

// run holds the state of a single transition.
type run struct {
	info      buildinfo.Info
	assembler *assemble.Assembler
	jsPages   []string
	images    *imageopt.Report

	liveBuilt   bool //some live files may hold build output instead of sources.
	htmlToggled bool //HTML files may have been switched to their build tags.
}

// Build builds the project, or rebuilds it if it is already built. On failure the live files that are not
// sources are restored from their snapshots and the project is marked unbuilt. Failures of this cleanup are
// only logged and the original error is returned; if the restoration fails the build info is left as is.
func (p *Pipeline) Build(ctx context.Context) (Result, error) {
	info, _, err := p.store.Read()
	if err != nil {
		return Result{}, err
	}

	state := StateOf(info)
	transition, steps := Plan(state, Build)
	if transition == Rebuild {
		p.logger.Info().Msg("project is already built, it is restored then built again")
	}

	r, err := p.execute(ctx, info, steps)
	if err != nil {
		if !p.rollback(r) {
			//marking the project unbuilt would let the next build discard the snapshots.
			return Result{}, err
		}
		if _, resetErr := p.store.Merge(buildinfo.Info{buildinfo.BUILD_KEY: false}); resetErr != nil {
			p.logger.Error().Err(resetErr).Str("file", p.store.Path()).Msg("failed to mark the project as unbuilt")
		}
		return Result{}, err
	}

	return Result{Transition: transition, Steps: steps, Images: r.images}, nil
}

// Unbuild restores the sources of a built project. Unbuilding a project that is not built does nothing.
func (p *Pipeline) Unbuild(ctx context.Context) (Result, error) {
	info, _, err := p.store.Read()
	if err != nil {
		return Result{}, err
	}

	transition, steps := Plan(StateOf(info), Unbuild)
	if len(steps) == 0 {
		p.logger.Info().Msg("project is not built, nothing to unbuild")
		return Result{Transition: transition}, nil
	}

	if _, err := p.execute(ctx, info, steps); err != nil {
		return Result{}, err
	}
	return Result{Transition: transition, Steps: steps}, nil
}

// OptimizeImages runs the image step alone, whatever the state of the project.
func (p *Pipeline) OptimizeImages(ctx context.Context) (imageopt.Report, error) {
	if p.images == nil {
		return imageopt.Report{}, ErrNoImageOptimizer
	}

	report, err := p.images.Optimize(ctx)
	if err != nil {
		return report, err
	}

	if _, err := p.store.Merge(buildinfo.Info{buildinfo.IMAGE_OPTIMIZED_KEY: true}); err != nil {
		return report, err
	}
	return report, nil
}

// execute runs $steps in order, the returned run is never nil.
func (p *Pipeline) execute(ctx context.Context, info buildinfo.Info, steps []Step) (*run, error) {
	r := &run{
		info:        info,
		liveBuilt:   info.Built(),
		htmlToggled: info.Built(),
		assembler: assemble.New(assemble.Config{
			Filesystem: p.fls,
			Registry:   p.reg,
			Minifier:   p.minifier,
			Logger:     p.logger,
			Exclude:    p.project.Exclude,
		}),
	}

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return r, err
		}

		p.logger.Debug().Msgf("step: %s", step)
		if err := p.executeStep(ctx, r, step); err != nil {
			return r, fmt.Errorf("%s: %w", step, err)
		}
	}
	return r, nil
}

func (p *Pipeline) executeStep(ctx context.Context, r *run, step Step) error {
	switch step {
	case OptimizeImagesStep:
		if p.images == nil || !p.project.OptimizeImages {
			return nil
		}
		if r.info.ImageOptimized() {
			p.logger.Debug().Msg("images are already optimized")
			return nil
		}
		report, err := p.images.Optimize(ctx)
		if err != nil {
			return err
		}
		r.images = &report
	case ResetSnapshotsStep:
		return afs.RemoveAll(p.fls, p.reg.Directories.Snapshot)
	case RestoreStep:
		if _, err := restore.NewRestorer(p.fls, p.reg, p.logger).RestoreFiles(ctx); err != nil {
			return err
		}
		r.liveBuilt = false
	case AssembleStep:
		r.liveBuilt = true
		return p.assemble(ctx, r)
	case BundleStep:
		if p.bundler == nil {
			return nil
		}
		return p.bundler.Bundle(ctx, bundle.NewRequest(p.reg, r.jsPages))
	case ToggleHTMLForBuildStep:
		r.htmlToggled = true
		_, err := htmltoggle.Toggle(ctx, p.fls, p.reg, p.project.Exclude, htmltoggle.Build, p.logger)
		return err
	case ToggleHTMLForUnbuildStep:
		_, err := htmltoggle.Toggle(ctx, p.fls, p.reg, p.project.Exclude, htmltoggle.Unbuild, p.logger)
		return err
	case MarkBuiltStep:
		update := buildinfo.Info{buildinfo.BUILD_KEY: true}
		if r.images != nil {
			update[buildinfo.IMAGE_OPTIMIZED_KEY] = true
		}
		_, err := p.store.Merge(update)
		return err
	case MarkUnbuiltStep:
		_, err := p.store.Merge(buildinfo.Info{buildinfo.BUILD_KEY: false})
		return err
	default:
		return fmt.Errorf("unknown step %d", int(step))
	}
	return nil
}

// rollback restores the live files of a failed run that hold build output, it returns false if they could not
// be restored. The snapshot tree is never modified.
func (p *Pipeline) rollback(r *run) bool {
	//the run may have failed because of a cancellation.
	ctx := context.Background()

	if r.htmlToggled {
		if _, err := htmltoggle.Toggle(ctx, p.fls, p.reg, p.project.Exclude, htmltoggle.Unbuild, p.logger); err != nil {
			p.logger.Error().Err(err).Msg("failed to switch the HTML files back to their development tags")
		}
	}

	if !r.liveBuilt {
		return true
	}

	restored, err := restore.NewRestorer(p.fls, p.reg, p.logger).RestoreSnapshotted(ctx)
	if err != nil {
		p.logger.Error().Err(err).Msgf("failed to restore the sources, their snapshots are kept in %s", p.reg.Directories.Snapshot)
		return false
	}
	p.logger.Info().Msgf("build failed, %d source file(s) restored", len(restored))
	return true
}

func (p *Pipeline) assemble(ctx context.Context, r *run) error {
	optimize := p.project.OptimizeLayout

	for _, kind := range layout.KINDS {
		if err := r.assembler.ProcessBase(ctx, kind, optimize && kind == layout.CSS); err != nil {
			return err
		}
	}

	if _, err := r.assembler.ProcessPages(ctx, layout.CSS, optimize); err != nil {
		return err
	}

	jsPages, err := r.assembler.ProcessPages(ctx, layout.JS, false)
	if err != nil {
		return err
	}
	r.jsPages = jsPages
	return nil
}
