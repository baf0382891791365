package build

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/arif891/layx-sub000/internal/afs"
	"github.com/arif891/layx-sub000/internal/buildinfo"
	"github.com/arif891/layx-sub000/internal/bundle"
	"github.com/arif891/layx-sub000/internal/config"
	"github.com/arif891/layx-sub000/internal/imageopt"
	"github.com/arif891/layx-sub000/internal/project/layout"
	"github.com/go-git/go-billy/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

var PROJECT_FILES = map[string]string{
	"layx/layx.css": "/*<top>*/@layer base, layout.helper;/*</top>*/\n" +
		"@import url(main/base/base.css);\n@import url(main/layout/layout.css);\n\n.body {\n  color: red;\n}\n",
	"layx/main/base/base.css":     "* {\n  box-sizing: border-box;\n}\n",
	"layx/main/layout/layout.css": "/*<base>*/\nlayout { display: grid; }\n/*</base>*/\n.x-1 { grid-column-end: span 1; }\n",
	"layx/main/grid/grid.css":     "/*<base>*/\ngrid { display: grid; }\n/*</base>*/\n",
	"layx/layx.js":                "import { theme } from './main/theme.js';\n\ntheme();\n",
	"layx/main/theme.js":          "export function theme() {\n  return 1;\n}\n",
	"layx/main/carousel.js":       "export default class Carousel {}\n",

	"assets/css/pages/home.css":    "@import url(../../../layx/main/base/base.css);\n@import url(../../../layx/main/grid/grid.css);\n.hero {\n  margin: 0;\n}\n",
	"assets/js/pages/home.js":      "import Carousel from '../../../layx/main/carousel.js';\nnew Carousel();\n",
	"assets/js/pages/blog/post.js": "import { theme } from '../../../../layx/main/theme.js';\ntheme();\n",

	"index.html": `<link rel="stylesheet" href="/layx/layx.css" data-layx="dev">
<!-- <link rel="stylesheet" href="/layx/assets/layx.css" data-layx="build"> -->
<layout><div class="x-3 x-md-6"></div></layout>`,
}

type fakeBundler struct {
	requests []bundle.Request
	err      error
}

func (b *fakeBundler) Bundle(ctx context.Context, req bundle.Request) error {
	b.requests = append(b.requests, req)
	return b.err
}

type fakeImageOptimizer struct {
	calls int
}

func (o *fakeImageOptimizer) Optimize(ctx context.Context) (imageopt.Report, error) {
	o.calls++
	return imageopt.Report{Converted: 1}, nil
}

var errWriteDenied = errors.New("write denied")

// failingWritesFilesystem refuses to open $path for writing.
type failingWritesFilesystem struct {
	afs.Filesystem
	path string
}

func (f *failingWritesFilesystem) OpenFile(filename string, flag int, perm os.FileMode) (billy.File, error) {
	if filename == f.path && flag&(os.O_WRONLY|os.O_RDWR) != 0 {
		return nil, errWriteDenied
	}
	return f.Filesystem.OpenFile(filename, flag, perm)
}

type testProject struct {
	fls      afs.Filesystem
	reg      *layout.Registry
	pipeline *Pipeline
	bundler  *fakeBundler
	images   *fakeImageOptimizer
}

func newTestProject(t *testing.T, files map[string]string) *testProject {
	return newTestProjectWith(t, afs.Memory(), files, zerolog.Nop())
}

func newTestProjectWith(t *testing.T, fls afs.Filesystem, files map[string]string, logger zerolog.Logger) *testProject {
	for pth, content := range files {
		if !assert.NoError(t, afs.WriteFile(fls, pth, []byte(content))) {
			t.FailNow()
		}
	}

	reg := layout.Default()
	bundler := &fakeBundler{}
	images := &fakeImageOptimizer{}

	return &testProject{
		fls:     fls,
		reg:     reg,
		bundler: bundler,
		images:  images,
		pipeline: NewPipeline(PipelineParams{
			Filesystem:     fls,
			Project:        config.Default(reg),
			Bundler:        bundler,
			ImageOptimizer: images,
			Logger:         logger,
		}),
	}
}

// snapshot returns the content of every file of the filesystem.
func (p *testProject) snapshot(t *testing.T) map[string]string {
	files, err := afs.ListFiles(p.fls, ".", afs.ListOptions{})
	if !assert.NoError(t, err) {
		t.FailNow()
	}

	contents := map[string]string{}
	for _, file := range files {
		content, err := afs.ReadFile(p.fls, file)
		if !assert.NoError(t, err) {
			t.FailNow()
		}
		contents[file] = string(content)
	}
	return contents
}

// assertSourcesEqual checks that every file of $files has its original content.
func (p *testProject) assertSourcesEqual(t *testing.T, files map[string]string) {
	for pth, content := range files {
		assert.Equal(t, content, p.read(t, pth), pth)
	}
}

func (p *testProject) readInfo(t *testing.T) (buildinfo.Info, bool) {
	info, found, err := buildinfo.NewStore(p.fls, p.reg.Files.BuildInfo).Read()
	if !assert.NoError(t, err) {
		t.FailNow()
	}
	return info, found
}

func (p *testProject) read(t *testing.T, pth string) string {
	content, err := afs.ReadFile(p.fls, pth)
	if !assert.NoError(t, err) {
		t.FailNow()
	}
	return string(content)
}

func TestPipelineBuild(t *testing.T) {
	ctx := context.Background()

	t.Run("full build", func(t *testing.T) {
		project := newTestProject(t, PROJECT_FILES)

		result, err := project.pipeline.Build(ctx)
		if !assert.NoError(t, err) {
			return
		}
		assert.Equal(t, Build, result.Transition)
		assert.NotNil(t, result.Images)
		assert.Equal(t, 1, project.images.calls)

		info, _ := project.readInfo(t)
		assert.Equal(t, buildinfo.Info{buildinfo.BUILD_KEY: true, buildinfo.IMAGE_OPTIMIZED_KEY: true}, info)

		base := project.read(t, "layx/layx.css")
		assert.NotContains(t, base, "@import")
		assert.NotContains(t, base, ".x-1{")
		assert.Contains(t, base, ".x-3{grid-column-end:span 3}")
		assert.Contains(t, base, ".x-md-6{grid-column-end:span 6}")
		assert.Contains(t, base, ".body{color:red}")
		assert.NotContains(t, base, "\n")

		topIndex := strings.Index(base, "@layer base")
		importIndex := strings.Index(base, "box-sizing:border-box")
		bodyIndex := strings.Index(base, ".body{")
		assert.Equal(t, 0, topIndex)
		assert.Less(t, topIndex, importIndex)
		assert.Less(t, importIndex, bodyIndex)

		home := project.read(t, "assets/css/pages/home.css")
		assert.NotContains(t, home, "box-sizing")
		assert.Contains(t, home, "grid{display:grid}")
		assert.Contains(t, home, ".hero{margin:0}")

		assert.NotContains(t, project.read(t, "layx/layx.js"), "export")
		assert.NotContains(t, project.read(t, "assets/js/pages/home.js"), "import")

		if assert.Len(t, project.bundler.requests, 1) {
			assert.Equal(t, bundle.NewRequest(project.reg, []string{
				"assets/js/pages/blog/post.js",
				"assets/js/pages/home.js",
			}), project.bundler.requests[0])
		}

		html := project.read(t, "index.html")
		assert.Contains(t, html, `<!-- <link rel="stylesheet" href="/layx/layx.css" data-layx="dev"> -->`)
		assert.Contains(t, html, "\n"+`<link rel="stylesheet" href="/layx/assets/layx.css" data-layx="build">`)
	})

	t.Run("build then unbuild restores the sources", func(t *testing.T) {
		project := newTestProject(t, PROJECT_FILES)
		before := project.snapshot(t)

		if _, err := project.pipeline.Build(ctx); !assert.NoError(t, err) {
			return
		}
		if _, err := project.pipeline.Unbuild(ctx); !assert.NoError(t, err) {
			return
		}

		after := project.snapshot(t)
		for pth, content := range before {
			assert.Equal(t, content, after[pth], pth)
		}

		info, found := project.readInfo(t)
		assert.True(t, found)
		assert.False(t, info.Built())
	})

	t.Run("building twice is the same as unbuilding then building", func(t *testing.T) {
		twice := newTestProject(t, PROJECT_FILES)
		if _, err := twice.pipeline.Build(ctx); !assert.NoError(t, err) {
			return
		}
		result, err := twice.pipeline.Build(ctx)
		if !assert.NoError(t, err) {
			return
		}
		assert.Equal(t, Rebuild, result.Transition)

		unbuildThenBuild := newTestProject(t, PROJECT_FILES)
		if _, err := unbuildThenBuild.pipeline.Build(ctx); !assert.NoError(t, err) {
			return
		}
		if _, err := unbuildThenBuild.pipeline.Unbuild(ctx); !assert.NoError(t, err) {
			return
		}
		if _, err := unbuildThenBuild.pipeline.Build(ctx); !assert.NoError(t, err) {
			return
		}

		assert.Equal(t, unbuildThenBuild.snapshot(t), twice.snapshot(t))
		assert.Equal(t, 1, twice.images.calls)
	})

	t.Run("missing base file", func(t *testing.T) {
		files := map[string]string{}
		for pth, content := range PROJECT_FILES {
			if pth != "layx/layx.js" {
				files[pth] = content
			}
		}
		project := newTestProject(t, files)

		_, err := project.pipeline.Build(ctx)
		assert.Error(t, err)

		info, found := project.readInfo(t)
		assert.True(t, found)
		assert.False(t, info.Built())
	})

	t.Run("bundler failure restores the sources and marks the project unbuilt", func(t *testing.T) {
		project := newTestProject(t, PROJECT_FILES)
		project.bundler.err = errors.New("bundler crashed")

		_, err := project.pipeline.Build(ctx)
		assert.ErrorIs(t, err, project.bundler.err)

		info, found := project.readInfo(t)
		assert.True(t, found)
		assert.Equal(t, buildinfo.Info{buildinfo.BUILD_KEY: false}, info)

		project.assertSourcesEqual(t, PROJECT_FILES)
	})

	t.Run("failed build then build then unbuild restores the sources", func(t *testing.T) {
		project := newTestProject(t, PROJECT_FILES)
		project.bundler.err = errors.New("bundler crashed")

		if _, err := project.pipeline.Build(ctx); !assert.Error(t, err) {
			return
		}

		project.bundler.err = nil
		result, err := project.pipeline.Build(ctx)
		if !assert.NoError(t, err) {
			return
		}
		assert.Equal(t, Build, result.Transition)

		result, err = project.pipeline.Unbuild(ctx)
		if !assert.NoError(t, err) {
			return
		}
		assert.NotEmpty(t, result.Steps)

		project.assertSourcesEqual(t, PROJECT_FILES)
	})

	t.Run("failed rebuild restores the sources and the HTML", func(t *testing.T) {
		project := newTestProject(t, PROJECT_FILES)
		if _, err := project.pipeline.Build(ctx); !assert.NoError(t, err) {
			return
		}

		project.bundler.err = errors.New("bundler crashed")
		_, err := project.pipeline.Build(ctx)
		assert.ErrorIs(t, err, project.bundler.err)

		info, _ := project.readInfo(t)
		assert.False(t, info.Built())
		project.assertSourcesEqual(t, PROJECT_FILES)

		project.bundler.err = nil
		if _, err := project.pipeline.Build(ctx); !assert.NoError(t, err) {
			return
		}
		if _, err := project.pipeline.Unbuild(ctx); !assert.NoError(t, err) {
			return
		}
		project.assertSourcesEqual(t, PROJECT_FILES)
	})

	t.Run("missing base file leaves the other sources untouched", func(t *testing.T) {
		files := map[string]string{}
		for pth, content := range PROJECT_FILES {
			if pth != "layx/layx.js" {
				files[pth] = content
			}
		}
		project := newTestProject(t, files)

		_, err := project.pipeline.Build(ctx)
		assert.Error(t, err)
		project.assertSourcesEqual(t, files)
	})

	t.Run("failure to mark the project unbuilt is only logged", func(t *testing.T) {
		var logs bytes.Buffer
		reg := layout.Default()
		fls := &failingWritesFilesystem{Filesystem: afs.Memory(), path: reg.Files.BuildInfo}

		project := newTestProjectWith(t, fls, PROJECT_FILES, zerolog.New(&logs))
		bundlerErr := errors.New("bundler crashed")
		project.bundler.err = bundlerErr

		_, err := project.pipeline.Build(ctx)
		assert.ErrorIs(t, err, bundlerErr)
		assert.NotErrorIs(t, err, errWriteDenied)
		assert.Contains(t, logs.String(), "failed to mark the project as unbuilt")
		assert.Contains(t, logs.String(), reg.Files.BuildInfo)

		_, found := project.readInfo(t)
		assert.False(t, found)
		project.assertSourcesEqual(t, PROJECT_FILES)
	})

	t.Run("images already optimized", func(t *testing.T) {
		project := newTestProject(t, PROJECT_FILES)
		afs.WriteFile(project.fls, project.reg.Files.BuildInfo, []byte(`{"imageOptimized": true}`))

		result, err := project.pipeline.Build(ctx)
		if !assert.NoError(t, err) {
			return
		}
		assert.Nil(t, result.Images)
		assert.Zero(t, project.images.calls)
	})
}

func TestPipelineUnbuild(t *testing.T) {
	ctx := context.Background()

	t.Run("never built project", func(t *testing.T) {
		project := newTestProject(t, PROJECT_FILES)
		before := project.snapshot(t)

		result, err := project.pipeline.Unbuild(ctx)
		if !assert.NoError(t, err) {
			return
		}
		assert.Empty(t, result.Steps)
		assert.Equal(t, before, project.snapshot(t))

		_, found := project.readInfo(t)
		assert.False(t, found)
	})

	t.Run("project marked unbuilt", func(t *testing.T) {
		project := newTestProject(t, PROJECT_FILES)
		afs.WriteFile(project.fls, project.reg.Files.BuildInfo, []byte(`{"build": false}`))
		before := project.snapshot(t)

		_, err := project.pipeline.Unbuild(ctx)
		if !assert.NoError(t, err) {
			return
		}
		assert.Equal(t, before, project.snapshot(t))
	})
}

func TestPipelineOptimizeImages(t *testing.T) {
	project := newTestProject(t, PROJECT_FILES)

	report, err := project.pipeline.OptimizeImages(context.Background())
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, 1, report.Converted)

	info, _ := project.readInfo(t)
	assert.Equal(t, buildinfo.Info{buildinfo.IMAGE_OPTIMIZED_KEY: true}, info)
}
