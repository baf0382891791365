package layout

import (
	"fmt"
	"path"
	"strings"
)

// Kind is the kind of a source unit.
type Kind int

const (
	CSS Kind = iota
	JS
)

var KINDS = []Kind{CSS, JS}

func (k Kind) String() string {
	switch k {
	case CSS:
		return "css"
	case JS:
		return "js"
	}
	panic(fmt.Errorf("invalid kind %d", int(k)))
}

func (k Kind) Extension() string {
	return "." + k.String()
}

func (k Kind) MediaType() string {
	switch k {
	case CSS:
		return "text/css"
	case JS:
		return "application/javascript"
	}
	panic(fmt.Errorf("invalid kind %d", int(k)))
}

// Registry maps logical roles to paths relative to the project root. It is created once by Default and
// shared by all components, no component should build a path that is not derived from a Registry.
type Registry struct {
	Directories Directories
	Files       Files
}

type Directories struct {
	Layx         string
	Assets       string
	PagesCss     string
	PagesJs      string
	Output       string
	Snapshot     string //versioned output tree holding pre-build copies of the sources.
	JsBundle     string //bundler output
	Images       string
	ImagesBackup string
	Components   string
	Templates    string
	Blocks       string
	Fonts        string
}

type Files struct {
	LayxCss           string
	LayxJs            string
	OutputCss         string //snapshot of LayxCss
	OutputJs          string //snapshot of LayxJs
	BuildInfo         string
	ProjectConfig     string
	Env               string
	OptimizableLayout string
	OptimizableGrid   string
}

func Default() *Registry {
	output := path.Join(LAYX_DIRNAME, OUTPUT_DIRNAME)
	snapshot := path.Join(output, SNAPSHOT_DIRNAME, SNAPSHOT_VERSION)
	layxCss := path.Join(LAYX_DIRNAME, LAYX_CSS_FILENAME)
	layxJs := path.Join(LAYX_DIRNAME, LAYX_JS_FILENAME)
	images := path.Join(ASSETS_DIRNAME, IMAGES_DIRNAME)

	return &Registry{
		Directories: Directories{
			Layx:         LAYX_DIRNAME,
			Assets:       ASSETS_DIRNAME,
			PagesCss:     path.Join(ASSETS_DIRNAME, CSS_DIRNAME, PAGES_DIRNAME),
			PagesJs:      path.Join(ASSETS_DIRNAME, JS_DIRNAME, PAGES_DIRNAME),
			Output:       output,
			Snapshot:     snapshot,
			JsBundle:     path.Join(output, JS_DIRNAME),
			Images:       images,
			ImagesBackup: path.Join(images, IMAGES_BACKUP_DIRNAME),
			Components:   path.Join(LAYX_DIRNAME, COMPONENTS_DIRNAME),
			Templates:    path.Join(LAYX_DIRNAME, TEMPLATES_DIRNAME),
			Blocks:       path.Join(LAYX_DIRNAME, BLOCKS_DIRNAME),
			Fonts:        path.Join(ASSETS_DIRNAME, FONTS_DIRNAME),
		},
		Files: Files{
			LayxCss:           layxCss,
			LayxJs:            layxJs,
			OutputCss:         path.Join(snapshot, layxCss),
			OutputJs:          path.Join(snapshot, layxJs),
			BuildInfo:         path.Join(output, BUILD_INFO_FILENAME),
			ProjectConfig:     PROJECT_CONFIG_FILENAME,
			Env:               ENV_FILENAME,
			OptimizableLayout: OPTIMIZABLE_LAYOUT_CSS,
			OptimizableGrid:   OPTIMIZABLE_GRID_CSS,
		},
	}
}

func (r *Registry) BaseFile(kind Kind) string {
	if kind == CSS {
		return r.Files.LayxCss
	}
	return r.Files.LayxJs
}

func (r *Registry) BaseSnapshot(kind Kind) string {
	if kind == CSS {
		return r.Files.OutputCss
	}
	return r.Files.OutputJs
}

func (r *Registry) PagesDir(kind Kind) string {
	if kind == CSS {
		return r.Directories.PagesCss
	}
	return r.Directories.PagesJs
}

// SnapshotPath returns the mirrored location of $livePath inside the snapshot tree.
func (r *Registry) SnapshotPath(livePath string) string {
	return path.Join(r.Directories.Snapshot, path.Clean(livePath))
}

// LivePath reconstructs a live path from a snapshot path by removing the snapshot tree prefix.
// The reconstruction is textual: a path outside the snapshot tree is returned unchanged.
func (r *Registry) LivePath(snapshotPath string) string {
	return strings.Replace(path.Clean(snapshotPath), r.Directories.Snapshot+"/", "", 1)
}

// IsOutputPath reports whether $pth is inside the output tree (snapshots, bundles, build info).
func (r *Registry) IsOutputPath(pth string) bool {
	pth = path.Clean(pth)
	return pth == r.Directories.Output || strings.HasPrefix(pth, r.Directories.Output+"/")
}
