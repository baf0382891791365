// Package assemble flattens CSS and JS source units: the imports of a file are inlined before its body,
// then the import and export syntax is stripped. Resolution is one level deep, the imports of an imported
// file are stripped but never inlined.
package assemble

import (
	"context"
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/arif891/layx-sub000/internal/afs"
	"github.com/arif891/layx-sub000/internal/css/layoutsubset"
	"github.com/arif891/layx-sub000/internal/minify"
	"github.com/arif891/layx-sub000/internal/project/layout"
	"github.com/arif891/layx-sub000/internal/sourcetext"
	cmap "github.com/orcaman/concurrent-map/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	MAX_PARALLEL_IMPORT_READS = 8
	HTML_EXTENSION            = ".html"
	SRC_LOG_FIELD_NAME        = "src"
)

type Params struct {
	Path     string
	Kind     layout.Kind
	Optimize bool //synthesize the optimizable partials from the HTML corpus (CSS only).
	PageFile bool //skip the imports already inlined in the base file.
}

// An Assembler is meant to be used for a single build: file contents and the HTML corpus are cached
// and never invalidated.
type Assembler struct {
	fls         afs.Filesystem
	reg         *layout.Registry
	minifier    *minify.Minifier
	logger      zerolog.Logger
	definitions []layoutsubset.Definition
	exclude     []string

	importCache cmap.ConcurrentMap[string, string]

	corpusLock   sync.Mutex
	corpusLoaded bool
	corpus       string
}

type Config struct {
	Filesystem afs.Filesystem
	Registry   *layout.Registry
	Minifier   *minify.Minifier
	Logger     zerolog.Logger
	Exclude    []string //doublestar patterns of paths ignored when listing HTML and page files.
}

func New(config Config) *Assembler {
	minifier := config.Minifier
	if minifier == nil {
		minifier = minify.New()
	}

	return &Assembler{
		fls:         config.Filesystem,
		reg:         config.Registry,
		minifier:    minifier,
		logger:      config.Logger,
		definitions: layoutsubset.Definitions(config.Registry),
		exclude:     config.Exclude,
		importCache: cmap.New[string](),
	}
}

// Assemble returns the flattened content of the file at params.Path. Failing to read the file itself is an error,
// failing to read an import is only logged and the import is replaced with an empty segment.
func (a *Assembler) Assemble(ctx context.Context, params Params) (string, error) {
	content, err := afs.ReadFile(a.fls, params.Path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", params.Path, err)
	}
	source := string(content)

	var skipSet map[string]struct{}
	if params.PageFile {
		skipSet, err = a.baseImportSet(params.Kind)
		if err != nil {
			return "", err
		}
	}

	urls := sourcetext.ExtractImports(source, params.Kind)
	segments := make([]string, len(urls))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(MAX_PARALLEL_IMPORT_READS)

	for i, url := range urls {
		group.Go(func() error {
			segment, err := a.importContent(groupCtx, params, url, skipSet)
			segments[i] = segment
			return err
		})
	}

	if err := group.Wait(); err != nil {
		return "", err
	}

	body := source
	top, hasTop := sourcetext.ExtractBlock(source, sourcetext.TOP_BLOCK_TAG)
	if hasTop {
		body = sourcetext.RemoveBlock(source, sourcetext.TOP_BLOCK_TAG)
	}

	var parts []string
	addPart := func(s string) {
		s = strings.TrimSpace(s)
		if s != "" {
			parts = append(parts, s)
		}
	}

	addPart(top)
	for _, segment := range segments {
		addPart(segment)
	}
	addPart(body)

	result := strings.TrimSpace(sourcetext.StripImports(strings.Join(parts, "\n")))
	if params.Kind == layout.JS {
		result = sourcetext.StripExports(result)
	}
	return result, nil
}

func (a *Assembler) importContent(ctx context.Context, params Params, url string, skipSet map[string]struct{}) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if sourcetext.IsRemote(url) {
		a.logger.Warn().Str(SRC_LOG_FIELD_NAME, params.Path).Msgf("remote import %s is not inlined", url)
		return "", nil
	}

	resolved := ResolveImport(params.Path, url)

	if _, ok := skipSet[resolved]; ok {
		a.logger.Info().Str(SRC_LOG_FIELD_NAME, params.Path).Msgf("skip %s, already present in the base file", url)
		return "", nil
	}

	raw, err := a.readImport(resolved)
	if err != nil {
		a.logger.Error().Err(err).Str(SRC_LOG_FIELD_NAME, params.Path).Msgf("failed to read import %s", url)
		return "", nil
	}

	if params.Kind == layout.CSS && params.Optimize {
		if def, ok := layoutsubset.FindDefinition(a.definitions, resolved); ok {
			corpus, err := a.HTMLCorpus(ctx)
			if err != nil {
				return "", err
			}
			usage := layoutsubset.ScanUsage(corpus, def.Prefixes())
			a.logger.Debug().Str(SRC_LOG_FIELD_NAME, params.Path).Msgf("synthesize %s", resolved)
			rules := layoutsubset.Synthesize(def, raw, usage)
			return def.Wrap(a.minify(layout.CSS, rules, resolved)), nil
		}
	}

	return raw, nil
}

func (a *Assembler) readImport(pth string) (string, error) {
	if content, ok := a.importCache.Get(pth); ok {
		return content, nil
	}

	content, err := afs.ReadFile(a.fls, pth)
	if err != nil {
		return "", err
	}
	a.importCache.Set(pth, string(content))
	return string(content), nil
}

// baseImportSet returns the resolved imports of the base file of $kind. The pre-build snapshot of the
// base file is read if present since the live base file no longer contains imports once processed.
func (a *Assembler) baseImportSet(kind layout.Kind) (map[string]struct{}, error) {
	basePath := a.reg.BaseFile(kind)

	sourcePath := basePath
	snapshotPath := a.reg.BaseSnapshot(kind)
	if exists, err := afs.Exists(a.fls, snapshotPath); err != nil {
		return nil, err
	} else if exists {
		sourcePath = snapshotPath
	}

	content, err := afs.ReadFile(a.fls, sourcePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read base file %s: %w", sourcePath, err)
	}

	set := map[string]struct{}{}
	for _, url := range sourcetext.ExtractImports(string(content), kind) {
		if !sourcetext.IsRemote(url) {
			set[ResolveImport(basePath, url)] = struct{}{}
		}
	}
	return set, nil
}

// HTMLCorpus returns the concatenated content of every HTML file of the project, the output tree and the
// excluded paths are ignored. The corpus is loaded once.
func (a *Assembler) HTMLCorpus(ctx context.Context) (string, error) {
	a.corpusLock.Lock()
	defer a.corpusLock.Unlock()

	if a.corpusLoaded {
		return a.corpus, nil
	}

	files, err := afs.ListFiles(a.fls, ".", afs.ListOptions{
		Extensions: []string{HTML_EXTENSION},
		Exclude:    a.exclude,
		Skip:       a.reg.IsOutputPath,
	})
	if err != nil {
		return "", fmt.Errorf("failed to list HTML files: %w", err)
	}

	var builder strings.Builder
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		content, err := afs.ReadFile(a.fls, file)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", file, err)
		}
		builder.Write(content)
		builder.WriteByte('\n')
	}

	a.logger.Debug().Msgf("HTML corpus: %d file(s)", len(files))

	a.corpus = builder.String()
	a.corpusLoaded = true
	return a.corpus, nil
}

func (a *Assembler) minify(kind layout.Kind, text string, pth string) string {
	minified, err := a.minifier.MinifyKind(kind, text)
	if err != nil {
		a.logger.Warn().Err(err).Str(SRC_LOG_FIELD_NAME, pth).Msg("failed to minify, the content is kept as is")
		return text
	}
	return minified
}

// ResolveImport resolves $url relative to the directory of $importer, a URL starting with '/' is resolved
// from the project root. Query strings and fragments are removed.
func ResolveImport(importer string, url string) string {
	if index := strings.IndexAny(url, "?#"); index >= 0 {
		url = url[:index]
	}

	if strings.HasPrefix(url, "/") {
		return path.Clean(strings.TrimPrefix(url, "/"))
	}
	return path.Join(path.Dir(importer), url)
}
