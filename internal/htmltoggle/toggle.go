// Package htmltoggle switches the <link> and <script> tags of HTML files between their development and
// build variants by commenting them out. Tags marked with data-layx="dev" are only active before the build,
// tags marked with data-layx="build" are only active after the build.
package htmltoggle

import (
	"context"
	"fmt"
	"regexp"

	"github.com/arif891/layx-sub000/internal/afs"
	"github.com/arif891/layx-sub000/internal/project/layout"
	"github.com/rs/zerolog"
)

const (
	HTML_EXTENSION = ".html"

	DEV_MARKER   = "dev"
	BUILD_MARKER = "build"
)

var (
	tagPattern = `<(?:link|script)\b[^>]*?\bdata-layx=["'](` + DEV_MARKER + `|` + BUILD_MARKER + `)["'][^>]*>(?:</script>)?`

	//groups: 1 commented tag, 2 its marker, 3 active tag, 4 its marker.
	TOGGLABLE_TAG_REGEX = regexp.MustCompile(`<!--\s*(` + tagPattern + `)\s*-->|(` + tagPattern + `)`)
)

type Mode int

const (
	Build Mode = iota
	Unbuild
)

func (m Mode) activeMarker() string {
	if m == Build {
		return BUILD_MARKER
	}
	return DEV_MARKER
}

// ToggleContent comments out the tags that are inactive in $mode and uncomments the active ones.
func ToggleContent(content string, mode Mode) string {
	active := mode.activeMarker()

	return TOGGLABLE_TAG_REGEX.ReplaceAllStringFunc(content, func(match string) string {
		groups := TOGGLABLE_TAG_REGEX.FindStringSubmatch(match)

		if groups[1] != "" { //commented
			if groups[2] == active {
				return groups[1]
			}
			return match
		}

		if groups[4] != active {
			return "<!-- " + groups[3] + " -->"
		}
		return match
	})
}

// Toggle applies ToggleContent to every HTML file of the project, the output tree and the excluded paths
// are ignored. Only the files whose content changes are rewritten, their paths are returned.
func Toggle(ctx context.Context, fls afs.Filesystem, reg *layout.Registry, exclude []string, mode Mode, logger zerolog.Logger) (changed []string, _ error) {
	files, err := afs.ListFiles(fls, ".", afs.ListOptions{
		Extensions: []string{HTML_EXTENSION},
		Exclude:    exclude,
		Skip:       reg.IsOutputPath,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list HTML files: %w", err)
	}

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return changed, err
		}

		content, err := afs.ReadFile(fls, file)
		if err != nil {
			return changed, err
		}

		newContent := ToggleContent(string(content), mode)
		if newContent == string(content) {
			continue
		}

		if err := afs.WriteFile(fls, file, []byte(newContent)); err != nil {
			return changed, fmt.Errorf("failed to write %s: %w", file, err)
		}
		changed = append(changed, file)
		logger.Debug().Msgf("toggled tags in %s", file)
	}

	return changed, nil
}
