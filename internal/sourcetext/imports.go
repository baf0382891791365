// Package sourcetext contains the textual transformations applied to CSS and JS sources. Imports and exports
// are recognized with regular expressions, not with a parser: a line of a multiline string starting with
// 'import' is stripped like a real import statement.
package sourcetext

import (
	"regexp"
	"strings"

	"github.com/arif891/layx-sub000/internal/project/layout"
)

var (
	CSS_IMPORT_REGEX = regexp.MustCompile(`@import\s+(?:url\(\s*["']?([^"')\s]+)["']?\s*\)|["']([^"']+)["'])`)
	JS_IMPORT_REGEX  = regexp.MustCompile(`import\s+(?:[\w*{}\s,$]+?\s+from\s+)?["']([^"']+)["']`)

	LINE_LEADING_EXPORT_REGEX = regexp.MustCompile(`(?m)^(\s*)export\s`)
)

// ExtractImports returns the URLs of the imports in $text, in order of appearance.
func ExtractImports(text string, kind layout.Kind) (urls []string) {
	switch kind {
	case layout.CSS:
		for _, match := range CSS_IMPORT_REGEX.FindAllStringSubmatch(text, -1) {
			if match[1] != "" {
				urls = append(urls, match[1])
			} else {
				urls = append(urls, match[2])
			}
		}
	case layout.JS:
		for _, match := range JS_IMPORT_REGEX.FindAllStringSubmatch(text, -1) {
			urls = append(urls, match[1])
		}
	}
	return
}

// StripImports removes all lines whose trimmed text starts with '@import' or 'import'.
func StripImports(text string) string {
	lines := strings.Split(text, "\n")
	kept := lines[:0]

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "@import") || strings.HasPrefix(trimmed, "import") {
			continue
		}
		kept = append(kept, line)
	}

	return strings.Join(kept, "\n")
}

// StripExports removes 'export default ' and line-leading 'export ' tokens.
func StripExports(text string) string {
	text = strings.ReplaceAll(text, "export default ", "")
	return LINE_LEADING_EXPORT_REGEX.ReplaceAllString(text, "$1")
}

// IsRemote reports whether an import URL points to another origin.
func IsRemote(url string) bool {
	return strings.HasPrefix(url, "http:") || strings.HasPrefix(url, "https:") || strings.HasPrefix(url, "//")
}
