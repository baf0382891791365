package minify

import (
	"github.com/arif891/layx-sub000/internal/project/layout"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/js"
)

const (
	CSS_MEDIA_TYPE = "text/css"
	JS_MEDIA_TYPE  = "application/javascript"
)

// Minifier removes comments and collapses whitespace in CSS and JS content. It is safe for concurrent use.
type Minifier struct {
	m *minify.M
}

func New() *Minifier {
	m := minify.New()
	m.AddFunc(CSS_MEDIA_TYPE, css.Minify)
	m.AddFunc(JS_MEDIA_TYPE, js.Minify)

	return &Minifier{m: m}
}

func (m *Minifier) Minify(mediaType string, content string) (string, error) {
	return m.m.String(mediaType, content)
}

func (m *Minifier) MinifyKind(kind layout.Kind, content string) (string, error) {
	return m.Minify(kind.MediaType(), content)
}
