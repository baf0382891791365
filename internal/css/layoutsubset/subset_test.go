package layoutsubset

import (
	"strings"
	"testing"

	"github.com/arif891/layx-sub000/internal/project/layout"
	"github.com/stretchr/testify/assert"
)

const LAYOUT_SOURCE = `/*<base>*/
layout { display: grid; }
/*</base>*/
/*<gap>*/
.gap-1 { gap: 1rem; }
/*</gap>*/
.x-1 { grid-column-end: span 1; }
`

func layoutDefinition(t *testing.T) Definition {
	def, ok := FindDefinition(Definitions(layout.Default()), layout.OPTIMIZABLE_LAYOUT_CSS)
	if !ok {
		t.Fatal("layout definition not found")
	}
	return def
}

func TestScanUsage(t *testing.T) {
	prefixes := []string{"x", "xs", "y"}

	t.Run("base and breakpoint numbers", func(t *testing.T) {
		usage := ScanUsage(`<div class="x-3 x-md-5 xs-2"></div><div class="x-3 x-12"></div>`, prefixes)

		assert.Equal(t, []int{3, 12}, usage.BaseNumbers("x"))
		assert.Equal(t, []int{5}, usage.BreakpointNumbers("x", "md"))
		assert.Equal(t, []int{2}, usage.BaseNumbers("xs"))
		assert.Empty(t, usage.BaseNumbers("y"))
	})

	t.Run("unknown breakpoint is ignored", func(t *testing.T) {
		usage := ScanUsage(`<div class="x-huge-3"></div>`, prefixes)
		assert.Empty(t, usage.BaseNumbers("x"))
		assert.Empty(t, usage.BreakpointNumbers("x", "huge"))
	})

	t.Run("non positive numbers are ignored", func(t *testing.T) {
		usage := ScanUsage(`<div class="x-0 x--1 x-a x-"></div>`, prefixes)
		assert.Empty(t, usage.BaseNumbers("x"))
	})

	t.Run("prefix must start the token", func(t *testing.T) {
		usage := ScanUsage(`<div class="box-3 max-4"></div>`, prefixes)
		assert.Empty(t, usage.BaseNumbers("x"))
	})
}

func TestSynthesize(t *testing.T) {
	def := layoutDefinition(t)

	t.Run("only used numbers", func(t *testing.T) {
		usage := ScanUsage(`<div class="x-3"></div><div class="x-5"></div>`, def.Prefixes())
		css := Synthesize(def, LAYOUT_SOURCE, usage)

		assert.Contains(t, css, ".x-3{grid-column-end: span 3;}")
		assert.Contains(t, css, ".x-5{grid-column-end: span 5;}")
		assert.Equal(t, 2, strings.Count(css, "grid-column-end"))
		assert.NotContains(t, css, ".y-")
		assert.NotContains(t, css, "@media")
	})

	t.Run("include blocks come first", func(t *testing.T) {
		usage := ScanUsage(`<div class="x-2"></div>`, def.Prefixes())
		css := Synthesize(def, LAYOUT_SOURCE, usage)

		assert.Equal(t, "layout { display: grid; }\n.gap-1 { gap: 1rem; }\n.x-2{grid-column-end: span 2;}", css)
	})

	t.Run("media blocks in breakpoint order", func(t *testing.T) {
		usage := ScanUsage(`<div class="x-lg-4 x-sm-2 ys-md-1"></div>`, def.Prefixes())
		css := Synthesize(def, "", usage)

		smIndex := strings.Index(css, "@media (width >= 576px)")
		mdIndex := strings.Index(css, "@media (width >= 768px)")
		lgIndex := strings.Index(css, "@media (width >= 992px)")

		if !assert.True(t, smIndex >= 0 && mdIndex >= 0 && lgIndex >= 0) {
			return
		}
		assert.Less(t, smIndex, mdIndex)
		assert.Less(t, mdIndex, lgIndex)
		assert.Contains(t, css, "@media (width >= 576px){.x-sm-2{grid-column-end: span 2;}}")
		assert.Contains(t, css, ".ys-md-1{grid-row-start: 1;}")
		assert.NotContains(t, css, "{\n")
	})

	t.Run("numbers without template are skipped", func(t *testing.T) {
		usage := ScanUsage(`<div class="x-25 x-md-99"></div>`, def.Prefixes())
		assert.Empty(t, Synthesize(def, "", usage))
	})

	t.Run("no usage", func(t *testing.T) {
		assert.Empty(t, Synthesize(def, "", Usage{}))
	})
}

func TestWrap(t *testing.T) {
	def := layoutDefinition(t)

	assert.Equal(t, "@layer layout.helper{.x-2{grid-column-end:span 2}}", def.Wrap(".x-2{grid-column-end:span 2}"))
	assert.Empty(t, def.Wrap(""))

	def.Wrapper = ""
	assert.Equal(t, ".a{}", def.Wrap(".a{}"))
}
