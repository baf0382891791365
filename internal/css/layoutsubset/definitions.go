package layoutsubset

import "github.com/arif891/layx-sub000/internal/project/layout"

const NUM_PLACEHOLDER = "${num}"

// Definition describes how the rules of an optimizable partial are synthesized.
type Definition struct {
	Path        string   //path of the partial, relative to the project root.
	IncludeTags []string //blocks copied verbatim, see sourcetext.ExtractBlock.
	Classes     []ClassTemplate
	Wrapper     string //optional at-rule prelude wrapping the whole output, example: @layer layout.helper
}

// ClassTemplate generates the rule of the class <Prefix>-<N> for N in [Min, Max].
type ClassTemplate struct {
	Prefix       string
	Declarations string //declarations containing NUM_PLACEHOLDER.
	Min, Max     int
}

func (t ClassTemplate) hasTemplateFor(num int) bool {
	return num >= t.Min && num <= t.Max
}

type Breakpoint struct {
	Key   string
	Media string
}

var (
	// BREAKPOINTS is ordered from the smallest to the largest viewport.
	BREAKPOINTS = []Breakpoint{
		{Key: "sm", Media: "(width >= 576px)"},
		{Key: "md", Media: "(width >= 768px)"},
		{Key: "lg", Media: "(width >= 992px)"},
		{Key: "xl", Media: "(width >= 1200px)"},
		{Key: "xxl", Media: "(width >= 1400px)"},
		{Key: "xxxl", Media: "(width >= 1600px)"},
		{Key: "wd", Media: "(width >= 1920px)"},
		{Key: "uwd", Media: "(width >= 2560px)"},
		{Key: "suwd", Media: "(width >= 3840px)"},
	}
)

func getBreakpoint(key string) (Breakpoint, bool) {
	for _, bp := range BREAKPOINTS {
		if bp.Key == key {
			return bp, true
		}
	}
	return Breakpoint{}, false
}

// Definitions returns the definitions of the two optimizable partials.
func Definitions(reg *layout.Registry) []Definition {
	return []Definition{
		{
			Path:        reg.Files.OptimizableLayout,
			IncludeTags: []string{"base", "gap"},
			Classes: []ClassTemplate{
				{Prefix: "x", Declarations: "grid-column-end: span ${num};", Min: 1, Max: 24},
				{Prefix: "xs", Declarations: "grid-column-start: ${num};", Min: 1, Max: 24},
				{Prefix: "y", Declarations: "grid-row-end: span ${num};", Min: 1, Max: 24},
				{Prefix: "ys", Declarations: "grid-row-start: ${num};", Min: 1, Max: 24},
			},
			Wrapper: "@layer layout.helper",
		},
		{
			Path:        reg.Files.OptimizableGrid,
			IncludeTags: []string{"base"},
			Classes: []ClassTemplate{
				{Prefix: "col", Declarations: "grid-template-columns: repeat(${num}, minmax(0, 1fr));", Min: 1, Max: 12},
				{Prefix: "row", Declarations: "grid-template-rows: repeat(${num}, minmax(0, 1fr));", Min: 1, Max: 12},
			},
			Wrapper: "@layer layout.grid",
		},
	}
}

// FindDefinition returns the definition whose path is $pth.
func FindDefinition(defs []Definition, pth string) (Definition, bool) {
	for _, def := range defs {
		if def.Path == pth {
			return def, true
		}
	}
	return Definition{}, false
}

func (d Definition) Prefixes() []string {
	prefixes := make([]string, len(d.Classes))
	for i, class := range d.Classes {
		prefixes[i] = class.Prefix
	}
	return prefixes
}
