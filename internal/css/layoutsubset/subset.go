package layoutsubset

import (
	"strconv"
	"strings"

	"github.com/arif891/layx-sub000/internal/sourcetext"
)

// Synthesize generates the rules of an optimizable partial from its source and the class usage: the include
// blocks, then the base rules, then one media block per used breakpoint. The result is not wrapped, see Wrap.
func Synthesize(def Definition, source string, usage Usage) string {
	var parts []string

	for _, tag := range def.IncludeTags {
		block, ok := sourcetext.ExtractBlock(source, tag)
		if !ok {
			continue
		}
		block = strings.TrimSpace(block)
		if block != "" {
			parts = append(parts, block)
		}
	}

	for _, class := range def.Classes {
		for _, num := range usage.BaseNumbers(class.Prefix) {
			if !class.hasTemplateFor(num) {
				continue
			}
			parts = append(parts, class.rule(class.Prefix+"-"+strconv.Itoa(num), num))
		}
	}

	for _, bp := range BREAKPOINTS {
		var rules []string

		for _, class := range def.Classes {
			for _, num := range usage.BreakpointNumbers(class.Prefix, bp.Key) {
				if !class.hasTemplateFor(num) {
					continue
				}
				rules = append(rules, class.rule(class.Prefix+"-"+bp.Key+"-"+strconv.Itoa(num), num))
			}
		}

		if len(rules) > 0 {
			parts = append(parts, "@media "+bp.Media+"{"+strings.Join(rules, "")+"}")
		}
	}

	return strings.Join(parts, "\n")
}

// Wrap wraps $rules in the at-rule of the definition. The content of a @layer block is copied verbatim by the
// CSS minifier, $rules should be minified before being wrapped.
func (d Definition) Wrap(rules string) string {
	if rules == "" || d.Wrapper == "" {
		return rules
	}
	return d.Wrapper + "{" + rules + "}"
}

func (t ClassTemplate) rule(className string, num int) string {
	declarations := strings.ReplaceAll(t.Declarations, NUM_PLACEHOLDER, strconv.Itoa(num))
	return "." + className + "{" + declarations + "}"
}
