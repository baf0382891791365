package layoutsubset

import (
	"regexp"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/exp/maps"
)

var (
	CLASS_TOKEN_REGEX = regexp.MustCompile(`[A-Za-z0-9_-]+`)
)

// Usage records the class numbers referenced in markup, per prefix.
type Usage map[string]*PrefixUsage

type PrefixUsage struct {
	Base        map[int]struct{}
	Breakpoints map[string]map[int]struct{} //breakpoint key -> numbers
}

func (u Usage) prefix(prefix string) *PrefixUsage {
	p, ok := u[prefix]
	if !ok {
		p = &PrefixUsage{
			Base:        map[int]struct{}{},
			Breakpoints: map[string]map[int]struct{}{},
		}
		u[prefix] = p
	}
	return p
}

// BaseNumbers returns the numbers used without breakpoint, sorted ascending.
func (u Usage) BaseNumbers(prefix string) []int {
	p, ok := u[prefix]
	if !ok {
		return nil
	}
	return sortedNumbers(p.Base)
}

// BreakpointNumbers returns the numbers used with the breakpoint $key, sorted ascending.
func (u Usage) BreakpointNumbers(prefix string, key string) []int {
	p, ok := u[prefix]
	if !ok {
		return nil
	}
	return sortedNumbers(p.Breakpoints[key])
}

func sortedNumbers(set map[int]struct{}) []int {
	if len(set) == 0 {
		return nil
	}
	nums := maps.Keys(set)
	slices.Sort(nums)
	return nums
}

// ScanUsage tokenizes $html and collects the usages of <prefix>-<N> and <prefix>-<breakpoint>-<N> classes.
// Tokens with an unknown breakpoint key or a non-positive number are ignored.
func ScanUsage(html string, prefixes []string) Usage {
	usage := Usage{}

	for _, token := range CLASS_TOKEN_REGEX.FindAllString(html, -1) {
		for _, prefix := range prefixes {
			rest, ok := strings.CutPrefix(token, prefix+"-")
			if !ok {
				continue
			}

			if num, ok := parsePositiveInt(rest); ok {
				usage.prefix(prefix).Base[num] = struct{}{}
				continue
			}

			key, numString, ok := strings.Cut(rest, "-")
			if !ok {
				continue
			}
			if _, ok := getBreakpoint(key); !ok {
				continue
			}
			num, ok := parsePositiveInt(numString)
			if !ok {
				continue
			}

			p := usage.prefix(prefix)
			nums, ok := p.Breakpoints[key]
			if !ok {
				nums = map[int]struct{}{}
				p.Breakpoints[key] = nums
			}
			nums[num] = struct{}{}
		}
	}

	return usage
}

func parsePositiveInt(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
