package reshape

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/gofhir/tabulate/cache"
	"github.com/gofhir/tabulate/design"
)

// fragment is one value parsed back out of an indexed cell, together
// with its index trail. A nil trail means the value carried no marker.
type fragment struct {
	trail []int
	value string
}

// markerCache holds one compiled marker pattern per bracket pair.
// Bracket pairs are few in practice, so a small cache suffices.
var markerCache = cache.New[string, *regexp.Regexp](16)

func markerRegexp(b design.Brackets) (*regexp.Regexp, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return markerCache.GetOrCompute(b.Open+"\x00"+b.Close, func() (*regexp.Regexp, error) {
		return regexp.Compile(b.Pattern())
	})
}

// parseFragments splits an indexed cell back into its fragments. The
// text between two markers belongs to the first of them, minus the
// trailing separator that joined the fragments at crack time.
func parseFragments(cell string, sep string, b design.Brackets, re *regexp.Regexp) []fragment {
	if cell == "" {
		return nil
	}

	locs := re.FindAllStringIndex(cell, -1)
	if len(locs) == 0 {
		return []fragment{{value: cell}}
	}

	var frags []fragment
	if locs[0][0] > 0 {
		// Unindexed lead-in before the first marker.
		frags = append(frags, fragment{
			value: strings.TrimSuffix(cell[:locs[0][0]], sep),
		})
	}

	for i, loc := range locs {
		end := len(cell)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		value := cell[loc[1]:end]
		if i+1 < len(locs) {
			value = strings.TrimSuffix(value, sep)
		}
		frags = append(frags, fragment{
			trail: parseTrail(cell[loc[0]:loc[1]], b),
			value: value,
		})
	}
	return frags
}

// parseTrail decodes "[1.2.3]" into {1, 2, 3}.
func parseTrail(marker string, b design.Brackets) []int {
	inner := marker[len(b.Open) : len(marker)-len(b.Close)]
	parts := strings.Split(inner, ".")
	trail := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil // cannot happen: the pattern admits digits only
		}
		trail[i] = n
	}
	return trail
}

// renderFragment writes one fragment back to its cell form, with the
// marker re-rendered from whatever trail remains.
func renderFragment(f fragment, b design.Brackets) string {
	if len(f.trail) == 0 {
		return f.value
	}
	var sb strings.Builder
	sb.WriteString(b.Open)
	for i, n := range f.trail {
		if i > 0 {
			sb.WriteByte('.')
		}
		sb.WriteString(strconv.Itoa(n))
	}
	sb.WriteString(b.Close)
	sb.WriteString(f.value)
	return sb.String()
}
