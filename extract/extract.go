package extract

import (
	"strings"

	"github.com/gofhir/tabulate/tree"
)

// Match is one extracted value together with its provenance trail.
type Match struct {
	// Trail holds one 1-based sibling position for every path step that
	// matched two or more siblings anywhere in the resource. Empty when
	// the path was unambiguous at every level.
	Trail []int

	// Value is the extracted string. Typing is never inferred; consumers
	// cast post hoc.
	Value string
}

// candidate tracks one partial traversal during descent.
type candidate struct {
	node  *tree.Element
	trail []int
}

// Extract runs a compiled path against one resource tree and returns
// all matches in document order. A zero-match path returns nil, which
// becomes an empty cell at table level.
func Extract(root *tree.Element, p Path) []Match {
	if root == nil || len(p.Steps) == 0 {
		return nil
	}

	current := []candidate{{node: root}}
	ambiguous := make([]bool, len(p.Steps))

	for depth, step := range p.Steps {
		next := make([]candidate, 0, len(current))
		for _, c := range current {
			matched := c.node.ChildrenNamed(step)
			if len(matched) >= 2 {
				ambiguous[depth] = true
			}
			for i, m := range matched {
				trail := make([]int, len(c.trail), len(c.trail)+1)
				copy(trail, c.trail)
				next = append(next, candidate{node: m, trail: append(trail, i+1)})
			}
		}
		if len(next) == 0 {
			return nil
		}
		current = next
	}

	matches := make([]Match, 0, len(current))
	for _, c := range current {
		value, ok := valueOf(c.node, p.Attr)
		if !ok {
			continue
		}
		matches = append(matches, Match{Trail: reduceTrail(c.trail, ambiguous), Value: value})
	}
	return matches
}

// valueOf resolves the final node to a string value: the selected
// attribute, or the node's text content.
func valueOf(node *tree.Element, attr string) (string, bool) {
	if attr != "" {
		return node.Attr(attr)
	}
	if node.Text == "" {
		return "", false
	}
	return node.Text, true
}

// reduceTrail keeps only the components of steps that were ambiguous,
// returning nil for a fully unambiguous traversal.
func reduceTrail(full []int, ambiguous []bool) []int {
	n := 0
	for _, a := range ambiguous {
		if a {
			n++
		}
	}
	if n == 0 {
		return nil
	}
	trail := make([]int, 0, n)
	for i, pos := range full {
		if ambiguous[i] {
			trail = append(trail, pos)
		}
	}
	return trail
}

// Discover returns every leaf path of a resource that carries a value,
// slash-joined relative to the resource root, deduplicated in
// first-seen document order. Used when a table description declares no
// columns.
func Discover(root *tree.Element) []string {
	if root == nil {
		return nil
	}

	var (
		paths []string
		seen  = make(map[string]struct{})
		segs  []string
	)

	var walk func(el *tree.Element)
	walk = func(el *tree.Element) {
		for _, c := range el.Children {
			segs = append(segs, c.Name)
			// Primitives with extensions carry both text and children.
			if c.Text != "" {
				p := strings.Join(segs, "/")
				if _, dup := seen[p]; !dup {
					seen[p] = struct{}{}
					paths = append(paths, p)
				}
			}
			if !c.IsLeaf() {
				walk(c)
			}
			segs = segs[:len(segs)-1]
		}
	}
	walk(root)

	return paths
}
