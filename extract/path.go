package extract

import (
	"fmt"
	"strings"
)

// Path is a compiled extraction path.
type Path struct {
	// Steps are the child-element names, outermost first.
	Steps []string

	// Attr is the trailing attribute selector, without the "@". Empty
	// when the path addresses element text.
	Attr string

	// src is the original path string, kept for error reporting.
	src string
}

// String returns the original path string.
func (p Path) String() string {
	return p.src
}

// Parse compiles a path string. Steps are validated eagerly so that
// malformed paths surface at schema-construction time, not at crack
// time.
func Parse(s string) (Path, error) {
	p := Path{src: s}

	trimmed := strings.TrimPrefix(strings.TrimSpace(s), "./")
	trimmed = strings.Trim(trimmed, "/")
	if trimmed == "" {
		return p, fmt.Errorf("parse path %q: empty path", s)
	}

	parts := strings.Split(trimmed, "/")
	for i, part := range parts {
		if part == "" {
			return p, fmt.Errorf("parse path %q: empty step", s)
		}

		if strings.HasPrefix(part, "@") {
			if i != len(parts)-1 {
				return p, fmt.Errorf("parse path %q: attribute selector %q must be the final step", s, part)
			}
			attr := part[1:]
			if !validName(attr) {
				return p, fmt.Errorf("parse path %q: invalid attribute name %q", s, attr)
			}
			p.Attr = attr
			continue
		}

		if !validName(part) {
			return p, fmt.Errorf("parse path %q: invalid step %q", s, part)
		}
		p.Steps = append(p.Steps, part)
	}

	if len(p.Steps) == 0 {
		return p, fmt.Errorf("parse path %q: attribute selector needs a preceding element step", s)
	}
	return p, nil
}

// MustParse is like Parse but panics on error. For tests and
// compile-time-constant paths.
func MustParse(s string) Path {
	p, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return p
}

func validName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
		case r >= '0' && r <= '9', r == '-':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}
