package design

import (
	"fmt"
	"regexp"
	"strings"
)

// Brackets is the pair of markers wrapping an index trail in a cell.
type Brackets struct {
	Open  string
	Close string
}

// DefaultBrackets returns the conventional square-bracket pair.
func DefaultBrackets() Brackets {
	return Brackets{Open: "[", Close: "]"}
}

// Validate checks that the pair can unambiguously delimit index trails.
func (b Brackets) Validate() error {
	if b.Open == "" || b.Close == "" {
		return fmt.Errorf("brackets: both open %q and close %q must be non-empty", b.Open, b.Close)
	}
	if b.Open == b.Close {
		return fmt.Errorf("brackets: open and close must differ, got %q twice", b.Open)
	}
	if isDigitsAndDots(b.Open) || isDigitsAndDots(b.Close) {
		return fmt.Errorf("brackets: %q collides with index digits", b.Open+b.Close)
	}
	return nil
}

// Pattern returns the regular expression source matching one bracketed
// index trail, with all bracket metacharacters neutralized.
func (b Brackets) Pattern() string {
	return regexp.QuoteMeta(b.Open) + `\d+(?:\.\d+)*` + regexp.QuoteMeta(b.Close)
}

func isDigitsAndDots(s string) bool {
	for _, r := range s {
		if (r < '0' || r > '9') && r != '.' {
			return false
		}
	}
	return len(s) > 0
}

// Style holds the rendering options of one table description.
type Style struct {
	// Sep joins multiple values inside one cell.
	Sep string

	// Brackets wrap the index trail prefixed to each value when the
	// extraction path was ambiguous.
	Brackets Brackets

	// RemoveEmptyColumns drops columns whose every cell is empty.
	RemoveEmptyColumns bool
}

// DefaultStyle returns the default style: values joined with a single
// space, square brackets, empty columns kept.
func DefaultStyle() Style {
	return Style{
		Sep:      " ",
		Brackets: DefaultBrackets(),
	}
}

// Validate checks the style for ambiguous configurations.
func (s Style) Validate() error {
	if s.Sep == "" {
		return fmt.Errorf("style: separator must be non-empty")
	}
	if err := s.Brackets.Validate(); err != nil {
		return fmt.Errorf("style: %w", err)
	}
	if strings.Contains(s.Brackets.Open, s.Sep) || strings.Contains(s.Brackets.Close, s.Sep) {
		return fmt.Errorf("style: separator %q occurs inside a bracket", s.Sep)
	}
	return nil
}
