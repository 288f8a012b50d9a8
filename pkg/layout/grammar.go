package layout

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// ErrInvalidColumnLayout is returned when a column split does not add up to
// the grid width.
var ErrInvalidColumnLayout = errors.New("layout: column arrangement must total 12 grid units")

var (
	splitLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
		{Name: "Int", Pattern: `\d+`},
		{Name: "Plus", Pattern: `\+`},
	})

	splitParser = participle.MustBuild[columnSplit](
		participle.Lexer(splitLexer),
		participle.Elide("Whitespace"),
	)
)

type columnSplit struct {
	Pos   lexer.Position `parser:""`
	First int            `parser:"@Int"`
	Rest  []int          `parser:"( Plus @Int )*"`
}

// ParseColumnLayout parses a split such as "4+2+2+2+2" and checks it fills
// the grid exactly.
func ParseColumnLayout(raw string) ([]int, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: empty arrangement", ErrInvalidColumnLayout)
	}
	split, err := splitParser.ParseString("", trimmed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidColumnLayout, err)
	}

	sizes := append([]int{split.First}, split.Rest...)
	total := 0
	for _, size := range sizes {
		if size <= 0 {
			return nil, fmt.Errorf("%w: column width must be positive", ErrInvalidColumnLayout)
		}
		total += size
	}
	if total != GridColumns {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidColumnLayout, total)
	}
	return sizes, nil
}

// FormatColumnLayout is the inverse of ParseColumnLayout.
func FormatColumnLayout(sizes []int) ColumnLayout {
	if len(sizes) == 0 {
		return ColumnLayout(fmt.Sprint(GridColumns))
	}
	parts := make([]string, len(sizes))
	for i, size := range sizes {
		parts[i] = fmt.Sprint(size)
	}
	return ColumnLayout(strings.Join(parts, "+"))
}
