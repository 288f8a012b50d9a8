package layout

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Section element names.
const (
	SemanticHeader  = "header"
	SemanticFooter  = "footer"
	SemanticSection = "section"
)

// SectionID returns the DOM id of the row at index: "sp-<name>" for named
// rows, "sp-section-<n>" (1 based) otherwise.
func SectionID(settings RowSettings, index int) string {
	if settings.Name != "" {
		if slug := URLSafe(settings.Name); slug != "" {
			return "sp-" + slug
		}
	}
	return "sp-section-" + strconv.Itoa(index+1)
}

// Semantic picks the wrapper element for a row name.
func Semantic(name string) string {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case SemanticHeader:
		return SemanticHeader
	case SemanticFooter:
		return SemanticFooter
	default:
		return SemanticSection
	}
}

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// URLSafe converts a label into a lowercase slug: accents are folded,
// whitespace and hyphen runs become a single hyphen and anything that is not
// an ASCII letter or digit is dropped.
func URLSafe(s string) string {
	folded, _, err := transform.String(stripMarks, s)
	if err != nil {
		folded = s
	}
	folded = strings.ReplaceAll(folded, "-", " ")

	var b strings.Builder
	pendingDash := false
	for _, r := range folded {
		switch {
		case unicode.IsSpace(r):
			pendingDash = b.Len() > 0
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			if pendingDash {
				b.WriteByte('-')
				pendingDash = false
			}
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}
