package webfonts

import (
	"bufio"
	_ "embed"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
)

//go:embed data/google_fonts.txt
var googleFonts string

// DefaultFamilies returns the embedded Google Fonts list, sorted. The slice
// is shared and must not be modified.
var DefaultFamilies = sync.OnceValues(func() ([]string, error) {
	return LoadFamilies(strings.NewReader(googleFonts))
})

// LoadFamilies reads one family per line and returns them sorted. Blank
// lines and # comments are skipped. Names differing only in case count
// once, first spelling wins.
func LoadFamilies(r io.Reader) ([]string, error) {
	if r == nil {
		return nil, errors.New("webfonts: nil reader")
	}
	seen := map[string]bool{}
	var out []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		name := strings.TrimSpace(sc.Text())
		key := strings.ToLower(name)
		if name == "" || name[0] == '#' || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, name)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	sort.Strings(out)
	return out, nil
}
