package webfonts

import (
	"sort"
	"strings"

	"github.com/goliatone/go-sitetheme/pkg/webfonts"
)

// Family is one entry of the picker payload.
type Family struct {
	Name   string `json:"value"`
	Label  string `json:"label"`
	System bool   `json:"system,omitempty"`
	// Stylesheet is the Google Fonts CSS URL, empty for system fonts.
	Stylesheet string `json:"url,omitempty"`
}

// Match ranks.
const (
	rankExact = iota
	rankPrefix
	rankWord
	rankContains
)

// Search returns up to limit families containing query, case-insensitive.
// Exact matches come first, then prefix matches, then matches at the start
// of a later word, then the rest. Ties keep alphabetical order.
func Search(families []string, query string, limit int) []string {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" || limit <= 0 {
		return nil
	}

	type hit struct {
		name string
		rank int
	}
	var hits []hit
	for _, name := range families {
		lower := strings.ToLower(name)
		idx := strings.Index(lower, q)
		if idx < 0 {
			continue
		}
		rank := rankContains
		switch {
		case lower == q:
			rank = rankExact
		case idx == 0:
			rank = rankPrefix
		case strings.Contains(lower, " "+q):
			rank = rankWord
		}
		hits = append(hits, hit{name: name, rank: rank})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].rank != hits[j].rank {
			return hits[i].rank < hits[j].rank
		}
		return hits[i].name < hits[j].name
	})
	if len(hits) > limit {
		hits = hits[:limit]
	}

	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.name
	}
	return out
}

// Describe turns family names into picker entries.
func Describe(names []string) []Family {
	out := make([]Family, 0, len(names))
	for _, name := range names {
		out = append(out, Family{
			Name:       name,
			Label:      name,
			System:     webfonts.IsSystemFont(name),
			Stylesheet: webfonts.GoogleURL(webfonts.Font{Family: name}),
		})
	}
	return out
}
