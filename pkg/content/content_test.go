package content

import (
	"context"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestMarkdown_Sanitizes(t *testing.T) {
	html, err := Markdown("# Title\n\nSome *text* <script>alert(1)</script> <span class=\"fa fa-star\" onclick=\"x()\"></span>")
	if err != nil {
		t.Fatalf("markdown: %v", err)
	}
	out := string(html)
	for _, want := range []string{"<h1", "<em>text</em>", `<span class="fa fa-star">`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in %s", want, out)
		}
	}
	for _, banned := range []string{"<script", "onclick"} {
		if strings.Contains(out, banned) {
			t.Fatalf("unexpected %q in %s", banned, out)
		}
	}
}

func TestRender_Formats(t *testing.T) {
	got, _ := Render("<b>bold</b>", FormatText)
	if string(got) != "&lt;b&gt;bold&lt;/b&gt;" {
		t.Fatalf("text must be escaped, got %q", got)
	}
	got, _ = Render(`<p onmouseover="x()">hi</p>`, FormatHTML)
	if string(got) != "<p>hi</p>" {
		t.Fatalf("html must be sanitized, got %q", got)
	}
	if StripTitle("<em>Hello</em> world") != "Hello world" {
		t.Fatalf("title markup must be stripped")
	}
}

type fakeArticles struct {
	byCategory map[int64][]int64
	byTag      map[int64][]int64
	articles   []Article
	lastFilter ArticleFilter
	catLimit   int
}

func (f *fakeArticles) CategoryArticleIDs(_ context.Context, categoryID int64, limit int) ([]int64, error) {
	f.catLimit = limit
	ids := f.byCategory[categoryID]
	if len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

func (f *fakeArticles) TaggedArticleIDs(_ context.Context, tagIDs []int64) ([]int64, error) {
	var out []int64
	for _, tag := range tagIDs {
		out = append(out, f.byTag[tag]...)
	}
	return out, nil
}

func (f *fakeArticles) Articles(_ context.Context, filter ArticleFilter) ([]Article, error) {
	f.lastFilter = filter
	wanted := map[int64]bool{}
	for _, id := range filter.IDs {
		wanted[id] = true
	}
	var out []Article
	for _, a := range f.articles {
		if !wanted[a.ID] || a.ID == filter.ExcludeID || a.State != 1 {
			continue
		}
		if !a.PublishDown.IsZero() && a.PublishDown.Before(filter.Now) {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Created.After(out[j].Created) })
	if len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func TestRelated(t *testing.T) {
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	day := func(d int) time.Time { return now.AddDate(0, 0, -d) }
	store := &fakeArticles{
		byCategory: map[int64][]int64{8: {1, 2, 3}},
		byTag:      map[int64][]int64{40: {3, 4}, 41: {5}},
		articles: []Article{
			{ID: 1, Alias: "self", CategoryID: 8, State: 1, Access: 1, Created: day(1)},
			{ID: 2, Alias: "two", CategoryID: 8, CategoryAlias: "news", State: 1, Access: 1, Created: day(5)},
			{ID: 3, Alias: "three", CategoryID: 8, CategoryAlias: "news", State: 1, Access: 1, Created: day(2)},
			{ID: 4, Alias: "four", State: 1, Access: 3, Created: day(3), PublishDown: day(1)},
			{ID: 5, Alias: "five", CategoryID: 9, CategoryAlias: "blog", CategoryAccess: 3, State: 1, Access: 1, Created: day(4)},
		},
	}

	got, err := Related(context.Background(), store, RelatedQuery{
		ItemID:       1,
		CategoryID:   8,
		TagIDs:       []int64{40, 41},
		Language:     "en-GB",
		AccessLevels: []int{1},
		Now:          now,
	})
	if err != nil {
		t.Fatalf("related: %v", err)
	}

	var slugs []string
	for _, a := range got {
		slugs = append(slugs, a.Slug+"|"+a.CatSlug)
	}
	want := []string{"3:three|8:news", "5:five|9:blog", "2:two|8:news"}
	if diff := cmp.Diff(want, slugs); diff != "" {
		t.Fatalf("related mismatch (-want +got):\n%s", diff)
	}
	if got[1].AccessView {
		t.Fatalf("category access level 3 must not be viewable with levels [1]")
	}
	if store.catLimit != DefaultRelated+1 {
		t.Fatalf("category lookup limit = %d", store.catLimit)
	}
	if diff := cmp.Diff([]string{"en-GB", "*"}, store.lastFilter.Languages); diff != "" {
		t.Fatalf("language filter mismatch:\n%s", diff)
	}
	if diff := cmp.Diff([]int64{1, 2, 3, 4, 5}, store.lastFilter.IDs); diff != "" {
		t.Fatalf("candidate ids mismatch:\n%s", diff)
	}
}

func TestRelated_NoCandidates(t *testing.T) {
	got, err := Related(context.Background(), &fakeArticles{}, RelatedQuery{ItemID: 1})
	if err != nil || got != nil {
		t.Fatalf("expected no articles, got %v, %v", got, err)
	}
}
