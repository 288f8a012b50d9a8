package sqlite

import (
	"context"
	"net/url"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-sitetheme/pkg/content"
	"github.com/goliatone/go-sitetheme/pkg/menu"
	"github.com/goliatone/go-sitetheme/pkg/params"
	"github.com/goliatone/go-sitetheme/pkg/positions"
	"github.com/goliatone/go-sitetheme/pkg/style"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "site.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_StylesAndRevisions(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	require.NoError(t, s.SaveStyle(ctx, style.Style{ID: 9, Template: "shaper", Title: "Default", Home: true, Params: params.Params{"preset": "preset1"}}))
	require.NoError(t, s.SaveStyle(ctx, style.Style{ID: 10, Template: "shaper", Title: "Landing"}))

	def, err := s.DefaultStyle(ctx, "shaper")
	require.NoError(t, err)
	require.Equal(t, int64(9), def.ID)
	require.True(t, def.Home)

	_, err = s.Style(ctx, 404)
	require.ErrorIs(t, err, style.ErrNotFound)

	svc := style.NewService(s)
	saved, err := svc.Save(ctx, 9, url.Values{"jform[params][sticky_header]": {"1"}})
	require.NoError(t, err)
	require.Equal(t, "1", saved.Params["sticky_header"])

	loaded, err := s.Style(ctx, 9)
	require.NoError(t, err)
	require.Equal(t, "preset1", loaded.Params["preset"])
	require.Equal(t, "1", loaded.Params["sticky_header"])

	revs, err := s.Revisions(ctx, 9)
	require.NoError(t, err)
	require.Len(t, revs, 1)
	require.Equal(t, "1", revs[0].Params["sticky_header"])
}

func TestStore_MenuService(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	svc, err := menu.NewService(s)
	require.NoError(t, err)

	home := &menu.Item{MenuType: "mainmenu", Title: "Home", Published: menu.StatePublished}
	about := &menu.Item{MenuType: "mainmenu", Title: "About", Published: menu.StatePublished}
	require.NoError(t, svc.Save(ctx, home))
	require.NoError(t, svc.Save(ctx, about))
	team := &menu.Item{MenuType: "mainmenu", Title: "Team", ParentID: about.ID, Published: menu.StatePublished}
	require.NoError(t, svc.Save(ctx, team))
	require.Greater(t, home.ID, menu.RootID)

	stored, err := s.MenuItem(ctx, team.ID)
	require.NoError(t, err)
	require.Equal(t, 2, stored.Level)
	require.Equal(t, "team", stored.Alias)

	require.NoError(t, svc.Adopt(ctx, team.ID, home.ID))
	stored, err = s.MenuItem(ctx, team.ID)
	require.NoError(t, err)
	require.Equal(t, home.ID, stored.ParentID)

	require.NoError(t, svc.Trash(ctx, home.ID))
	nodes, err := svc.Tree(ctx, "mainmenu")
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	require.Equal(t, "About", nodes[0].Item.Title)

	_, err = s.MenuItem(ctx, 999)
	require.ErrorIs(t, err, menu.ErrNotFound)
}

func TestStore_Modules(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	second := &positions.Module{Title: "Second", Position: "right", Content: "<p>2</p>", Ordering: 2}
	first := &positions.Module{Title: "First", Position: "right", Content: "<p>1</p>", Ordering: 1, Params: params.Params{"moduleclass_sfx": " card"}}
	hidden := &positions.Module{Title: "Hidden", Position: "right", Content: "<p>x</p>"}
	require.NoError(t, s.SaveModule(ctx, second, true))
	require.NoError(t, s.SaveModule(ctx, first, true))
	require.NoError(t, s.SaveModule(ctx, hidden, false))

	mods, err := s.Modules(ctx, "right")
	require.NoError(t, err)
	require.Len(t, mods, 2)
	require.Equal(t, "First", mods[0].Title)
	require.Equal(t, " card", mods[0].Params["moduleclass_sfx"])

	reg := positions.NewRegistry(positions.WithSource(s))
	html, err := reg.RenderModule(ctx, second.ID)
	require.NoError(t, err)
	require.Equal(t, "<p>2</p>", string(html))

	_, err = reg.RenderModule(ctx, hidden.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestStore_RelatedArticles(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.SaveCategory(ctx, 8, "News", "news", 1))
	require.NoError(t, s.SaveAuthor(ctx, 42, "Ada"))

	save := func(a content.Article, tags ...int64) int64 {
		require.NoError(t, s.SaveArticle(ctx, &a, 42, tags))
		return a.ID
	}
	self := save(content.Article{Title: "Self", Alias: "self", CategoryID: 8, Access: 1, State: 1, Created: now.AddDate(0, 0, -1)}, 40)
	older := save(content.Article{Title: "Older", Alias: "older", CategoryID: 8, Access: 1, State: 1, Created: now.AddDate(0, 0, -9)})
	tagged := save(content.Article{Title: "Tagged", Alias: "tagged", Access: 1, State: 1, Language: "en-GB", Created: now.AddDate(0, 0, -2)}, 40)
	save(content.Article{Title: "Expired", Alias: "expired", CategoryID: 8, Access: 1, State: 1, Created: now.AddDate(0, 0, -3), PublishDown: now.AddDate(0, 0, -1)})
	save(content.Article{Title: "Private", Alias: "private", CategoryID: 8, Access: 3, State: 1, Created: now.AddDate(0, 0, -4)})
	save(content.Article{Title: "German", Alias: "german", Access: 1, State: 1, Language: "de-DE", Created: now.AddDate(0, 0, -5)}, 40)
	save(content.Article{Title: "Draft", Alias: "draft", CategoryID: 8, Access: 1, State: 0, Created: now.AddDate(0, 0, -6)})

	got, err := content.Related(ctx, s, content.RelatedQuery{
		ItemID:       self,
		CategoryID:   8,
		TagIDs:       []int64{40},
		Language:     "en-GB",
		AccessLevels: []int{1},
		Now:          now,
	})
	require.NoError(t, err)

	var ids []int64
	for _, a := range got {
		ids = append(ids, a.ID)
	}
	require.Equal(t, []int64{tagged, older}, ids)
	require.Equal(t, "Ada", got[1].Author)
	require.Equal(t, "8:news", got[1].CatSlug)
	require.True(t, got[1].AccessView)
}
