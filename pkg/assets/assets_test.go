package assets

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-sitetheme/pkg/document"
)

func newSite(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for name, content := range files {
		require.NoError(t, afero.WriteFile(fs, name, []byte(content), 0o644))
	}
	return fs
}

func TestIsMinified(t *testing.T) {
	require.True(t, IsMinified("a{color:red}\n"))
	require.True(t, IsMinified(strings.Repeat("x", 400)+"\n"+strings.Repeat("y", 400)+"\n"))
	require.False(t, IsMinified("a {\n  color: red;\n}\n"))
	require.False(t, IsMinified(""))
}

func TestRebaseURLs(t *testing.T) {
	css := `.a{background:url("../images/bg.png")}.b{src:url('../fonts/icons.woff')}.c{src:url(font.ttf)}.d{background:url(data:image/png;base64,AAA)}`
	got := RebaseURLs(css, "/templates/shaper/css/template.css")

	require.Contains(t, got, `url('../images/bg.png')`)
	require.Contains(t, got, `url('/templates/shaper/fonts/icons.woff')`)
	require.Contains(t, got, `url('/templates/shaper/css/font.ttf')`)
	require.Contains(t, got, `url(data:image/png;base64,AAA)`)
}

func TestResolver_AddCSSAndJS(t *testing.T) {
	fs := newSite(t, map[string]string{
		"/site/templates/shaper/css/template.css": "body{}",
		"/site/media/vendor/lib.css":              "a{}",
		"/site/templates/shaper/js/main.js":       "var a;",
	})
	r := NewResolver(fs, "/site", "shaper", "/")
	doc := document.New()

	r.AddCSS(doc, "template.css, /media/vendor/lib.css, missing.css,")
	r.AddJS(doc, "main.js", document.Deferred())

	styles := doc.StyleSheets()
	require.Len(t, styles, 2)
	require.Equal(t, "/templates/shaper/css/template.css", styles[0].URL)
	require.Equal(t, "/media/vendor/lib.css", styles[1].URL)

	scripts := doc.Scripts()
	require.Len(t, scripts, 1)
	require.Equal(t, "/templates/shaper/js/main.js", scripts[0].URL)
	require.True(t, r.Exists("js/main.js"))
	require.False(t, r.Exists("js/popper.min.js"))
}

func TestPipeline_CompressCSS(t *testing.T) {
	fs := newSite(t, map[string]string{
		"/site/templates/shaper/css/bootstrap.min.css": "body {\n  color : red;\n}\n",
		"/site/templates/shaper/css/preset1.css":       ".a{background:url(../images/bg.png)}\n.b{src:url('../fonts/x.woff')}\n",
	})
	doc := document.New()
	doc.AddStyleSheet("//fonts.googleapis.com/css?family=Roboto")
	doc.AddStyleSheet("/templates/shaper/css/bootstrap.min.css")
	doc.AddStyleSheet("/templates/shaper/css/preset1.css")
	doc.AddStyleSheet("/templates/shaper/css/missing.css")

	p := NewPipeline(WithFS(fs), WithRoot("/site"), WithLogger(zerolog.Nop())).ForTemplate("shaper")
	require.NoError(t, p.CompressCSS(context.Background(), doc))

	styles := doc.StyleSheets()
	require.Len(t, styles, 4)
	require.Equal(t, "//fonts.googleapis.com/css?family=Roboto", styles[0].URL)
	// a local sheet missing on disk stays linked where it was
	require.Equal(t, "/templates/shaper/css/missing.css", styles[1].URL)

	criticalName := md5Hex(md5Hex("/templates/shaper/css/preset1.css")) + ".css"
	require.Equal(t, "/cache/templates/shaper/"+criticalName, styles[2].URL)
	require.Empty(t, styles[2].Attributes)

	lazyName := md5Hex(md5Hex("/templates/shaper/css/bootstrap.min.css")) + ".css"
	require.Equal(t, "/cache/templates/shaper/"+lazyName, styles[3].URL)
	require.Equal(t, "none", styles[3].Attributes["media"])
	require.Equal(t, "media='all'", styles[3].Attributes["onload"])

	critical, err := afero.ReadFile(fs, "/site/cache/templates/shaper/"+criticalName)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(critical), "/*------ preset1.css ------*/\n"))
	require.Contains(t, string(critical), "url('/templates/shaper/fonts/x.woff')")
	require.Equal(t, md5Hex(string(critical)), styles[2].Version)
}

func TestPipeline_CompressJS(t *testing.T) {
	fs := newSite(t, map[string]string{
		"/site/templates/shaper/js/jquery.min.js": "(function(){})();",
		"/site/templates/shaper/js/main.js":       "function hello ( name ) {\n  return 'hi ' + name;\n}\n",
		"/site/templates/shaper/js/empty.js":      "",
		"/site/templates/shaper/js/skip.js":       "var keep = 1;",
	})
	doc := document.New()
	doc.AddScript("/templates/shaper/js/jquery.min.js")
	doc.AddScript("/templates/shaper/js/main.js")
	doc.AddScript("/templates/shaper/js/empty.js")
	doc.AddScript("/templates/shaper/js/skip.js")
	doc.AddScriptDeclaration(`template="shaper";`)

	p := NewPipeline(WithFS(fs), WithRoot("/site")).ForTemplate("shaper")
	require.NoError(t, p.CompressJS(context.Background(), doc, "skip.js"))

	scripts := doc.Scripts()
	require.Len(t, scripts, 4)
	require.Equal(t, "/templates/shaper/js/skip.js", scripts[0].URL)

	critical := scripts[1]
	require.NotContains(t, critical.Attributes, "defer")
	deferred := scripts[2]
	require.Contains(t, deferred.Attributes, "defer")
	declared := scripts[3]
	require.Contains(t, declared.Attributes, "defer")
	require.Empty(t, doc.ScriptDeclarations())

	body, err := afero.ReadFile(fs, "/site"+deferred.URL)
	require.NoError(t, err)
	require.Contains(t, string(body), "/*------ main.js ------*/")
	require.Contains(t, string(body), "/*------ empty.js ------*/\n/* No content */")
	require.NotContains(t, string(body), "jquery")
}

func TestPipeline_CompressJSDeclarationsStaySeparate(t *testing.T) {
	fs := newSite(t, nil)
	doc := document.New()
	doc.AddScriptDeclaration("var a = 1;")
	doc.AddScriptDeclaration("var b = 2")
	doc.AddScriptDeclaration("  ")

	p := NewPipeline(WithFS(fs), WithRoot("/site")).ForTemplate("shaper")
	require.NoError(t, p.CompressJS(context.Background(), doc, ""))

	scripts := doc.Scripts()
	require.Len(t, scripts, 1)
	body, err := afero.ReadFile(fs, "/site"+scripts[0].URL)
	require.NoError(t, err)
	require.Equal(t, "var a=1;\nvar b=2;\n", string(body))
}

func TestPipeline_StaleRules(t *testing.T) {
	fs := afero.NewMemMapFs()
	now := time.Now()
	p := NewPipeline(WithFS(fs), WithRoot("/site"), WithCacheTime(10*time.Minute), WithClock(func() time.Time { return now }))

	stale, err := p.stale("/site/cache/a.css", "body{}")
	require.NoError(t, err)
	require.True(t, stale, "missing bundle")

	_, _, err = p.store("css", "a.css", "body{}")
	require.NoError(t, err)
	require.NoError(t, fs.Chtimes("/site/cache/a.css", now, now))

	stale, err = p.stale("/site/cache/a.css", "body{}")
	require.NoError(t, err)
	require.False(t, stale, "fresh bundle")

	stale, err = p.stale("/site/cache/a.css", "body{color:red}")
	require.NoError(t, err)
	require.True(t, stale, "size changed")

	p.now = func() time.Time { return now.Add(11 * time.Minute) }
	stale, err = p.stale("/site/cache/a.css", "body{}")
	require.NoError(t, err)
	require.True(t, stale, "cache window elapsed")
}

func TestSweeper_RemovesOldBundles(t *testing.T) {
	fs := newSite(t, map[string]string{
		"/cache/templates/shaper/old.css":  "a{}",
		"/cache/templates/shaper/new.js":   "var a;",
		"/cache/templates/shaper/keep.txt": "x",
	})
	now := time.Now()
	old := now.Add(-time.Hour)
	require.NoError(t, fs.Chtimes("/cache/templates/shaper/old.css", old, old))
	require.NoError(t, fs.Chtimes("/cache/templates/shaper/keep.txt", old, old))
	require.NoError(t, fs.Chtimes("/cache/templates/shaper/new.js", now, now))

	s := NewSweeper(fs, "/cache", 15*time.Minute, zerolog.Nop())
	s.now = func() time.Time { return now }

	removed, err := s.Sweep()
	require.NoError(t, err)
	require.Equal(t, 1, removed)

	exists, _ := afero.Exists(fs, "/cache/templates/shaper/old.css")
	require.False(t, exists)
	exists, _ = afero.Exists(fs, "/cache/templates/shaper/keep.txt")
	require.True(t, exists)
}

func TestSweeper_StartRejectsBadSchedule(t *testing.T) {
	s := NewSweeper(afero.NewMemMapFs(), "/cache", 0, zerolog.Nop())
	require.Error(t, s.Start("not a schedule"))
	s.Stop()
}
