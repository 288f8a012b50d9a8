package scss

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-sitetheme/pkg/assets"
	"github.com/goliatone/go-sitetheme/pkg/document"
)

const tplDir = "/site/templates/shaper/scss"

func newTemplateFS(t *testing.T) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	files := map[string]string{
		tplDir + "/master.scss":           "@import 'variables';\n@use \"sass:math\";\n// @import 'commented';\n@import 'partials/header', 'vendor/reset.css';\nbody{color:$text;}",
		tplDir + "/_variables.scss":       "$text: #000 !default;",
		tplDir + "/partials/_header.scss": "@import '../variables';\n#sp-header{height:80px;}",
	}
	for name, content := range files {
		require.NoError(t, afero.WriteFile(fs, filepath.FromSlash(name), []byte(content), 0o644))
	}
	return fs
}

func TestImports_FollowsPartials(t *testing.T) {
	fs := newTemplateFS(t)

	files, err := Imports(fs, tplDir, "master")
	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.FromSlash(tplDir + "/master.scss"),
		filepath.FromSlash(tplDir + "/_variables.scss"),
		filepath.FromSlash(tplDir + "/partials/_header.scss"),
	}, files)

	_, err = Imports(fs, tplDir, "missing")
	require.Error(t, err)
}

func TestEntrySource_DeclaresVarsBeforeImport(t *testing.T) {
	got := entrySource(Request{Entry: "master", Vars: map[string]string{"text": "#333", "$major": "red"}})
	require.Equal(t, "$major: red;\n$text: #333;\n@import \"master\";\n", got)
}

func TestManager_CompilesOnceUntilSourcesChange(t *testing.T) {
	fs := newTemplateFS(t)
	calls := 0
	compiler := CompilerFunc(func(_ context.Context, req Request) (Result, error) {
		calls++
		require.Equal(t, "master", req.Entry)
		return Result{CSS: "body{color:" + req.Vars["text"] + "}"}, nil
	})
	m := NewManager(
		assets.NewResolver(fs, "/site", "shaper", ""),
		WithFS(fs),
		WithCompiler(compiler),
		WithEnabled(true),
		WithCacheDir("/site/cache/templates/shaper"),
	)
	vars := map[string]string{"text": "#333"}

	doc := document.New()
	require.NoError(t, m.Add(context.Background(), doc, "master.scss", vars, "", false))
	require.Equal(t, 1, calls)
	require.Len(t, doc.StyleSheets(), 1)
	require.Equal(t, "/templates/shaper/css/master.css", doc.StyleSheets()[0].URL)

	css, err := afero.ReadFile(fs, "/site/templates/shaper/css/master.css")
	require.NoError(t, err)
	require.Equal(t, "body{color:#333}", string(css))

	require.NoError(t, m.Add(context.Background(), document.New(), "master", vars, "", false))
	require.Equal(t, 1, calls, "unchanged sources must not recompile")

	needs, err := m.NeedsCompile("master", map[string]string{"text": "#fff"})
	require.NoError(t, err)
	require.True(t, needs, "changed variable")

	later := time.Now().Add(time.Hour)
	require.NoError(t, fs.Chtimes(filepath.FromSlash(tplDir+"/partials/_header.scss"), later, later))
	needs, err = m.NeedsCompile("master", vars)
	require.NoError(t, err)
	require.True(t, needs, "touched import")

	require.NoError(t, m.Add(context.Background(), document.New(), "master", vars, "preset1", true))
	require.Equal(t, 2, calls)
	exists, _ := afero.Exists(fs, "/site/templates/shaper/css/preset1.css")
	require.True(t, exists)
}

func TestManager_DisabledOnlyLinks(t *testing.T) {
	fs := newTemplateFS(t)
	require.NoError(t, afero.WriteFile(fs, "/site/templates/shaper/css/master.css", []byte("body{}"), 0o644))
	m := NewManager(
		assets.NewResolver(fs, "/site", "shaper", ""),
		WithFS(fs),
		WithCompiler(CompilerFunc(func(context.Context, Request) (Result, error) {
			return Result{}, errors.New("must not compile")
		})),
	)

	doc := document.New()
	require.NoError(t, m.Add(context.Background(), doc, "master", nil, "", true))
	require.Len(t, doc.StyleSheets(), 1)
}

func TestManager_CompileErrorPropagates(t *testing.T) {
	fs := newTemplateFS(t)
	m := NewManager(
		assets.NewResolver(fs, "/site", "shaper", ""),
		WithFS(fs),
		WithEnabled(true),
		WithCacheDir("/site/cache"),
		WithCompiler(CompilerFunc(func(context.Context, Request) (Result, error) {
			return Result{}, errors.New("undefined variable")
		})),
	)
	err := m.Add(context.Background(), document.New(), "master", nil, "", false)
	require.ErrorContains(t, err, "undefined variable")
}
