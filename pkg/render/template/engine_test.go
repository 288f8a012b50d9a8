package template_test

import (
	"embed"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-sitetheme/pkg/render/template"
	"github.com/goliatone/go-sitetheme/pkg/testsupport"
)

//go:embed testdata/templates/*.tpl
var embedded embed.FS

func bundle(t *testing.T) fs.FS {
	t.Helper()
	sub, err := fs.Sub(embedded, "testdata/templates")
	require.NoError(t, err)
	return sub
}

func TestEngine_Execute(t *testing.T) {
	e, err := template.New(template.WithFS(bundle(t)))
	require.NoError(t, err)

	out, err := e.Execute("hello", map[string]any{"name": "Ada"})
	require.NoError(t, err)
	testsupport.Golden(t, filepath.Join("testdata", "hello.golden"), out)

	out, err = e.Execute("hello.tpl", map[string]any{"name": "Grace"})
	require.NoError(t, err)
	require.Contains(t, out, "Hello Grace")
}

func TestEngine_ClassesFilterAndHas(t *testing.T) {
	e, err := template.New(template.WithFS(bundle(t)), template.WithName("test"))
	require.NoError(t, err)

	out, err := e.Execute("use-classes", map[string]any{"classes": "  col-lg-6   d-none\td-lg-block "})
	require.NoError(t, err)
	require.Equal(t, "<div class=\"col-lg-6 d-none d-lg-block\"></div>\n", out)

	require.True(t, e.Has("hello"))
	require.False(t, e.Has("missing"))
	require.False(t, e.Has(""))

	_, err = e.Execute("missing", nil)
	require.ErrorContains(t, err, "template test: load missing.tpl")
}

func TestEngine_OverrideDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hello.tpl"), []byte("override {{ name }}"), 0o644))

	e, err := template.New(template.WithOverrideDir(dir), template.WithFS(bundle(t)))
	require.NoError(t, err)

	out, err := e.Execute("hello", map[string]any{"name": "Ada"})
	require.NoError(t, err)
	require.Equal(t, "override Ada", out)

	out, err = e.Execute("use-classes", map[string]any{"classes": "row"})
	require.NoError(t, err)
	require.Equal(t, "<div class=\"row\"></div>\n", out)
}

func TestEngine_MissingOverrideDirIgnored(t *testing.T) {
	e, err := template.New(
		template.WithOverrideDir(filepath.Join(t.TempDir(), "absent")),
		template.WithFS(bundle(t)),
	)
	require.NoError(t, err)
	require.True(t, e.Has("hello"))

	_, err = template.New(template.WithOverrideDir(filepath.Join(t.TempDir(), "absent")))
	require.Error(t, err)
}

func TestEngine_ExecuteString(t *testing.T) {
	e, err := template.New(template.WithFS(bundle(t)))
	require.NoError(t, err)

	out, err := e.ExecuteString(`<body class="{{ cls|classes }}">{{ html|safe }}</body>`, map[string]any{
		"cls":  " a  b ",
		"html": "<p>x</p>",
	})
	require.NoError(t, err)
	require.Equal(t, `<body class="a b"><p>x</p></body>`, out)

	_, err = e.ExecuteString("{% if %}", nil)
	require.Error(t, err)
}
