package sitetheme

import (
	"context"
	"errors"
	"io/fs"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/goliatone/go-sitetheme/pkg/page"
)

const layoutJSON = `[
  {"type":"row","layout":"12","settings":{"name":"Main Body"},"attr":[
    {"type":"sp_col","settings":{"name":"","grid_size":12,"column_type":1}}
  ]}
]`

func TestRenderLayout(t *testing.T) {
	out, err := RenderLayout(context.Background(), "shaper", []byte(layoutJSON), "")
	if err != nil {
		t.Fatalf("render layout: %v", err)
	}
	if !strings.Contains(string(out), `id="sp-component"`) {
		t.Fatalf("expected component column, got:\n%s", out)
	}

	if _, err := RenderLayout(context.Background(), "shaper", []byte(`{`), ""); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestOrchestrator_LayoutMissing(t *testing.T) {
	o := NewOrchestrator(page.WithFS(afero.NewMemMapFs(), "/site"))
	_, err := o.Generate(context.Background(), Request{Template: "shaper", Params: Params{}})
	if !errors.Is(err, ErrLayoutMissing) {
		t.Fatalf("expected ErrLayoutMissing, got %v", err)
	}
}

func TestEmbeddedTemplates(t *testing.T) {
	for name, fsys := range map[string]fs.FS{
		"rows.tpl":     LayoutTemplates(),
		"document.tpl": ShellTemplates(),
	} {
		if _, err := fs.Stat(fsys, name); err != nil {
			t.Fatalf("expected %s: %v", name, err)
		}
	}
	entries, err := fs.ReadDir(MenuTemplates(), ".")
	if err != nil || len(entries) == 0 {
		t.Fatalf("expected menu templates: %v", err)
	}
}

func TestLoadAPIDoc(t *testing.T) {
	doc, err := LoadAPIDoc(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, ok := doc.Action("save-tmpl-style"); !ok {
		t.Fatalf("expected save-tmpl-style action")
	}
}
