package apidoc

import (
	"context"
	"net/http"
	"strings"
	"testing"
)

func TestLoad_DocumentsEveryAction(t *testing.T) {
	doc, err := Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	want := map[string]string{
		"save-tmpl-style":      http.MethodPost,
		"getMenuItems":         http.MethodGet,
		"rebuildMenu":          http.MethodGet,
		"generateMegaMenuBody": http.MethodGet,
		"saveMegaMenu":         http.MethodPost,
		"parentAdoption":       http.MethodPost,
		"saveOrderAjax":        http.MethodPost,
		"trashItem":            http.MethodGet,
		"saveItem":             http.MethodPost,
		"arrangeColumns":       http.MethodPost,
		"validateLayout":       http.MethodPost,
	}
	if got := len(doc.Actions()); got != len(want) {
		t.Fatalf("expected %d actions, got %d", len(want), got)
	}
	for name, method := range want {
		a, ok := doc.Action(name)
		if !ok {
			t.Fatalf("action %q not documented", name)
		}
		if a.Method != method {
			t.Fatalf("action %q: want %s, got %s", name, method, a.Method)
		}
		if a.Path != ActionPrefix+name {
			t.Fatalf("action %q: unexpected path %q", name, a.Path)
		}
	}
}

func TestValidateParams(t *testing.T) {
	doc, err := Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	ctx := context.Background()

	ok := map[string]any{
		"layout":             "[]",
		"sticky_header":      "1",
		"boxed_layout":       true,
		"preloader":          0,
		"loader_type":        "wave-two",
		"ga_tracking_method": "ua",
		"anything_else":      map[string]any{"x": 1},
	}
	if err := doc.ValidateParams(ctx, ok); err != nil {
		t.Fatalf("expected params to validate: %v", err)
	}

	bad := map[string]any{"loader_type": "spinner", "sticky_header": "yes"}
	err = doc.ValidateParams(ctx, bad)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if !strings.Contains(err.Error(), ParamsSchema) {
		t.Fatalf("error should name the schema: %v", err)
	}
}

func TestParse_RequiresParamsSchema(t *testing.T) {
	_, err := Parse(context.Background(), []byte(`{"openapi":"3.0.3","info":{"title":"x","version":"1"},"paths":{}}`))
	if err == nil || !strings.Contains(err.Error(), ParamsSchema) {
		t.Fatalf("expected missing schema error, got %v", err)
	}
	if _, err := Parse(context.Background(), nil); err == nil {
		t.Fatalf("expected error for empty payload")
	}
}

func TestRaw_ReturnsCopy(t *testing.T) {
	a := Raw()
	a[0] = 'x'
	if Raw()[0] == 'x' {
		t.Fatalf("Raw must not expose the embedded bytes")
	}
}
