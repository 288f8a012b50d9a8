package document

import (
	"strings"
	"testing"
)

func TestDocument_OrderAndDuplicates(t *testing.T) {
	doc := New()
	doc.AddStyleSheet("/templates/shaper/css/bootstrap.min.css")
	doc.AddStyleSheet("/templates/shaper/css/template.css")
	doc.AddStyleSheet("/templates/shaper/css/bootstrap.min.css", WithVersion("abc"))

	styles := doc.StyleSheets()
	if len(styles) != 2 {
		t.Fatalf("expected 2 stylesheets, got %d", len(styles))
	}
	if styles[0].URL != "/templates/shaper/css/bootstrap.min.css" || styles[0].Version != "abc" {
		t.Fatalf("duplicate must keep first position and take new options: %+v", styles[0])
	}

	doc.RemoveStyleSheet("/templates/shaper/css/bootstrap.min.css")
	if got := doc.StyleSheets(); len(got) != 1 || got[0].URL != "/templates/shaper/css/template.css" {
		t.Fatalf("unexpected stylesheets after remove: %+v", got)
	}
}

func TestDocument_HeadHTML(t *testing.T) {
	doc := New()
	doc.Title = "Home"
	doc.SetFavicon("/templates/shaper/images/favicon.ico")
	doc.AddStyleSheet("/cache/abc.css", WithVersion("v1"), WithAttr("media", "none"), WithAttr("onload", "media=\"all\""))
	doc.AddScript("/cache/def.js", Deferred())
	doc.AddStyleDeclaration("#sp-top{ color:#fff; }")
	doc.AddScriptDeclaration("template=\"shaper\";")

	head := doc.HeadHTML()
	for _, want := range []string{
		"<title>Home</title>",
		`<link href="/templates/shaper/images/favicon.ico" rel="shortcut icon"`,
		`<link href="/cache/abc.css?v1" rel="stylesheet" media="none" onload="media=&#34;all&#34;">`,
		`<script src="/cache/def.js" defer></script>`,
		"<style>#sp-top{ color:#fff; }</style>",
		"<script>template=\"shaper\";</script>",
	} {
		if !strings.Contains(head, want) {
			t.Fatalf("head missing %q:\n%s", want, head)
		}
	}
}

func TestDocument_ScriptDeclarations(t *testing.T) {
	doc := New()
	doc.AddScriptDeclaration("  ")
	doc.AddScriptDeclaration("var a = 1;")
	if got := doc.ScriptDeclarations(); len(got) != 1 {
		t.Fatalf("blank declarations must be ignored, got %v", got)
	}
	doc.ClearScriptDeclarations()
	if got := doc.ScriptDeclarations(); len(got) != 0 {
		t.Fatalf("expected no declarations, got %v", got)
	}
}
