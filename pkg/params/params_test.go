package params

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParams_LooseAccessors(t *testing.T) {
	p := MustFromJSON(`{"sticky_header":"1","boxed_layout":"0","preloader":true,"cachetime":"30","blank":"","ratio":"7.5"}`)

	if !p.Bool("sticky_header") {
		t.Fatalf("expected sticky_header enabled")
	}
	if p.Bool("boxed_layout") {
		t.Fatalf("expected boxed_layout disabled")
	}
	if !p.Bool("preloader") {
		t.Fatalf("expected preloader enabled")
	}
	if p.Bool("missing") {
		t.Fatalf("missing key must be false")
	}
	if got := p.Int("cachetime", 15); got != 30 {
		t.Fatalf("cachetime: want 30, got %d", got)
	}
	if got := p.Int("ratio", 0); got != 7 {
		t.Fatalf("ratio: want 7, got %d", got)
	}
	if got := p.Int("missing", 15); got != 15 {
		t.Fatalf("default int: want 15, got %d", got)
	}
	if got := p.String("blank", "fallback"); got != "fallback" {
		t.Fatalf("blank string should fall back, got %q", got)
	}
	if p.Has("blank") {
		t.Fatalf("blank value must not count as present")
	}
}

func TestParams_ObjectFromEncodedString(t *testing.T) {
	p := Params{"body_font": `{"fontFamily":"Open Sans","fontSize":"16"}`}

	obj, ok := p.Object("body_font")
	if !ok {
		t.Fatalf("expected object")
	}
	if obj["fontFamily"] != "Open Sans" {
		t.Fatalf("unexpected object: %#v", obj)
	}

	if _, ok := p.Object("missing"); ok {
		t.Fatalf("missing object must report false")
	}
}

func TestSplitList(t *testing.T) {
	got := SplitList(" custom.css , ,extra.css")
	want := []string{"custom.css", "extra.css"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("split mismatch (-want +got):\n%s", diff)
	}
	if SplitList("  ") != nil {
		t.Fatalf("blank list should be nil")
	}
}
