package render

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-sitetheme/pkg/layout"
)

type stubRenderer struct {
	name string
}

func (s stubRenderer) Name() string        { return s.name }
func (s stubRenderer) ContentType() string { return "text/plain" }
func (s stubRenderer) Render(context.Context, []layout.ResolvedRow, Options) ([]byte, error) {
	return []byte(s.name), nil
}

func TestRegistry_Register(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register(stubRenderer{name: "outline"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	reg.MustRegister(stubRenderer{name: "bootstrap"})

	if err := reg.Register(stubRenderer{name: "outline"}); err == nil {
		t.Fatalf("duplicate name must fail")
	}
	if err := reg.Register(stubRenderer{}); err == nil {
		t.Fatalf("empty name must fail")
	}
	if err := reg.Register(nil); err == nil {
		t.Fatalf("nil renderer must fail")
	}

	if got := reg.Names(); len(got) != 2 || got[0] != "outline" || got[1] != "bootstrap" {
		t.Fatalf("unexpected names %v", got)
	}
	if _, err := reg.Get("preact"); !errors.Is(err, ErrRendererNotFound) {
		t.Fatalf("expected ErrRendererNotFound, got %v", err)
	}
}

func TestRegistry_Resolve(t *testing.T) {
	reg := NewRegistry()
	if _, err := reg.Resolve("", ""); err == nil {
		t.Fatalf("empty registry must fail")
	}
	reg.MustRegister(stubRenderer{name: "bootstrap"})
	reg.MustRegister(stubRenderer{name: "outline"})

	cases := []struct {
		name, fallback, want string
	}{
		{"outline", "bootstrap", "outline"},
		{"", "outline", "outline"},
		{"", "missing", "bootstrap"},
		{"", "", "bootstrap"},
	}
	for _, tc := range cases {
		r, err := reg.Resolve(tc.name, tc.fallback)
		if err != nil {
			t.Fatalf("resolve %q/%q: %v", tc.name, tc.fallback, err)
		}
		if r.Name() != tc.want {
			t.Fatalf("resolve %q/%q = %s, want %s", tc.name, tc.fallback, r.Name(), tc.want)
		}
	}

	if _, err := reg.Resolve("preact", "bootstrap"); !errors.Is(err, ErrRendererNotFound) {
		t.Fatalf("explicit unknown renderer must fail, got %v", err)
	}
}

func TestContained(t *testing.T) {
	cases := []struct {
		name string
		row  layout.ResolvedRow
		opts Options
		want bool
	}{
		{"plain row", layout.ResolvedRow{}, Options{}, true},
		{"fluid row", layout.ResolvedRow{Fluid: true}, Options{}, false},
		{"component row", layout.ResolvedRow{ComponentArea: true, Fluid: true}, Options{}, true},
		{"component row in page builder", layout.ResolvedRow{ComponentArea: true}, Options{PageBuilder: true}, false},
		{"plain row in page builder", layout.ResolvedRow{}, Options{PageBuilder: true}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Contained(tc.row, tc.opts); got != tc.want {
				t.Fatalf("Contained = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestOptions_BlockWithoutSource(t *testing.T) {
	block, err := Options{}.Block(context.Background(), "left")
	if err != nil {
		t.Fatalf("block: %v", err)
	}
	if block.Position != "left" || !block.Empty() {
		t.Fatalf("expected empty block, got %+v", block)
	}
}
