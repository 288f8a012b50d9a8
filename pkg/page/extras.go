package page

import (
	"context"
	"fmt"
	"html/template"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/flosch/pongo2/v6"
	"github.com/spf13/afero"
	"github.com/spf13/cast"

	"github.com/goliatone/go-sitetheme/pkg/params"
)

// DefaultPreset is used when a style selects no preset.
const DefaultPreset = "default"

// presetKeys are the colour settings passed to the preset SCSS.
var presetKeys = []string{
	"text_color", "bg_color", "link_color", "link_hover_color",
	"header_bg_color", "logo_text_color",
	"menu_text_color", "menu_text_hover_color", "menu_text_active_color",
	"menu_dropdown_bg_color", "menu_dropdown_text_color",
	"menu_dropdown_text_hover_color", "menu_dropdown_text_active_color",
	"offcanvas_menu_icon_color", "offcanvas_menu_bg_color",
	"offcanvas_menu_items_and_items_color", "offcanvas_menu_active_menu_item_color",
	"footer_bg_color", "footer_text_color", "footer_link_color", "footer_link_hover_color",
	"topbar_bg_color", "topbar_text_color",
}

// PresetVars returns the SCSS variables of the selected colour preset. A
// custom style takes the individual colour settings; otherwise the preset
// param holds an object of them (or just the preset name).
func PresetVars(p params.Params) map[string]string {
	vars := map[string]string{}
	if !p.Bool("custom_style") {
		if preset, ok := p.Object("preset"); ok {
			for k, v := range preset {
				if s := cast.ToString(v); s != "" {
					vars[k] = s
				}
			}
		} else if name := p.String("preset", ""); name != "" {
			vars["preset"] = name
		}
	}
	if len(vars) <= 1 {
		for _, key := range presetKeys {
			if v := p.String(key, ""); v != "" {
				vars[key] = v
			}
		}
	}
	if vars["preset"] == "" {
		vars["preset"] = DefaultPreset
	}
	return vars
}

// Preloader returns the loader markup of type t.
func (s *Session) Preloader(t string) template.HTML {
	var loader []string
	switch t {
	case "circle":
		loader = append(loader, "<div class='sp-loader-circle'></div>")
	case "bubble-loop":
		loader = append(loader, "<div class='sp-loader-bubble-loop'></div>")
	case "wave-two":
		loader = append(loader,
			"<div class='wave-two-wrap'>",
			"<ul class='wave-two'>",
			strings.Repeat("<li></li>", 6),
			"</ul>",
			"</div>",
		)
	case "audio-wave":
		loader = append(loader, "<div class='sp-loader-audio-wave'></div>")
	case "circle-two":
		loader = append(loader, "<div class='circle-two'><span></span></div>")
	case "clock":
		loader = append(loader, "<div class='sp-loader-clock'></div>")
	case "logo":
		content := "Loading..."
		if s.params.String("logo_type", "") == "image" {
			src := s.req.BaseURL + "/" + strings.TrimPrefix(s.params.String("logo_image", ""), "/")
			content = "<img src='" + template.HTMLEscapeString(src) + "' />"
		}
		loader = append(loader,
			"<div class='sp-loader-with-logo'>",
			"<div class='logo'>",
			content,
			"</div>",
			"<div class='line' id='line-load'></div>",
			"</div>",
		)
	default:
		loader = append(loader, "<div class='sp-preloader'></div>")
	}
	return template.HTML(strings.Join(loader, "\n"))
}

var whitespace = regexp.MustCompile(`\s+`)

// Analytics returns the Google Analytics snippet for the configured
// tracking method, gst (gtag.js) or ua (analytics.js). It is empty without
// a tracking code.
func (s *Session) Analytics() template.HTML {
	code := whitespace.ReplaceAllString(s.params.String("ga_code", ""), "")
	if code == "" {
		return ""
	}
	code = template.JSEscapeString(code)

	switch s.params.String("ga_tracking_method", "gst") {
	case "gst":
		return template.HTML(`
<!-- Global site tag (gtag.js) - Google Analytics -->
<script async src='https://www.googletagmanager.com/gtag/js?id=` + code + `'></script>
<script>
	window.dataLayer = window.dataLayer || [];
	function gtag(){dataLayer.push(arguments);}
	gtag('js', new Date());

	gtag('config', '` + code + `');
</script>
`)
	case "ua":
		return template.HTML(`
<script>
	(function(i,s,o,g,r,a,m){i['GoogleAnalyticsObject']=r;i[r]=i[r]||function(){
	(i[r].q=i[r].q||[]).push(arguments)},i[r].l=1*new Date();a=s.createElement(o),
	m=s.getElementsByTagName(o)[0];a.async=1;a.src=g;m.parentNode.insertBefore(a,m)
	})(window,document,'script','https://www.google-analytics.com/analytics.js','ga');

	ga('create', '` + code + `', 'auto');
	ga('send', 'pageview');
</script>
`)
	}
	return ""
}

// HeaderFile is the predefined header template inside
// <template>/headers/<style>/.
const HeaderFile = "header.tpl"

// HeaderStyle renders the predefined header selected by header_style. It is
// empty when predefined headers are off or the template ships no such
// header. Headers call position("name") to place a module position.
func (s *Session) HeaderStyle(ctx context.Context) (template.HTML, error) {
	style := s.params.String("header_style", "")
	if !s.params.Bool("predefined_header") || style == "" {
		return "", nil
	}

	file := filepath.Join(s.resolver.TemplateDir(), "headers", filepath.Base(style), HeaderFile)
	src, err := afero.ReadFile(s.o.fs, file)
	if err != nil {
		if ok, _ := afero.Exists(s.o.fs, file); !ok {
			return "", nil
		}
		return "", fmt.Errorf("page: read header %s: %w", style, err)
	}

	tpl, err := pongo2.FromBytes(src)
	if err != nil {
		return "", fmt.Errorf("page: parse header %s: %w", style, err)
	}
	out, err := tpl.Execute(pongo2.Context{
		"template":     s.req.Template,
		"template_url": s.resolver.TemplateURL(),
		"params":       map[string]any(s.params),
		"position": func(name string) *pongo2.Value {
			html, err := s.Position(ctx, name)
			if err != nil {
				s.logger.Warn().Err(err).Str("position", name).Msg("header position failed")
				return pongo2.AsSafeValue("")
			}
			return pongo2.AsSafeValue(string(html))
		},
	})
	if err != nil {
		return "", fmt.Errorf("page: render header %s: %w", style, err)
	}
	return template.HTML(out), nil
}

// Position renders a module position outside the layout grid: features
// before, modules, features after.
func (s *Session) Position(ctx context.Context, name string) (template.HTML, error) {
	block, err := s.blocks.Render(ctx, name)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, h := range block.Before {
		b.WriteString(string(h))
	}
	for _, m := range block.Modules {
		b.WriteString(string(m.HTML))
	}
	for _, h := range block.After {
		b.WriteString(string(h))
	}
	return template.HTML(b.String()), nil
}
