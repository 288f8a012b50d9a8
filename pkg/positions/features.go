package positions

import (
	"context"
	"fmt"
	"html/template"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-sitetheme/pkg/params"
)

// Built-in feature names.
const (
	FeatureLogo    = "logo"
	FeatureSocial  = "social"
	FeatureContact = "contact"
	FeatureMenu    = "menu"
)

// MenuRenderer renders the markup of a menu.
type MenuRenderer interface {
	RenderMenu(ctx context.Context, menuType string) (template.HTML, error)
}

// RegisterBuiltins adds the logo, social, contact and menu features. menu
// may be nil, in which case the menu feature is skipped.
func (r *Registry) RegisterBuiltins(menu MenuRenderer) {
	r.Register(FeatureLogo, 10, logoFeature{})
	r.Register(FeatureSocial, 0, socialFeature{})
	r.Register(FeatureContact, 0, contactFeature{})
	if menu != nil {
		r.Register(FeatureMenu, 10, menuFeature{renderer: menu})
	}
}

var (
	templatesOnce sync.Once
	templatesErr  error
	featureTpls   map[string]*pongo2.Template
)

var featureSources = map[string]string{
	FeatureLogo: `<div class="logo"><a href="{{ root_url }}/">{% if logo_type == "image" and logo_image %}<img class="logo-image{% if logo_image_mobile %} d-none d-lg-inline-block{% endif %}" src="{{ logo_image }}" alt="{{ sitename }}">{% if logo_image_mobile %}<img class="logo-image-phone d-inline-block d-lg-none" src="{{ logo_image_mobile }}" alt="{{ sitename }}">{% endif %}{% else %}{{ logo_text|default:sitename }}{% endif %}</a>{% if logo_slogan %}<p class="logo-slogan">{{ logo_slogan }}</p>{% endif %}</div>`,

	FeatureSocial: `<ul class="social-icons">{% for icon in icons %}<li class="social-icon-{{ icon.Name }}"><a target="_blank" rel="noopener noreferrer" href="{{ icon.URL }}" aria-label="{{ icon.Name }}"><span class="{{ icon.Class }}" aria-hidden="true"></span></a></li>{% endfor %}</ul>`,

	FeatureContact: `<ul class="sp-contact-info">{% if phone %}<li class="sp-contact-phone"><span class="fas fa-phone" aria-hidden="true"></span> <a href="tel:{{ phone_link }}">{{ phone }}</a></li>{% endif %}{% if mobile %}<li class="sp-contact-mobile"><span class="fas fa-mobile-alt" aria-hidden="true"></span> <a href="tel:{{ mobile_link }}">{{ mobile }}</a></li>{% endif %}{% if email %}<li class="sp-contact-email"><span class="far fa-envelope" aria-hidden="true"></span> <a href="mailto:{{ email }}">{{ email }}</a></li>{% endif %}{% if time %}<li class="sp-contact-time"><span class="far fa-clock" aria-hidden="true"></span> {{ time }}</li>{% endif %}</ul>`,

	FeatureMenu: `<nav class="sp-megamenu-wrapper" role="navigation">
<a id="offcanvas-toggler" aria-label="Navigation" class="offcanvas-toggler-{{ position }} d-block d-lg-none" href="#"><span class="fa fa-bars" aria-hidden="true" title="Navigation"></span></a>
{{ menu|safe }}
</nav>`,
}

func featureTemplate(name string) (*pongo2.Template, error) {
	templatesOnce.Do(func() {
		featureTpls = make(map[string]*pongo2.Template, len(featureSources))
		for key, src := range featureSources {
			tpl, err := pongo2.FromString(src)
			if err != nil {
				templatesErr = fmt.Errorf("positions: parse %s template: %w", key, err)
				return
			}
			featureTpls[key] = tpl
		}
	})
	if templatesErr != nil {
		return nil, templatesErr
	}
	return featureTpls[name], nil
}

func execFeature(name string, ctx pongo2.Context) (template.HTML, error) {
	tpl, err := featureTemplate(name)
	if err != nil {
		return "", err
	}
	out, err := tpl.Execute(ctx)
	if err != nil {
		return "", fmt.Errorf("positions: render %s: %w", name, err)
	}
	return template.HTML(out), nil
}

type logoFeature struct{}

func (logoFeature) Position(params.Params) string { return "logo" }
func (logoFeature) LoadPos() string               { return LoadBefore }

func (logoFeature) Render(_ context.Context, p params.Params) (template.HTML, error) {
	return execFeature(FeatureLogo, pongo2.Context{
		"root_url":          p.String("root_url", ""),
		"sitename":          p.String("sitename", ""),
		"logo_type":         p.String("logo_type", "image"),
		"logo_image":        p.String("logo_image", ""),
		"logo_image_mobile": p.String("logo_image_mobile", ""),
		"logo_text":         p.String("logo_text", ""),
		"logo_slogan":       p.String("logo_slogan", ""),
	})
}

type socialIcon struct {
	Name  string
	URL   string
	Class string
}

var socialNetworks = []struct{ key, class string }{
	{"facebook", "fab fa-facebook"},
	{"twitter", "fab fa-twitter"},
	{"pinterest", "fab fa-pinterest"},
	{"youtube", "fab fa-youtube"},
	{"linkedin", "fab fa-linkedin"},
	{"dribbble", "fab fa-dribbble"},
	{"instagram", "fab fa-instagram"},
	{"behance", "fab fa-behance"},
	{"skype", "fab fa-skype"},
	{"whatsapp", "fab fa-whatsapp"},
	{"flickr", "fab fa-flickr"},
	{"vk", "fab fa-vk"},
}

type socialFeature struct{}

func (socialFeature) Position(p params.Params) string {
	if !p.Bool("show_social_icons") {
		return ""
	}
	return p.String("social_position", "top1")
}

func (socialFeature) LoadPos() string { return LoadAfter }

func (socialFeature) Render(_ context.Context, p params.Params) (template.HTML, error) {
	var icons []socialIcon
	for _, network := range socialNetworks {
		if url := p.String(network.key, ""); url != "" {
			icons = append(icons, socialIcon{Name: network.key, URL: url, Class: network.class})
		}
	}
	if link := p.String("custom_social_link", ""); link != "" {
		if icon := p.String("custom_social_icon", ""); icon != "" {
			icons = append(icons, socialIcon{Name: "custom", URL: link, Class: "fab " + icon})
		}
	}
	if len(icons) == 0 {
		return "", nil
	}
	return execFeature(FeatureSocial, pongo2.Context{"icons": icons})
}

type contactFeature struct{}

func (contactFeature) Position(p params.Params) string {
	if !p.Bool("enable_contactinfo") {
		return ""
	}
	return p.String("contact_position", "top2")
}

func (contactFeature) LoadPos() string { return LoadAfter }

func (contactFeature) Render(_ context.Context, p params.Params) (template.HTML, error) {
	phone := p.String("contact_phone", "")
	mobile := p.String("contact_mobile", "")
	email := p.String("contact_email", "")
	hours := p.String("contact_time", "")
	if phone == "" && mobile == "" && email == "" && hours == "" {
		return "", nil
	}
	return execFeature(FeatureContact, pongo2.Context{
		"phone":       phone,
		"phone_link":  telLink(phone),
		"mobile":      mobile,
		"mobile_link": telLink(mobile),
		"email":       email,
		"time":        hours,
	})
}

type menuFeature struct {
	renderer MenuRenderer
}

func (menuFeature) Position(params.Params) string { return "menu" }
func (menuFeature) LoadPos() string               { return LoadBefore }

func (f menuFeature) Render(ctx context.Context, p params.Params) (template.HTML, error) {
	menu, err := f.renderer.RenderMenu(ctx, p.String("menu", "mainmenu"))
	if err != nil {
		return "", err
	}
	return execFeature(FeatureMenu, pongo2.Context{
		"menu":     string(menu),
		"position": p.String("offcanvas_position", "right"),
	})
}

func telLink(number string) string {
	out := make([]rune, 0, len(number))
	for _, r := range number {
		if r == '+' || (r >= '0' && r <= '9') {
			out = append(out, r)
		}
	}
	return string(out)
}
