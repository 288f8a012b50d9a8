// Package content prepares module and article bodies for output and finds
// the related articles shown below an article.
package content

import (
	"bytes"
	"html/template"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Body formats.
const (
	FormatHTML     = "html"
	FormatMarkdown = "markdown"
	FormatText     = "text"
)

var (
	policyOnce sync.Once
	ugcPolicy  *bluemonday.Policy
	strict     *bluemonday.Policy

	markdownOnce sync.Once
	markdown     goldmark.Markdown
)

func policies() (*bluemonday.Policy, *bluemonday.Policy) {
	policyOnce.Do(func() {
		ugc := bluemonday.UGCPolicy()
		ugc.AllowAttrs("class").Globally()
		ugc.AllowAttrs("aria-hidden", "role").Globally()
		ugc.AllowElements("span", "i")
		ugcPolicy = ugc
		strict = bluemonday.StrictPolicy()
	})
	return ugcPolicy, strict
}

func converter() goldmark.Markdown {
	markdownOnce.Do(func() {
		markdown = goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithUnsafe()),
		)
	})
	return markdown
}

// Markdown converts src to sanitized HTML.
func Markdown(src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := converter().Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return Sanitize(buf.String()), nil
}

// Sanitize drops scripts, handlers and unknown markup from user HTML.
func Sanitize(raw string) template.HTML {
	ugc, _ := policies()
	return template.HTML(strings.TrimSpace(ugc.Sanitize(raw)))
}

// StripTitle returns title without any markup.
func StripTitle(title string) string {
	_, s := policies()
	return strings.TrimSpace(s.Sanitize(title))
}

// Render formats a body according to format.
func Render(body, format string) (template.HTML, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatMarkdown, "md":
		return Markdown(body)
	case FormatText:
		return template.HTML(template.HTMLEscapeString(body)), nil
	default:
		return Sanitize(body), nil
	}
}
