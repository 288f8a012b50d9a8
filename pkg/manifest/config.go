package manifest

import (
	"sort"
	"strings"

	theme "github.com/goliatone/go-theme"
)

// RendererConfig merges the base manifest with the selected variant.
// fallbacks fill partials the theme does not override.
func RendererConfig(sel *theme.Selection, fallbacks map[string]string) *theme.RendererConfig {
	if sel == nil || sel.Manifest == nil {
		return nil
	}
	m := sel.Manifest
	partials := cloneStrings(fallbacks)
	if partials == nil {
		partials = map[string]string{}
	}
	tokens := map[string]string{}
	files := map[string]string{}
	prefix := m.Assets.Prefix

	merge(partials, m.Templates)
	merge(tokens, m.Tokens)
	merge(files, m.Assets.Files)
	if v, ok := m.Variants[sel.Variant]; ok && sel.Variant != "" {
		merge(partials, v.Templates)
		merge(tokens, v.Tokens)
		merge(files, v.Assets.Files)
		if v.Assets.Prefix != "" {
			prefix = v.Assets.Prefix
		}
	}

	cssVars := make(map[string]string, len(tokens))
	for k, v := range tokens {
		cssVars["--"+k] = v
	}

	return &theme.RendererConfig{
		Theme:    sel.Theme,
		Variant:  sel.Variant,
		Partials: partials,
		Tokens:   tokens,
		CSSVars:  cssVars,
		AssetURL: assetResolver(prefix, files),
	}
}

func merge(dst, src map[string]string) {
	for k, v := range src {
		dst[k] = v
	}
}

func assetResolver(prefix string, files map[string]string) func(string) string {
	prefix = strings.TrimRight(prefix, "/")
	return func(key string) string {
		if key == "" {
			return ""
		}
		file, ok := files[key]
		if !ok {
			file = key
		}
		if strings.Contains(file, "://") || strings.HasPrefix(file, "//") || strings.HasPrefix(file, "/") {
			return file
		}
		if prefix == "" {
			return file
		}
		return prefix + "/" + file
	}
}

// SCSSVars turns theme tokens into Sass variables. Token names are
// lowercased with dots replaced by dashes.
func SCSSVars(cfg *theme.RendererConfig) map[string]string {
	if cfg == nil || len(cfg.Tokens) == 0 {
		return nil
	}
	out := make(map[string]string, len(cfg.Tokens))
	for k, v := range cfg.Tokens {
		out[strings.ReplaceAll(strings.ToLower(k), ".", "-")] = v
	}
	return out
}

// CSSVarsDeclaration renders the CSS variables as a :root rule.
func CSSVarsDeclaration(cfg *theme.RendererConfig) string {
	if cfg == nil || len(cfg.CSSVars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(cfg.CSSVars))
	for k := range cfg.CSSVars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	b.WriteString(":root{")
	for _, k := range keys {
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(cfg.CSSVars[k])
		b.WriteString(";")
	}
	b.WriteString("}")
	return b.String()
}
