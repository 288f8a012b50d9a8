package assets

import (
	"path"
	"regexp"
	"strings"
	"sync"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/js"
)

const (
	mimeCSS = "text/css"
	mimeJS  = "application/javascript"
)

var (
	minifierOnce sync.Once
	minifier     *minify.M

	cssURLPattern   = regexp.MustCompile(`url\(([^\):]*)\)`)
	cssImagePattern = regexp.MustCompile(`\.(jpg|png|jpeg|mp4|gif|JPEG|JPG|PNG|GIF)$`)
	lineBreaks      = regexp.MustCompile(`[\r\n]`)
)

func defaultMinifier() *minify.M {
	minifierOnce.Do(func() {
		m := minify.New()
		m.AddFunc(mimeCSS, css.Minify)
		m.AddFunc(mimeJS, js.Minify)
		minifier = m
	})
	return minifier
}

// MinifyCSS minifies a stylesheet.
func MinifyCSS(src string) (string, error) {
	return defaultMinifier().String(mimeCSS, src)
}

// MinifyJS minifies a script.
func MinifyJS(src string) (string, error) {
	return defaultMinifier().String(mimeJS, src)
}

// IsMinified reports whether content looks minified: a single line break, or
// line breaks making up less than one percent of the content.
func IsMinified(content string) bool {
	if content == "" {
		return false
	}
	lines := len(lineBreaks.FindAllStringIndex(content, -1))
	if lines == 1 {
		return true
	}
	return float64(lines)*100/float64(len(content)) < 1
}

// RebaseURLs rewrites relative url() references of a stylesheet served from
// assetURL so they keep working from the cache directory. Image references
// and URLs carrying a scheme are left alone.
func RebaseURLs(src, assetURL string) string {
	return cssURLPattern.ReplaceAllStringFunc(src, func(match string) string {
		inner := cssURLPattern.FindStringSubmatch(match)[1]
		ref := strings.NewReplacer(`"`, "", `'`, "").Replace(inner)

		if cssImagePattern.MatchString(ref) {
			return "url('" + ref + "')"
		}

		base := path.Dir(assetURL)
		for strings.HasPrefix(ref, "../") {
			base = path.Dir(base)
			ref = ref[3:]
		}
		return "url('" + base + "/" + ref + "')"
	})
}
