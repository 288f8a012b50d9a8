package server

import (
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-sitetheme/pkg/content"
)

var articleTemplate = pongo2.Must(pongo2.FromString(`<article class="item-page">
<h1 itemprop="headline">{{ title }}</h1>
{{ body|safe }}
</article>
{% if related %}<div class="related-article-list-container">
<h3 class="related-article-title">Related Articles</h3>
<ul class="related-article-list">{% for a in related %}
<li><a href="{{ base }}/?option=com_content&amp;view=article&amp;id={{ a.ID }}">{{ a.Title }}</a>{% if a.Category %} <span class="related-article-category">{{ a.Category }}</span>{% endif %}</li>{% endfor %}
</ul>
</div>{% endif %}`))

// ArticlePages renders ?view=article&id=N from store followed by the
// articles related to it. Other requests are passed to next, which may be
// nil.
func ArticlePages(store content.ArticleStore, site Site, next ComponentFunc) ComponentFunc {
	return func(r *http.Request) (template.HTML, error) {
		q := r.URL.Query()
		id, _ := strconv.ParseInt(q.Get("id"), 10, 64)
		if q.Get("view") != "article" || id <= 0 {
			if next == nil {
				return "", nil
			}
			return next(r)
		}

		ctx := r.Context()
		now := time.Now()
		found, err := store.Articles(ctx, content.ArticleFilter{IDs: []int64{id}, Now: now, Limit: 1})
		if err != nil {
			return "", err
		}
		if len(found) == 0 {
			return "", ErrPageNotFound
		}
		article := found[0]

		body, err := content.Render(article.Introtext, content.FormatHTML)
		if err != nil {
			return "", err
		}
		related, err := content.Related(ctx, store, content.RelatedQuery{
			ItemID:     article.ID,
			CategoryID: article.CategoryID,
			Language:   site.Language,
			Now:        now,
		})
		if err != nil {
			return "", err
		}

		out, err := articleTemplate.Execute(pongo2.Context{
			"title":   content.StripTitle(article.Title),
			"body":    string(body),
			"related": related,
			"base":    site.BaseURL,
		})
		if err != nil {
			return "", err
		}
		return template.HTML(out), nil
	}
}
