package content

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

// DefaultRelated is the number of related articles when none is asked for.
const DefaultRelated = 5

// Article is a published content item.
type Article struct {
	ID             int64     `json:"id"`
	Title          string    `json:"title"`
	Alias          string    `json:"alias"`
	Introtext      string    `json:"introtext"`
	CategoryID     int64     `json:"catid"`
	Category       string    `json:"category"`
	CategoryAlias  string    `json:"category_alias"`
	CategoryAccess int       `json:"category_access"`
	Author         string    `json:"author"`
	Language       string    `json:"language"`
	Access         int       `json:"access"`
	State          int       `json:"state"`
	Created        time.Time `json:"created"`
	// PublishDown is zero for articles that never expire.
	PublishDown time.Time `json:"publish_down"`

	Slug       string `json:"slug"`
	CatSlug    string `json:"catslug"`
	AccessView bool   `json:"access_view"`
}

// ArticleFilter narrows an article query.
type ArticleFilter struct {
	IDs          []int64
	ExcludeID    int64
	AccessLevels []int
	// Languages is empty when no language filter applies.
	Languages []string
	Now       time.Time
	Limit     int
}

// ArticleStore queries articles.
type ArticleStore interface {
	// CategoryArticleIDs returns up to limit ids of articles in category.
	CategoryArticleIDs(ctx context.Context, categoryID int64, limit int) ([]int64, error)
	// TaggedArticleIDs returns the distinct ids of articles carrying any of
	// the tags.
	TaggedArticleIDs(ctx context.Context, tagIDs []int64) ([]int64, error)
	// Articles returns published, unexpired articles matching f, newest
	// first.
	Articles(ctx context.Context, f ArticleFilter) ([]Article, error)
}

// RelatedQuery describes the article whose relatives are wanted and the
// visitor asking.
type RelatedQuery struct {
	ItemID       int64
	Maximum      int
	CategoryID   int64
	TagIDs       []int64
	Language     string
	AccessLevels []int
	Now          time.Time
}

// Related returns the articles sharing the category or a tag with the
// item, newest first.
func Related(ctx context.Context, store ArticleStore, q RelatedQuery) ([]Article, error) {
	limit := q.Maximum
	if limit < 1 {
		limit = DefaultRelated
	}

	var ids []int64
	seen := map[int64]struct{}{}
	add := func(list []int64) {
		for _, id := range list {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}

	if q.CategoryID != 0 {
		catIDs, err := store.CategoryArticleIDs(ctx, q.CategoryID, limit+1)
		if err != nil {
			return nil, fmt.Errorf("content: category articles: %w", err)
		}
		add(catIDs)
	}
	if len(q.TagIDs) > 0 {
		tagIDs, err := store.TaggedArticleIDs(ctx, q.TagIDs)
		if err != nil {
			return nil, fmt.Errorf("content: tagged articles: %w", err)
		}
		add(tagIDs)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	now := q.Now
	if now.IsZero() {
		now = time.Now()
	}
	filter := ArticleFilter{
		IDs:          ids,
		ExcludeID:    q.ItemID,
		AccessLevels: q.AccessLevels,
		Now:          now,
		Limit:        limit,
	}
	if q.Language != "" {
		filter.Languages = []string{q.Language, "*"}
	}

	articles, err := store.Articles(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("content: related articles: %w", err)
	}
	for i := range articles {
		a := &articles[i]
		a.Slug = strconv.FormatInt(a.ID, 10) + ":" + a.Alias
		a.CatSlug = strconv.FormatInt(a.CategoryID, 10) + ":" + a.CategoryAlias
		a.AccessView = canView(*a, q.AccessLevels)
	}
	return articles, nil
}

func canView(a Article, levels []int) bool {
	if !contains(levels, a.Access) {
		return false
	}
	if a.CategoryID == 0 || a.CategoryAccess == 0 {
		return true
	}
	return contains(levels, a.CategoryAccess)
}

func contains(list []int, v int) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
