package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/workguide/guide-server/internal/util"
)

// Default and maximum hit counts.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Result is a page of guide hits.
type Result struct {
	Query  string `json:"query"`
	Total  uint64 `json:"total"`
	TookMs int64  `json:"took_ms"`
	Hits   []Hit  `json:"hits"`
}

// Hit is one matching guide.
type Hit struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
	Title string  `json:"title"`
	Slug  string  `json:"slug"`
}

// Search finds guides matching q in title, tags or body text.
// Title matches rank highest; the last word also matches as a prefix so
// results appear while the user is still typing.
func (s *GuideIndex) Search(ctx context.Context, q string, limit int) (*Result, error) {
	q = strings.TrimSpace(q)
	if limit <= 0 {
		limit = DefaultLimit
	}
	limit = min(limit, MaxLimit)

	result := &Result{Query: q, Hits: []Hit{}}
	if q == "" {
		return result, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	req := bleve.NewSearchRequestOptions(buildQuery(q), limit, 0, false)
	req.Fields = []string{"title", "slug"}

	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	result.Total = res.Total
	result.TookMs = res.Took.Milliseconds()
	for _, h := range res.Hits {
		hit := Hit{ID: h.ID, Score: h.Score}
		if t, ok := h.Fields["title"].(string); ok {
			hit.Title = t
		}
		if sl, ok := h.Fields["slug"].(string); ok {
			hit.Slug = sl
		}
		result.Hits = append(result.Hits, hit)
	}
	return result, nil
}

func buildQuery(q string) query.Query {
	folded := strings.ToLower(util.FoldText(q))

	title := bleve.NewMatchQuery(folded)
	title.SetField("title_text")
	title.SetBoost(3)

	tags := bleve.NewMatchQuery(folded)
	tags.SetField("tags")
	tags.SetBoost(2)

	body := bleve.NewMatchQuery(folded)
	body.SetField("body")

	slug := bleve.NewTermQuery(util.NormalizeSlug(q))
	slug.SetField("slug")
	slug.SetBoost(5)

	queries := []query.Query{title, tags, body, slug}

	words := strings.Fields(folded)
	if last := words[len(words)-1]; len(last) >= 2 {
		prefix := bleve.NewPrefixQuery(last)
		prefix.SetField("title_text")
		prefix.SetBoost(1.5)
		queries = append(queries, prefix)
	}

	return bleve.NewDisjunctionQuery(queries...)
}
