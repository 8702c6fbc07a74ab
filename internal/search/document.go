package search

import (
	"strings"

	"github.com/workguide/guide-server/internal/domain"
	"github.com/workguide/guide-server/internal/util"
)

// GuideDocument is what the index stores for one guide.
// Searchable text is folded so queries match with or without diacritics.
type GuideDocument struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`      // Display title, stored
	TitleText string   `json:"title_text"` // Folded title, searched
	Slug      string   `json:"slug"`
	Tags      []string `json:"tags"`
	Body      string   `json:"body"` // Steps, tools, warnings and errors
	UpdatedAt int64    `json:"updated_at"`
}

// NewGuideDocument builds the index document for an aggregate.
func NewGuideDocument(g *domain.GuideAggregate) *GuideDocument {
	doc := &GuideDocument{
		ID:        g.ID,
		Title:     g.Title,
		TitleText: util.FoldText(g.Title),
		Slug:      g.Slug,
		UpdatedAt: g.UpdatedAt.Unix(),
	}

	for _, category := range domain.LinkCategories {
		for _, name := range g.TagNames(category) {
			doc.Tags = append(doc.Tags, util.FoldText(name))
		}
	}

	var body strings.Builder
	for _, st := range g.Steps {
		body.WriteString(st.Text)
		body.WriteByte('\n')
	}
	for _, list := range [][]domain.ListItem{g.Tools, g.Warnings, g.Errors} {
		for _, it := range list {
			body.WriteString(it.Text)
			body.WriteByte('\n')
		}
	}
	doc.Body = util.FoldText(body.String())

	return doc
}

// toMap keeps field names identical to the mapping.
func (d *GuideDocument) toMap() map[string]any {
	return map[string]any{
		"id":         d.ID,
		"title":      d.Title,
		"title_text": d.TitleText,
		"slug":       d.Slug,
		"tags":       d.Tags,
		"body":       d.Body,
		"updated_at": float64(d.UpdatedAt),
	}
}
