package domain

import "time"

// Guide is the root record of a work-guide aggregate.
// Child rows reference it by ID; nothing is embedded.
type Guide struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	VideoURL  string    `json:"video_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	// Version starts at 1 and grows by exactly one per successful update.
	Version int `json:"version"`
}

// InitTimestamps sets both CreatedAt and UpdatedAt to now.
func (g *Guide) InitTimestamps() {
	now := time.Now()
	g.CreatedAt = now
	g.UpdatedAt = now
}

// Touch updates the UpdatedAt timestamp to the current time.
func (g *Guide) Touch() {
	g.UpdatedAt = time.Now()
}

// ListItem is a tool, warning or common-error row.
// Order is the 0-based position in the list as last written.
type ListItem struct {
	ID      string `json:"id"`
	GuideID string `json:"guide_id"`
	Order   int    `json:"order"`
	Text    string `json:"text"`
}

// Step is one numbered instruction. Number is 1-based; reads sort by it.
type Step struct {
	ID      string `json:"id"`
	GuideID string `json:"guide_id"`
	Number  int    `json:"number"`
	Text    string `json:"text"`
}

// Image is a picture attached to a guide. StepNumber 0 means general.
type Image struct {
	ID         string `json:"id"`
	GuideID    string `json:"guide_id"`
	URL        string `json:"url"`
	StepNumber int    `json:"step_number"`
	Caption    string `json:"caption,omitempty"`
	Order      int    `json:"order"`
}

// GuideAggregate is a guide assembled from its root and every child collection.
type GuideAggregate struct {
	Guide
	WorkTypeTags []*Tag     `json:"work_type_tags"`
	ProductTags  []*Tag     `json:"product_tags"`
	Tools        []ListItem `json:"tools"`
	Steps        []Step     `json:"steps"`
	Warnings     []ListItem `json:"warnings"`
	Errors       []ListItem `json:"errors"`
	Images       []Image    `json:"images"`
}

// TagNames returns the names of the tags linked in the given category, in link order.
func (a *GuideAggregate) TagNames(category LinkCategory) []string {
	tags := a.WorkTypeTags
	if category == LinkProduct {
		tags = a.ProductTags
	}
	names := make([]string, len(tags))
	for i, t := range tags {
		names[i] = t.Name
	}
	return names
}
