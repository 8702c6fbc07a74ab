package domain

import "time"

// TagKind classifies a tag within the shared vocabulary.
type TagKind string

// Tag kinds.
const (
	TagKindWorkType TagKind = "work-type"
	TagKindProduct  TagKind = "product"
	TagKindRole     TagKind = "role"
)

// Valid reports whether k is a known tag kind.
func (k TagKind) Valid() bool {
	switch k {
	case TagKindWorkType, TagKindProduct, TagKindRole:
		return true
	default:
		return false
	}
}

// Tag is a named, typed label shared across guides.
// Name is unique across the whole registry regardless of Kind.
type Tag struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Kind      TagKind   `json:"kind"`
	Color     string    `json:"color,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Touch updates the UpdatedAt timestamp.
func (t *Tag) Touch() {
	t.UpdatedAt = time.Now()
}

// LinkCategory is the logical bucket a guide-to-tag link is stored under.
// Each category is written and cleared independently of the other.
type LinkCategory string

// Link categories.
const (
	LinkWorkType LinkCategory = "work-type"
	LinkProduct  LinkCategory = "product"
)

// LinkCategories lists every category in a stable order.
var LinkCategories = []LinkCategory{LinkWorkType, LinkProduct}

// TagKind returns the kind given to tags created lazily from this category.
func (c LinkCategory) TagKind() TagKind {
	if c == LinkProduct {
		return TagKindProduct
	}
	return TagKindWorkType
}

// GuideTagLink associates one guide with one tag in one category.
type GuideTagLink struct {
	GuideID  string       `json:"guide_id"`
	TagID    string       `json:"tag_id"`
	Category LinkCategory `json:"category"`
	Order    int          `json:"order"` // Position in the caller's tag list
}
