package store

import "github.com/workguide/guide-server/internal/domain"

// Key layout. Every composite key is joined with ':'; generated IDs never
// contain one, so the last segment of a key is always an ID.
const (
	guidePrefix       = "guide:"           // guide:{id} → Guide JSON
	guideBySlugPrefix = "idx:guides:slug:" // idx:guides:slug:{slug} → guideID
	tagPrefix         = "tag:"             // tag:{id} → Tag JSON
	tagByNamePrefix   = "idx:tags:name:"   // idx:tags:name:{nameKey} → tagID
	linkPrefix        = "link:"            // link:{category}:{guideID}:{tagID} → GuideTagLink JSON
	tagLinksPrefix    = "idx:tags:links:"  // idx:tags:links:{tagID}:{category}:{guideID} → empty
	childPrefix       = "child:"           // child:{collection}:{guideID}:{childID} → child JSON
)

func guideKey(id string) []byte { return []byte(guidePrefix + id) }

func guideSlugKey(slug string) []byte { return []byte(guideBySlugPrefix + slug) }

func tagKey(id string) []byte { return []byte(tagPrefix + id) }

func tagNameKey(nameKey string) []byte { return []byte(tagByNamePrefix + nameKey) }

func linkKey(category domain.LinkCategory, guideID, tagID string) []byte {
	return []byte(linkPrefix + string(category) + ":" + guideID + ":" + tagID)
}

// linkGuidePrefix covers every link of one guide in one category.
func linkGuidePrefix(category domain.LinkCategory, guideID string) []byte {
	return []byte(linkPrefix + string(category) + ":" + guideID + ":")
}

func tagLinkKey(tagID string, category domain.LinkCategory, guideID string) []byte {
	return []byte(tagLinksPrefix + tagID + ":" + string(category) + ":" + guideID)
}

// tagLinkScanPrefix covers every link pointing at one tag, in any category.
func tagLinkScanPrefix(tagID string) []byte {
	return []byte(tagLinksPrefix + tagID + ":")
}

func childKey(c Collection, guideID, childID string) []byte {
	return []byte(childPrefix + string(c) + ":" + guideID + ":" + childID)
}

func childGuidePrefix(c Collection, guideID string) []byte {
	return []byte(childPrefix + string(c) + ":" + guideID + ":")
}
