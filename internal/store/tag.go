package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/workguide/guide-server/internal/domain"
	"github.com/workguide/guide-server/internal/util"
)

// Tags live in one global namespace keyed by util.TagNameKey(name).

// CreateTag creates a new tag.
// Returns ErrTagNameTaken if another tag already owns the name key.
func (s *Store) CreateTag(ctx context.Context, t *domain.Tag) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		nameKey := tagNameKey(util.TagNameKey(t.Name))
		if _, err := txn.Get(nameKey); err == nil {
			return ErrTagNameTaken
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		if err := setInTxn(txn, tagKey(t.ID), t); err != nil {
			return err
		}
		return txn.Set(nameKey, []byte(t.ID))
	})
}

// GetTag retrieves a tag by ID.
func (s *Store) GetTag(ctx context.Context, tagID string) (*domain.Tag, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var t domain.Tag
	if err := s.get(tagKey(tagID), &t); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrTagNotFound
		}
		return nil, err
	}
	return &t, nil
}

// GetTagByName retrieves a tag by name, ignoring case and spacing differences.
func (s *Store) GetTagByName(ctx context.Context, name string) (*domain.Tag, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var tagID string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(tagNameKey(util.TagNameKey(name)))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrTagNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			tagID = string(val)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return s.GetTag(ctx, tagID)
}

// ListTags returns all tags ordered by name.
func (s *Store) ListTags(ctx context.Context) ([]*domain.Tag, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := []byte(tagPrefix)
	var tags []*domain.Tag

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchSize = 100

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var t domain.Tag
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &t)
			})
			if err != nil {
				return fmt.Errorf("decode tag %s: %w", it.Item().Key(), err)
			}
			tags = append(tags, &t)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(tags, func(i, j int) bool {
		ki, kj := util.TagNameKey(tags[i].Name), util.TagNameKey(tags[j].Name)
		if ki != kj {
			return ki < kj
		}
		return tags[i].ID < tags[j].ID
	})

	return tags, nil
}

// UpdateTag overwrites a tag, moving its name index if the name changed.
func (s *Store) UpdateTag(ctx context.Context, t *domain.Tag) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		var old domain.Tag
		if err := getInTxn(txn, tagKey(t.ID), &old); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrTagNotFound
			}
			return err
		}

		oldKey, newKey := util.TagNameKey(old.Name), util.TagNameKey(t.Name)
		if oldKey != newKey {
			if _, err := txn.Get(tagNameKey(newKey)); err == nil {
				return ErrTagNameTaken
			}
			if err := txn.Delete(tagNameKey(oldKey)); err != nil {
				return err
			}
			if err := txn.Set(tagNameKey(newKey), []byte(t.ID)); err != nil {
				return err
			}
		}

		return setInTxn(txn, tagKey(t.ID), t)
	})
}

// DeleteTag removes a tag and its name index. Links are not inspected here;
// callers check TagHasLinks first.
func (s *Store) DeleteTag(ctx context.Context, tagID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		var t domain.Tag
		if err := getInTxn(txn, tagKey(tagID), &t); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrTagNotFound
			}
			return err
		}

		if err := txn.Delete(tagKey(tagID)); err != nil {
			return err
		}
		return txn.Delete(tagNameKey(util.TagNameKey(t.Name)))
	})
}

// AddGuideTagLink writes one link row together with its reverse index key.
func (s *Store) AddGuideTagLink(ctx context.Context, link *domain.GuideTagLink) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		if err := setInTxn(txn, linkKey(link.Category, link.GuideID, link.TagID), link); err != nil {
			return err
		}
		return txn.Set(tagLinkKey(link.TagID, link.Category, link.GuideID), nil)
	})
}

// ListGuideTagLinks returns a guide's links in one category, in list order.
func (s *Store) ListGuideTagLinks(ctx context.Context, guideID string, category domain.LinkCategory) ([]domain.GuideTagLink, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	links, err := scanValues[domain.GuideTagLink](s, linkGuidePrefix(category, guideID))
	if err != nil {
		return nil, err
	}

	sort.SliceStable(links, func(i, j int) bool {
		return links[i].Order < links[j].Order
	})
	return links, nil
}

// DeleteGuideTagLinks removes every link of a guide in one category.
// Each link goes in its own transaction. Returns the number removed.
func (s *Store) DeleteGuideTagLinks(ctx context.Context, guideID string, category domain.LinkCategory) (int, error) {
	keys, err := s.scanKeys(linkGuidePrefix(category, guideID))
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return removed, err
		}

		k := string(key)
		tagID := k[strings.LastIndexByte(k, ':')+1:]

		err := s.db.Update(func(txn *badger.Txn) error {
			if err := txn.Delete(key); err != nil {
				return err
			}
			return txn.Delete(tagLinkKey(tagID, category, guideID))
		})
		if err != nil {
			return removed, fmt.Errorf("delete link %s: %w", k, err)
		}
		removed++
	}
	return removed, nil
}

// TagHasLinks reports whether any guide links to the tag in any category.
func (s *Store) TagHasLinks(ctx context.Context, tagID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	prefix := tagLinkScanPrefix(tagID)
	found := false
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		it.Seek(prefix)
		found = it.ValidForPrefix(prefix)
		return nil
	})
	return found, err
}

// CountTagGuides returns how many distinct guides link to the tag.
func (s *Store) CountTagGuides(ctx context.Context, tagID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	keys, err := s.scanKeys(tagLinkScanPrefix(tagID))
	if err != nil {
		return 0, err
	}

	guides := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		k := string(key)
		guides[k[strings.LastIndexByte(k, ':')+1:]] = struct{}{}
	}
	return len(guides), nil
}
