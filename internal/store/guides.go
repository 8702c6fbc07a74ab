package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/workguide/guide-server/internal/domain"
)

// CreateGuide stores a new guide root together with its slug index.
// Returns ErrSlugTaken if another guide owns the slug.
func (s *Store) CreateGuide(ctx context.Context, g *domain.Guide) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(guideKey(g.ID)); err == nil {
			return ErrAlreadyExists
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		slugKey := guideSlugKey(g.Slug)
		if _, err := txn.Get(slugKey); err == nil {
			return ErrSlugTaken
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		if err := setInTxn(txn, guideKey(g.ID), g); err != nil {
			return err
		}
		return txn.Set(slugKey, []byte(g.ID))
	})
}

// GetGuide retrieves a guide root by ID.
func (s *Store) GetGuide(ctx context.Context, guideID string) (*domain.Guide, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var g domain.Guide
	if err := s.get(guideKey(guideID), &g); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrGuideNotFound
		}
		return nil, err
	}
	return &g, nil
}

// GetGuideBySlug retrieves a guide root through the slug index.
func (s *Store) GetGuideBySlug(ctx context.Context, slug string) (*domain.Guide, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var guideID string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(guideSlugKey(slug))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrGuideNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			guideID = string(val)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return s.GetGuide(ctx, guideID)
}

// GuideExists reports whether a guide root is stored under guideID.
func (s *Store) GuideExists(ctx context.Context, guideID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return s.exists(guideKey(guideID))
}

// ListGuides returns every guide root in key order.
func (s *Store) ListGuides(ctx context.Context) ([]*domain.Guide, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	guides, err := scanValues[domain.Guide](s, []byte(guidePrefix))
	if err != nil {
		return nil, err
	}

	result := make([]*domain.Guide, len(guides))
	for i := range guides {
		result[i] = &guides[i]
	}
	return result, nil
}

// UpdateGuide patches a guide root with mutate inside a single-key transaction.
//
// When expectedVersion is positive the stored version must equal it, otherwise
// ErrVersionConflict is returned and nothing is written. On success the
// version grows by one and UpdatedAt is refreshed. A changed slug moves the
// slug index in the same transaction.
func (s *Store) UpdateGuide(ctx context.Context, guideID string, expectedVersion int, mutate func(*domain.Guide) error) (*domain.Guide, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var g domain.Guide
	err := s.db.Update(func(txn *badger.Txn) error {
		if err := getInTxn(txn, guideKey(guideID), &g); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrGuideNotFound
			}
			return err
		}

		if expectedVersion > 0 && g.Version != expectedVersion {
			return ErrVersionConflict.WithCause(
				fmt.Errorf("expected version %d, stored %d", expectedVersion, g.Version))
		}

		oldSlug := g.Slug
		if err := mutate(&g); err != nil {
			return err
		}
		g.ID = guideID

		if g.Slug != oldSlug {
			item, err := txn.Get(guideSlugKey(g.Slug))
			if err == nil {
				var owner string
				_ = item.Value(func(val []byte) error {
					owner = string(val)
					return nil
				})
				if owner != guideID {
					return ErrSlugTaken
				}
			} else if !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}

			if err := txn.Delete(guideSlugKey(oldSlug)); err != nil {
				return err
			}
			if err := txn.Set(guideSlugKey(g.Slug), []byte(guideID)); err != nil {
				return err
			}
		}

		g.Version++
		g.Touch()
		return setInTxn(txn, guideKey(guideID), &g)
	})
	if errors.Is(err, badger.ErrConflict) {
		return nil, ErrVersionConflict.WithCause(err)
	}
	if err != nil {
		return nil, err
	}

	return &g, nil
}

// DeleteGuide removes a guide root and its slug index. Deleting a missing
// guide is not an error. Child rows and links are left to the caller.
func (s *Store) DeleteGuide(ctx context.Context, guideID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		var g domain.Guide
		err := getInTxn(txn, guideKey(guideID), &g)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		// Leave the slug index alone if a newer guide has claimed it.
		item, err := txn.Get(guideSlugKey(g.Slug))
		if err == nil {
			var owner string
			_ = item.Value(func(val []byte) error {
				owner = string(val)
				return nil
			})
			if owner == guideID {
				if err := txn.Delete(guideSlugKey(g.Slug)); err != nil {
					return err
				}
			}
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		return txn.Delete(guideKey(guideID))
	})
}
