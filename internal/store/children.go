package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/dgraph-io/badger/v4"

	"github.com/workguide/guide-server/internal/domain"
)

// Collection names one of a guide's child row collections.
type Collection string

// Child collections.
const (
	CollectionTools    Collection = "tool"
	CollectionWarnings Collection = "warning"
	CollectionErrors   Collection = "error"
	CollectionSteps    Collection = "step"
	CollectionImages   Collection = "image"
)

// ChildCollections lists every child collection in delete order.
var ChildCollections = []Collection{
	CollectionTools,
	CollectionSteps,
	CollectionWarnings,
	CollectionErrors,
	CollectionImages,
}

// IsListCollection reports whether c holds plain ordered text items.
func (c Collection) IsListCollection() bool {
	return c == CollectionTools || c == CollectionWarnings || c == CollectionErrors
}

// deleteBatchSize caps how many child deletes are queued before a flush.
const deleteBatchSize = 500

// InsertListItem writes one tool, warning or error row.
func (s *Store) InsertListItem(ctx context.Context, c Collection, item *domain.ListItem) error {
	if !c.IsListCollection() {
		return ErrUnknownCollection.WithCause(fmt.Errorf("%q holds no list items", c))
	}
	return s.insertChild(ctx, c, item.GuideID, item.ID, item)
}

// ListListItems returns a guide's rows in one list collection, ordered by position.
func (s *Store) ListListItems(ctx context.Context, c Collection, guideID string) ([]domain.ListItem, error) {
	if !c.IsListCollection() {
		return nil, ErrUnknownCollection.WithCause(fmt.Errorf("%q holds no list items", c))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	items, err := scanValues[domain.ListItem](s, childGuidePrefix(c, guideID))
	if err != nil {
		return nil, err
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Order < items[j].Order
	})
	return items, nil
}

// InsertStep writes one step row exactly as numbered by the caller.
func (s *Store) InsertStep(ctx context.Context, step *domain.Step) error {
	return s.insertChild(ctx, CollectionSteps, step.GuideID, step.ID, step)
}

// ListSteps returns a guide's steps sorted by number.
func (s *Store) ListSteps(ctx context.Context, guideID string) ([]domain.Step, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	steps, err := scanValues[domain.Step](s, childGuidePrefix(CollectionSteps, guideID))
	if err != nil {
		return nil, err
	}
	sort.SliceStable(steps, func(i, j int) bool {
		return steps[i].Number < steps[j].Number
	})
	return steps, nil
}

// InsertImage writes one image row.
func (s *Store) InsertImage(ctx context.Context, img *domain.Image) error {
	return s.insertChild(ctx, CollectionImages, img.GuideID, img.ID, img)
}

// ListImages returns a guide's images grouped by step (general images first),
// keeping insertion order inside each group.
func (s *Store) ListImages(ctx context.Context, guideID string) ([]domain.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	images, err := scanValues[domain.Image](s, childGuidePrefix(CollectionImages, guideID))
	if err != nil {
		return nil, err
	}
	sort.SliceStable(images, func(i, j int) bool {
		if images[i].StepNumber != images[j].StepNumber {
			return images[i].StepNumber < images[j].StepNumber
		}
		return images[i].Order < images[j].Order
	})
	return images, nil
}

// CountChildren returns how many rows a guide has in collection c.
func (s *Store) CountChildren(ctx context.Context, c Collection, guideID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	keys, err := s.scanKeys(childGuidePrefix(c, guideID))
	return len(keys), err
}

// DeleteChildren removes every row a guide has in collection c.
// Rows are independent, so they are removed through a BatchWriter with no
// atomicity across them. Returns the number of rows queued for removal.
func (s *Store) DeleteChildren(ctx context.Context, c Collection, guideID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	keys, err := s.scanKeys(childGuidePrefix(c, guideID))
	if err != nil {
		return 0, err
	}
	if len(keys) == 0 {
		return 0, nil
	}

	batch := s.NewBatchWriter(deleteBatchSize)
	defer batch.Cancel()

	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		if err := batch.Delete(key); err != nil {
			return 0, fmt.Errorf("delete %s rows of %s: %w", c, guideID, err)
		}
	}
	if err := batch.Flush(); err != nil {
		return 0, fmt.Errorf("delete %s rows of %s: %w", c, guideID, err)
	}
	return len(keys), nil
}

func (s *Store) insertChild(ctx context.Context, c Collection, guideID, childID string, value any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if guideID == "" || childID == "" {
		return ErrInvalidInput.WithCause(fmt.Errorf("%s row needs guide and row IDs", c))
	}
	return s.set(childKey(c, guideID, childID), value)
}

// scanValues decodes every value stored under prefix.
func scanValues[T any](s *Store, prefix []byte) ([]T, error) {
	var result []T
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var v T
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &v)
			})
			if err != nil {
				return fmt.Errorf("decode %s: %w", it.Item().Key(), err)
			}
			result = append(result, v)
		}
		return nil
	})
	return result, err
}
