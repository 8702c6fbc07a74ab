package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"slices"
	"strings"

	"github.com/dgraph-io/badger/v4"
)

// Entity provides generic CRUD operations for any domain type.
type Entity[T any] struct {
	store   *Store
	prefix  string
	indexes []Index[T]
}

// Index defines a secondary index on an entity.
//
// A unique index maps prefix+"idx:"+name+":"+value to the entity ID and
// rejects a second entity with the same value. A multi index writes one
// empty key per entity, prefix+"idx:"+name+":"+value+":"+id, and is read
// with a prefix scan.
type Index[T any] struct {
	name            string
	keyGen          func(*T) []string
	lookupTransform func(string) string // Optional transformation for lookups
	multi           bool
}

// NewEntity creates a new Entity instance for type T.
func NewEntity[T any](s *Store, prefix string) *Entity[T] {
	return &Entity[T]{
		store:   s,
		prefix:  prefix,
		indexes: make([]Index[T], 0),
	}
}

// WithIndex adds a unique secondary index to the entity.
func (e *Entity[T]) WithIndex(name string, keyGen func(*T) []string) *Entity[T] {
	e.indexes = append(e.indexes, Index[T]{
		name:   name,
		keyGen: keyGen,
	})
	return e
}

// WithIndexTransform adds a unique secondary index with lookup transformation.
// The lookupTransform function is applied to search values before index lookup,
// enabling case-insensitive searches, normalization, etc.
func (e *Entity[T]) WithIndexTransform(name string, keyGen func(*T) []string, lookupTransform func(string) string) *Entity[T] {
	e.indexes = append(e.indexes, Index[T]{
		name:            name,
		keyGen:          keyGen,
		lookupTransform: lookupTransform,
	})
	return e
}

// WithMultiIndex adds a non-unique secondary index, read with ListByIndex.
func (e *Entity[T]) WithMultiIndex(name string, keyGen func(*T) []string) *Entity[T] {
	e.indexes = append(e.indexes, Index[T]{
		name:   name,
		keyGen: keyGen,
		multi:  true,
	})
	return e
}

func (e *Entity[T]) indexKey(idx Index[T], value, id string) []byte {
	if idx.multi {
		return []byte(e.prefix + "idx:" + idx.name + ":" + value + ":" + id)
	}
	return []byte(e.prefix + "idx:" + idx.name + ":" + value)
}

func (e *Entity[T]) findIndex(name string) (Index[T], bool) {
	for _, idx := range e.indexes {
		if idx.name == name {
			return idx, true
		}
	}
	return Index[T]{}, false
}

// writeIndexed stores entity under id and moves its index keys from the
// values produced by old (nil on create) to the values produced by entity.
func (e *Entity[T]) writeIndexed(txn *badger.Txn, id string, old, entity *T) error {
	data, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("failed to marshal entity: %w", err)
	}

	for _, idx := range e.indexes {
		var oldValues []string
		if old != nil {
			oldValues = idx.keyGen(old)
		}
		newValues := idx.keyGen(entity)

		for _, v := range oldValues {
			if slices.Contains(newValues, v) {
				continue
			}
			if err := txn.Delete(e.indexKey(idx, v, id)); err != nil {
				return fmt.Errorf("failed to delete old index key: %w", err)
			}
		}

		for _, v := range newValues {
			if slices.Contains(oldValues, v) {
				continue
			}
			key := e.indexKey(idx, v, id)
			if !idx.multi {
				_, err := txn.Get(key)
				if err == nil {
					return fmt.Errorf("index %s conflict on key %s: %w", idx.name, v, ErrAlreadyExists)
				}
				if !errors.Is(err, badger.ErrKeyNotFound) {
					return fmt.Errorf("failed to check index key: %w", err)
				}
				if err := txn.Set(key, []byte(id)); err != nil {
					return fmt.Errorf("failed to set index key: %w", err)
				}
				continue
			}
			if err := txn.Set(key, nil); err != nil {
				return fmt.Errorf("failed to set index key: %w", err)
			}
		}
	}

	if err := txn.Set([]byte(e.prefix+id), data); err != nil {
		return fmt.Errorf("failed to set key: %w", err)
	}
	return nil
}

// Create creates a new entity with the given ID.
// Returns ErrAlreadyExists if an entity with this ID already exists
// or a unique index value is taken.
func (e *Entity[T]) Create(ctx context.Context, id string, entity *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return e.store.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(e.prefix + id))
		if err == nil {
			return ErrAlreadyExists
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("failed to check existing key: %w", err)
		}
		return e.writeIndexed(txn, id, nil, entity)
	})
}

// Get retrieves an entity by ID.
// Returns ErrNotFound if the entity does not exist.
func (e *Entity[T]) Get(ctx context.Context, id string) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var entity T
	err := e.store.db.View(func(txn *badger.Txn) error {
		err := getInTxn(txn, []byte(e.prefix+id), &entity)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	return &entity, nil
}

// GetByIndex retrieves an entity by a unique secondary index.
// If the index has a lookup transform, it will be applied to the value before lookup.
func (e *Entity[T]) GetByIndex(ctx context.Context, indexName, value string) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	idx, ok := e.findIndex(indexName)
	if !ok || idx.multi {
		return nil, fmt.Errorf("no unique index %q: %w", indexName, ErrInvalidInput)
	}
	if idx.lookupTransform != nil {
		value = idx.lookupTransform(value)
	}

	var id string
	err := e.store.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(e.indexKey(idx, value, ""))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			return err
		}

		return item.Value(func(val []byte) error {
			id = string(val)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return e.Get(ctx, id)
}

// ListByIndex returns every entity whose multi index produces value.
func (e *Entity[T]) ListByIndex(ctx context.Context, indexName, value string) ([]*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	idx, ok := e.findIndex(indexName)
	if !ok || !idx.multi {
		return nil, fmt.Errorf("no multi index %q: %w", indexName, ErrInvalidInput)
	}

	keys, err := e.store.scanKeys(e.indexKey(idx, value, ""))
	if err != nil {
		return nil, err
	}

	result := make([]*T, 0, len(keys))
	for _, key := range keys {
		k := string(key)
		id := k[strings.LastIndexByte(k, ':')+1:]

		entity, err := e.Get(ctx, id)
		if errors.Is(err, ErrNotFound) {
			continue // index outlived its row
		}
		if err != nil {
			return nil, err
		}
		// A value containing ':' can share a scan prefix with a longer one.
		if !slices.Contains(idx.keyGen(entity), value) {
			continue
		}
		result = append(result, entity)
	}
	return result, nil
}

// Update replaces an existing entity.
// Returns ErrNotFound if the entity does not exist.
func (e *Entity[T]) Update(ctx context.Context, id string, entity *T) error {
	_, err := e.Mutate(ctx, id, func(current *T) error {
		*current = *entity
		return nil
	})
	return err
}

// Mutate applies fn to the stored entity and writes the result back in the
// same transaction. Returns ErrNotFound if the entity does not exist and
// ErrConflict if a concurrent writer committed first.
func (e *Entity[T]) Mutate(ctx context.Context, id string, fn func(*T) error) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var updated T
	err := e.store.db.Update(func(txn *badger.Txn) error {
		var old T
		err := getInTxn(txn, []byte(e.prefix+id), &old)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to get existing key: %w", err)
		}

		// Decode twice so fn cannot alias slices shared with old.
		if err := getInTxn(txn, []byte(e.prefix+id), &updated); err != nil {
			return err
		}
		if err := fn(&updated); err != nil {
			return err
		}
		return e.writeIndexed(txn, id, &old, &updated)
	})
	if errors.Is(err, badger.ErrConflict) {
		return nil, ErrConflict.WithCause(err)
	}
	if err != nil {
		return nil, err
	}

	return &updated, nil
}

// Delete deletes an entity by ID.
// This operation is idempotent - it does not return an error if the entity does not exist.
func (e *Entity[T]) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return e.store.db.Update(func(txn *badger.Txn) error {
		var entity T
		err := getInTxn(txn, []byte(e.prefix+id), &entity)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to get key: %w", err)
		}

		for _, idx := range e.indexes {
			for _, v := range idx.keyGen(&entity) {
				if err := txn.Delete(e.indexKey(idx, v, id)); err != nil {
					return fmt.Errorf("failed to delete index key: %w", err)
				}
			}
		}

		if err := txn.Delete([]byte(e.prefix + id)); err != nil {
			return fmt.Errorf("failed to delete key: %w", err)
		}
		return nil
	})
}

// List returns an iterator over all entities.
func (e *Entity[T]) List(ctx context.Context) iter.Seq2[*T, error] {
	return func(yield func(*T, error) bool) {
		_ = e.store.db.View(func(txn *badger.Txn) error {
			opts := badger.DefaultIteratorOptions
			opts.Prefix = []byte(e.prefix)
			opts.PrefetchValues = true

			it := txn.NewIterator(opts)
			defer it.Close()

			for it.Seek([]byte(e.prefix)); it.ValidForPrefix([]byte(e.prefix)); it.Next() {
				if ctx.Err() != nil {
					yield(nil, ctx.Err())
					return ctx.Err()
				}

				// Skip index keys
				key := string(it.Item().Key())
				if strings.HasPrefix(key[len(e.prefix):], "idx:") {
					continue
				}

				var entity T
				err := it.Item().Value(func(val []byte) error {
					return json.Unmarshal(val, &entity)
				})
				if err != nil {
					yield(nil, err)
					return err
				}

				if !yield(&entity, nil) {
					return nil // Consumer stopped early
				}
			}

			return nil
		})
	}
}

// All collects List into a slice.
func (e *Entity[T]) All(ctx context.Context) ([]*T, error) {
	var result []*T
	for entity, err := range e.List(ctx) {
		if err != nil {
			return nil, err
		}
		result = append(result, entity)
	}
	return result, nil
}
