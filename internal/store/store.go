// Package store persists the guide catalog in Badger.
//
// Badger is used as a plain document store: every row is a JSON value under
// its own key and nothing spans collections. A guide row, its child rows and
// its tag links are written and deleted one key at a time; only a row and its
// own index keys share a transaction. Callers compose aggregate operations.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/workguide/guide-server/internal/domain"
)

// Store wraps a Badger database instance.
type Store struct {
	db     *badger.DB
	logger *slog.Logger

	// Generic entities
	Accounts    *Entity[domain.Account]
	Feedback    *Entity[domain.FeedbackNote]
	Visits      *Entity[domain.VisitRecord]
	Attachments *Entity[domain.Attachment]
}

// New opens the Badger database at path. An empty path opens an in-memory
// database, which is what the CLI dry runs and most tests use.
func New(path string, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = opts.WithInMemory(true)
	} else {
		opts.SyncWrites = true       // Ensure writes are synced to disk to prevent corruption on crashes
		opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup
	}
	opts.Logger = nil // Disable Badger's internal logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	s := &Store{
		db:     db,
		logger: logger,
	}

	s.initAccounts()
	s.initFeedback()
	s.initVisits()
	s.initAttachments()

	if logger != nil {
		logger.Info("Badger database opened successfully", "path", path, "in_memory", path == "")
	}

	return s, nil
}

// Close gracefully closes the database connection.
func (s *Store) Close() error {
	if s.logger != nil {
		s.logger.Info("Closing database connection")
	}
	return s.db.Close()
}

// Helper methods for database operations.

// get retrieves a value by key.
func (s *Store) get(key []byte, dest any) error {
	return s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, dest)
		})
	})
}

// set stores a value by key in its own transaction.
func (s *Store) set(key []byte, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
}

// exists checks if a key exists.
func (s *Store) exists(key []byte) (bool, error) {
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		return err
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// scanKeys returns copies of every key under prefix without loading values.
func (s *Store) scanKeys(prefix []byte) ([][]byte, error) {
	var keys [][]byte
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	return keys, err
}

// getInTxn reads and decodes key inside an existing transaction.
func getInTxn(txn *badger.Txn, key []byte, dest any) error {
	item, err := txn.Get(key)
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, dest)
	})
}

// setInTxn encodes value and writes it inside an existing transaction.
func setInTxn(txn *badger.Txn, key []byte, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}
	return txn.Set(key, data)
}

// normalizeEmail makes account email lookups case-insensitive.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// initAccounts indexes accounts by normalized email (unique).
func (s *Store) initAccounts() {
	s.Accounts = NewEntity[domain.Account](s, "account:").
		WithIndexTransform("email",
			func(a *domain.Account) []string {
				return []string{normalizeEmail(a.Email)}
			},
			normalizeEmail,
		)
}

// initFeedback indexes notes by guide and by author.
func (s *Store) initFeedback() {
	s.Feedback = NewEntity[domain.FeedbackNote](s, "feedback:").
		WithMultiIndex("guide", func(f *domain.FeedbackNote) []string {
			return []string{f.GuideID}
		}).
		WithMultiIndex("user", func(f *domain.FeedbackNote) []string {
			return []string{f.UserID}
		})
}

// initVisits indexes visit records by guide and by user.
func (s *Store) initVisits() {
	s.Visits = NewEntity[domain.VisitRecord](s, "visit:").
		WithMultiIndex("guide", func(v *domain.VisitRecord) []string {
			return []string{v.GuideID}
		}).
		WithMultiIndex("user", func(v *domain.VisitRecord) []string {
			return []string{v.UserID}
		})
}

// initAttachments indexes attachment metadata by its guide correlation key.
func (s *Store) initAttachments() {
	s.Attachments = NewEntity[domain.Attachment](s, "attachment:").
		WithMultiIndex("guide", func(a *domain.Attachment) []string {
			return []string{a.GuideID}
		})
}
