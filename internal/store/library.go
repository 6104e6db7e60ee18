package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/readmateapp/readmate-server/internal/domain"
)

// Library entries are keyed per user and book so saving the same book
// twice overwrites rather than duplicates.
const libraryPrefix = "library:"

func libraryKey(userID, bookID string) []byte {
	return []byte(libraryPrefix + userID + ":" + bookID)
}

// AddToLibrary stores a library entry, replacing any existing one for the
// same user and book.
func (s *Store) AddToLibrary(ctx context.Context, entry *domain.LibraryEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.set(libraryKey(entry.UserID, entry.BookID), entry)
}

// RemoveFromLibrary deletes a library entry.
func (s *Store) RemoveFromLibrary(ctx context.Context, userID, bookID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key := libraryKey(userID, bookID)
	return s.db.Update(func(txn *badger.Txn) error {
		// Delete on a missing key is silently a no-op, so check first.
		if _, err := txn.Get(key); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrLibraryEntryNotFound
			}
			return err
		}
		return txn.Delete(key)
	})
}

// ListLibrary returns every book the user saved to their library.
func (s *Store) ListLibrary(ctx context.Context, userID string) ([]*domain.LibraryEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := []byte(libraryPrefix + userID + ":")

	var entries []*domain.LibraryEntry
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var entry domain.LibraryEntry
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &entry)
			}); err != nil {
				return err
			}
			entries = append(entries, &entry)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning library: %w", err)
	}

	return entries, nil
}
