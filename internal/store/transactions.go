package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/readmateapp/readmate-server/internal/domain"
)

// Transaction storage key prefixes.
// The user index embeds an inverted timestamp so forward iteration yields
// newest transactions first.
const (
	txnPrefix        = "txn:"
	txnIdxUserPrefix = "txn:idx:user:"
)

// invertedTimestamp returns a string that sorts in descending time order
// during forward iteration.
func invertedTimestamp(t time.Time) string {
	return fmt.Sprintf("%019d", math.MaxInt64-t.UnixNano())
}

// transactionRecord is the persisted form of a transaction. Messages are
// stored as serialized JSON strings; the typed domain.Message only exists
// on this side of the boundary after decoding.
type transactionRecord struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	BookID     string    `json:"book_id"`
	BookTitle  string    `json:"book_title"`
	BookAuthor *string   `json:"book_author"`
	BookCover  *string   `json:"book_cover"`
	Messages   []string  `json:"messages"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// encodeMessage serializes a message for storage.
func encodeMessage(m domain.Message) (string, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("marshaling message: %w", err)
	}
	return string(data), nil
}

// toRecord converts a domain transaction into its persisted form.
func toRecord(t *domain.Transaction) (*transactionRecord, error) {
	rec := &transactionRecord{
		ID:         t.ID,
		UserID:     t.UserID,
		BookID:     t.BookID,
		BookTitle:  t.BookTitle,
		BookAuthor: t.BookAuthor,
		BookCover:  t.BookCover,
		Messages:   make([]string, 0, len(t.Messages)),
		CreatedAt:  t.CreatedAt,
		UpdatedAt:  t.UpdatedAt,
	}
	for _, m := range t.Messages {
		encoded, err := encodeMessage(m)
		if err != nil {
			return nil, err
		}
		rec.Messages = append(rec.Messages, encoded)
	}
	return rec, nil
}

// fromRecord converts a persisted record back into a domain transaction.
// Malformed stored messages are skipped rather than failing the load.
func (s *Store) fromRecord(rec *transactionRecord) *domain.Transaction {
	t := &domain.Transaction{
		ID:         rec.ID,
		UserID:     rec.UserID,
		BookID:     rec.BookID,
		BookTitle:  rec.BookTitle,
		BookAuthor: rec.BookAuthor,
		BookCover:  rec.BookCover,
		Messages:   make([]domain.Message, 0, len(rec.Messages)),
		CreatedAt:  rec.CreatedAt,
		UpdatedAt:  rec.UpdatedAt,
	}
	for _, raw := range rec.Messages {
		var m domain.Message
		if err := json.Unmarshal([]byte(raw), &m); err != nil {
			if s.logger != nil {
				s.logger.Debug("skipping malformed stored message",
					"transaction_id", rec.ID,
					"error", err,
				)
			}
			continue
		}
		t.Messages = append(t.Messages, m)
	}
	return t
}

// CreateTransaction stores a new transaction with its user index.
func (s *Store) CreateTransaction(ctx context.Context, t *domain.Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	rec, err := toRecord(t)
	if err != nil {
		return err
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshaling transaction: %w", err)
	}

	invertedTS := invertedTimestamp(t.CreatedAt)

	return s.db.Update(func(txn *badger.Txn) error {
		// Primary key: txn:{id} → record JSON
		if err := txn.Set([]byte(txnPrefix+t.ID), data); err != nil {
			return fmt.Errorf("setting primary key: %w", err)
		}

		// User index: txn:idx:user:{userId}:{inverted_timestamp}:{id} → "" (key-only)
		userKey := []byte(txnIdxUserPrefix + t.UserID + ":" + invertedTS + ":" + t.ID)
		if err := txn.Set(userKey, []byte{}); err != nil {
			return fmt.Errorf("setting user index: %w", err)
		}

		return nil
	})
}

// GetTransaction retrieves a single transaction by ID.
func (s *Store) GetTransaction(ctx context.Context, id string) (*domain.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rec transactionRecord
	err := s.get([]byte(txnPrefix+id), &rec)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, fmt.Errorf("transaction %s: %w", id, ErrTransactionNotFound)
		}
		return nil, fmt.Errorf("getting transaction %s: %w", id, err)
	}

	return s.fromRecord(&rec), nil
}

// AppendMessage appends a serialized message to a transaction and bumps
// its update time. The stored message list is append-only.
func (s *Store) AppendMessage(ctx context.Context, transactionID string, m domain.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	encoded, err := encodeMessage(m)
	if err != nil {
		return err
	}

	key := []byte(txnPrefix + transactionID)

	return s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("transaction %s: %w", transactionID, ErrTransactionNotFound)
		}
		if err != nil {
			return fmt.Errorf("getting transaction %s: %w", transactionID, err)
		}

		var rec transactionRecord
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		}); err != nil {
			return fmt.Errorf("unmarshaling transaction %s: %w", transactionID, err)
		}

		rec.Messages = append(rec.Messages, encoded)
		rec.UpdatedAt = time.Now()

		data, err := json.Marshal(&rec)
		if err != nil {
			return fmt.Errorf("marshaling transaction: %w", err)
		}
		return txn.Set(key, data)
	})
}

// ListTransactionsByUser returns all of a user's transactions ordered by
// creation time descending (newest first).
func (s *Store) ListTransactionsByUser(ctx context.Context, userID string) ([]*domain.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := []byte(txnIdxUserPrefix + userID + ":")

	var ids []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false // Key-only index, no values to fetch
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := string(it.Item().Key())
			// Key layout: txn:idx:user:{userId}:{inverted_ts}:{id}
			rest := key[len(prefix):]
			if _, id, found := strings.Cut(rest, ":"); found {
				ids = append(ids, id)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning user index: %w", err)
	}

	transactions := make([]*domain.Transaction, 0, len(ids))
	for _, id := range ids {
		t, err := s.GetTransaction(ctx, id)
		if err != nil {
			if errors.Is(err, ErrTransactionNotFound) {
				continue // index entry outlived its record
			}
			return nil, err
		}
		transactions = append(transactions, t)
	}

	return transactions, nil
}
