package store

import (
	"context"
	"testing"
	"time"

	"github.com/readmateapp/readmate-server/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestStore creates a store backed by a temporary directory.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := New(t.TempDir(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return s
}

func testTransaction(id, userID string, created time.Time) *domain.Transaction {
	author := "Herman Melville"
	return &domain.Transaction{
		ID:         id,
		UserID:     userID,
		BookID:     "book-" + id,
		BookTitle:  "Moby Dick",
		BookAuthor: &author,
		Messages: []domain.Message{
			{Role: domain.RoleUser, Content: "Why is the whale white?", Timestamp: created},
			{Role: domain.RoleBot, Content: "Melville never quite says.", Timestamp: created.Add(time.Minute)},
		},
		CreatedAt: created,
		UpdatedAt: created,
	}
}

func TestCreateAndGetTransaction(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	txn := testTransaction("txn_1", "user-1", time.Now().Truncate(time.Second))
	require.NoError(t, s.CreateTransaction(ctx, txn))

	got, err := s.GetTransaction(ctx, "txn_1")
	require.NoError(t, err)

	assert.Equal(t, txn.ID, got.ID)
	assert.Equal(t, txn.BookTitle, got.BookTitle)
	require.NotNil(t, got.BookAuthor)
	assert.Equal(t, *txn.BookAuthor, *got.BookAuthor)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, domain.RoleUser, got.Messages[0].Role)
	assert.Equal(t, "Why is the whale white?", got.Messages[0].Content)
}

func TestGetTransaction_NotFound(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.GetTransaction(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrTransactionNotFound)
}

func TestAppendMessage(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	created := time.Now().Add(-time.Hour)
	txn := testTransaction("txn_1", "user-1", created)
	require.NoError(t, s.CreateTransaction(ctx, txn))

	msg := domain.Message{Role: domain.RoleUser, Content: "Follow-up question", Timestamp: time.Now()}
	require.NoError(t, s.AppendMessage(ctx, "txn_1", msg))

	got, err := s.GetTransaction(ctx, "txn_1")
	require.NoError(t, err)
	require.Len(t, got.Messages, 3)
	assert.Equal(t, "Follow-up question", got.Messages[2].Content)
	assert.True(t, got.UpdatedAt.After(created), "append must bump UpdatedAt")
}

func TestAppendMessage_MissingTransaction(t *testing.T) {
	s := setupTestStore(t)

	err := s.AppendMessage(context.Background(), "missing", domain.Message{Role: domain.RoleUser, Content: "hi"})
	assert.ErrorIs(t, err, ErrTransactionNotFound)
}

func TestListTransactionsByUser_NewestFirst(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	base := time.Now().Add(-3 * time.Hour)
	require.NoError(t, s.CreateTransaction(ctx, testTransaction("txn_old", "user-1", base)))
	require.NoError(t, s.CreateTransaction(ctx, testTransaction("txn_mid", "user-1", base.Add(time.Hour))))
	require.NoError(t, s.CreateTransaction(ctx, testTransaction("txn_new", "user-1", base.Add(2*time.Hour))))

	// Another user's data must not leak in.
	require.NoError(t, s.CreateTransaction(ctx, testTransaction("txn_other", "user-2", base)))

	got, err := s.ListTransactionsByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "txn_new", got[0].ID)
	assert.Equal(t, "txn_mid", got[1].ID)
	assert.Equal(t, "txn_old", got[2].ID)
}

func TestListTransactionsByUser_Empty(t *testing.T) {
	s := setupTestStore(t)

	got, err := s.ListTransactionsByUser(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMalformedStoredMessagesAreSkipped(t *testing.T) {
	s := setupTestStore(t)

	rec := &transactionRecord{
		ID:        "txn_1",
		UserID:    "user-1",
		BookID:    "book-1",
		BookTitle: "Moby Dick",
		Messages: []string{
			`{"role":"user","content":"valid","timestamp":"2025-06-15T12:00:00Z"}`,
			`{broken json`,
			`{"role":"bot","content":"also valid","timestamp":"2025-06-15T12:01:00Z"}`,
		},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	got := s.fromRecord(rec)

	require.Len(t, got.Messages, 2)
	assert.Equal(t, "valid", got.Messages[0].Content)
	assert.Equal(t, "also valid", got.Messages[1].Content)
}
