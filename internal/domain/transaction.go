// Package domain contains the core types for the ReadMate reading companion.
package domain

import "time"

// MessageRole identifies who authored a chat message.
type MessageRole string

const (
	// RoleUser marks a message written by the reader.
	RoleUser MessageRole = "user"

	// RoleBot marks a message written by the AI companion.
	RoleBot MessageRole = "bot"
)

// Message is a single chat message inside a transaction.
// Messages are immutable once written and only ever appended.
type Message struct {
	Role      MessageRole `json:"role"`
	Content   string      `json:"content"`
	Timestamp time.Time   `json:"timestamp"`
}

// Transaction records one user's engagement with one book: it is created
// the first time the user opens the book and accumulates the chat history
// with the AI companion from then on.
type Transaction struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	BookID     string    `json:"book_id"`
	BookTitle  string    `json:"book_title"`
	BookAuthor *string   `json:"book_author"`
	BookCover  *string   `json:"book_cover"`
	Messages   []Message `json:"messages"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// InitTimestamps sets creation and update times for a new transaction.
func (t *Transaction) InitTimestamps() {
	now := time.Now()
	t.CreatedAt = now
	t.UpdatedAt = now
}

// Touch bumps the update time after a mutation.
func (t *Transaction) Touch() {
	t.UpdatedAt = time.Now()
}
