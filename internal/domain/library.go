package domain

import "time"

// LibraryEntry is a book the user saved to their personal library.
// Saving a book is independent of opening it for a chat; the dashboard
// reports both counts separately.
type LibraryEntry struct {
	UserID     string    `json:"user_id"`
	BookID     string    `json:"book_id"`
	BookTitle  string    `json:"book_title"`
	BookAuthor *string   `json:"book_author"`
	BookCover  *string   `json:"book_cover"`
	AddedAt    time.Time `json:"added_at"`
}
