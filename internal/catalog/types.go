// Package catalog provides a client for the external Gutendex book
// catalog with caching, rate limiting, and failure absorption.
package catalog

// Record is one book from the external catalog. Records are read-only;
// nothing beyond the client's cache ever persists them.
type Record struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Author   *string  `json:"author"`
	CoverURL *string  `json:"coverUrl"`
	Subjects []string `json:"subjects"`
}

// searchResponse is the raw Gutendex API response.
type searchResponse struct {
	Count   int            `json:"count"`
	Results []searchResult `json:"results"`
}

// searchResult is a single book in the raw response.
type searchResult struct {
	ID       int64             `json:"id"`
	Title    string            `json:"title"`
	Authors  []searchAuthor    `json:"authors"`
	Subjects []string          `json:"subjects"`
	Formats  map[string]string `json:"formats"`
}

type searchAuthor struct {
	Name string `json:"name"`
}

// coverFormat is the formats map key carrying the cover image URL.
const coverFormat = "image/jpeg"
