package store

import "errors"

// Sentinel errors returned by store operations.
var (
	ErrTransactionNotFound  = errors.New("transaction not found")
	ErrLibraryEntryNotFound = errors.New("library entry not found")
)
