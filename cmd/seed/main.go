// Package main provides a tool to seed the database with sample reading data.
//
// It creates a demo user with a handful of book transactions, chat messages,
// and library entries, then prints an access token for exercising the
// insights endpoint locally.
//
// Usage:
//
//	go run ./cmd/seed
//	go run ./cmd/seed -data ~/readmate/data -user demo-user
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"path/filepath"
	"time"

	"github.com/readmateapp/readmate-server/internal/auth"
	"github.com/readmateapp/readmate-server/internal/config"
	"github.com/readmateapp/readmate-server/internal/domain"
	"github.com/readmateapp/readmate-server/internal/id"
	"github.com/readmateapp/readmate-server/internal/store"
)

var (
	dataPath = flag.String("data", "./data", "Data directory path")
	userID   = flag.String("user", "demo-user", "User ID to seed transactions for")
)

type seedBook struct {
	title    string
	author   string
	messages []string
}

var seedBooks = []seedBook{
	{
		title:  "Pride and Prejudice",
		author: "Jane Austen",
		messages: []string{
			"What does Darcy's first proposal reveal about his character?",
			"Why does Elizabeth change her mind about him?",
		},
	},
	{
		title:  "Frankenstein; Or, The Modern Prometheus",
		author: "Mary Wollstonecraft Shelley",
		messages: []string{
			"Is the creature the real monster of this story?",
			"What role does ambition play in Victor's downfall?",
		},
	},
	{
		title:  "The Adventures of Sherlock Holmes",
		author: "Arthur Conan Doyle",
		messages: []string{
			"How does Holmes actually reason through a case?",
		},
	},
	{
		title:  "Moby Dick; Or, The Whale",
		author: "Herman Melville",
		messages: []string{
			"Why is the whale white?",
			"Is Ahab a tragic hero or just obsessed?",
		},
	},
}

func main() {
	flag.Parse()

	dbPath := filepath.Join(*dataPath, "db")
	fmt.Printf("Opening database at: %s\n", dbPath)

	s, err := store.New(dbPath, nil)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	for i, book := range seedBooks {
		txnID, err := id.Generate("txn")
		if err != nil {
			log.Fatalf("Failed to generate transaction ID: %v", err)
		}

		author := book.author
		// Spread creation times over the past few weeks for a believable
		// activity calendar.
		created := time.Now().AddDate(0, 0, -rng.Intn(21)).Add(-time.Duration(rng.Intn(12)) * time.Hour)

		txn := &domain.Transaction{
			ID:         txnID,
			UserID:     *userID,
			BookID:     fmt.Sprintf("%d", 1000+i),
			BookTitle:  book.title,
			BookAuthor: &author,
			CreatedAt:  created,
			UpdatedAt:  created,
		}
		for _, content := range book.messages {
			txn.Messages = append(txn.Messages,
				domain.Message{Role: domain.RoleUser, Content: content, Timestamp: created},
				domain.Message{Role: domain.RoleBot, Content: "That's a rich question, let's dig in.", Timestamp: created.Add(time.Minute)},
			)
		}

		if err := s.CreateTransaction(ctx, txn); err != nil {
			log.Fatalf("Failed to create transaction for %q: %v", book.title, err)
		}
		fmt.Printf("Seeded %q (%d messages)\n", book.title, len(txn.Messages))

		if i%2 == 0 {
			entry := &domain.LibraryEntry{
				UserID:    *userID,
				BookID:    txn.BookID,
				BookTitle: book.title,
				AddedAt:   created,
			}
			entry.BookAuthor = &author
			if err := s.AddToLibrary(ctx, entry); err != nil {
				log.Fatalf("Failed to add %q to library: %v", book.title, err)
			}
		}
	}

	token, err := demoToken(*dataPath, *userID)
	if err != nil {
		log.Fatalf("Failed to generate demo token: %v", err)
	}

	fmt.Printf("\nSeeded %d transactions for user %s\n", len(seedBooks), *userID)
	fmt.Printf("Try: curl -H 'Authorization: Bearer %s' http://localhost:8080/api/v1/insights\n", token)
}

// demoToken mints an access token using the server's key so the seeded
// data can be queried immediately.
func demoToken(dataPath, userID string) (string, error) {
	keyPath := filepath.Join(dataPath, "auth.key")
	keyHex, err := auth.LoadOrGenerateKey(keyPath)
	if err != nil {
		return "", err
	}

	cfg, err := config.Load(config.Flags{})
	if err != nil {
		return "", err
	}

	tokens, err := auth.NewTokenService(keyHex, cfg.Auth.AccessTokenDuration)
	if err != nil {
		return "", err
	}
	return tokens.GenerateAccessToken(userID)
}
