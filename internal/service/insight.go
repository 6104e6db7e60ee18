// Package service provides the business logic layer for the reading
// companion: transactions, libraries, and the insights dashboard.
package service

import (
	"context"
	"log/slog"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/readmateapp/readmate-server/internal/catalog"
	"github.com/readmateapp/readmate-server/internal/domain"
	"github.com/readmateapp/readmate-server/internal/errors"
	"github.com/readmateapp/readmate-server/internal/insight"
	"github.com/readmateapp/readmate-server/internal/store"
)

// Display-subject filtering for the dashboard's subject chips.
const (
	subjectMinLen      = 3  // keep subjects strictly longer than this
	subjectMaxLen      = 30 // drop Library-of-Congress style compound tags
	maxDisplaySubjects = 10
)

// minBooksForRecommendations gates the recommendation pipeline: with two
// or fewer books the corpus signal is noise, so the list stays empty.
const minBooksForRecommendations = 3

// Clock returns the current time; injectable for deterministic tests.
type Clock func() time.Time

// InsightService composes the insights dashboard from the transaction
// store and the external catalog.
type InsightService struct {
	store      *store.Store
	aggregator *insight.Aggregator
	logger     *slog.Logger
	now        Clock
}

// NewInsightService creates the insight service.
func NewInsightService(st *store.Store, aggregator *insight.Aggregator, logger *slog.Logger) *InsightService {
	return &InsightService{
		store:      st,
		aggregator: aggregator,
		logger:     logger,
		now:        time.Now,
	}
}

// GetInsights builds the complete dashboard payload for one user. The
// recommendation pipeline and the activity aggregation run in parallel;
// catalog trouble degrades recommendations to empty rather than failing
// the request.
func (s *InsightService) GetInsights(ctx context.Context, userID string) (*domain.ReadingInsights, error) {
	transactions, err := s.store.ListTransactionsByUser(ctx, userID)
	if err != nil {
		return nil, errors.Internal("Failed to load reading history").Wrap(err)
	}

	library, err := s.store.ListLibrary(ctx, userID)
	if err != nil {
		return nil, errors.Internal("Failed to load library").Wrap(err)
	}

	insights := &domain.ReadingInsights{
		TotalBooks:          len(transactions),
		TotalBooksInLibrary: len(library),
		Recommendations:     []domain.Recommendation{},
		TopSubjects:         []string{},
	}
	tallyMessages(insights, transactions)
	insights.TotalAuthors = countAuthors(transactions)

	topics, keywords := insight.Analyze(transactions)

	var wg sync.WaitGroup

	wg.Go(func() {
		insights.ActivityStats = insight.AggregateActivity(transactions, s.now())
	})

	var recommendations []domain.Recommendation
	var displaySubjects []string
	if len(transactions) >= minBooksForRecommendations {
		wg.Go(func() {
			recommendations, displaySubjects = s.recommend(ctx, transactions, topics, keywords)
		})
	}

	wg.Wait()

	if recommendations != nil {
		insights.Recommendations = recommendations
	}
	if len(displaySubjects) > 0 {
		insights.TopSubjects = displaySubjects
	} else if len(topics) > 0 {
		insights.TopSubjects = topics
	}

	return insights, nil
}

// recommend runs the gather-and-score pipeline and derives the display
// subjects from the winning candidates' subject tags.
func (s *InsightService) recommend(ctx context.Context, transactions []*domain.Transaction, topics, keywords []string) ([]domain.Recommendation, []string) {
	excluded := make(map[string]struct{}, len(transactions))
	for _, t := range transactions {
		excluded[t.BookID] = struct{}{}
	}

	// Padded filler topics widen the catalog search only; scoring sticks
	// to the user's real corpus signal.
	searchTopics := insight.PadTopics(topics)
	candidates := s.aggregator.Gather(ctx, searchTopics, keywords, excluded)
	recommendations := insight.Score(candidates, topics, keywords, excluded)

	return recommendations, displaySubjects(candidates, recommendations)
}

// displaySubjects collects clean subject tags from the recommended books
// for the dashboard's subject chips, in recommendation rank order.
func displaySubjects(candidates []catalog.Record, recommendations []domain.Recommendation) []string {
	byID := make(map[string]catalog.Record, len(candidates))
	for _, candidate := range candidates {
		byID[candidate.ID] = candidate
	}

	seen := make(map[string]struct{})
	var subjects []string
	for _, r := range recommendations {
		candidate, ok := byID[r.ID]
		if !ok {
			continue
		}
		for _, subject := range candidate.Subjects {
			subject = strings.TrimSpace(subject)
			if len(subject) <= subjectMinLen || len(subject) >= subjectMaxLen {
				continue
			}
			if strings.Contains(subject, ",") {
				continue
			}
			lowered := strings.ToLower(subject)
			if _, dup := seen[lowered]; dup {
				continue
			}
			seen[lowered] = struct{}{}
			subjects = append(subjects, subject)
			if len(subjects) >= maxDisplaySubjects {
				return subjects
			}
		}
	}
	return subjects
}

// tallyMessages fills the message-mix counters.
func tallyMessages(insights *domain.ReadingInsights, transactions []*domain.Transaction) {
	for _, t := range transactions {
		insights.TotalMessages += len(t.Messages)
		if len(t.Messages) > 0 {
			insights.BooksWithMessages++
		}
		for _, m := range t.Messages {
			switch m.Role {
			case domain.RoleUser:
				insights.UserMessageCount++
			case domain.RoleBot:
				insights.BotMessageCount++
			}
		}
	}

	// Books without any conversation don't dilute the average.
	if insights.BooksWithMessages > 0 {
		avg := float64(insights.TotalMessages) / float64(insights.BooksWithMessages)
		insights.AverageMessagesPerBook = math.Round(avg*10) / 10
	}
}

// countAuthors counts distinct non-empty author names across the user's
// transactions.
func countAuthors(transactions []*domain.Transaction) int {
	authors := make(map[string]struct{})
	for _, t := range transactions {
		if t.BookAuthor == nil || *t.BookAuthor == "" {
			continue
		}
		authors[*t.BookAuthor] = struct{}{}
	}
	return len(authors)
}
