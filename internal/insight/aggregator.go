package insight

import (
	"context"
	"log/slog"
	"sync"

	"github.com/readmateapp/readmate-server/internal/catalog"
)

// Searcher is the slice of the catalog client the aggregator needs.
type Searcher interface {
	Fetch(ctx context.Context, query string, page, limit int, topic string) []catalog.Record
}

// AggregatorConfig names the thresholds driving the three gathering
// passes. Each pass runs only while the candidate pool is still under
// its target.
type AggregatorConfig struct {
	// TopicPassCap bounds how many topic signals the first pass queries.
	TopicPassCap int
	// TopicLimit is the per-topic-query record limit.
	TopicLimit int
	// TopicTarget stops topic merging once the pool reaches this size.
	TopicTarget int

	// KeywordPassCap bounds how many keyword signals the second pass
	// queries. The pass runs only while the pool holds fewer than
	// KeywordTarget candidates.
	KeywordPassCap int
	KeywordLimit   int
	KeywordTarget  int

	// FallbackThreshold triggers the unfiltered popularity pass when the
	// pool is still smaller than this after both signal passes.
	FallbackThreshold int
	FallbackLimit     int
}

// DefaultAggregatorConfig returns the production pass thresholds.
func DefaultAggregatorConfig() AggregatorConfig {
	return AggregatorConfig{
		TopicPassCap:      3,
		TopicLimit:        12,
		TopicTarget:       25,
		KeywordPassCap:    3,
		KeywordLimit:      8,
		KeywordTarget:     20,
		FallbackThreshold: 10,
		FallbackLimit:     15,
	}
}

// Aggregator gathers a deduplicated candidate pool from the catalog
// through up to three escalating passes: topic searches, keyword
// searches, and finally an unfiltered popularity fetch.
type Aggregator struct {
	searcher Searcher
	cfg      AggregatorConfig
	logger   *slog.Logger
}

// NewAggregator creates an aggregator over the given searcher.
func NewAggregator(searcher Searcher, cfg AggregatorConfig, logger *slog.Logger) *Aggregator {
	return &Aggregator{
		searcher: searcher,
		cfg:      cfg,
		logger:   logger,
	}
}

// Gather collects candidate records for the given signals. Records whose
// IDs appear in excluded are dropped, as are duplicates across queries.
// Queries within one pass run concurrently; merge order follows signal
// order so results are deterministic regardless of response timing.
func (a *Aggregator) Gather(ctx context.Context, topics, keywords []string, excluded map[string]struct{}) []catalog.Record {
	used := make(map[string]struct{}, len(excluded))
	for id := range excluded {
		used[id] = struct{}{}
	}

	var pool []catalog.Record

	// Pass 1: topic searches.
	topicBatch := topics
	if len(topicBatch) > a.cfg.TopicPassCap {
		topicBatch = topicBatch[:a.cfg.TopicPassCap]
	}
	batches := a.fanOut(ctx, topicBatch, func(ctx context.Context, topic string) []catalog.Record {
		return a.searcher.Fetch(ctx, "", 1, a.cfg.TopicLimit, topic)
	})
	for _, batch := range batches {
		if len(pool) >= a.cfg.TopicTarget {
			break
		}
		pool = merge(pool, used, batch)
	}

	// Pass 2: keyword searches, only while the pool is thin. Each keyword
	// tries a topic-filtered search first and falls back to free text.
	if len(pool) < a.cfg.KeywordTarget && len(keywords) > 0 {
		keywordBatch := keywords
		if len(keywordBatch) > a.cfg.KeywordPassCap {
			keywordBatch = keywordBatch[:a.cfg.KeywordPassCap]
		}
		batches = a.fanOut(ctx, keywordBatch, func(ctx context.Context, keyword string) []catalog.Record {
			records := a.searcher.Fetch(ctx, "", 1, a.cfg.KeywordLimit, keyword)
			if len(records) == 0 {
				records = a.searcher.Fetch(ctx, keyword, 1, a.cfg.KeywordLimit, "")
			}
			return records
		})
		for _, batch := range batches {
			pool = merge(pool, used, batch)
		}
	}

	// Pass 3: unfiltered popularity fallback for near-empty pools.
	if len(pool) < a.cfg.FallbackThreshold {
		a.logger.Debug("candidate pool thin, fetching popular titles", "pool_size", len(pool))
		pool = merge(pool, used, a.searcher.Fetch(ctx, "", 1, a.cfg.FallbackLimit, ""))
	}

	a.logger.Debug("gathered recommendation candidates",
		"topics", len(topics),
		"keywords", len(keywords),
		"candidates", len(pool),
	)

	return pool
}

// fanOut runs one fetch per signal concurrently and returns the result
// batches in signal order.
func (a *Aggregator) fanOut(ctx context.Context, signals []string, fetch func(ctx context.Context, signal string) []catalog.Record) [][]catalog.Record {
	results := make([][]catalog.Record, len(signals))

	var wg sync.WaitGroup
	for i, signal := range signals {
		wg.Go(func() {
			results[i] = fetch(ctx, signal)
		})
	}
	wg.Wait()

	return results
}

// merge appends batch entries whose IDs have not been seen yet, marking
// each accepted ID as used.
func merge(pool []catalog.Record, used map[string]struct{}, batch []catalog.Record) []catalog.Record {
	for _, record := range batch {
		if _, seen := used[record.ID]; seen {
			continue
		}
		used[record.ID] = struct{}{}
		pool = append(pool, record)
	}
	return pool
}
