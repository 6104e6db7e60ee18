// Package insight derives reading statistics and personalized catalog
// recommendations from a user's transaction history.
package insight

import (
	"sort"
	"strings"
	"unicode"

	"github.com/readmateapp/readmate-server/internal/domain"
)

// DefaultSubjects is the fallback literary vocabulary used to pad thin
// topic signals so the aggregator always has something to search for.
var DefaultSubjects = []string{
	"fiction",
	"novel",
	"story",
	"literature",
	"fantasy",
	"adventure",
	"mystery",
	"history",
	"science",
	"philosophy",
	"romance",
}

// Signal extraction tuning. Topic tokens come from book titles, keyword
// tokens from the user's own chat messages.
const (
	topicMinTokenLen   = 4 // keep tokens strictly longer than this
	keywordMinTokenLen = 3
	topTopicCount      = 5
	topKeywordCount    = 10
	minRealTopics      = 3
	paddedTopicCount   = 5
)

// tokenize lower-cases s and splits it on non-word boundaries.
func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
}

// freqTable accumulates token frequencies while remembering first-seen
// order, so equal counts rank deterministically.
type freqTable struct {
	counts map[string]int
	order  []string
}

func newFreqTable() *freqTable {
	return &freqTable{counts: make(map[string]int)}
}

func (f *freqTable) add(token string) {
	if _, seen := f.counts[token]; !seen {
		f.order = append(f.order, token)
	}
	f.counts[token]++
}

// top returns up to n tokens by descending frequency, ties broken by
// first-seen order.
func (f *freqTable) top(n int) []string {
	ranked := make([]string, len(f.order))
	copy(ranked, f.order)
	sort.SliceStable(ranked, func(i, j int) bool {
		return f.counts[ranked[i]] > f.counts[ranked[j]]
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// Analyze derives the topic and keyword signals from a user's
// transactions. Topics come from transaction titles (top 5), keywords
// from user-role chat messages only (top 10).
func Analyze(transactions []*domain.Transaction) (topics, keywords []string) {
	topicTable := newFreqTable()
	keywordTable := newFreqTable()

	for _, t := range transactions {
		for _, token := range tokenize(t.BookTitle) {
			if len(token) > topicMinTokenLen {
				topicTable.add(token)
			}
		}

		for _, m := range t.Messages {
			if m.Role != domain.RoleUser {
				continue
			}
			for _, token := range tokenize(m.Content) {
				if len(token) > keywordMinTokenLen {
					keywordTable.add(token)
				}
			}
		}
	}

	return topicTable.top(topTopicCount), keywordTable.top(topKeywordCount)
}

// PadTopics fills a thin topic signal with the default literary subjects,
// real signals first. Signals with at least three real topics pass
// through untouched.
func PadTopics(topics []string) []string {
	if len(topics) >= minRealTopics {
		return topics
	}

	padded := make([]string, 0, paddedTopicCount)
	padded = append(padded, topics...)
	for _, subject := range DefaultSubjects {
		if len(padded) >= paddedTopicCount {
			break
		}
		padded = append(padded, subject)
	}
	return padded
}
