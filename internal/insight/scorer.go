package insight

import (
	"sort"
	"strings"

	"github.com/readmateapp/readmate-server/internal/catalog"
	"github.com/readmateapp/readmate-server/internal/domain"
)

// Relevance weights. Subject matches outweigh title matches, and topic
// signals outweigh keyword signals. Every surviving candidate gets the
// baseline point so even unmatched popular titles can fill the list.
const (
	topicTitleWeight   = 3
	keywordTitleWeight = 2

	topicSubjectWeight   = 8
	keywordSubjectWeight = 4

	baselineScore = 1

	maxRecommendations = 6
)

// Score ranks candidates against the topic and keyword signals and
// returns at most six recommendations by descending relevance. Matching
// is case-insensitive substring matching; candidates in excluded are
// dropped before scoring. Ties keep candidate order, so earlier
// aggregator passes win.
func Score(candidates []catalog.Record, topics, keywords []string, excluded map[string]struct{}) []domain.Recommendation {
	recommendations := make([]domain.Recommendation, 0, len(candidates))

	for _, candidate := range candidates {
		if _, skip := excluded[candidate.ID]; skip {
			continue
		}

		title := strings.ToLower(candidate.Title)
		subjects := strings.ToLower(strings.Join(candidate.Subjects, " "))

		score := baselineScore
		for _, topic := range topics {
			if strings.Contains(title, topic) {
				score += topicTitleWeight
			}
			if strings.Contains(subjects, topic) {
				score += topicSubjectWeight
			}
		}
		for _, keyword := range keywords {
			if strings.Contains(title, keyword) {
				score += keywordTitleWeight
			}
			if strings.Contains(subjects, keyword) {
				score += keywordSubjectWeight
			}
		}

		recommendations = append(recommendations, domain.Recommendation{
			ID:             candidate.ID,
			Title:          candidate.Title,
			Author:         candidate.Author,
			CoverURL:       candidate.CoverURL,
			RelevanceScore: score,
		})
	}

	sort.SliceStable(recommendations, func(i, j int) bool {
		return recommendations[i].RelevanceScore > recommendations[j].RelevanceScore
	})

	if len(recommendations) > maxRecommendations {
		recommendations = recommendations[:maxRecommendations]
	}
	return recommendations
}
