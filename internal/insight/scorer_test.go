package insight

import (
	"testing"

	"github.com/readmateapp/readmate-server/internal/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScore_WeightsAndOrdering(t *testing.T) {
	candidates := []catalog.Record{
		{
			ID:       "1",
			Title:    "A History of Whales",
			Subjects: []string{"Nature"},
		},
		{
			ID:       "2",
			Title:    "Island Tales",
			Subjects: []string{"Whale hunting", "Adventure stories"},
		},
		{
			ID:       "3",
			Title:    "Unrelated Cookbook",
			Subjects: []string{"Cooking"},
		},
	}

	got := Score(candidates, []string{"whale"}, []string{"adventure"}, nil)

	require.Len(t, got, 3)
	// "2": topic in subjects (+8), keyword in subjects (+4), baseline (+1) = 13.
	// "1": topic in title (+3), baseline (+1) = 4.
	// "3": baseline only = 1.
	assert.Equal(t, "2", got[0].ID)
	assert.Equal(t, 13, got[0].RelevanceScore)
	assert.Equal(t, "1", got[1].ID)
	assert.Equal(t, 4, got[1].RelevanceScore)
	assert.Equal(t, "3", got[2].ID)
	assert.Equal(t, 1, got[2].RelevanceScore)
}

func TestScore_SubjectMatchOutranksTitleMatch(t *testing.T) {
	candidates := []catalog.Record{
		{ID: "title-only", Title: "Whale Watching", Subjects: []string{"Travel"}},
		{ID: "subject-only", Title: "Leviathan", Subjects: []string{"Whale hunting"}},
	}

	got := Score(candidates, []string{"whale"}, nil, nil)

	require.Len(t, got, 2)
	assert.Equal(t, "subject-only", got[0].ID)
	assert.Equal(t, 9, got[0].RelevanceScore)
	assert.Equal(t, "title-only", got[1].ID)
	assert.Equal(t, 4, got[1].RelevanceScore)
}

func TestScore_CaseInsensitiveMatching(t *testing.T) {
	candidates := []catalog.Record{
		{ID: "1", Title: "THE WHALE", Subjects: []string{"OCEAN LIFE"}},
	}

	got := Score(candidates, []string{"whale", "ocean"}, nil, nil)

	require.Len(t, got, 1)
	// whale in title (+3), ocean in subjects (+8), baseline (+1).
	assert.Equal(t, 12, got[0].RelevanceScore)
}

func TestScore_ExcludedCandidatesDropped(t *testing.T) {
	candidates := []catalog.Record{
		{ID: "1", Title: "Keep me"},
		{ID: "2", Title: "Drop me"},
	}

	got := Score(candidates, nil, nil, map[string]struct{}{"2": {}})

	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].ID)
}

func TestScore_TruncatesToSix(t *testing.T) {
	candidates := make([]catalog.Record, 10)
	for i := range candidates {
		candidates[i] = catalog.Record{ID: string(rune('a' + i)), Title: "Book"}
	}

	got := Score(candidates, nil, nil, nil)
	assert.Len(t, got, 6)
}

func TestScore_TieKeepsCandidateOrder(t *testing.T) {
	candidates := []catalog.Record{
		{ID: "first", Title: "Plain"},
		{ID: "second", Title: "Plain"},
	}

	got := Score(candidates, nil, nil, nil)

	require.Len(t, got, 2)
	assert.Equal(t, "first", got[0].ID)
	assert.Equal(t, "second", got[1].ID)
}

func TestScore_CarriesAuthorAndCover(t *testing.T) {
	author := "Herman Melville"
	cover := "https://example.com/cover.jpg"
	candidates := []catalog.Record{
		{ID: "1", Title: "Moby Dick", Author: &author, CoverURL: &cover},
	}

	got := Score(candidates, nil, nil, nil)

	require.Len(t, got, 1)
	require.NotNil(t, got[0].Author)
	assert.Equal(t, author, *got[0].Author)
	require.NotNil(t, got[0].CoverURL)
	assert.Equal(t, cover, *got[0].CoverURL)
}

func TestScore_Empty(t *testing.T) {
	got := Score(nil, []string{"whale"}, nil, nil)
	assert.Empty(t, got)
}
