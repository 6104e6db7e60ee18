package api

import (
	"context"
	"encoding/json/v2"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/readmateapp/readmate-server/internal/auth"
	"github.com/readmateapp/readmate-server/internal/catalog"
	"github.com/readmateapp/readmate-server/internal/domain"
	"github.com/readmateapp/readmate-server/internal/insight"
	"github.com/readmateapp/readmate-server/internal/service"
	"github.com/readmateapp/readmate-server/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubSearcher serves fixed catalog records for every query.
type stubSearcher struct {
	records []catalog.Record
}

func (s *stubSearcher) Fetch(context.Context, string, int, int, string) []catalog.Record {
	return s.records
}

type testEnv struct {
	server *Server
	store  *store.Store
	tokens *auth.TokenService
}

func setupServerTest(t *testing.T, searcher insight.Searcher) *testEnv {
	t.Helper()

	tmpDir := t.TempDir()

	s, err := store.New(filepath.Join(tmpDir, "db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	keyHex, err := auth.LoadOrGenerateKey(filepath.Join(tmpDir, "auth.key"))
	require.NoError(t, err)
	tokens, err := auth.NewTokenService(keyHex, 15*time.Minute)
	require.NoError(t, err)

	log := slog.New(slog.DiscardHandler)
	aggregator := insight.NewAggregator(searcher, insight.DefaultAggregatorConfig(), log)
	insightService := service.NewInsightService(s, aggregator, log)

	return &testEnv{
		server: NewServer(s, insightService, tokens, log),
		store:  s,
		tokens: tokens,
	}
}

func (e *testEnv) request(t *testing.T, method, path, token string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.server.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	env := setupServerTest(t, &stubSearcher{})

	rec := env.request(t, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Status     string `json:"status"`
		Components map[string]struct {
			Status string `json:"status"`
		} `json:"components"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "healthy", body.Components["database"].Status)
}

func TestInsights_RequiresAuthentication(t *testing.T) {
	env := setupServerTest(t, &stubSearcher{})

	rec := env.request(t, http.MethodGet, "/api/v1/insights", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	var apiErr struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &apiErr))
	assert.Equal(t, "UNAUTHORIZED", apiErr.Code)
}

func TestInsights_RejectsGarbageToken(t *testing.T) {
	env := setupServerTest(t, &stubSearcher{})

	rec := env.request(t, http.MethodGet, "/api/v1/insights", "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestInsights_Payload(t *testing.T) {
	env := setupServerTest(t, &stubSearcher{records: []catalog.Record{
		{ID: "100", Title: "A Whale Story", Subjects: []string{"Sea stories"}},
	}})
	ctx := context.Background()

	created := time.Now().Add(-48 * time.Hour)
	for i, title := range []string{"Moby Dick", "Typee", "Omoo"} {
		author := "Herman Melville"
		txn := &domain.Transaction{
			ID:         "txn_" + title,
			UserID:     "user-1",
			BookID:     string(rune('1' + i)),
			BookTitle:  title,
			BookAuthor: &author,
			Messages: []domain.Message{
				{Role: domain.RoleUser, Content: "What about the whales here?", Timestamp: created},
				{Role: domain.RoleBot, Content: "Plenty of whales.", Timestamp: created},
			},
			CreatedAt: created,
			UpdatedAt: created,
		}
		require.NoError(t, env.store.CreateTransaction(ctx, txn))
	}

	token, err := env.tokens.GenerateAccessToken("user-1")
	require.NoError(t, err)

	rec := env.request(t, http.MethodGet, "/api/v1/insights", token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var payload domain.ReadingInsights
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))

	assert.Equal(t, 3, payload.TotalBooks)
	assert.Equal(t, 6, payload.TotalMessages)
	assert.Equal(t, 3, payload.UserMessageCount)
	assert.Equal(t, 1, payload.TotalAuthors)
	assert.Len(t, payload.ReadingHoursData, 24)
	assert.Len(t, payload.ReadingDaysData, 7)
	assert.NotEmpty(t, payload.CalendarData)
	require.NotEmpty(t, payload.Recommendations)
	assert.Equal(t, "100", payload.Recommendations[0].ID)
	assert.Equal(t, []string{"Sea stories"}, payload.TopSubjects)
}

func TestInsights_OtherUsersDataIsolated(t *testing.T) {
	env := setupServerTest(t, &stubSearcher{})
	ctx := context.Background()

	require.NoError(t, env.store.CreateTransaction(ctx, &domain.Transaction{
		ID:        "txn_1",
		UserID:    "someone-else",
		BookID:    "1",
		BookTitle: "Moby Dick",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}))

	token, err := env.tokens.GenerateAccessToken("user-1")
	require.NoError(t, err)

	rec := env.request(t, http.MethodGet, "/api/v1/insights", token)
	require.Equal(t, http.StatusOK, rec.Code)

	var payload domain.ReadingInsights
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Zero(t, payload.TotalBooks)
}
