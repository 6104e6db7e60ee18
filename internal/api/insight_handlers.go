package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/readmateapp/readmate-server/internal/domain"
)

func (s *Server) registerInsightRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getInsights",
		Method:      http.MethodGet,
		Path:        "/api/v1/insights",
		Summary:     "Get reading insights",
		Description: "Returns the dashboard payload: reading statistics, activity calendar, and personalized recommendations",
		Tags:        []string{"Insights"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetInsights)
}

// GetInsightsInput carries the bearer token for the insights request.
type GetInsightsInput struct {
	Authorization string `header:"Authorization"`
}

// InsightsOutput wraps the insights payload for Huma.
type InsightsOutput struct {
	Body domain.ReadingInsights
}

func (s *Server) handleGetInsights(ctx context.Context, _ *GetInsightsInput) (*InsightsOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	insights, err := s.insightService.GetInsights(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to build insights", "error", err, "user_id", userID)
		return nil, err
	}

	return &InsightsOutput{Body: *insights}, nil
}
