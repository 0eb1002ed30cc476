package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/SLAWWWW/CommunityCompass/internal/models"
)

// RecommendationService relays ranked group candidates from the external
// recommendation engine. The scores and their breakdown are opaque here:
// they are decoded and passed through, never interpreted.
type RecommendationService struct {
	baseURL    string
	httpClient *http.Client
}

// NewRecommendationService creates a new recommendation client.
// An empty baseURL means no engine is configured.
func NewRecommendationService(baseURL string) *RecommendationService {
	return &RecommendationService{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// Recommendations fetches the ranked candidate groups for a user.
// Without a configured engine it returns an empty list.
func (s *RecommendationService) Recommendations(ctx context.Context, userID string) ([]models.GroupRecommendation, error) {
	if s.baseURL == "" {
		return []models.GroupRecommendation{}, nil
	}

	reqURL := fmt.Sprintf("%s/recommendations?user_id=%s", s.baseURL, url.QueryEscape(userID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build engine request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach recommendation engine: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("recommendation engine returned status %d", resp.StatusCode)
	}

	var recommendations []models.GroupRecommendation
	if err := json.NewDecoder(resp.Body).Decode(&recommendations); err != nil {
		return nil, fmt.Errorf("failed to decode engine response: %w", err)
	}

	return recommendations, nil
}
