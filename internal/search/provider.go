package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Provider abstracts the external search engine. Implementations may use an
// API or scraping; the executor only needs result links back.
type Provider interface {
	Search(ctx context.Context, query string, num int) ([]string, error)
}

// SerpAPI queries a SerpAPI-compatible endpoint for Google results.
type SerpAPI struct {
	Endpoint string
	APIKey   string
	hc       *http.Client
}

func NewSerpAPI(endpoint, apiKey string) *SerpAPI {
	return &SerpAPI{
		Endpoint: endpoint,
		APIKey:   apiKey,
		hc:       &http.Client{Timeout: 20 * time.Second},
	}
}

type serpResponse struct {
	OrganicResults []struct {
		Link string `json:"link"`
	} `json:"organic_results"`
}

func (s *SerpAPI) Search(ctx context.Context, query string, num int) ([]string, error) {
	params := url.Values{}
	params.Set("engine", "google")
	params.Set("q", query)
	params.Set("api_key", s.APIKey)
	params.Set("num", strconv.Itoa(num))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		s.Endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	res, err := s.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("serp request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("serp status %d", res.StatusCode)
	}

	var body serpResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("serp decode: %w", err)
	}

	links := make([]string, 0, len(body.OrganicResults))
	for _, r := range body.OrganicResults {
		if r.Link != "" {
			links = append(links, r.Link)
		}
	}
	return links, nil
}
