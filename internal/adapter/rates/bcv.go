package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// BCVSource reads the official BCV dollar quote from a pyDolarVe style
// aggregator. Response shape:
//
//	{"monitors": {"usd": {"price": 36.47, "last_update": "..."}}}
type BCVSource struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     *slog.Logger
}

type bcvResponse struct {
	Monitors map[string]struct {
		Price      *float64 `json:"price"`
		LastUpdate string   `json:"last_update"`
	} `json:"monitors"`
}

// NewBCVSource builds the adapter. The URL must be absolute.
func NewBCVSource(baseURL string, timeout time.Duration, logger *slog.Logger) (*BCVSource, error) {
	parsed, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	return &BCVSource{
		baseURL:    parsed,
		httpClient: newHTTPClient(timeout),
		logger:     logger,
	}, nil
}

func (s *BCVSource) Name() string { return "BCV" }

// Fetch retrieves the current quote.
func (s *BCVSource) Fetch(ctx context.Context) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL.String(), nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.logger.Warn("bcv request failed", slog.Int("status", resp.StatusCode))
		return 0, fmt.Errorf("bcv status %s", resp.Status)
	}

	var data bcvResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return 0, err
	}
	monitor, ok := data.Monitors["usd"]
	if !ok || monitor.Price == nil {
		return 0, fmt.Errorf("%w: missing usd monitor price", ErrBadShape)
	}
	return checkFinite(*monitor.Price)
}
