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

// ERAPISource reads the quote from an open.er-api.com style endpoint that
// returns the whole rate table for the base currency:
//
//	{"result": "success", "rates": {"VES": 36.49, "EUR": 0.92, ...}}
type ERAPISource struct {
	baseURL    *url.URL
	quote      string
	httpClient *http.Client
	logger     *slog.Logger
}

type erAPIResponse struct {
	Result string             `json:"result"`
	Rates  map[string]float64 `json:"rates"`
}

// NewERAPISource builds the adapter for one quote currency.
func NewERAPISource(baseURL, quote string, timeout time.Duration, logger *slog.Logger) (*ERAPISource, error) {
	parsed, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	if quote == "" {
		return nil, fmt.Errorf("quote currency must not be empty")
	}
	return &ERAPISource{
		baseURL:    parsed,
		quote:      quote,
		httpClient: newHTTPClient(timeout),
		logger:     logger,
	}, nil
}

func (s *ERAPISource) Name() string { return "ExchangeRate-API" }

// Fetch retrieves the rate table and picks the configured quote currency.
func (s *ERAPISource) Fetch(ctx context.Context) (float64, error) {
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
		s.logger.Warn("er-api request failed", slog.Int("status", resp.StatusCode))
		return 0, fmt.Errorf("er-api status %s", resp.Status)
	}

	var data erAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return 0, err
	}
	if data.Result != "success" {
		return 0, fmt.Errorf("%w: result %q", ErrBadShape, data.Result)
	}
	rate, ok := data.Rates[s.quote]
	if !ok {
		return 0, fmt.Errorf("%w: missing %s rate", ErrBadShape, s.quote)
	}
	return checkFinite(rate)
}
