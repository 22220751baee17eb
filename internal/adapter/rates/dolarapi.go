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

// DolarAPISource reads the official quote from ve.dolarapi.com. Response
// shape:
//
//	{"fuente": "oficial", "promedio": 36.52, "fechaActualizacion": "..."}
type DolarAPISource struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     *slog.Logger
}

type dolarAPIResponse struct {
	Fuente   string   `json:"fuente"`
	Promedio *float64 `json:"promedio"`
}

// NewDolarAPISource builds the adapter. The URL must be absolute.
func NewDolarAPISource(baseURL string, timeout time.Duration, logger *slog.Logger) (*DolarAPISource, error) {
	parsed, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	return &DolarAPISource{
		baseURL:    parsed,
		httpClient: newHTTPClient(timeout),
		logger:     logger,
	}, nil
}

func (s *DolarAPISource) Name() string { return "DolarAPI" }

// Fetch retrieves the current quote.
func (s *DolarAPISource) Fetch(ctx context.Context) (float64, error) {
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
		s.logger.Warn("dolarapi request failed", slog.Int("status", resp.StatusCode))
		return 0, fmt.Errorf("dolarapi status %s", resp.Status)
	}

	var data dolarAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return 0, err
	}
	if data.Promedio == nil {
		return 0, fmt.Errorf("%w: missing promedio field", ErrBadShape)
	}
	return checkFinite(*data.Promedio)
}
