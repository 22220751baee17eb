package rates

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"time"
)

// ErrBadShape indicates a provider answered but the payload did not carry
// a usable rate.
var ErrBadShape = errors.New("unexpected provider response shape")

// Source is one external pricing provider for the configured currency
// pair. Implementations translate their proprietary response shape into a
// plain number; any failure is reported as an error and never panics.
type Source interface {
	Name() string
	Fetch(ctx context.Context) (float64, error)
}

// PairConfig describes the currency pair being resolved and its
// plausibility bounds. A fetched value outside [Min, Max] is discarded.
type PairConfig struct {
	Base  string
	Quote string
	Min   float64
	Max   float64
}

// Plausible reports whether v is a usable rate for the pair.
func (p PairConfig) Plausible(v float64) bool {
	if math.IsNaN(v) || v <= 0 {
		return false
	}
	return v >= p.Min && v <= p.Max
}

func (p PairConfig) String() string {
	return p.Base + "/" + p.Quote
}

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

func parseBaseURL(raw string) (*url.URL, error) {
	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse provider url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("provider url must be absolute")
	}
	return parsed, nil
}

func checkFinite(v float64) (float64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, fmt.Errorf("%w: non-positive rate %v", ErrBadShape, v)
	}
	return v, nil
}
