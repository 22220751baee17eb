package model

import "time"

// RateSourceDefault labels records minted from the hardcoded rate of
// last resort rather than a live provider.
const RateSourceDefault = "Hardcoded Default"

// ExchangeRateRecord is one append-only entry in the rate history.
type ExchangeRateRecord struct {
	ID        int64
	Rate      float64
	Source    string
	Timestamp time.Time
	// IsFallback marks values not freshly fetched from a provider:
	// replays of history, stale records, or the hardcoded default.
	IsFallback bool
	Metadata   map[string]string
}

// RateResolution is what rate consumers receive: always a usable number,
// annotated with provenance so degraded values can be flagged in the UI.
type RateResolution struct {
	Rate          float64
	Source        string
	IsFromHistory bool
	AgeMinutes    float64
	Warning       string
}
