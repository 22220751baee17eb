package dto

// RateResponse is the resolved exchange rate with provenance, so clients
// can flag degraded values.
type RateResponse struct {
	Rate          float64 `json:"rate"`
	Source        string  `json:"source"`
	IsFromHistory bool    `json:"isFromHistory"`
	AgeMinutes    float64 `json:"ageMinutes,omitempty"`
	Warning       string  `json:"warning,omitempty"`
}
