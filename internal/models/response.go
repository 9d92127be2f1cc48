package models

import "time"

type ProviderOutcome string

const (
	OutcomeSuccess  ProviderOutcome = "success"
	OutcomeDegraded ProviderOutcome = "degraded"
	OutcomeFailed   ProviderOutcome = "failed"
)

// ProviderDiagnostic reports how each provider fared during one aggregation.
// Degraded means the live call failed but a cached snapshot was served;
// CapturedAt then carries the snapshot age so callers can apply their own
// staleness policy.
type ProviderDiagnostic struct {
	ProviderCode string          `json:"provider_code"`
	Provider     string          `json:"provider"`
	Outcome      ProviderOutcome `json:"outcome"`
	Reason       string          `json:"reason,omitempty"`
	OfferCount   int             `json:"offer_count"`
	ElapsedMs    int64           `json:"elapsed_ms"`
	CapturedAt   *time.Time      `json:"captured_at,omitempty"`
}

type SearchMetadata struct {
	TotalResults       int   `json:"total_results"`
	ProvidersQueried   int   `json:"providers_queried"`
	ProvidersSucceeded int   `json:"providers_succeeded"`
	ProvidersDegraded  int   `json:"providers_degraded"`
	ProvidersFailed    int   `json:"providers_failed"`
	SearchTimeMs       int64 `json:"search_time_ms"`
}

type SearchResponse struct {
	SearchCriteria SearchCriteria       `json:"search_criteria"`
	Metadata       SearchMetadata       `json:"metadata"`
	Diagnostics    []ProviderDiagnostic `json:"diagnostics"`
	Offers         []Offer              `json:"offers"`
}

type RoundTripResponse struct {
	SearchCriteria SearchCriteria       `json:"search_criteria"`
	Metadata       SearchMetadata       `json:"metadata"`
	Diagnostics    []ProviderDiagnostic `json:"diagnostics"`
	OutboundOffers []Offer              `json:"outbound_offers"`
	ReturnOffers   []Offer              `json:"return_offers"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}
