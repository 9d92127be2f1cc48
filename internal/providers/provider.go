package providers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/satriawan/awardsearch/internal/models"
)

// Provider is the capability every airline adapter implements. Search maps
// the provider's raw response into canonical offers; every ordinary upstream
// failure (bad status, timeout, garbled body, empty result) comes back as a
// *ProviderError, never a panic.
type Provider interface {
	Name() string
	Code() string
	Search(ctx context.Context, criteria models.SearchCriteria) ([]models.Offer, error)
}

type FailureReason string

const (
	ReasonUnreachable       FailureReason = "unreachable"
	ReasonAuthExpired       FailureReason = "auth_expired"
	ReasonRateLimited       FailureReason = "rate_limited"
	ReasonMalformedResponse FailureReason = "malformed_response"
	ReasonNoOffers          FailureReason = "no_offers"
)

type ProviderError struct {
	Provider string
	Reason   FailureReason
	Err      error
}

func (e *ProviderError) Error() string {
	msg := e.Provider + ": " + string(e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func NewProviderError(provider string, reason FailureReason, err error) *ProviderError {
	return &ProviderError{
		Provider: provider,
		Reason:   reason,
		Err:      err,
	}
}

// ReasonOf extracts the failure reason from an adapter error. Anything
// untyped, including context expiry, counts as unreachable.
func ReasonOf(err error) FailureReason {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Reason
	}
	return ReasonUnreachable
}

// Credentials is the auth context captured by the out-of-process login
// tooling and injected at construction. Adapters never read ambient state.
type Credentials struct {
	Cookie        string
	XSRFToken     string
	SessionID     string
	Authorization string
}

type Config struct {
	BaseURL     string
	HTTPClient  *http.Client
	Credentials Credentials
}

func (c Config) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: 30 * time.Second}
}

// reasonFromStatus classifies a non-2xx upstream status.
func reasonFromStatus(status int) FailureReason {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return ReasonAuthExpired
	case status == http.StatusTooManyRequests:
		return ReasonRateLimited
	default:
		return ReasonUnreachable
	}
}

// appendAirline keeps the distinct airline names in first-appearance order.
func appendAirline(airlines []string, name string) []string {
	if name == "" {
		return airlines
	}
	for _, a := range airlines {
		if a == name {
			return airlines
		}
	}
	return append(airlines, name)
}
