package aggregator

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/satriawan/awardsearch/internal/cache"
	"github.com/satriawan/awardsearch/internal/models"
	"github.com/satriawan/awardsearch/internal/obs"
	"github.com/satriawan/awardsearch/internal/providers"
	"github.com/satriawan/awardsearch/internal/ratelimit"
)

type Config struct {
	// ProviderTimeout bounds each provider call individually. One slow
	// upstream never delays the others past its own budget.
	ProviderTimeout time.Duration
	MaxRetries      int
	RetryDelays     []time.Duration
	RateLimiter     *ratelimit.ProviderLimiter
}

func DefaultConfig() Config {
	return Config{
		ProviderTimeout: 25 * time.Second,
		MaxRetries:      2,
		RetryDelays: []time.Duration{
			500 * time.Millisecond,
			2 * time.Second,
		},
	}
}

type Aggregator struct {
	providers []providers.Provider
	store     cache.Store
	config    Config
	metrics   *obs.Metrics
	logger    *slog.Logger
}

type Result struct {
	Offers      []models.Offer
	Diagnostics []models.ProviderDiagnostic
}

func NewAggregator(providerList []providers.Provider, store cache.Store, config Config, metrics *obs.Metrics, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{
		providers: providerList,
		store:     store,
		config:    config,
		metrics:   metrics,
		logger:    logger,
	}
}

// Search fans the criteria out to every provider concurrently and waits for
// all of them to settle. A provider failure is converted into either a
// degraded result (cache fallback) or a failed diagnostic; it never
// propagates as an error and never short-circuits the other providers.
func (a *Aggregator) Search(ctx context.Context, criteria models.SearchCriteria) *Result {
	fingerprint := cache.Fingerprint(criteria)

	resultCh := make(chan settledProvider, len(a.providers))
	var wg sync.WaitGroup

	for _, p := range a.providers {
		wg.Add(1)
		go func(provider providers.Provider) {
			defer wg.Done()
			resultCh <- a.callProvider(ctx, provider, criteria, fingerprint)
		}(p)
	}

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	result := &Result{
		Offers:      make([]models.Offer, 0),
		Diagnostics: make([]models.ProviderDiagnostic, 0, len(a.providers)),
	}

	for settled := range resultCh {
		result.Offers = append(result.Offers, settled.offers...)
		result.Diagnostics = append(result.Diagnostics, settled.diagnostic)
	}

	// Completion order is nondeterministic; fix the diagnostics order so
	// identical searches produce identical payloads.
	sort.Slice(result.Diagnostics, func(i, j int) bool {
		return result.Diagnostics[i].ProviderCode < result.Diagnostics[j].ProviderCode
	})

	return result
}

type settledProvider struct {
	offers     []models.Offer
	diagnostic models.ProviderDiagnostic
}

func (a *Aggregator) callProvider(ctx context.Context, provider providers.Provider, criteria models.SearchCriteria, fingerprint string) settledProvider {
	start := time.Now()

	callCtx := ctx
	if a.config.ProviderTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, a.config.ProviderTimeout)
		defer cancel()
	}

	// The limiter wait runs under the per-provider timeout so a drained
	// token bucket settles as rate_limited instead of stalling the search.
	if a.config.RateLimiter != nil {
		if err := a.config.RateLimiter.Wait(callCtx, provider.Code()); err != nil {
			limitErr := providers.NewProviderError(provider.Code(), providers.ReasonRateLimited, err)
			return a.settleFailure(ctx, provider, fingerprint, limitErr, time.Since(start))
		}
	}

	offers, err := a.searchWithRetry(callCtx, provider, criteria)
	elapsed := time.Since(start)

	if a.metrics != nil {
		a.metrics.ObserveProviderLatency(provider.Code(), elapsed.Seconds())
	}

	if err != nil {
		return a.settleFailure(ctx, provider, fingerprint, err, elapsed)
	}

	// Refresh the last-known-good snapshot. A cache write failure only
	// costs us future fallback data, never the live result.
	if putErr := a.store.Put(ctx, provider.Code(), fingerprint, offers); putErr != nil {
		a.logger.Warn("cache write failed",
			slog.String("provider", provider.Code()),
			slog.String("error", putErr.Error()))
	}

	return settledProvider{
		offers: offers,
		diagnostic: models.ProviderDiagnostic{
			ProviderCode: provider.Code(),
			Provider:     provider.Name(),
			Outcome:      models.OutcomeSuccess,
			OfferCount:   len(offers),
			ElapsedMs:    elapsed.Milliseconds(),
		},
	}
}

// settleFailure applies the uniform fallback policy: try the last-known-good
// snapshot, report degraded if one exists, otherwise report the failure with
// zero offers.
func (a *Aggregator) settleFailure(ctx context.Context, provider providers.Provider, fingerprint string, err error, elapsed time.Duration) settledProvider {
	reason := providers.ReasonOf(err)

	if a.metrics != nil {
		a.metrics.IncProviderFailure(provider.Code(), string(reason))
	}

	if snapshot, ok := a.store.Get(ctx, provider.Code(), fingerprint); ok {
		if a.metrics != nil {
			a.metrics.IncCacheFallback(provider.Code())
		}
		capturedAt := snapshot.CapturedAt
		a.logger.Warn("provider degraded to cached offers",
			slog.String("provider", provider.Code()),
			slog.String("reason", string(reason)),
			slog.Time("captured_at", capturedAt))

		return settledProvider{
			offers: snapshot.Offers,
			diagnostic: models.ProviderDiagnostic{
				ProviderCode: provider.Code(),
				Provider:     provider.Name(),
				Outcome:      models.OutcomeDegraded,
				Reason:       string(reason),
				OfferCount:   len(snapshot.Offers),
				ElapsedMs:    elapsed.Milliseconds(),
				CapturedAt:   &capturedAt,
			},
		}
	}

	a.logger.Warn("provider failed with no cached fallback",
		slog.String("provider", provider.Code()),
		slog.String("reason", string(reason)),
		slog.String("error", err.Error()))

	return settledProvider{
		diagnostic: models.ProviderDiagnostic{
			ProviderCode: provider.Code(),
			Provider:     provider.Name(),
			Outcome:      models.OutcomeFailed,
			Reason:       string(reason),
			ElapsedMs:    elapsed.Milliseconds(),
		},
	}
}

func (a *Aggregator) searchWithRetry(ctx context.Context, provider providers.Provider, criteria models.SearchCriteria) ([]models.Offer, error) {
	var lastErr error

	for attempt := 0; attempt <= a.config.MaxRetries; attempt++ {
		select {
		case <-ctx.Done():
			if lastErr != nil {
				return nil, lastErr
			}
			return nil, ctx.Err()
		default:
		}

		if attempt > 0 {
			delayIdx := attempt - 1
			if delayIdx >= len(a.config.RetryDelays) {
				delayIdx = len(a.config.RetryDelays) - 1
			}
			delay := a.config.RetryDelays[delayIdx]

			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, lastErr
			}
		}

		offers, err := provider.Search(ctx, criteria)
		if err == nil {
			return offers, nil
		}

		lastErr = err
		if !retryable(err) {
			break
		}
	}

	return nil, lastErr
}

// Expired credentials and genuinely empty result sets do not get better on
// a second try.
func retryable(err error) bool {
	switch providers.ReasonOf(err) {
	case providers.ReasonAuthExpired, providers.ReasonNoOffers:
		return false
	default:
		return true
	}
}

// SearchRoundTrip runs the outbound and return fan-outs concurrently when a
// return date is set.
func (a *Aggregator) SearchRoundTrip(ctx context.Context, criteria models.SearchCriteria) (*Result, *Result) {
	if criteria.ReturnDate == nil || *criteria.ReturnDate == "" {
		return a.Search(ctx, criteria), nil
	}

	var outbound, returnResult *Result
	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		outbound = a.Search(ctx, criteria)
	}()
	go func() {
		defer wg.Done()
		returnResult = a.Search(ctx, criteria.Reversed())
	}()
	wg.Wait()

	return outbound, returnResult
}
