package search

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satriawan/awardsearch/internal/aggregator"
	"github.com/satriawan/awardsearch/internal/cache"
	"github.com/satriawan/awardsearch/internal/models"
	"github.com/satriawan/awardsearch/internal/providers"
)

type spyProvider struct {
	code   string
	offers []models.Offer
	err    error
	calls  atomic.Int32
}

func (p *spyProvider) Name() string { return p.code }
func (p *spyProvider) Code() string { return p.code }

func (p *spyProvider) Search(ctx context.Context, criteria models.SearchCriteria) ([]models.Offer, error) {
	p.calls.Add(1)
	if p.err != nil {
		return nil, p.err
	}
	return p.offers, nil
}

func economyOffer(providerCode string, points, duration int) models.Offer {
	return models.Offer{
		Route:           models.Route{Origin: "JFK", Destination: "LHR"},
		Provider:        providerCode,
		ProviderCode:    providerCode,
		CabinClass:      models.CabinEconomy,
		PointsCost:      points,
		DurationMinutes: duration,
		DepartureTime:   time.Date(2026, 9, 10, 11, 0, 0, 0, time.UTC),
		ArrivalTime:     time.Date(2026, 9, 10, 19, 0, 0, 0, time.UTC),
	}
}

func newService(providerList ...providers.Provider) *Service {
	cfg := aggregator.Config{ProviderTimeout: time.Second}
	agg := aggregator.NewAggregator(providerList, cache.NewMemoryStore(), cfg, nil, nil)
	return NewService(agg, nil, nil)
}

func searchCriteria() models.SearchCriteria {
	return models.SearchCriteria{
		Origin:        "JFK",
		Destination:   "LHR",
		DepartureDate: "2026-09-10",
		Passengers:    1,
	}
}

func TestAggregateValidationFailsBeforeProviderCalls(t *testing.T) {
	spy := &spyProvider{code: "AA"}
	service := newService(spy)

	criteria := searchCriteria()
	criteria.Destination = "JFK"

	_, err := service.Aggregate(context.Background(), criteria)

	var verr models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Zero(t, spy.calls.Load(), "no adapter may be touched on invalid input")
}

func TestAggregateRanksAcrossProviders(t *testing.T) {
	al := &spyProvider{code: "AL", offers: []models.Offer{economyOffer("AL", 25000, 300)}}
	aa := &spyProvider{code: "AA", offers: []models.Offer{economyOffer("AA", 18500, 350)}}

	service := newService(al, aa)
	resp, err := service.Aggregate(context.Background(), searchCriteria())
	require.NoError(t, err)

	require.Len(t, resp.Offers, 2)
	assert.Equal(t, "AA", resp.Offers[0].ProviderCode, "cheaper offer ranks first")
	assert.Equal(t, "AL", resp.Offers[1].ProviderCode)
}

func TestAggregateIdempotent(t *testing.T) {
	al := &spyProvider{code: "AL", offers: []models.Offer{economyOffer("AL", 25000, 300)}}
	aa := &spyProvider{code: "AA", offers: []models.Offer{economyOffer("AA", 18500, 350)}}
	service := newService(al, aa)

	first, err := service.Aggregate(context.Background(), searchCriteria())
	require.NoError(t, err)
	second, err := service.Aggregate(context.Background(), searchCriteria())
	require.NoError(t, err)

	require.Equal(t, len(first.Offers), len(second.Offers))
	for i := range first.Offers {
		assert.Equal(t, first.Offers[i].ProviderCode, second.Offers[i].ProviderCode)
		assert.Equal(t, first.Offers[i].PointsCost, second.Offers[i].PointsCost)
	}
	require.Equal(t, len(first.Diagnostics), len(second.Diagnostics))
	for i := range first.Diagnostics {
		assert.Equal(t, first.Diagnostics[i].ProviderCode, second.Diagnostics[i].ProviderCode)
		assert.Equal(t, first.Diagnostics[i].Outcome, second.Diagnostics[i].Outcome)
	}
}

func TestAggregateDropsZeroPointFares(t *testing.T) {
	p := &spyProvider{code: "AA", offers: []models.Offer{
		economyOffer("AA", 18500, 350),
		economyOffer("AA", 0, 350),
	}}

	service := newService(p)
	resp, err := service.Aggregate(context.Background(), searchCriteria())
	require.NoError(t, err)

	require.Len(t, resp.Offers, 1)
	assert.Equal(t, 18500, resp.Offers[0].PointsCost)
}

func TestAggregateMetadataTalliesOutcomes(t *testing.T) {
	healthy := &spyProvider{code: "AA", offers: []models.Offer{economyOffer("AA", 18500, 350)}}
	broken := &spyProvider{code: "VS", err: providers.NewProviderError("VS", providers.ReasonUnreachable, nil)}

	service := newService(healthy, broken)
	resp, err := service.Aggregate(context.Background(), searchCriteria())
	require.NoError(t, err)

	assert.Equal(t, 2, resp.Metadata.ProvidersQueried)
	assert.Equal(t, 1, resp.Metadata.ProvidersSucceeded)
	assert.Equal(t, 1, resp.Metadata.ProvidersFailed)
	assert.Equal(t, 0, resp.Metadata.ProvidersDegraded)
	assert.Equal(t, 1, resp.Metadata.TotalResults)
}

func TestAggregateAppliesFilters(t *testing.T) {
	business := economyOffer("AA", 57500, 300)
	business.CabinClass = models.CabinBusiness

	p := &spyProvider{code: "AA", offers: []models.Offer{
		economyOffer("AA", 18500, 350),
		business,
	}}

	criteria := searchCriteria()
	criteria.Filters = &models.SearchFilters{
		CabinClasses: []models.CabinClass{models.CabinBusiness},
	}

	service := newService(p)
	resp, err := service.Aggregate(context.Background(), criteria)
	require.NoError(t, err)

	require.Len(t, resp.Offers, 1)
	assert.Equal(t, models.CabinBusiness, resp.Offers[0].CabinClass)
}

func TestAggregateRoundTripValidation(t *testing.T) {
	spy := &spyProvider{code: "AA"}
	service := newService(spy)

	criteria := searchCriteria()
	badReturn := "2026-01-01"
	criteria.ReturnDate = &badReturn

	_, err := service.AggregateRoundTrip(context.Background(), criteria)

	var verr models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Zero(t, spy.calls.Load())
}

func TestAggregateRoundTripReturnsBothLegs(t *testing.T) {
	p := &spyProvider{code: "AA", offers: []models.Offer{economyOffer("AA", 18500, 350)}}
	service := newService(p)

	criteria := searchCriteria()
	returnDate := "2026-09-17"
	criteria.ReturnDate = &returnDate

	resp, err := service.AggregateRoundTrip(context.Background(), criteria)
	require.NoError(t, err)

	assert.Len(t, resp.OutboundOffers, 1)
	assert.Len(t, resp.ReturnOffers, 1)
	assert.Equal(t, 2, resp.Metadata.TotalResults)
	assert.Len(t, resp.Diagnostics, 2, "one diagnostic per provider per leg")
}
