package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satriawan/awardsearch/internal/aggregator"
	"github.com/satriawan/awardsearch/internal/cache"
	"github.com/satriawan/awardsearch/internal/models"
	"github.com/satriawan/awardsearch/internal/providers"
	"github.com/satriawan/awardsearch/internal/search"
)

type stubProvider struct {
	code   string
	offers []models.Offer
	err    error
}

func (p *stubProvider) Name() string { return p.code }
func (p *stubProvider) Code() string { return p.code }

func (p *stubProvider) Search(ctx context.Context, criteria models.SearchCriteria) ([]models.Offer, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.offers, nil
}

func newHandler(providerList ...providers.Provider) *SearchHandler {
	cfg := aggregator.Config{ProviderTimeout: time.Second}
	agg := aggregator.NewAggregator(providerList, cache.NewMemoryStore(), cfg, nil, nil)
	return NewSearchHandler(search.NewService(agg, nil, nil))
}

func doSearch(t *testing.T, h *SearchHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/awards/search", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	require.NoError(t, h.Search(e.NewContext(req, rec)))
	return rec
}

func TestSearchHandlerReturnsRankedOffers(t *testing.T) {
	p := &stubProvider{code: "AA", offers: []models.Offer{{
		Route:         models.Route{Origin: "JFK", Destination: "LHR"},
		ProviderCode:  "AA",
		CabinClass:    models.CabinEconomy,
		PointsCost:    12500,
		DepartureTime: time.Date(2026, 9, 10, 11, 0, 0, 0, time.UTC),
		ArrivalTime:   time.Date(2026, 9, 10, 19, 0, 0, 0, time.UTC),
	}}}

	h := newHandler(p)
	rec := doSearch(t, h, `{"origin":"JFK","destination":"LHR","departure_date":"2026-09-10","passengers":1}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.SearchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Offers, 1)
	assert.Equal(t, 1, resp.Metadata.ProvidersSucceeded)
}

func TestSearchHandlerValidationError(t *testing.T) {
	h := newHandler(&stubProvider{code: "AA"})
	rec := doSearch(t, h, `{"origin":"JFK","destination":"JFK","departure_date":"2026-09-10"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "validation_error", resp.Error)
}

func TestSearchHandlerMalformedBody(t *testing.T) {
	h := newHandler(&stubProvider{code: "AA"})
	rec := doSearch(t, h, `{"origin": 42}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchHandlerTotalOutageIsStillOK(t *testing.T) {
	h := newHandler(
		&stubProvider{code: "AA", err: providers.NewProviderError("AA", providers.ReasonUnreachable, nil)},
		&stubProvider{code: "VS", err: providers.NewProviderError("VS", providers.ReasonAuthExpired, nil)},
	)
	rec := doSearch(t, h, `{"origin":"JFK","destination":"LHR","departure_date":"2026-09-10","passengers":1}`)

	// Provider-side failure is never a 5xx; the caller gets an empty
	// list plus diagnostics.
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.SearchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.Offers)
	require.Len(t, resp.Diagnostics, 2)
	assert.Equal(t, 2, resp.Metadata.ProvidersFailed)
}

func TestSearchHandlerRoundTrip(t *testing.T) {
	p := &stubProvider{code: "AA", offers: []models.Offer{{
		Route:         models.Route{Origin: "JFK", Destination: "LHR"},
		ProviderCode:  "AA",
		CabinClass:    models.CabinEconomy,
		PointsCost:    12500,
		DepartureTime: time.Date(2026, 9, 10, 11, 0, 0, 0, time.UTC),
		ArrivalTime:   time.Date(2026, 9, 10, 19, 0, 0, 0, time.UTC),
	}}}

	h := newHandler(p)
	rec := doSearch(t, h, `{"origin":"JFK","destination":"LHR","departure_date":"2026-09-10","return_date":"2026-09-17","passengers":1}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.RoundTripResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.OutboundOffers, 1)
	assert.Len(t, resp.ReturnOffers, 1)
}

func TestHealthHandler(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	require.NoError(t, HealthHandler(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusOK, rec.Code)
}
