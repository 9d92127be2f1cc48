package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satriawan/awardsearch/internal/models"
)

func americanTestServer(t *testing.T, status int, fixture string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/booking/api/search/itinerary", r.URL.Path)
		w.WriteHeader(status)
		if fixture != "" {
			body, err := os.ReadFile("testdata/" + fixture)
			require.NoError(t, err)
			w.Write(body)
		}
	}))
}

func jfkMiaCriteria() models.SearchCriteria {
	return models.SearchCriteria{
		Origin:        "JFK",
		Destination:   "MIA",
		DepartureDate: "2026-04-29",
		Passengers:    1,
	}
}

func TestAmericanSearchMapsPricedFares(t *testing.T) {
	srv := americanTestServer(t, http.StatusOK, "american.json")
	defer srv.Close()

	p := NewAmericanProvider(Config{BaseURL: srv.URL})
	offers, err := p.Search(context.Background(), jfkMiaCriteria())
	require.NoError(t, err)

	// 5 pricing details in the fixture; the zero-points premium economy
	// fare must be dropped.
	require.Len(t, offers, 3)

	byCabin := map[models.CabinClass]models.Offer{}
	for _, offer := range offers {
		assert.Equal(t, "AA", offer.ProviderCode)
		assert.Equal(t, "American Airlines", offer.Provider)
		assert.Equal(t, models.Route{Origin: "JFK", Destination: "MIA"}, offer.Route)
		assert.Positive(t, offer.PointsCost)
		byCabin[offer.CabinClass] = offer
	}

	economy, ok := byCabin[models.CabinEconomy]
	require.True(t, ok, "COACH should map to economy")
	assert.Equal(t, 12500, economy.PointsCost)
	assert.Equal(t, "12,500", economy.PointsFormatted)
	assert.Equal(t, 5.6, economy.Tax.Amount)
	assert.Equal(t, "USD", economy.Tax.Currency)
	require.NotNil(t, economy.SeatsRemaining)
	assert.Equal(t, 7, *economy.SeatsRemaining)
	assert.False(t, economy.Refundable)
	assert.Equal(t, 195, economy.DurationMinutes)

	business, ok := byCabin[models.CabinBusiness]
	require.True(t, ok)
	assert.True(t, business.Refundable)

	// Unrecognized product types survive as unknown instead of being lost.
	unknown, ok := byCabin[models.CabinUnknown]
	require.True(t, ok, "FLAGSHIP SELECT should map to unknown")
	assert.Equal(t, 90000, unknown.PointsCost)
	assert.Nil(t, unknown.SeatsRemaining)
	assert.Equal(t, "USD", unknown.Tax.Currency, "missing taxes default to 0 USD")
	assert.Equal(t, 0.0, unknown.Tax.Amount)
}

func TestAmericanSearchConnectingItinerary(t *testing.T) {
	srv := americanTestServer(t, http.StatusOK, "american.json")
	defer srv.Close()

	p := NewAmericanProvider(Config{BaseURL: srv.URL})
	offers, err := p.Search(context.Background(), jfkMiaCriteria())
	require.NoError(t, err)

	var first *models.Offer
	for i := range offers {
		if offers[i].CabinClass == models.CabinFirst {
			first = &offers[i]
		}
	}
	require.NotNil(t, first)
	assert.Equal(t, models.Route{Origin: "JFK", Destination: "MIA"}, first.Route)
	assert.Equal(t, 410, first.DurationMinutes)
	assert.Equal(t, []string{"American Airlines", "Envoy Air"}, first.Airlines)
}

func TestAmericanSearchOfferTimesKeepOffset(t *testing.T) {
	srv := americanTestServer(t, http.StatusOK, "american.json")
	defer srv.Close()

	p := NewAmericanProvider(Config{BaseURL: srv.URL})
	offers, err := p.Search(context.Background(), jfkMiaCriteria())
	require.NoError(t, err)

	_, offset := offers[0].DepartureTime.Zone()
	assert.Equal(t, -4*60*60, offset)
}

func TestAmericanSearchFailureClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		reason FailureReason
	}{
		{"unauthorized", http.StatusUnauthorized, ReasonAuthExpired},
		{"forbidden", http.StatusForbidden, ReasonAuthExpired},
		{"throttled", http.StatusTooManyRequests, ReasonRateLimited},
		{"server error", http.StatusInternalServerError, ReasonUnreachable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := americanTestServer(t, tt.status, "")
			defer srv.Close()

			p := NewAmericanProvider(Config{BaseURL: srv.URL})
			_, err := p.Search(context.Background(), jfkMiaCriteria())

			var pe *ProviderError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tt.reason, pe.Reason)
		})
	}
}

func TestAmericanSearchMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>bot check</html>"))
	}))
	defer srv.Close()

	p := NewAmericanProvider(Config{BaseURL: srv.URL})
	_, err := p.Search(context.Background(), jfkMiaCriteria())

	var pe *ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, ReasonMalformedResponse, pe.Reason)
}

func TestAmericanSearchEmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"slices": []}`))
	}))
	defer srv.Close()

	p := NewAmericanProvider(Config{BaseURL: srv.URL})
	_, err := p.Search(context.Background(), jfkMiaCriteria())

	var pe *ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, ReasonNoOffers, pe.Reason)
}

func TestAmericanSearchUnreachableHost(t *testing.T) {
	p := NewAmericanProvider(Config{BaseURL: "http://127.0.0.1:1"})
	_, err := p.Search(context.Background(), jfkMiaCriteria())

	var pe *ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, ReasonUnreachable, pe.Reason)
	assert.NotNil(t, pe.Err)
}

func TestAmericanSendsCredentials(t *testing.T) {
	var gotCookie, gotToken string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCookie = r.Header.Get("Cookie")
		gotToken = r.Header.Get("X-XSRF-Token")
		w.Write([]byte(`{"slices": []}`))
	}))
	defer srv.Close()

	p := NewAmericanProvider(Config{
		BaseURL: srv.URL,
		Credentials: Credentials{
			Cookie:    "session=abc",
			XSRFToken: "token-123",
		},
	})
	p.Search(context.Background(), jfkMiaCriteria())

	assert.Equal(t, "session=abc", gotCookie)
	assert.Equal(t, "token-123", gotToken)
}
