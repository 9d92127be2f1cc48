package providers

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/satriawan/awardsearch/internal/models"
	"github.com/satriawan/awardsearch/internal/providers/data"
	"github.com/satriawan/awardsearch/internal/timeparse"
	"github.com/satriawan/awardsearch/pkg/currency"
)

type airfranceResponse struct {
	AwardOffers []airfranceOffer `json:"awardOffers"`
}

type airfranceOffer struct {
	OfferID         string       `json:"offerId"`
	From            string       `json:"from"`
	To              string       `json:"to"`
	Cabin           string       `json:"cabin"`
	Miles           int          `json:"miles"`
	Taxes           airfranceTax `json:"taxes"`
	SeatsLeft       *int         `json:"seatsLeft"`
	Refundable      bool         `json:"refundable"`
	Depart          string       `json:"depart"`
	Arrive          string       `json:"arrive"`
	DurationMinutes int          `json:"durationMinutes"`
	Carriers        []string     `json:"carriers"`
}

type airfranceTax struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// AirFranceProvider serves deterministic award data from an embedded
// snapshot. It implements the same contract as the live adapters; the
// orchestrator cannot tell the difference.
type AirFranceProvider struct {
	offers []airfranceOffer
}

func NewAirFranceProvider() (*AirFranceProvider, error) {
	var resp airfranceResponse
	if err := json.Unmarshal(data.AirFranceData, &resp); err != nil {
		return nil, err
	}
	return &AirFranceProvider{offers: resp.AwardOffers}, nil
}

func (p *AirFranceProvider) Name() string {
	return "Air France"
}

func (p *AirFranceProvider) Code() string {
	return "AF"
}

func (p *AirFranceProvider) Search(ctx context.Context, criteria models.SearchCriteria) ([]models.Offer, error) {
	select {
	case <-ctx.Done():
		return nil, NewProviderError(p.Code(), ReasonUnreachable, ctx.Err())
	default:
	}

	reqDate, err := time.Parse("2006-01-02", criteria.DepartureDate)
	if err != nil {
		return nil, NewProviderError(p.Code(), ReasonMalformedResponse, err)
	}

	var results []models.Offer
	for _, raw := range p.offers {
		if !strings.EqualFold(raw.From, criteria.Origin) || !strings.EqualFold(raw.To, criteria.Destination) {
			continue
		}
		if raw.Miles <= 0 {
			continue
		}

		depTime, err := timeparse.Parse(raw.Depart)
		if err != nil {
			continue
		}
		if !timeparse.SameDate(depTime, reqDate) {
			continue
		}

		arrTime, err := timeparse.Parse(raw.Arrive)
		if err != nil {
			continue
		}

		taxCurrency := raw.Taxes.Currency
		if taxCurrency == "" {
			taxCurrency = "USD"
		}

		var airlines []string
		for _, carrier := range raw.Carriers {
			airlines = appendAirline(airlines, carrier)
		}

		results = append(results, models.Offer{
			ID:              uuid.NewString(),
			Route:           models.Route{Origin: raw.From, Destination: raw.To},
			Provider:        p.Name(),
			ProviderCode:    p.Code(),
			CabinClass:      airfranceCabinClass(raw.Cabin),
			PointsCost:      raw.Miles,
			PointsFormatted: currency.FormatPoints(raw.Miles),
			Tax: models.Tax{
				Amount:    raw.Taxes.Amount,
				Currency:  taxCurrency,
				Formatted: currency.FormatCash(raw.Taxes.Amount, taxCurrency),
			},
			SeatsRemaining:  raw.SeatsLeft,
			Refundable:      raw.Refundable,
			DepartureTime:   depTime,
			ArrivalTime:     arrTime,
			DurationMinutes: raw.DurationMinutes,
			Airlines:        airlines,
			SoldOut:         raw.SeatsLeft != nil && *raw.SeatsLeft == 0,
		})
	}

	if len(results) == 0 {
		return nil, NewProviderError(p.Code(), ReasonNoOffers, nil)
	}

	return results, nil
}

func airfranceCabinClass(cabin string) models.CabinClass {
	switch strings.ToUpper(cabin) {
	case "ECONOMY":
		return models.CabinEconomy
	case "PREMIUM", "PREMIUM ECONOMY":
		return models.CabinPremiumEconomy
	case "BUSINESS":
		return models.CabinBusiness
	case "LA PREMIERE", "FIRST":
		return models.CabinFirst
	default:
		return models.CabinUnknown
	}
}
