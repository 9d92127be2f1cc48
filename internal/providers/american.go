package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/satriawan/awardsearch/internal/models"
	"github.com/satriawan/awardsearch/internal/timeparse"
	"github.com/satriawan/awardsearch/pkg/currency"
)

type americanRequest struct {
	Passengers  []americanPassenger `json:"passengers"`
	Slices      []americanSlice     `json:"slices"`
	TripOptions americanTripOptions `json:"tripOptions"`
}

type americanPassenger struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

type americanSlice struct {
	Origin        string `json:"origin"`
	Destination   string `json:"destination"`
	DepartureDate string `json:"departureDate"`
	AllCarriers   bool   `json:"allCarriers"`
}

type americanTripOptions struct {
	SearchType string `json:"searchType"`
	FareType   string `json:"fareType"`
	Locale     string `json:"locale"`
}

type americanResponse struct {
	Slices []americanResponseSlice `json:"slices"`
}

type americanResponseSlice struct {
	DurationInMinutes int                     `json:"durationInMinutes"`
	Segments          []americanSegment       `json:"segments"`
	PricingDetail     []americanPricingDetail `json:"pricingDetail"`
}

type americanSegment struct {
	Flight americanFlight `json:"flight"`
	Legs   []americanLeg  `json:"legs"`
}

type americanFlight struct {
	CarrierName string `json:"carrierName"`
}

type americanLeg struct {
	Origin            americanAirport `json:"origin"`
	Destination       americanAirport `json:"destination"`
	DepartureDateTime string          `json:"departureDateTime"`
	ArrivalDateTime   string          `json:"arrivalDateTime"`
}

type americanAirport struct {
	Code string `json:"code"`
}

type americanPricingDetail struct {
	ProductType              string       `json:"productType"`
	PerPassengerAwardPoints  int          `json:"perPassengerAwardPoints"`
	SeatsRemaining           *int         `json:"seatsRemaining"`
	RefundableProducts       []string     `json:"refundableProducts"`
	PerPassengerTaxesAndFees *americanTax `json:"perPassengerTaxesAndFees"`
}

type americanTax struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

type AmericanProvider struct {
	config Config
	client *http.Client
}

func NewAmericanProvider(cfg Config) *AmericanProvider {
	return &AmericanProvider{
		config: cfg,
		client: cfg.httpClient(),
	}
}

func (p *AmericanProvider) Name() string {
	return "American Airlines"
}

func (p *AmericanProvider) Code() string {
	return "AA"
}

func (p *AmericanProvider) Search(ctx context.Context, criteria models.SearchCriteria) ([]models.Offer, error) {
	payload := americanRequest{
		Passengers: []americanPassenger{{Type: "adult", Count: criteria.Passengers}},
		Slices: []americanSlice{{
			Origin:        criteria.Origin,
			Destination:   criteria.Destination,
			DepartureDate: criteria.DepartureDate,
			AllCarriers:   true,
		}},
		TripOptions: americanTripOptions{
			SearchType: "Award",
			FareType:   "Lowest",
			Locale:     "en_US",
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, NewProviderError(p.Code(), ReasonMalformedResponse, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.BaseURL+"/booking/api/search/itinerary", bytes.NewReader(body))
	if err != nil {
		return nil, NewProviderError(p.Code(), ReasonUnreachable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if p.config.Credentials.Cookie != "" {
		req.Header.Set("Cookie", p.config.Credentials.Cookie)
	}
	if p.config.Credentials.XSRFToken != "" {
		req.Header.Set("X-XSRF-Token", p.config.Credentials.XSRFToken)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, NewProviderError(p.Code(), ReasonUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, NewProviderError(p.Code(), reasonFromStatus(resp.StatusCode), errors.New(resp.Status))
	}

	var raw americanResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, NewProviderError(p.Code(), ReasonMalformedResponse, err)
	}

	offers := p.normalize(raw)
	if len(offers) == 0 {
		return nil, NewProviderError(p.Code(), ReasonNoOffers, nil)
	}

	return offers, nil
}

// normalize flattens each slice's pricing details into one offer per priced
// fare. A slice with M fare products yields M offers sharing route and
// segment data.
func (p *AmericanProvider) normalize(raw americanResponse) []models.Offer {
	var offers []models.Offer

	for _, slice := range raw.Slices {
		if len(slice.Segments) == 0 {
			continue
		}

		first := slice.Segments[0]
		last := slice.Segments[len(slice.Segments)-1]
		if len(first.Legs) == 0 || len(last.Legs) == 0 {
			continue
		}

		origin := first.Legs[0].Origin.Code
		destination := last.Legs[len(last.Legs)-1].Destination.Code

		depTime, err := timeparse.Parse(first.Legs[0].DepartureDateTime)
		if err != nil {
			continue
		}
		arrTime, err := timeparse.Parse(last.Legs[len(last.Legs)-1].ArrivalDateTime)
		if err != nil {
			continue
		}

		var airlines []string
		for _, seg := range slice.Segments {
			airlines = appendAirline(airlines, seg.Flight.CarrierName)
		}

		for _, detail := range slice.PricingDetail {
			if detail.PerPassengerAwardPoints <= 0 {
				continue
			}

			taxAmount := 0.0
			taxCurrency := "USD"
			if detail.PerPassengerTaxesAndFees != nil {
				taxAmount = detail.PerPassengerTaxesAndFees.Amount
				if detail.PerPassengerTaxesAndFees.Currency != "" {
					taxCurrency = detail.PerPassengerTaxesAndFees.Currency
				}
			}

			offers = append(offers, models.Offer{
				ID:              uuid.NewString(),
				Route:           models.Route{Origin: origin, Destination: destination},
				Provider:        p.Name(),
				ProviderCode:    p.Code(),
				CabinClass:      americanCabinClass(detail.ProductType),
				PointsCost:      detail.PerPassengerAwardPoints,
				PointsFormatted: currency.FormatPoints(detail.PerPassengerAwardPoints),
				Tax: models.Tax{
					Amount:    taxAmount,
					Currency:  taxCurrency,
					Formatted: currency.FormatCash(taxAmount, taxCurrency),
				},
				SeatsRemaining:  detail.SeatsRemaining,
				Refundable:      len(detail.RefundableProducts) > 0,
				DepartureTime:   depTime,
				ArrivalTime:     arrTime,
				DurationMinutes: slice.DurationInMinutes,
				Airlines:        airlines,
			})
		}
	}

	return offers
}

// americanCabinClass maps AA product types onto the canonical cabin set.
// Unrecognized products map to unknown so the fare is still ranked.
func americanCabinClass(productType string) models.CabinClass {
	pt := strings.ToUpper(productType)
	switch {
	case strings.Contains(pt, "FIRST"):
		return models.CabinFirst
	case strings.Contains(pt, "BUSINESS"):
		return models.CabinBusiness
	case strings.Contains(pt, "PREMIUM"):
		return models.CabinPremiumEconomy
	case strings.Contains(pt, "COACH"), strings.Contains(pt, "MAIN"), strings.Contains(pt, "ECONOMY"):
		return models.CabinEconomy
	default:
		return models.CabinUnknown
	}
}
