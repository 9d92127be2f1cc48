package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/satriawan/awardsearch/internal/models"
	"github.com/satriawan/awardsearch/internal/timeparse"
	"github.com/satriawan/awardsearch/pkg/currency"
)

type virginRequest struct {
	Origin        string `json:"origin"`
	Destination   string `json:"destination"`
	DepartureDate string `json:"departureDate"`
	Passengers    int    `json:"passengers"`
	AwardSearch   bool   `json:"awardSearch"`
}

type virginResponse struct {
	Data virginData `json:"data"`
}

type virginData struct {
	SearchOffers virginSearchOffers `json:"searchOffers"`
}

type virginSearchOffers struct {
	Result virginResult `json:"result"`
}

type virginResult struct {
	Slice virginSlice `json:"slice"`
}

type virginSlice struct {
	FlightsAndFares []virginFlightAndFares `json:"flightsAndFares"`
}

type virginFlightAndFares struct {
	Flight virginFlight `json:"flight"`
	Fares  []virginFare `json:"fares"`
}

type virginFlight struct {
	Segments []virginSegment `json:"segments"`
}

type virginSegment struct {
	Origin       virginAirport `json:"origin"`
	Destination  virginAirport `json:"destination"`
	Departure    string        `json:"departure"`
	Arrival      string        `json:"arrival"`
	Duration     int           `json:"duration"`
	Airline      virginAirline `json:"airline"`
	FlightNumber string        `json:"flightNumber"`
}

type virginAirport struct {
	Code string `json:"code"`
}

type virginAirline struct {
	Name string `json:"name"`
}

type virginFare struct {
	FareID       string       `json:"fareId"`
	Availability string       `json:"availability"`
	Price        *virginPrice `json:"price"`
}

type virginPrice struct {
	// The upstream serializes award points as a string.
	AwardPoints string  `json:"awardPoints"`
	Tax         float64 `json:"tax"`
	Currency    string  `json:"currency"`
}

type VirginProvider struct {
	config Config
	client *http.Client
}

func NewVirginProvider(cfg Config) *VirginProvider {
	return &VirginProvider{
		config: cfg,
		client: cfg.httpClient(),
	}
}

func (p *VirginProvider) Name() string {
	return "Virgin Atlantic"
}

func (p *VirginProvider) Code() string {
	return "VS"
}

func (p *VirginProvider) Search(ctx context.Context, criteria models.SearchCriteria) ([]models.Offer, error) {
	payload := virginRequest{
		Origin:        criteria.Origin,
		Destination:   criteria.Destination,
		DepartureDate: criteria.DepartureDate,
		Passengers:    criteria.Passengers,
		AwardSearch:   true,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, NewProviderError(p.Code(), ReasonMalformedResponse, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.BaseURL+"/api/search/offers", bytes.NewReader(body))
	if err != nil {
		return nil, NewProviderError(p.Code(), ReasonUnreachable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.config.Credentials.Authorization != "" {
		req.Header.Set("Authorization", p.config.Credentials.Authorization)
	}
	if p.config.Credentials.Cookie != "" {
		req.Header.Set("Cookie", p.config.Credentials.Cookie)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, NewProviderError(p.Code(), ReasonUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, NewProviderError(p.Code(), reasonFromStatus(resp.StatusCode), errors.New(resp.Status))
	}

	var raw virginResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, NewProviderError(p.Code(), ReasonMalformedResponse, err)
	}

	offers := p.normalize(raw)
	if len(offers) == 0 {
		return nil, NewProviderError(p.Code(), ReasonNoOffers, nil)
	}

	return offers, nil
}

func (p *VirginProvider) normalize(raw virginResponse) []models.Offer {
	var offers []models.Offer

	for _, entry := range raw.Data.SearchOffers.Result.Slice.FlightsAndFares {
		if len(entry.Flight.Segments) == 0 {
			continue
		}

		first := entry.Flight.Segments[0]
		last := entry.Flight.Segments[len(entry.Flight.Segments)-1]

		depTime, err := timeparse.Parse(first.Departure)
		if err != nil {
			continue
		}
		arrTime, err := timeparse.Parse(last.Arrival)
		if err != nil {
			continue
		}

		duration := 0
		var airlines []string
		for _, seg := range entry.Flight.Segments {
			duration += seg.Duration
			airlines = appendAirline(airlines, seg.Airline.Name)
		}

		for _, fare := range entry.Fares {
			if fare.Price == nil {
				continue
			}

			points, err := strconv.Atoi(fare.Price.AwardPoints)
			if err != nil || points <= 0 {
				continue
			}

			taxCurrency := fare.Price.Currency
			if taxCurrency == "" {
				taxCurrency = "USD"
			}

			offers = append(offers, models.Offer{
				ID:              uuid.NewString(),
				Route:           models.Route{Origin: first.Origin.Code, Destination: last.Destination.Code},
				Provider:        p.Name(),
				ProviderCode:    p.Code(),
				CabinClass:      virginCabinClass(fare.FareID),
				PointsCost:      points,
				PointsFormatted: currency.FormatPoints(points),
				Tax: models.Tax{
					Amount:    fare.Price.Tax,
					Currency:  taxCurrency,
					Formatted: currency.FormatCash(fare.Price.Tax, taxCurrency),
				},
				Refundable:      false,
				DepartureTime:   depTime,
				ArrivalTime:     arrTime,
				DurationMinutes: duration,
				Airlines:        airlines,
				SoldOut:         fare.Availability == "SOLD_OUT",
			})
		}
	}

	return offers
}

// virginCabinClass maps fare IDs by booking-code prefix. C and W prefixes
// are Upper Class, Virgin's business product.
func virginCabinClass(fareID string) models.CabinClass {
	if fareID == "" {
		return models.CabinUnknown
	}
	switch fareID[0] {
	case 'X', 'K':
		return models.CabinEconomy
	case 'N', 'Y':
		return models.CabinPremiumEconomy
	case 'B', 'S', 'C', 'W':
		return models.CabinBusiness
	default:
		return models.CabinUnknown
	}
}
