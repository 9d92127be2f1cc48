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

type alaskaRequest struct {
	Origins      []string `json:"origins"`
	Destinations []string `json:"destinations"`
	Dates        []string `json:"dates"`
	NumADTs      int      `json:"numADTs"`
	NumCHDs      int      `json:"numCHDs"`
	NumINFs      int      `json:"numINFs"`
	FareView     string   `json:"fareView"`
	SessionID    string   `json:"sessionID"`
}

type alaskaResponse struct {
	Rows []alaskaRow `json:"rows"`
}

type alaskaRow struct {
	ID          string                    `json:"id"`
	Origin      string                    `json:"origin"`
	Destination string                    `json:"destination"`
	Duration    int                       `json:"duration"`
	Segments    []alaskaSegment           `json:"segments"`
	Solutions   map[string]alaskaSolution `json:"solutions"`
}

type alaskaSegment struct {
	DepartureTime  string        `json:"departureTime"`
	ArrivalTime    string        `json:"arrivalTime"`
	DisplayCarrier alaskaCarrier `json:"displayCarrier"`
}

type alaskaCarrier struct {
	CarrierFullName string `json:"carrierFullName"`
}

type alaskaSolution struct {
	MilesPoints    int      `json:"milesPoints"`
	SeatsRemaining *int     `json:"seatsRemaining"`
	Cabins         []string `json:"cabins"`
	Refundable     bool     `json:"refundable"`
	TaxAmount      float64  `json:"taxAmount"`
	TaxCurrency    string   `json:"taxCurrency"`
}

type AlaskaProvider struct {
	config Config
	client *http.Client
}

func NewAlaskaProvider(cfg Config) *AlaskaProvider {
	return &AlaskaProvider{
		config: cfg,
		client: cfg.httpClient(),
	}
}

func (p *AlaskaProvider) Name() string {
	return "Alaska Airlines"
}

func (p *AlaskaProvider) Code() string {
	return "AS"
}

func (p *AlaskaProvider) Search(ctx context.Context, criteria models.SearchCriteria) ([]models.Offer, error) {
	// Alaska's endpoint always takes both directions; one-way searches
	// repeat the outbound date.
	returnDate := criteria.DepartureDate
	if criteria.ReturnDate != nil && *criteria.ReturnDate != "" {
		returnDate = *criteria.ReturnDate
	}

	payload := alaskaRequest{
		Origins:      []string{criteria.Origin, criteria.Destination},
		Destinations: []string{criteria.Destination, criteria.Origin},
		Dates:        []string{criteria.DepartureDate, returnDate},
		NumADTs:      criteria.Passengers,
		FareView:     "as_awards",
		SessionID:    p.config.Credentials.SessionID,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, NewProviderError(p.Code(), ReasonMalformedResponse, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.BaseURL+"/search/api/flightresults", bytes.NewReader(body))
	if err != nil {
		return nil, NewProviderError(p.Code(), ReasonUnreachable, err)
	}
	req.Header.Set("Content-Type", "text/plain;charset=UTF-8")
	req.Header.Set("Accept", "*/*")
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

	var raw alaskaResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, NewProviderError(p.Code(), ReasonMalformedResponse, err)
	}

	offers := p.normalize(raw, criteria)
	if len(offers) == 0 {
		return nil, NewProviderError(p.Code(), ReasonNoOffers, nil)
	}

	return offers, nil
}

// normalize emits one offer per fare solution on each row. Rows with broken
// segment data are skipped rather than failing the whole response.
func (p *AlaskaProvider) normalize(raw alaskaResponse, criteria models.SearchCriteria) []models.Offer {
	var offers []models.Offer

	for _, row := range raw.Rows {
		if len(row.Segments) == 0 || len(row.Solutions) == 0 {
			continue
		}

		first := row.Segments[0]
		last := row.Segments[len(row.Segments)-1]

		depTime, err := timeparse.Parse(first.DepartureTime)
		if err != nil {
			continue
		}

		arrStr := last.ArrivalTime
		if arrStr == "" {
			arrStr = last.DepartureTime
		}
		arrTime, err := timeparse.Parse(arrStr)
		if err != nil {
			continue
		}

		if !strings.EqualFold(row.Origin, criteria.Origin) || !strings.EqualFold(row.Destination, criteria.Destination) {
			continue
		}

		var airlines []string
		for _, seg := range row.Segments {
			airlines = appendAirline(airlines, seg.DisplayCarrier.CarrierFullName)
		}

		for solutionKey, fare := range row.Solutions {
			if fare.MilesPoints <= 0 {
				continue
			}

			taxCurrency := fare.TaxCurrency
			if taxCurrency == "" {
				taxCurrency = "USD"
			}

			offers = append(offers, models.Offer{
				ID:              uuid.NewString(),
				Route:           models.Route{Origin: row.Origin, Destination: row.Destination},
				Provider:        p.Name(),
				ProviderCode:    p.Code(),
				CabinClass:      alaskaCabinClass(solutionKey),
				PointsCost:      fare.MilesPoints,
				PointsFormatted: currency.FormatPoints(fare.MilesPoints),
				Tax: models.Tax{
					Amount:    fare.TaxAmount,
					Currency:  taxCurrency,
					Formatted: currency.FormatCash(fare.TaxAmount, taxCurrency),
				},
				SeatsRemaining:  fare.SeatsRemaining,
				Refundable:      fare.Refundable,
				DepartureTime:   depTime,
				ArrivalTime:     arrTime,
				DurationMinutes: row.Duration,
				Airlines:        airlines,
			})
		}
	}

	return offers
}

// alaskaCabinClass maps the solutions-map key (Alaska's fare shelf name)
// onto the canonical cabin set.
func alaskaCabinClass(solutionKey string) models.CabinClass {
	key := strings.ToLower(solutionKey)
	switch {
	case strings.Contains(key, "first"):
		return models.CabinFirst
	case strings.Contains(key, "business"):
		return models.CabinBusiness
	case strings.Contains(key, "premium"):
		return models.CabinPremiumEconomy
	case strings.Contains(key, "coach"), strings.Contains(key, "main"), strings.Contains(key, "saver"), strings.Contains(key, "economy"):
		return models.CabinEconomy
	default:
		return models.CabinUnknown
	}
}
